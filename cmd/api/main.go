package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"daily-report-go/internal/config"
	"daily-report-go/internal/httpapi"
	"daily-report-go/internal/intake"
	"daily-report-go/internal/ledger"
	"daily-report-go/internal/lifecycle"
	"daily-report-go/internal/logger"
	"daily-report-go/internal/notify"
	"daily-report-go/internal/notify/discord"
	"daily-report-go/internal/notify/kafkapub"
	"daily-report-go/internal/session"
	"daily-report-go/internal/sheets"
)

func main() {
	cfg, err := config.Load() // loads .env
	log := logger.New()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	log.WithField("environment", cfg.Server.Environment).Info("starting service")

	loc := cfg.Form.Location()

	log.WithField("ledger_path", cfg.Ledger.Path).Info("opening report ledger")
	book, err := ledger.Open(cfg.Ledger.Path, log.Component("ledger").Entry)
	if err != nil {
		log.WithError(err).Fatal("failed to open ledger")
	}
	defer book.Close()

	var notifiers []notify.Named
	if cfg.Discord.BotToken != "" {
		d, err := discord.New(cfg.Discord)
		if err != nil {
			log.WithError(err).Fatal("failed to set up discord notifier")
		}
		defer d.Close()
		notifiers = append(notifiers, notify.Named{Name: "discord", Notifier: d})
	}
	if len(cfg.Kafka.Brokers) > 0 {
		p, err := kafkapub.New(cfg.Kafka)
		if err != nil {
			log.WithError(err).Fatal("failed to set up kafka publisher")
		}
		defer p.Close()
		notifiers = append(notifiers, notify.Named{Name: "kafka", Notifier: p})
	}
	fanout := notify.NewMulti(log.Entry, notifiers...)

	mirror := sheets.New(cfg.Sheets, log.Entry)
	log.WithFields(map[string]interface{}{
		"sheets":    mirror.Enabled(),
		"notifiers": fanout.Len(),
	}).Info("report sinks configured")

	svc := intake.New(book, intake.Options{
		Sheets:   mirror,
		Notifier: fanout,
		Location: loc,
		Log:      log.Component("intake").Entry,
	})
	sessions := session.NewRegistry(svc, lifecycle.Options{
		Location:     loc,
		SuccessDelay: cfg.Form.SuccessDelay,
		CloseDelay:   cfg.Form.CloseDelay,
		Log:          log.Component("lifecycle").Entry,
	})
	defer sessions.Shutdown()

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go sessions.Janitor(sweepCtx, cfg.Form.SessionTTL, cfg.Form.SweepEvery)

	api := httpapi.New(svc, book, sessions, httpapi.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Roster:         cfg.Ledger.Roster,
		Location:       loc,
	}, log)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      api.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("addr", addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server terminated")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down")
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
