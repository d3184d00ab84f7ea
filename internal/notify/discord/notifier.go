package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"daily-report-go/internal/config"
	"daily-report-go/internal/ledger"
	"daily-report-go/internal/notify"
	"daily-report-go/internal/types"
)

var ErrNotConfigured = errors.New("discord admin channel not configured")

type sender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Notifier posts report notifications to the admin channel.
type Notifier struct {
	session   *discordgo.Session
	send      sender
	channelID string
}

func New(cfg config.DiscordConfig) (*Notifier, error) {
	if cfg.BotToken == "" || cfg.AdminChannelID == "" {
		return nil, ErrNotConfigured
	}
	session, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	return &Notifier{session: session, send: session, channelID: cfg.AdminChannelID}, nil
}

func (n *Notifier) NotifyReport(ctx context.Context, r types.Receipt) error {
	return n.post(ctx, notify.ReportMessage(r))
}

// SendDaily posts the end-of-day roll-up.
func (n *Notifier) SendDaily(ctx context.Context, d ledger.DailyDigest) error {
	return n.post(ctx, notify.DailyMessage(d))
}

func (n *Notifier) post(ctx context.Context, content string) error {
	if _, err := n.send.ChannelMessageSend(n.channelID, content, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send discord message: %w", err)
	}
	return nil
}

func (n *Notifier) Close() {
	if n.session != nil {
		n.session.Close()
	}
}
