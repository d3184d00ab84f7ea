package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "TIMEZONE", "SUCCESS_DELAY", "CLOSE_DELAY", "LEDGER_PATH", "GOOGLE_SHEETS_WEBHOOK_URL",
		"GOOGLE_SHEETS_SECRET_KEY", "DISCORD_BOT_TOKEN", "DISCORD_ADMIN_CHANNEL_ID", "KAFKA_BROKERS", "KAFKA_TOPIC", "EMPLOYEE_ROSTER",
		"SESSION_IDLE_TTL", "SESSION_SWEEP_INTERVAL"} {
		t.Setenv(k, "")
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Port = %q", cfg.Server.Port)
	}
	if cfg.Form.SuccessDelay != time.Second || cfg.Form.CloseDelay != 2*time.Second {
		t.Errorf("delays = %v/%v", cfg.Form.SuccessDelay, cfg.Form.CloseDelay)
	}
	if cfg.Form.SessionTTL != 30*time.Minute || cfg.Form.SweepEvery != time.Minute {
		t.Errorf("session ttl = %v/%v", cfg.Form.SessionTTL, cfg.Form.SweepEvery)
	}
	if cfg.Form.Location().String() != "Europe/Moscow" {
		t.Errorf("Location = %v", cfg.Form.Location())
	}
	if cfg.Kafka.Topic != "daily-reports" || len(cfg.Kafka.Brokers) != 0 {
		t.Errorf("Kafka = %+v", cfg.Kafka)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SUCCESS_DELAY", "250")
	t.Setenv("CLOSE_DELAY", "3s")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("EMPLOYEE_ROSTER", "Анна, Борис")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Form.SuccessDelay != 250*time.Millisecond || cfg.Form.CloseDelay != 3*time.Second {
		t.Errorf("delays = %v/%v", cfg.Form.SuccessDelay, cfg.Form.CloseDelay)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Errorf("Brokers = %v", cfg.Kafka.Brokers)
	}
	if len(cfg.Ledger.Roster) != 2 || cfg.Ledger.Roster[1] != "Борис" {
		t.Errorf("Roster = %v", cfg.Ledger.Roster)
	}
}

func TestValidate(t *testing.T) {
	cfg := Config{
		Form:    FormConfig{Timezone: "Mars/Olympus", SuccessDelay: -time.Second},
		Sheets:  SheetsConfig{WebhookURL: "https://script.google.com/x"},
		Discord: DiscordConfig{BotToken: "token"},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected errors")
	}
	for _, want := range []string{"SUCCESS_DELAY", "SESSION_IDLE_TTL", "SESSION_SWEEP_INTERVAL", "LEDGER_PATH", "GOOGLE_SHEETS_SECRET_KEY", "DISCORD_ADMIN_CHANNEL_ID", "TIMEZONE"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error does not mention %s: %v", want, err)
		}
	}
}

func TestLocationFallsBackToUTC(t *testing.T) {
	if loc := (FormConfig{Timezone: "nowhere"}).Location(); loc != time.UTC {
		t.Errorf("Location = %v", loc)
	}
}
