package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	Form    FormConfig
	Ledger  LedgerConfig
	Sheets  SheetsConfig
	Discord DiscordConfig
	Kafka   KafkaConfig
}

type ServerConfig struct {
	Port           string
	Environment    string
	AllowedOrigins []string // origins the web form may call the API from
}

// FormConfig drives the submission lifecycle.
type FormConfig struct {
	Timezone     string
	SuccessDelay time.Duration // grace period before a dispatched report counts as sent
	CloseDelay   time.Duration // success screen lifetime before the host is closed
	SessionTTL   time.Duration // idle form sessions older than this are evicted
	SweepEvery   time.Duration
}

type LedgerConfig struct {
	Path   string
	Roster []string // employees expected to report daily; empty means everyone seen so far
}

// SheetsConfig points at the Apps Script webhook that mirrors reports
// into the team spreadsheet. Empty URL disables forwarding.
type SheetsConfig struct {
	WebhookURL string
	SecretKey  string
	Timeout    time.Duration
}

type DiscordConfig struct {
	BotToken       string
	AdminChannelID string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Load reads configuration from the environment, loading .env first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvOrDefault("PORT", "8080"),
			Environment:    getEnvOrDefault("ENVIRONMENT", "local"),
			AllowedOrigins: splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),
		},
		Form: FormConfig{
			Timezone:     getEnvOrDefault("TIMEZONE", "Europe/Moscow"),
			SuccessDelay: getEnvDuration("SUCCESS_DELAY", time.Second),
			CloseDelay:   getEnvDuration("CLOSE_DELAY", 2*time.Second),
			SessionTTL:   getEnvDuration("SESSION_IDLE_TTL", 30*time.Minute),
			SweepEvery:   getEnvDuration("SESSION_SWEEP_INTERVAL", time.Minute),
		},
		Ledger: LedgerConfig{
			Path:   getEnvOrDefault("LEDGER_PATH", "data/reports.xlsx"),
			Roster: splitList(os.Getenv("EMPLOYEE_ROSTER")),
		},
		Sheets: SheetsConfig{
			WebhookURL: os.Getenv("GOOGLE_SHEETS_WEBHOOK_URL"),
			SecretKey:  os.Getenv("GOOGLE_SHEETS_SECRET_KEY"),
			Timeout:    getEnvDuration("SHEETS_TIMEOUT", 15*time.Second),
		},
		Discord: DiscordConfig{
			BotToken:       os.Getenv("DISCORD_BOT_TOKEN"),
			AdminChannelID: os.Getenv("DISCORD_ADMIN_CHANNEL_ID"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   getEnvOrDefault("KAFKA_TOPIC", "daily-reports"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Form.SuccessDelay < 0 {
		errs = append(errs, fmt.Errorf("SUCCESS_DELAY must not be negative"))
	}
	if c.Form.CloseDelay < 0 {
		errs = append(errs, fmt.Errorf("CLOSE_DELAY must not be negative"))
	}
	if c.Form.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_IDLE_TTL must be positive"))
	}
	if c.Form.SweepEvery <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_SWEEP_INTERVAL must be positive"))
	}
	if strings.TrimSpace(c.Ledger.Path) == "" {
		errs = append(errs, fmt.Errorf("LEDGER_PATH is required"))
	}
	if c.Sheets.WebhookURL != "" && c.Sheets.SecretKey == "" {
		errs = append(errs, fmt.Errorf("GOOGLE_SHEETS_SECRET_KEY is required when GOOGLE_SHEETS_WEBHOOK_URL is set"))
	}
	if (c.Discord.BotToken == "") != (c.Discord.AdminChannelID == "") {
		errs = append(errs, fmt.Errorf("DISCORD_BOT_TOKEN and DISCORD_ADMIN_CHANNEL_ID must be set together"))
	}
	if _, err := time.LoadLocation(c.Form.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("TIMEZONE %q: %w", c.Form.Timezone, err))
	}
	return errors.Join(errs...)
}

// Location returns the configured report timezone, UTC if it cannot be loaded.
func (c FormConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	if parsed, err := time.ParseDuration(value); err == nil {
		return parsed
	}
	// bare numbers are milliseconds
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
