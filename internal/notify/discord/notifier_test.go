package discord

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"

	"daily-report-go/internal/config"
	"daily-report-go/internal/types"
)

type fakeSender struct {
	channel string
	content string
	err     error
}

func (f *fakeSender) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.channel, f.content = channelID, content
	if f.err != nil {
		return nil, f.err
	}
	return &discordgo.Message{ID: "1", ChannelID: channelID, Content: content}, nil
}

func TestNotifyReport(t *testing.T) {
	fs := &fakeSender{}
	n := &Notifier{send: fs, channelID: "42"}
	r := types.Receipt{Report: types.Report{EmployeeName: "Анна", ReportDate: "2025-03-14", CallsCount: 10}}

	if err := n.NotifyReport(context.Background(), r); err != nil {
		t.Fatal(err)
	}
	if fs.channel != "42" || !strings.Contains(fs.content, "Анна") {
		t.Errorf("sent %q to %q", fs.content, fs.channel)
	}
}

func TestNotifyReportError(t *testing.T) {
	n := &Notifier{send: &fakeSender{err: errors.New("HTTP 403 Forbidden")}, channelID: "42"}
	if err := n.NotifyReport(context.Background(), types.Receipt{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewRequiresConfig(t *testing.T) {
	if _, err := New(config.DiscordConfig{BotToken: "x"}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}
