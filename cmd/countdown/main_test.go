package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/countdown-go/countdown/internal/app"
	"github.com/countdown-go/countdown/pkg/config"
)

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "countdown.yaml")
	data := "countdown:\n  start: 30\n  interval: 2s\nlog_level: warn\nhistory: file.db\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(Flags{ConfigFile: path, Start: 10, History: "flag.db"})
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}

	if cfg.Countdown.Start != 10 {
		t.Errorf("Start = %d, want 10 from flag", cfg.Countdown.Start)
	}
	if cfg.Countdown.Interval != 2*time.Second {
		t.Errorf("Interval = %v, want 2s from file", cfg.Countdown.Interval)
	}
	if cfg.History != "flag.db" {
		t.Errorf("History = %q, want flag.db", cfg.History)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(Flags{})
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Countdown.Start != 60 || cfg.Countdown.Interval != time.Second {
		t.Errorf("defaults = %d, %v", cfg.Countdown.Start, cfg.Countdown.Interval)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name  string
		flags Flags
	}{
		{"MissingFile", Flags{ConfigFile: "/nonexistent/countdown.yaml"}},
		{"BadInterval", Flags{Interval: "soon"}},
		{"NegativeStart", Flags{Start: -5}},
		{"BadLevel", Flags{LogLevel: "chatty"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loadConfig(tt.flags); err == nil {
				t.Error("loadConfig() expected error")
			}
		})
	}
}

func TestParseInterval(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"1", time.Second},
		{"0.25", 250 * time.Millisecond},
		{"500ms", 500 * time.Millisecond},
		{"2m", 2 * time.Minute},
	}
	for _, tt := range tests {
		got, err := parseInterval(tt.in)
		if err != nil {
			t.Fatalf("parseInterval(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("parseInterval(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseIntervalRejectsOutOfRange(t *testing.T) {
	for _, in := range []string{"NaN", "Inf", "-inf", "1e30", "9.3e9", "fast"} {
		if d, err := parseInterval(in); err == nil {
			t.Errorf("parseInterval(%q) = %v, want error", in, d)
		}
	}
}

func TestCountOnce(t *testing.T) {
	cfg := config.Default()
	cfg.Countdown.Start = 2
	cfg.Countdown.Interval = 10 * time.Millisecond

	a, err := app.New(app.Options{Config: cfg})
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	var buf bytes.Buffer
	if err := countOnce(context.Background(), a, &buf); err != nil {
		t.Fatalf("countOnce() error = %v", err)
	}

	// The first tick may land before the subscription; the tail is fixed.
	got := strings.Join(strings.Fields(buf.String()), " ")
	if !strings.HasSuffix(got, "00:01 00:00") {
		t.Errorf("printed %q, want it to end with 00:01 00:00", got)
	}
}

func TestCountOnceCancelled(t *testing.T) {
	a, err := app.New(app.Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	if err := countOnce(ctx, a, &buf); err != context.Canceled {
		t.Errorf("countOnce() error = %v, want context.Canceled", err)
	}
	if a.Countdown.Active() != 0 {
		t.Error("run still active after cancellation")
	}
	if a.Countdown.Remaining() != 60 {
		t.Errorf("Remaining() = %d, want 60", a.Countdown.Remaining())
	}
}
