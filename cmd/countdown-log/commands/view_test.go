package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/countdown-go/countdown/pkg/log"
)

func TestViewFormatsEvents(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 15, 32, 123456000, time.UTC)
	path := createTestLogFile(t, runEvents("abcdef0123456789", ts, 2))

	var buf bytes.Buffer
	if err := RunView(path, ViewFilter{}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}

	output := buf.String()

	for _, want := range []string{
		"2026-01-28T10:15:32.123456Z [run:abcdef01] START  2 (00:02)",
		"Interval: 1.000s",
		"TICK   1 (00:01)",
		"Tick: 2",
		"STOP   0 (00:00)",
		"Reason: EXPIRED",
		"Ticks: 3",
		"Elapsed: 3.000s",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q\n%s", want, output)
		}
	}
}

func TestViewSetWithoutRun(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	path := createTestLogFile(t, []log.Event{
		{Timestamp: ts, Kind: log.KindSet, Value: 75},
	})

	var buf bytes.Buffer
	if err := RunView(path, ViewFilter{}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}

	if !strings.Contains(buf.String(), "[run:-] SET    75 (01:15)") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestViewShowsOverlapAndErrors(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	path := createTestLogFile(t, []log.Event{
		{
			Timestamp: ts, RunID: "run-2", Kind: log.KindStart, Value: 60,
			Start: &log.StartEvent{Interval: time.Second, Concurrent: 1},
		},
		{
			Timestamp: ts, Kind: log.KindError,
			Error: &log.ErrorEventData{Message: "disk full", Context: "save state"},
		},
	})

	var buf bytes.Buffer
	if err := RunView(path, ViewFilter{}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "Overlaps: 1 running") {
		t.Errorf("expected overlap line in output:\n%s", output)
	}
	if !strings.Contains(output, "Message: disk full") || !strings.Contains(output, "Context: save state") {
		t.Errorf("expected error details in output:\n%s", output)
	}
}

func TestViewFilterByKind(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	path := createTestLogFile(t, runEvents("run-1", ts, 3))

	kind := log.KindStop
	var buf bytes.Buffer
	if err := RunView(path, ViewFilter{Kind: &kind}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}

	output := buf.String()
	if strings.Contains(output, "TICK") || strings.Contains(output, "START") {
		t.Errorf("filter by kind leaked other kinds:\n%s", output)
	}
	if strings.Count(output, "STOP") != 1 {
		t.Errorf("expected one STOP event:\n%s", output)
	}
}

func TestViewFilterByRun(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := append(runEvents("run-aaaa", ts, 1), runEvents("run-bbbb", ts, 1)...)
	path := createTestLogFile(t, events)

	var buf bytes.Buffer
	if err := RunView(path, ViewFilter{RunID: "run-bbbb"}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}

	if strings.Contains(buf.String(), "run-aaaa") {
		t.Errorf("filter by run leaked other run:\n%s", buf.String())
	}
}

func TestViewMissingFile(t *testing.T) {
	var buf bytes.Buffer
	if err := RunView("/nonexistent/test.clog", ViewFilter{}, &buf); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		input   string
		want    log.Kind
		wantErr bool
	}{
		{"start", log.KindStart, false},
		{"TICK", log.KindTick, false},
		{"Stop", log.KindStop, false},
		{"set", log.KindSet, false},
		{"error", log.KindError, false},
		{"bogus", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseKindFlag(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseKindFlag(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseKindFlag(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Nanosecond, "0.500us"},
		{1500 * time.Microsecond, "1.500ms"},
		{61 * time.Second, "61.000s"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
