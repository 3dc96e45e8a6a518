package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/countdown-go/countdown/pkg/log"
)

func TestStatsCountsByKind(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	path := createTestLogFile(t, runEvents("run-1", ts, 60))

	stats, err := Collect(path)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if stats.TotalEvents != 62 {
		t.Errorf("TotalEvents = %d, want 62", stats.TotalEvents)
	}
	if stats.EventsByKind[log.KindTick] != 60 {
		t.Errorf("TICK events = %d, want 60", stats.EventsByKind[log.KindTick])
	}

	run := stats.Runs["run-1"]
	if run == nil {
		t.Fatal("run-1 not collected")
	}
	if run.Ticks != 61 || run.Reason != "EXPIRED" || run.FinalValue != 0 {
		t.Errorf("run stats = %+v", run)
	}
	if run.Elapsed != 61*time.Second {
		t.Errorf("Elapsed = %v, want 61s", run.Elapsed)
	}
	if !stats.TimeRange.End.Equal(ts.Add(61 * time.Second)) {
		t.Errorf("TimeRange.End = %v", stats.TimeRange.End)
	}
}

func TestStatsOpenAndCancelledRuns(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, RunID: "open", Kind: log.KindStart, Value: 60, Start: &log.StartEvent{Interval: time.Second}},
		{Timestamp: ts.Add(time.Second), RunID: "open", Kind: log.KindTick, Value: 59, Tick: 1},
		{Timestamp: ts.Add(time.Second), RunID: "cancel", Kind: log.KindStart, Value: 60,
			Start: &log.StartEvent{Interval: time.Second, Concurrent: 1}},
		{Timestamp: ts.Add(3 * time.Second), RunID: "cancel", Kind: log.KindStop, Value: 58,
			Stop: &log.StopEvent{Reason: "CANCELLED", Ticks: 2, Elapsed: 2 * time.Second}},
		{Timestamp: ts.Add(4 * time.Second), Kind: log.KindSet, Value: 10},
		{Timestamp: ts.Add(5 * time.Second), Kind: log.KindError, Error: &log.ErrorEventData{Message: "x"}},
	}
	path := createTestLogFile(t, events)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"Total Events: 6",
		"Runs: 2 (expired 0, cancelled 1, open 1)",
		"Overlapping starts: 1",
		"[open] 1 ticks, running",
		"[cancel] 2 ticks, CANCELLED at 58 after 2s",
		"External sets: 1",
		"Errors: 1",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q\n%s", want, output)
		}
	}
}

func TestStatsEmptyFile(t *testing.T) {
	path := createTestLogFile(t, nil)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}

	if !strings.Contains(buf.String(), "Total Events: 0") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "Time Range") {
		t.Error("empty file should not print a time range")
	}
}
