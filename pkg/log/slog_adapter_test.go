package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"
)

func logJSON(t *testing.T, event Event) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	NewSlogAdapter(slog.New(handler)).Log(event)

	if buf.Len() == 0 {
		t.Fatal("no output produced")
	}
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	return entry
}

func TestSlogAdapterLogsTick(t *testing.T) {
	entry := logJSON(t, Event{
		Timestamp: time.Now(),
		RunID:     "run-123",
		Kind:      KindTick,
		Value:     41,
		Tick:      19,
	})

	if entry["msg"] != "countdown" {
		t.Errorf("msg: got %v, want %q", entry["msg"], "countdown")
	}
	if entry["kind"] != "TICK" {
		t.Errorf("kind: got %v, want %q", entry["kind"], "TICK")
	}
	if entry["run_id"] != "run-123" {
		t.Errorf("run_id: got %v, want %q", entry["run_id"], "run-123")
	}
	if entry["value"] != float64(41) {
		t.Errorf("value: got %v, want 41", entry["value"])
	}
	if entry["tick"] != float64(19) {
		t.Errorf("tick: got %v, want 19", entry["tick"])
	}
}

func TestSlogAdapterLogsStop(t *testing.T) {
	entry := logJSON(t, Event{
		Timestamp: time.Now(),
		RunID:     "run-1",
		Kind:      KindStop,
		Stop:      &StopEvent{Reason: "EXPIRED", Ticks: 61, Elapsed: 61 * time.Second},
	})

	if entry["reason"] != "EXPIRED" {
		t.Errorf("reason: got %v, want %q", entry["reason"], "EXPIRED")
	}
	if entry["ticks"] != float64(61) {
		t.Errorf("ticks: got %v, want 61", entry["ticks"])
	}
}

func TestSlogAdapterLogsError(t *testing.T) {
	entry := logJSON(t, Event{
		Kind:  KindError,
		Error: &ErrorEventData{Message: "disk full", Context: "save state"},
	})

	if entry["error_msg"] != "disk full" {
		t.Errorf("error_msg: got %v, want %q", entry["error_msg"], "disk full")
	}
	if entry["error_context"] != "save state" {
		t.Errorf("error_context: got %v, want %q", entry["error_context"], "save state")
	}
	if _, ok := entry["run_id"]; ok {
		t.Error("run_id present for event without run")
	}
}

func TestSlogAdapterRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	NewSlogAdapter(slog.New(handler)).Log(Event{Kind: KindTick})

	if buf.Len() != 0 {
		t.Errorf("debug event written at info level: %s", buf.String())
	}
}
