package commands

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/countdown-go/countdown/pkg/log"
)

func createTestLogFile(t *testing.T, events []log.Event) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.clog")

	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

// runEvents returns the events of a run that starts at ts from start and
// expires after counting down to zero.
func runEvents(id string, ts time.Time, start int) []log.Event {
	events := []log.Event{{
		Timestamp: ts,
		RunID:     id,
		Kind:      log.KindStart,
		Value:     start,
		Start:     &log.StartEvent{Interval: time.Second},
	}}
	for i := 1; i <= start; i++ {
		events = append(events, log.Event{
			Timestamp: ts.Add(time.Duration(i) * time.Second),
			RunID:     id,
			Kind:      log.KindTick,
			Value:     start - i,
			Tick:      i,
		})
	}
	events = append(events, log.Event{
		Timestamp: ts.Add(time.Duration(start+1) * time.Second),
		RunID:     id,
		Kind:      log.KindStop,
		Value:     0,
		Stop: &log.StopEvent{
			Reason:  "EXPIRED",
			Ticks:   start + 1,
			Elapsed: time.Duration(start+1) * time.Second,
		},
	})
	return events
}
