// Package commands implements the countdown-log CLI commands.
package commands

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/countdown-go/countdown/pkg/log"
)

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	RunID string
	Kind  *log.Kind
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [run:id] KIND value
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	runID := shortenRunID(event.RunID)
	if runID == "" {
		runID = "-"
	}

	fmt.Fprintf(w, "%s [run:%s] %-6s %s\n", ts, runID, event.Kind.String(), formatValue(event.Value))

	// Kind-specific details
	switch {
	case event.Kind == log.KindTick:
		fmt.Fprintf(w, "  Tick: %d\n", event.Tick)
	case event.Start != nil:
		fmt.Fprintf(w, "  Interval: %s\n", formatDuration(event.Start.Interval))
		if event.Start.Concurrent > 0 {
			fmt.Fprintf(w, "  Overlaps: %d running\n", event.Start.Concurrent)
		}
	case event.Stop != nil:
		fmt.Fprintf(w, "  Reason: %s\n", event.Stop.Reason)
		fmt.Fprintf(w, "  Ticks: %d\n", event.Stop.Ticks)
		fmt.Fprintf(w, "  Elapsed: %s\n", formatDuration(event.Stop.Elapsed))
	case event.Error != nil:
		fmt.Fprintf(w, "  Message: %s\n", event.Error.Message)
		if event.Error.Context != "" {
			fmt.Fprintf(w, "  Context: %s\n", event.Error.Context)
		}
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenRunID returns the first 8 characters of the run ID.
func shortenRunID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

// formatValue renders seconds remaining as mm:ss next to the raw value.
func formatValue(v int) string {
	if v < 0 {
		return fmt.Sprintf("%d", v)
	}
	return fmt.Sprintf("%d (%02d:%02d)", v, v/60, v%60)
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// ParseKindFlag parses a kind string from command-line flag (case-insensitive).
func ParseKindFlag(s string) (log.Kind, error) {
	return parseKind(s)
}

// parseKind parses a kind string (case-insensitive).
func parseKind(s string) (log.Kind, error) {
	return log.ParseKind(s)
}

// RunView executes the view command.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, log.Filter{
		RunID: filter.RunID,
		Kind:  filter.Kind,
	})
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		formatEvent(output, event)
	}

	return nil
}
