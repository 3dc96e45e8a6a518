package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/countdown-go/countdown/pkg/log"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents  int
	EventsByKind map[log.Kind]int
	Runs         map[string]*RunSummary
	Sets         int
	Errors       int
	TimeRange    struct {
		Start time.Time
		End   time.Time
	}
}

// RunSummary holds statistics for a single countdown run.
type RunSummary struct {
	StartedAt  time.Time
	LastSeen   time.Time
	Ticks      int
	Reason     string
	FinalValue int
	Elapsed    time.Duration
	Overlapped bool
}

// Stopped reports whether a stop event was seen for the run.
func (r *RunSummary) Stopped() bool {
	return r.Reason != ""
}

// Collect reads the log file and aggregates statistics.
func Collect(path string) (*Stats, error) {
	reader, err := log.NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByKind: make(map[log.Kind]int),
		Runs:         make(map[string]*RunSummary),
	}

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByKind[event.Kind]++

		// Track time range
		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		switch event.Kind {
		case log.KindSet:
			stats.Sets++
			continue
		case log.KindError:
			stats.Errors++
		}

		if event.RunID == "" {
			continue
		}

		// Track run stats
		run, ok := stats.Runs[event.RunID]
		if !ok {
			run = &RunSummary{StartedAt: event.Timestamp}
			stats.Runs[event.RunID] = run
		}
		if event.Timestamp.After(run.LastSeen) {
			run.LastSeen = event.Timestamp
		}

		switch {
		case event.Start != nil:
			run.StartedAt = event.Timestamp
			run.Overlapped = event.Start.Concurrent > 0
		case event.Kind == log.KindTick:
			run.Ticks = event.Tick
		case event.Stop != nil:
			run.Ticks = event.Stop.Ticks
			run.Reason = event.Stop.Reason
			run.Elapsed = event.Stop.Elapsed
			run.FinalValue = event.Value
		}
	}

	return stats, nil
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	stats, err := Collect(path)
	if err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Countdown Log Statistics ===")
	fmt.Fprintln(w)

	// Time range
	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	// Total events
	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	// Events by kind
	fmt.Fprintln(w, "Events by Kind:")
	for _, kind := range []log.Kind{log.KindStart, log.KindTick, log.KindStop, log.KindSet, log.KindError} {
		if count := stats.EventsByKind[kind]; count > 0 {
			fmt.Fprintf(w, "  %-8s %d\n", kind.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	// Runs
	var expired, cancelled, open, overlapped int
	for _, r := range stats.Runs {
		switch r.Reason {
		case "EXPIRED":
			expired++
		case "CANCELLED":
			cancelled++
		case "":
			open++
		}
		if r.Overlapped {
			overlapped++
		}
	}
	fmt.Fprintf(w, "Runs: %d (expired %d, cancelled %d, open %d)\n", len(stats.Runs), expired, cancelled, open)
	if overlapped > 0 {
		fmt.Fprintf(w, "Overlapping starts: %d\n", overlapped)
	}

	if len(stats.Runs) > 0 {
		// Sort by start time
		type runInfo struct {
			id    string
			stats *RunSummary
		}
		runs := make([]runInfo, 0, len(stats.Runs))
		for id, rs := range stats.Runs {
			runs = append(runs, runInfo{id, rs})
		}
		sort.Slice(runs, func(i, j int) bool {
			return runs[i].stats.StartedAt.Before(runs[j].stats.StartedAt)
		})

		fmt.Fprintln(w)
		for _, r := range runs {
			status := "running"
			if r.stats.Stopped() {
				status = fmt.Sprintf("%s at %d after %s", r.stats.Reason, r.stats.FinalValue,
					r.stats.Elapsed.Round(time.Millisecond))
			}
			fmt.Fprintf(w, "  [%s] %d ticks, %s\n", shortenRunID(r.id), r.stats.Ticks, status)
		}
	}

	if stats.Sets > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "External sets: %d\n", stats.Sets)
	}

	// Errors
	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
