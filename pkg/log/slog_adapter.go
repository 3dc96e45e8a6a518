package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes events to an slog.Logger at Debug level.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("kind", event.Kind.String()),
		slog.Int("value", event.Value),
	}

	if event.RunID != "" {
		attrs = append(attrs, slog.String("run_id", event.RunID))
	}
	if event.Tick > 0 {
		attrs = append(attrs, slog.Int("tick", event.Tick))
	}

	switch {
	case event.Start != nil:
		attrs = append(attrs, slog.Duration("interval", event.Start.Interval))
		if event.Start.Concurrent > 0 {
			attrs = append(attrs, slog.Int("concurrent", event.Start.Concurrent))
		}
	case event.Stop != nil:
		attrs = append(attrs,
			slog.String("reason", event.Stop.Reason),
			slog.Int("ticks", event.Stop.Ticks),
			slog.Duration("elapsed", event.Stop.Elapsed),
		)
	case event.Error != nil:
		attrs = append(attrs, slog.String("error_msg", event.Error.Message))
		if event.Error.Context != "" {
			attrs = append(attrs, slog.String("error_context", event.Error.Context))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "countdown", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
