package history

import (
	"log/slog"

	"github.com/countdown-go/countdown/pkg/countdown"
)

// Recorder writes runs to a Store from countdown hooks.
// Store errors are logged and otherwise ignored so a failing database never
// stalls a countdown.
type Recorder struct {
	store  *Store
	logger *slog.Logger
}

// NewRecorder creates a recorder writing to store. logger may be nil.
func NewRecorder(store *Store, logger *slog.Logger) *Recorder {
	return &Recorder{store: store, logger: logger}
}

// OnStart is a countdown.Config.OnStart hook.
func (r *Recorder) OnStart(run *countdown.Run) {
	err := r.store.RecordStart(run.ID(), run.StartedAt(), run.StartValue(), run.Interval())
	if err != nil {
		r.logError("record start", run.ID(), err)
	}
}

// OnTick does nothing; individual ticks are not stored.
func (r *Recorder) OnTick(*countdown.Run, int) {}

// OnStop is a countdown.Config.OnStop hook.
func (r *Recorder) OnStop(run *countdown.Run, reason countdown.StopReason) {
	err := r.store.RecordStop(run.ID(), run.StoppedAt(), reason.String(), run.FinalValue(), run.Ticks())
	if err != nil {
		r.logError("record stop", run.ID(), err)
	}
}

// Compile-time interface satisfaction check.
var _ countdown.Observer = (*Recorder)(nil)

func (r *Recorder) logError(op, runID string, err error) {
	if r.logger != nil {
		r.logger.Error("history: "+op+" failed", "run_id", runID, "error", err)
	}
}
