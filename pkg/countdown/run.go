package countdown

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/countdown-go/countdown/pkg/clock"
)

// State is the state of a single run.
type State uint8

const (
	// StateRunning indicates ticks are still scheduled.
	StateRunning State = iota

	// StateStopped indicates the run ended. It is terminal.
	StateStopped
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "RUNNING"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// StopReason explains why a run stopped.
type StopReason uint8

const (
	// ReasonNone is reported while the run is still running.
	ReasonNone StopReason = iota

	// ReasonExpired indicates a tick found the value at zero.
	ReasonExpired

	// ReasonCancelled indicates the run's CancelFunc was invoked.
	ReasonCancelled
)

// String returns a human-readable reason name.
func (r StopReason) String() string {
	switch r {
	case ReasonNone:
		return "NONE"
	case ReasonExpired:
		return "EXPIRED"
	case ReasonCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// Run is one started countdown.
type Run struct {
	id        string
	cd        *Countdown
	startedAt time.Time

	mu        sync.Mutex
	started   bool // start reported; stop may be reported
	state     State
	reason    StopReason
	ticks     int
	final     int
	stoppedAt time.Time
	timer     clock.Timer
	done      chan struct{}
}

func newRun(c *Countdown) *Run {
	return &Run{
		id:        uuid.NewString(),
		cd:        c,
		startedAt: c.clock.Now(),
		state:     StateRunning,
		done:      make(chan struct{}),
	}
}

// ID returns the run's unique identifier.
func (r *Run) ID() string {
	return r.id
}

// StartedAt returns when the run was started.
func (r *Run) StartedAt() time.Time {
	return r.startedAt
}

// StartValue returns the value the run reset the countdown to.
func (r *Run) StartValue() int {
	return r.cd.start
}

// Interval returns the run's tick interval.
func (r *Run) Interval() time.Duration {
	return r.cd.interval
}

// FinalValue returns the countdown value observed when the run stopped.
// It is zero while the run is running.
func (r *Run) FinalValue() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.final
}

// StoppedAt returns when the run stopped, or the zero time while running.
func (r *Run) StoppedAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stoppedAt
}

// State returns the current run state.
func (r *Run) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Reason returns why the run stopped, or ReasonNone while running.
func (r *Run) Reason() StopReason {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reason
}

// Ticks returns the number of ticks processed so far.
func (r *Run) Ticks() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ticks
}

// Done returns a channel closed once the run has stopped and its stop has
// been reported.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Cancel stops the run. No tick is applied after Cancel returns.
// Calling Cancel on a stopped run has no effect.
func (r *Run) Cancel() {
	r.mu.Lock()
	if r.state != StateRunning {
		r.mu.Unlock()
		return
	}
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.stopLocked(ReasonCancelled)
	ticks := r.ticks
	started := r.started
	r.mu.Unlock()

	// StartRun reports the stop once it has reported the start.
	if !started {
		return
	}

	// A tick that already passed its state check finishes storing its
	// value while holding the store lock; Get waits for it.
	value := r.cd.value.Get()

	r.cd.finish(r, ReasonCancelled, value, ticks)
}

// tick runs on the clock's callback goroutine.
func (r *Run) tick() {
	var (
		applied bool
		expired bool
		stored  bool
		value   int
		n       int
	)

	// The run lock is taken inside the store lock so that the state check
	// and the store write are atomic with respect to Cancel.
	r.cd.value.UpdateIf(func(v int) (int, bool) {
		r.mu.Lock()
		defer r.mu.Unlock()

		if r.state != StateRunning {
			return v, false
		}
		applied = true
		r.timer = nil
		r.ticks++
		n = r.ticks

		if v > 0 {
			value, stored = v-1, true
			return value, true
		}

		expired = true
		r.stopLocked(ReasonExpired)
		value, stored = 0, v != 0
		return 0, stored
	})

	if !applied {
		return
	}
	if stored {
		r.cd.ticked(r, value, n)
	}
	if expired {
		r.cd.finish(r, ReasonExpired, value, n)
		return
	}

	r.mu.Lock()
	if r.state == StateRunning {
		r.scheduleLocked()
	}
	r.mu.Unlock()
}

// scheduleLocked arms the timer for the next tick. Tick n is due at
// startedAt + n*interval. Caller must hold r.mu.
func (r *Run) scheduleLocked() {
	due := r.startedAt.Add(time.Duration(r.ticks+1) * r.cd.interval)
	delay := due.Sub(r.cd.clock.Now())
	if delay < 0 {
		delay = 0
	}
	r.timer = r.cd.clock.AfterFunc(delay, r.tick)
}

// stopLocked moves the run to StateStopped. Caller must hold r.mu.
func (r *Run) stopLocked(reason StopReason) {
	r.state = StateStopped
	r.reason = reason
	r.stoppedAt = r.cd.clock.Now()
}
