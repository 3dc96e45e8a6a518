// Package countdown implements a restartable seconds countdown on top of an
// observable store.
//
// # Value
//
// The countdown value is a store.Value[int] holding the seconds remaining.
// TimeLeft is the process-wide instance, created with the value 60.
//
// # Runs
//
// Start resets the value to the configured start (60 by default) and
// schedules a tick every interval, measured from the call. Each tick
// decrements a positive value by one. A tick that finds the value already at
// zero (or below) leaves it at zero and stops the run, so a run from 60
// processes exactly 61 ticks.
//
// Start returns a CancelFunc. Cancelling stops further ticks immediately and
// leaves the value untouched. It is idempotent and safe after the run has
// expired.
//
// # Overlapping Runs
//
// Starting a new run does NOT cancel earlier runs. Each active run keeps
// decrementing the shared value. Callers wanting a single countdown must
// cancel the previous run first, or use Restart.
//
// # Timing
//
// Ticks are scheduled on a clock.Clock with one-shot timers. Tick n of a run
// is due at start + n*interval; a late tick does not shift later ones.
// Within a run ticks never overlap.
package countdown
