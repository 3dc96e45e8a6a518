package log

import (
	"fmt"
	"strings"
	"time"
)

// Event represents a captured countdown event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// RunID identifies the countdown run (UUID). Empty for events not tied
	// to a run, such as an external Set.
	RunID string `cbor:"2,keyasint,omitempty"`

	// Kind classifies the event.
	Kind Kind `cbor:"3,keyasint"`

	// Value is the countdown value after the event.
	Value int `cbor:"4,keyasint"`

	// Tick is the 1-based tick number within the run (tick events only).
	Tick int `cbor:"5,keyasint,omitempty"`

	// Type-specific payload (at most one of these will be set).
	Start *StartEvent     `cbor:"6,keyasint,omitempty"`
	Stop  *StopEvent      `cbor:"7,keyasint,omitempty"`
	Error *ErrorEventData `cbor:"8,keyasint,omitempty"`
}

// Kind classifies an event.
type Kind uint8

const (
	// KindStart indicates a run was started and the value reset.
	KindStart Kind = 0
	// KindTick indicates a tick fired.
	KindTick Kind = 1
	// KindStop indicates a run stopped.
	KindStop Kind = 2
	// KindSet indicates the value was set outside of a run.
	KindSet Kind = 3
	// KindError indicates an error in a component around the countdown.
	KindError Kind = 4
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindStart:
		return "START"
	case KindTick:
		return "TICK"
	case KindStop:
		return "STOP"
	case KindSet:
		return "SET"
	case KindError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k <= KindError
}

// ParseKind parses a kind name (case-insensitive).
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "start":
		return KindStart, nil
	case "tick":
		return KindTick, nil
	case "stop":
		return KindStop, nil
	case "set":
		return KindSet, nil
	case "error":
		return KindError, nil
	default:
		return 0, fmt.Errorf("invalid kind: %s (must be start, tick, stop, set, or error)", s)
	}
}

// StartEvent describes how a run was configured.
type StartEvent struct {
	// Interval between ticks, stored as nanoseconds.
	Interval time.Duration `cbor:"1,keyasint"`

	// Concurrent is the number of other runs still active when this one
	// started.
	Concurrent int `cbor:"2,keyasint,omitempty"`
}

// StopEvent describes why a run stopped.
type StopEvent struct {
	// Reason is the stop reason (EXPIRED or CANCELLED).
	Reason string `cbor:"1,keyasint"`

	// Ticks is the number of ticks the run processed.
	Ticks int `cbor:"2,keyasint"`

	// Elapsed is the time from start to stop, stored as nanoseconds.
	Elapsed time.Duration `cbor:"3,keyasint"`
}

// ErrorEventData captures errors from persistence or history sinks.
type ErrorEventData struct {
	// Message is the error message.
	Message string `cbor:"1,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"2,keyasint,omitempty"`
}
