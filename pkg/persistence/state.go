package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/countdown-go/countdown/pkg/countdown"
)

// StateVersion is the current version of the state file format.
const StateVersion = 1

// ErrUnsupportedVersion is returned by Load for state files written by a
// newer format version.
var ErrUnsupportedVersion = errors.New("unsupported state file version")

// CountdownState contains the runtime state of a countdown.
type CountdownState struct {
	// Version is the state file format version.
	Version int `json:"version"`

	// SavedAt is when the state was last saved.
	SavedAt time.Time `json:"saved_at"`

	// Value is the countdown value when saved.
	Value int `json:"value"`

	// Running reports whether at least one run was active.
	Running bool `json:"running"`

	// Start is the configured reset value.
	Start int `json:"start,omitempty"`

	// Interval is the configured tick interval.
	Interval time.Duration `json:"interval,omitempty"`

	// Runs contains snapshots of the active runs.
	Runs []RunSnapshot `json:"runs,omitempty"`
}

// RunSnapshot captures an active run for persistence.
type RunSnapshot struct {
	// ID is the run identifier.
	ID string `json:"id"`

	// StartedAt is when the run was started.
	StartedAt time.Time `json:"started_at"`

	// Ticks is how many ticks the run had processed.
	Ticks int `json:"ticks"`
}

// Capture takes a snapshot of c.
func Capture(c *countdown.Countdown) *CountdownState {
	state := &CountdownState{
		Value:    c.Remaining(),
		Start:    c.StartValue(),
		Interval: c.Interval(),
	}
	for _, r := range c.Runs() {
		if r.State() != countdown.StateRunning {
			continue
		}
		state.Runs = append(state.Runs, RunSnapshot{
			ID:        r.ID(),
			StartedAt: r.StartedAt(),
			Ticks:     r.Ticks(),
		})
	}
	state.Running = len(state.Runs) > 0
	return state
}

// Restore sets the value of c to the saved value.
// Runs are not resumed; a saved running countdown is left paused.
func Restore(c *countdown.Countdown, state *CountdownState) {
	if state == nil {
		return
	}
	c.Set(state.Value)
}

// StateStore manages persistence of countdown state to a JSON file.
type StateStore struct {
	mu   sync.Mutex
	path string
}

// NewStateStore creates a new state store.
func NewStateStore(path string) *StateStore {
	return &StateStore{path: path}
}

// Path returns the state file path.
func (s *StateStore) Path() string {
	return s.path
}

// Save persists the state to disk.
// The file is replaced atomically.
func (s *StateStore) Save(state *CountdownState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Ensure parent directory exists
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	state.Version = StateVersion
	if state.SavedAt.IsZero() {
		state.SavedAt = time.Now()
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Load reads the state from disk.
// Returns nil, nil if the file doesn't exist (empty state).
func (s *StateStore) Load() (*CountdownState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	state := &CountdownState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	if state.Version > StateVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, state.Version)
	}

	return state, nil
}

// Clear removes the state file.
func (s *StateStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
