// Package api implements the countdown-web REST and SSE endpoints.
package api

import (
	"time"

	"github.com/countdown-go/countdown/pkg/history"
)

// StatusResponse is the response for GET /api/v1/status.
type StatusResponse struct {
	Value      int       `json:"value"`
	Display    string    `json:"display"`
	StartValue int       `json:"start_value"`
	Interval   string    `json:"interval"`
	ActiveRuns []RunInfo `json:"active_runs"`
}

// RunInfo describes a run known to the running process.
type RunInfo struct {
	ID         string     `json:"id"`
	State      string     `json:"state"`
	Reason     string     `json:"reason,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	StoppedAt  *time.Time `json:"stopped_at,omitempty"`
	Ticks      int        `json:"ticks"`
	FinalValue *int       `json:"final_value,omitempty"`
}

// StartRequest is the optional body of POST /api/v1/runs.
type StartRequest struct {
	// Restart cancels active runs before starting.
	Restart bool `json:"restart"`
}

// StartResponse is the response for POST /api/v1/runs.
type StartResponse struct {
	Run        RunInfo `json:"run"`
	Overlapped int     `json:"overlapped"`
}

// ValueResponse is the response for the value endpoint and the payload of
// stream events.
type ValueResponse struct {
	Value   int    `json:"value"`
	Display string `json:"display"`
}

// SetRequest is the body of PUT /api/v1/value.
type SetRequest struct {
	Value *int `json:"value"`
}

// CancelResponse is the response for cancel requests.
type CancelResponse struct {
	Cancelled int `json:"cancelled"`
	Value     int `json:"value"`
}

// RunListResponse is the response for GET /api/v1/runs.
type RunListResponse struct {
	Runs  []history.Record `json:"runs"`
	Total int              `json:"total"`
}

// ErrorResponse is returned on errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
