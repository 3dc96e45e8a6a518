package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/countdown-go/countdown/internal/app"
	"github.com/countdown-go/countdown/pkg/countdown"
	"github.com/countdown-go/countdown/pkg/history"
)

// CountdownAPI handles countdown endpoints.
type CountdownAPI struct {
	app *app.App
}

// NewCountdownAPI creates a new countdown API handler.
func NewCountdownAPI(a *app.App) *CountdownAPI {
	return &CountdownAPI{app: a}
}

// HandleStatus handles GET /api/v1/status.
func (c *CountdownAPI) HandleStatus(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cd := c.app.Countdown
	v := cd.Remaining()
	resp := StatusResponse{
		Value:      v,
		Display:    app.FormatClock(v),
		StartValue: cd.StartValue(),
		Interval:   cd.Interval().String(),
		ActiveRuns: []RunInfo{},
	}
	for _, r := range cd.Runs() {
		resp.ActiveRuns = append(resp.ActiveRuns, runInfo(r))
	}

	writeJSONResponse(w, http.StatusOK, resp)
}

// HandleValue handles GET and PUT /api/v1/value.
func (c *CountdownAPI) HandleValue(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		v := c.app.Countdown.Remaining()
		writeJSONResponse(w, http.StatusOK, ValueResponse{Value: v, Display: app.FormatClock(v)})

	case http.MethodPut:
		var setReq SetRequest
		if err := json.NewDecoder(req.Body).Decode(&setReq); err != nil {
			writeJSONError(w, http.StatusBadRequest, "Invalid request body", err.Error())
			return
		}
		if setReq.Value == nil {
			writeJSONError(w, http.StatusBadRequest, "Value is required", "")
			return
		}

		c.app.Countdown.Set(*setReq.Value)
		writeJSONResponse(w, http.StatusOK, ValueResponse{Value: *setReq.Value, Display: app.FormatClock(*setReq.Value)})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleRuns handles GET, POST and DELETE /api/v1/runs.
func (c *CountdownAPI) HandleRuns(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		c.handleListRuns(w, req)
	case http.MethodPost:
		c.handleStartRun(w, req)
	case http.MethodDelete:
		c.handleCancelAll(w, req)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleRunByID handles GET /api/v1/runs/:id and POST /api/v1/runs/:id/cancel.
func (c *CountdownAPI) HandleRunByID(w http.ResponseWriter, req *http.Request) {
	// Extract ID from path: /api/v1/runs/{id} or /api/v1/runs/{id}/cancel
	path := strings.TrimPrefix(req.URL.Path, "/api/v1/runs/")

	if strings.HasSuffix(path, "/cancel") {
		if req.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		c.handleCancelRun(w, req, strings.TrimSuffix(path, "/cancel"))
		return
	}

	if req.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	c.handleGetRun(w, req, path)
}

// handleListRuns handles GET /api/v1/runs.
func (c *CountdownAPI) handleListRuns(w http.ResponseWriter, req *http.Request) {
	if c.app.History == nil {
		writeJSONError(w, http.StatusNotFound, "History is disabled", "")
		return
	}

	limit := history.DefaultListLimit
	if s := req.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeJSONError(w, http.StatusBadRequest, "Invalid limit", s)
			return
		}
		limit = n
	}

	runs, err := c.app.History.List(limit)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Failed to list runs", err.Error())
		return
	}
	if runs == nil {
		runs = []history.Record{}
	}

	writeJSONResponse(w, http.StatusOK, RunListResponse{Runs: runs, Total: len(runs)})
}

// handleStartRun handles POST /api/v1/runs.
func (c *CountdownAPI) handleStartRun(w http.ResponseWriter, req *http.Request) {
	var startReq StartRequest
	if err := json.NewDecoder(req.Body).Decode(&startReq); err != nil && !errors.Is(err, io.EOF) {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	cd := c.app.Countdown
	var run *countdown.Run
	overlapped := 0
	if startReq.Restart {
		run = cd.Restart()
	} else {
		overlapped = cd.Active()
		run = cd.StartRun()
	}

	writeJSONResponse(w, http.StatusCreated, StartResponse{Run: runInfo(run), Overlapped: overlapped})
}

// handleCancelAll handles DELETE /api/v1/runs.
func (c *CountdownAPI) handleCancelAll(w http.ResponseWriter, _ *http.Request) {
	cd := c.app.Countdown
	n := cd.Active()
	cd.CancelAll()
	writeJSONResponse(w, http.StatusOK, CancelResponse{Cancelled: n, Value: cd.Remaining()})
}

// handleGetRun handles GET /api/v1/runs/:id.
func (c *CountdownAPI) handleGetRun(w http.ResponseWriter, _ *http.Request, id string) {
	if r := c.app.Countdown.Run(id); r != nil {
		writeJSONResponse(w, http.StatusOK, runInfo(r))
		return
	}

	if c.app.History == nil {
		writeJSONError(w, http.StatusNotFound, "Run not found", id)
		return
	}

	rec, err := c.app.History.Get(id)
	if errors.Is(err, history.ErrRunNotFound) {
		writeJSONError(w, http.StatusNotFound, "Run not found", id)
		return
	}
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Failed to get run", err.Error())
		return
	}

	writeJSONResponse(w, http.StatusOK, recordInfo(rec))
}

// handleCancelRun handles POST /api/v1/runs/:id/cancel.
// Cancelling a run that already stopped is not an error.
func (c *CountdownAPI) handleCancelRun(w http.ResponseWriter, _ *http.Request, id string) {
	cd := c.app.Countdown
	r := cd.Run(id)
	if r == nil {
		if c.app.History != nil {
			if _, err := c.app.History.Get(id); err == nil {
				writeJSONResponse(w, http.StatusOK, CancelResponse{Cancelled: 0, Value: cd.Remaining()})
				return
			}
		}
		writeJSONError(w, http.StatusNotFound, "Run not found", id)
		return
	}

	writeJSONResponse(w, http.StatusOK, CancelResponse{Cancelled: cancelRun(r), Value: cd.Remaining()})
}

// cancelRun cancels r and returns 1 if it ended cancelled, or 0 if it had
// already expired.
func cancelRun(r *countdown.Run) int {
	r.Cancel()
	if r.Reason() == countdown.ReasonCancelled {
		return 1
	}
	return 0
}

func runInfo(r *countdown.Run) RunInfo {
	info := RunInfo{
		ID:        r.ID(),
		State:     r.State().String(),
		StartedAt: r.StartedAt(),
		Ticks:     r.Ticks(),
	}
	if r.State() == countdown.StateStopped {
		stopped := r.StoppedAt()
		final := r.FinalValue()
		info.Reason = r.Reason().String()
		info.StoppedAt = &stopped
		info.FinalValue = &final
	}
	return info
}

func recordInfo(rec *history.Record) RunInfo {
	info := RunInfo{
		ID:        rec.ID,
		State:     countdown.StateRunning.String(),
		StartedAt: rec.StartedAt,
		Ticks:     rec.Ticks,
	}
	if !rec.Running() {
		final := rec.FinalValue
		info.State = countdown.StateStopped.String()
		info.Reason = rec.Reason
		info.StoppedAt = rec.StoppedAt
		info.FinalValue = &final
	}
	return info
}

// writeJSONResponse writes a JSON response.
func writeJSONResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeJSONError writes a JSON error response.
func writeJSONError(w http.ResponseWriter, status int, message, details string) {
	resp := ErrorResponse{
		Error:   message,
		Details: details,
	}
	writeJSONResponse(w, status, resp)
}

// formatSSE renders a server-sent event.
func formatSSE(event string, data any) string {
	payload, _ := json.Marshal(data)
	return fmt.Sprintf("event: %s\ndata: %s\n\n", event, payload)
}
