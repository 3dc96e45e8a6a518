package api

import (
	"fmt"
	"net/http"

	"github.com/countdown-go/countdown/internal/app"
)

// streamBuffer is the number of values buffered per client. Values beyond
// it are dropped for that client.
const streamBuffer = 64

// HandleStream handles GET /api/v1/stream (Server-Sent Events).
// The first event carries the current value; each change follows.
func (c *CountdownAPI) HandleStream(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	ch := make(chan int, streamBuffer)
	unsubscribe := c.app.Countdown.Value().Subscribe(func(v int) {
		select {
		case ch <- v:
		default:
			// Client too slow, skip
		}
	})
	defer unsubscribe()

	for {
		select {
		case v := <-ch:
			fmt.Fprint(w, formatSSE("value", ValueResponse{Value: v, Display: app.FormatClock(v)}))
			flusher.Flush()

		case <-req.Context().Done():
			return
		}
	}
}
