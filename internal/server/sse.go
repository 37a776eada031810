package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SSEWriter helps write Server-Sent Events
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter creates a new SSE writer
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends an SSE event
func (s *SSEWriter) WriteEvent(event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\n", event); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", jsonData); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteError sends an error event
func (s *SSEWriter) WriteError(message string) {
	s.WriteEvent("error", map[string]string{"error": message}) //nolint:errcheck
}

// WriteComplete sends a completion event
func (s *SSEWriter) WriteComplete(tripID, status string) {
	s.WriteEvent("complete", map[string]string{ //nolint:errcheck
		"trip_id": tripID,
		"status":  status,
	})
}

// sseKeepAlive is how often a comment line is written to hold idle
// connections open through proxies.
const sseKeepAlive = 15 * time.Second

// handleGenerationEvents streams generation status snapshots over SSE.
// The stream carries the same snapshots the polling endpoint serves and
// ends with a complete event once the run reaches a terminal status.
func (s *Server) handleGenerationEvents(w http.ResponseWriter, r *http.Request) {
	tripID := r.PathValue("id")

	updates, cancel, err := s.runs.Subscribe(tripID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), "No generation job for trip")
		return
	}
	defer cancel()

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	keepAlive := time.NewTicker(sseKeepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			sse.flusher.Flush()
		case snap, ok := <-updates:
			if !ok {
				return
			}
			if err := sse.WriteEvent("status", snap); err != nil {
				return
			}
			if snap.Terminal() {
				sse.WriteComplete(tripID, string(snap.Status))
				return
			}
		}
	}
}
