package server

import (
	"encoding/json"
	"net/http"

	"github.com/socialstudio/studio/log"
)

// sseWriter frames JSON payloads for the event stream: one JSON document
// followed by a blank line, flushed immediately. Payloads are JSON-encoded
// so embedded newlines cannot break the framing.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func newSSEWriter(w http.ResponseWriter) *sseWriter {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	// Disable proxy buffering so chunks reach the client as they happen.
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, _ := w.(http.Flusher)
	return &sseWriter{w: w, flusher: flusher}
}

// send writes one frame. Write errors mean the client went away; they are
// logged and swallowed, the stream loop notices via context cancellation.
func (s *sseWriter) send(payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("sse: marshal frame: %v", err)
		return
	}
	if _, err := s.w.Write(append(data, '\n', '\n')); err != nil {
		log.Debugf("sse: client write failed: %v", err)
		return
	}
	if s.flusher != nil {
		s.flusher.Flush()
	}
}
