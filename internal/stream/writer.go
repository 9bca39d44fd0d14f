package stream

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Writer is the server-side counterpart of Decoder: it frames events as
// "data: <json>" records and flushes after every record so clients see
// results as soon as each agent finishes.
type Writer struct {
	w       io.Writer
	flusher http.Flusher
}

// NewWriter creates a Writer on top of an HTTP response. If w also
// implements http.Flusher each record is flushed immediately.
func NewWriter(w io.Writer) *Writer {
	sw := &Writer{w: w}
	if f, ok := w.(http.Flusher); ok {
		sw.flusher = f
	}
	return sw
}

// PrepareResponse sets the response headers for an event stream. It must
// be called before the first Send.
func PrepareResponse(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
}

// Send writes a single event record to the stream.
func (sw *Writer) Send(ev *Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal stream event: %w", err)
	}

	if _, err := fmt.Fprintf(sw.w, "%s%s\n\n", dataPrefix, payload); err != nil {
		return fmt.Errorf("failed to write stream event: %w", err)
	}

	if sw.flusher != nil {
		sw.flusher.Flush()
	}
	return nil
}
