package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
)

const dataPrefix = "data: "

// Decoder reads newline-delimited "data: <json>" records from a single
// network session and produces typed events in arrival order. A Decoder
// is not restartable: once the underlying reader is exhausted the
// sequence is over, and reconnection means a new Decoder.
type Decoder struct {
	r *bufio.Reader
}

// NewDecoder wraps r in a buffered line reader. Records that span a read
// boundary are buffered until the full line is available.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Next returns the next event from the stream. Blank lines are skipped
// and malformed records are logged and dropped without ending the
// stream. Next returns io.EOF when the underlying connection closes,
// regardless of whether a complete event was seen; the caller must
// treat that as an implicit completion.
func (d *Decoder) Next(ctx context.Context) (*Event, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		line, err := d.r.ReadString('\n')
		if err != nil {
			// A final record without a trailing newline is still a record.
			if ev, ok := d.decodeLine(line); ok {
				return ev, nil
			}
			if err != io.EOF {
				log.Debug().Err(err).Msg("stream read ended with error, treating as end of stream")
			}
			return nil, io.EOF
		}

		if ev, ok := d.decodeLine(line); ok {
			return ev, nil
		}
	}
}

// decodeLine parses one raw line into an event. It returns false for
// blank lines, lines without the data prefix, and malformed JSON.
func (d *Decoder) decodeLine(line string) (*Event, bool) {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return nil, false
	}

	if !strings.HasPrefix(line, dataPrefix) {
		log.Warn().Str("line", truncateForLog(line)).Msg("skipping stream record without data prefix")
		return nil, false
	}

	payload := line[len(dataPrefix):]
	var ev Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		log.Warn().Err(err).Str("payload", truncateForLog(payload)).Msg("skipping malformed stream record")
		return nil, false
	}

	// The server reports "prompt is required" style failures as a bare
	// {"error": ...} record with no type field. Normalize those to
	// top-level error events so the reducer sees a terminal transition.
	if ev.Type == "" {
		if ev.Error == "" {
			log.Warn().Str("payload", truncateForLog(payload)).Msg("skipping stream record without event type")
			return nil, false
		}
		ev.Type = EventError
	}

	return &ev, true
}

func truncateForLog(s string) string {
	const maxLen = 200
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
