package sse

import (
	"bytes"
	"strings"
)

// DefaultEventName is used for frames without an "event:" line.
const DefaultEventName = "message"

var (
	lfDelimiter   = []byte("\n\n")
	crlfDelimiter = []byte("\r\n\r\n")
)

// Event is one decoded SSE frame.
type Event struct {
	// Name is the value of the "event:" line, or DefaultEventName.
	Name string

	// Data is the reconstructed payload: every "data:" value joined by "\n".
	Data string
}

// Decoder accumulates chunks and emits complete events. The internal buffer
// only ever holds bytes that follow the last complete frame delimiter.
//
// A Decoder is not safe for concurrent use.
type Decoder struct {
	buf []byte
}

// NewDecoder returns an empty decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed appends chunk to the buffer and drains every complete frame from it.
// Events are returned in frame order. Frames that decode to an empty payload
// are still returned; callers decide whether to skip them.
func (d *Decoder) Feed(chunk []byte) []Event {
	d.buf = append(d.buf, chunk...)

	var events []Event
	for {
		end, width := nextDelimiter(d.buf)
		if end < 0 {
			break
		}
		events = append(events, ParseFrame(d.buf[:end]))
		d.buf = d.buf[end+width:]
	}

	// Release the backing array once everything is consumed.
	if len(d.buf) == 0 {
		d.buf = nil
	}
	return events
}

// Buffered reports how many bytes are waiting for a delimiter.
func (d *Decoder) Buffered() int {
	return len(d.buf)
}

// Reset drops any partial frame.
func (d *Decoder) Reset() {
	d.buf = nil
}

// nextDelimiter returns the index and width of the earliest frame delimiter,
// or -1 when the buffer holds no complete frame.
func nextDelimiter(buf []byte) (int, int) {
	lf := bytes.Index(buf, lfDelimiter)
	crlf := bytes.Index(buf, crlfDelimiter)

	switch {
	case lf < 0 && crlf < 0:
		return -1, 0
	case crlf < 0 || (lf >= 0 && lf < crlf):
		return lf, len(lfDelimiter)
	default:
		return crlf, len(crlfDelimiter)
	}
}

// ParseFrame decodes a single frame without its trailing delimiter.
// Field values are trimmed of surrounding whitespace. Comment lines and
// unknown fields are ignored.
func ParseFrame(frame []byte) Event {
	ev := Event{Name: DefaultEventName}
	var data []string

	for _, line := range strings.Split(string(frame), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimSpace(value)

		switch field {
		case "event":
			if value != "" {
				ev.Name = value
			}
		case "data":
			data = append(data, value)
		}
	}

	ev.Data = strings.Join(data, "\n")
	return ev
}
