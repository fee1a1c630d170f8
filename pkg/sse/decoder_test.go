package sse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const tokenThenDone = "event: token\ndata: {\"content\":\"Hi\"}\n\nevent: done\ndata: {}\n\n"

func feedAll(d *Decoder, chunks [][]byte) []Event {
	var out []Event
	for _, c := range chunks {
		out = append(out, d.Feed(c)...)
	}
	return out
}

func TestDecoder_WholeInput(t *testing.T) {
	events := NewDecoder().Feed([]byte(tokenThenDone))

	require.Len(t, events, 2)
	assert.Equal(t, Event{Name: "token", Data: `{"content":"Hi"}`}, events[0])
	assert.Equal(t, Event{Name: "done", Data: "{}"}, events[1])
}

func TestDecoder_OneByteAtATime(t *testing.T) {
	d := NewDecoder()
	var events []Event
	for i := 0; i < len(tokenThenDone); i++ {
		events = append(events, d.Feed([]byte{tokenThenDone[i]})...)
		// A complete frame is never left in the buffer.
		assert.NotContains(t, string(d.buf), "\n\n")
	}

	require.Len(t, events, 2)
	assert.Equal(t, "token", events[0].Name)
	assert.Equal(t, "done", events[1].Name)
	assert.Zero(t, d.Buffered())
}

func TestDecoder_SplitInsideDelimiter(t *testing.T) {
	d := NewDecoder()

	assert.Empty(t, d.Feed([]byte("event: token\ndata: {}\n")))
	events := d.Feed([]byte("\nevent: done\r\ndata: {}\r\n\r"))
	require.Len(t, events, 1)
	assert.Equal(t, "token", events[0].Name)

	events = d.Feed([]byte("\n"))
	require.Len(t, events, 1)
	assert.Equal(t, Event{Name: "done", Data: "{}"}, events[0])
}

func TestDecoder_PartialFrameStaysBuffered(t *testing.T) {
	d := NewDecoder()
	assert.Empty(t, d.Feed([]byte("event: token\ndata: {\"con")))
	assert.Equal(t, len("event: token\ndata: {\"con"), d.Buffered())

	d.Reset()
	assert.Zero(t, d.Buffered())
}

// Every chunking of the same input decodes to the same events.
func TestDecoder_SplitInvariance(t *testing.T) {
	input := []byte(tokenThenDone + "event: token\ndata: line one\ndata: line two\r\n\r\n")
	want := NewDecoder().Feed(input)
	require.Len(t, want, 3)

	rapid.Check(t, func(rt *rapid.T) {
		cuts := rapid.SliceOfDistinct(rapid.IntRange(1, len(input)-1), rapid.ID[int]).Draw(rt, "cuts")

		var chunks [][]byte
		prev := 0
		for i := 1; i < len(input); i++ {
			for _, c := range cuts {
				if c == i {
					chunks = append(chunks, input[prev:i])
					prev = i
				}
			}
		}
		chunks = append(chunks, input[prev:])

		got := feedAll(NewDecoder(), chunks)
		if len(got) != len(want) {
			rt.Fatalf("got %d events, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				rt.Fatalf("event %d = %+v, want %+v", i, got[i], want[i])
			}
		}
	})
}

func TestParseFrame(t *testing.T) {
	tests := []struct {
		name  string
		frame string
		want  Event
	}{
		{
			name:  "named event",
			frame: "event: error\ndata: {\"error\":\"boom\"}",
			want:  Event{Name: "error", Data: `{"error":"boom"}`},
		},
		{
			name:  "default name",
			frame: "data: hello",
			want:  Event{Name: DefaultEventName, Data: "hello"},
		},
		{
			name:  "multi-line data joined with newline",
			frame: "event: token\ndata: a\ndata: b\ndata: c",
			want:  Event{Name: "token", Data: "a\nb\nc"},
		},
		{
			name:  "values trimmed and no space after colon",
			frame: "event:done\ndata:   {}  ",
			want:  Event{Name: "done", Data: "{}"},
		},
		{
			name:  "comments and unknown fields ignored",
			frame: ": keepalive\nid: 7\nretry: 100\nevent: token\ndata: x",
			want:  Event{Name: "token", Data: "x"},
		},
		{
			name:  "crlf line endings",
			frame: "event: token\r\ndata: x",
			want:  Event{Name: "token", Data: "x"},
		},
		{
			name:  "no data",
			frame: "event: ping",
			want:  Event{Name: "ping", Data: ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseFrame([]byte(tt.frame)))
		})
	}
}

func TestFormat_RoundTripsThroughDecoder(t *testing.T) {
	frame := Format("chat-stream-chunk", "first\nsecond")
	assert.True(t, strings.HasSuffix(string(frame), "\n\n"))

	events := NewDecoder().Feed(frame)
	require.Len(t, events, 1)
	assert.Equal(t, Event{Name: "chat-stream-chunk", Data: "first\nsecond"}, events[0])
}
