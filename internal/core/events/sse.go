package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"
)

// ErrClosed is returned by stream writers once the peer went away
var ErrClosed = errors.New("events: stream closed")

// payload is the json body of one wire event; the type travels on the event line
type payload struct {
	RunID string    `json:"run_id"`
	Graph string    `json:"graph"`
	Node  string    `json:"node,omitempty"`
	TS    time.Time `json:"ts"`
	Data  any       `json:"data,omitempty"`
}

// MarshalSSE encodes ev as "event: <type>\ndata: <json>\n\n"
func MarshalSSE(ev Event) ([]byte, error) {
	body, err := json.Marshal(payload{RunID: ev.RunID, Graph: ev.Graph, Node: ev.Node, TS: ev.TS, Data: ev.Data})
	if err != nil {
		return nil, err
	}
	var b bytes.Buffer
	b.Grow(len(body) + len(ev.Type) + 17)
	b.WriteString("event: ")
	b.WriteString(string(ev.Type))
	b.WriteString("\ndata: ")
	b.Write(body)
	b.WriteString("\n\n")
	return b.Bytes(), nil
}

// UIPart names a part of the ui stream framing
type UIPart string

// ui stream parts
const (
	PartStatus UIPart = "data-status"
	PartEvent  UIPart = "data-event"
	PartFinal  UIPart = "data-final"
	PartError  UIPart = "data-error"
)

// MarshalUIPart encodes one ui stream frame: data: {"type":<part>,"data":<v>}
func MarshalUIPart(part UIPart, v any) ([]byte, error) {
	body, err := json.Marshal(struct {
		Type UIPart `json:"type"`
		Data any    `json:"data,omitempty"`
	}{Type: part, Data: v})
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(body)+8)
	out = append(out, "data: "...)
	out = append(out, body...)
	return append(out, '\n', '\n'), nil
}

// UIDone is the ui stream terminator
var UIDone = []byte("data: [DONE]\n\n")

// StreamWriter writes frames to a client connection and flushes after each
// once a write fails or the request context ends, later frames are dropped
type StreamWriter struct {
	mu     sync.Mutex
	w      io.Writer
	flush  func()
	closed bool
}

// NewStreamWriter wraps w, flushing through http.Flusher when available
func NewStreamWriter(w io.Writer) *StreamWriter {
	sw := &StreamWriter{w: w, flush: func() {}}
	if f, ok := w.(http.Flusher); ok {
		sw.flush = f.Flush
	}
	return sw
}

// Closed reports whether the stream stopped accepting frames
func (s *StreamWriter) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// WriteFrame writes raw frame bytes
func (s *StreamWriter) WriteFrame(ctx context.Context, frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if ctx.Err() != nil {
		s.closed = true
		return ErrClosed
	}
	if _, err := s.w.Write(frame); err != nil {
		s.closed = true
		return errors.Join(ErrClosed, err)
	}
	s.flush()
	return nil
}

// SSE returns a subscriber writing the event wire format
func (s *StreamWriter) SSE() Subscriber {
	return SubscriberFunc(func(ctx context.Context, ev Event) error {
		frame, err := MarshalSSE(ev)
		if err != nil {
			return err
		}
		if err := s.WriteFrame(ctx, frame); err != nil && !errors.Is(err, ErrClosed) {
			return err
		}
		return nil
	})
}

// UI returns a subscriber writing each event as a data-event frame
func (s *StreamWriter) UI() Subscriber {
	return SubscriberFunc(func(ctx context.Context, ev Event) error {
		return s.Part(ctx, PartEvent, ev)
	})
}

// Part writes one ui stream frame
func (s *StreamWriter) Part(ctx context.Context, part UIPart, v any) error {
	frame, err := MarshalUIPart(part, v)
	if err != nil {
		return err
	}
	if err := s.WriteFrame(ctx, frame); err != nil && !errors.Is(err, ErrClosed) {
		return err
	}
	return nil
}

// Buffer collects events in memory for buffered responses
type Buffer struct {
	mu  sync.Mutex
	evs []Event
}

// Publish implements Subscriber
func (b *Buffer) Publish(_ context.Context, ev Event) error {
	b.mu.Lock()
	b.evs = append(b.evs, ev)
	b.mu.Unlock()
	return nil
}

// Events returns a copy of what was collected
func (b *Buffer) Events() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Event(nil), b.evs...)
}

// SetStreamHeaders prepares a response for an event stream
func SetStreamHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
}
