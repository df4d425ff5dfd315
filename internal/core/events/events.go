// Package events is the typed event channel every pipeline stage reports through.
// A Channel fans one ordered stream of events out to subscribers (stream
// transports, the durable run log, archives, metrics). Subscriber failures are
// logged and swallowed so observers never break a run
package events

import (
	"context"
	"sync"
	"time"

	"sentinel/internal/platform/logger"
)

// Type is the lifecycle kind of an event
type Type string

// event types
const (
	NodeStart Type = "on_node_start"
	NodeEnd   Type = "on_node_end"
	ToolCall  Type = "on_tool_call"
	Artifact  Type = "on_artifact"
	Error     Type = "on_error"
)

// Valid reports whether t is a known event type
func (t Type) Valid() bool {
	switch t {
	case NodeStart, NodeEnd, ToolCall, Artifact, Error:
		return true
	}
	return false
}

// Event is one observation of a running graph
type Event struct {
	Type  Type      `json:"event"`
	RunID string    `json:"run_id"`
	Graph string    `json:"graph"`
	Node  string    `json:"node,omitempty"`
	TS    time.Time `json:"ts"`
	Data  any       `json:"data,omitempty"`
}

// Subscriber receives events in emission order
type Subscriber interface {
	Publish(ctx context.Context, ev Event) error
}

// SubscriberFunc adapts a function to Subscriber
type SubscriberFunc func(ctx context.Context, ev Event) error

// Publish implements Subscriber
func (f SubscriberFunc) Publish(ctx context.Context, ev Event) error { return f(ctx, ev) }

// Channel fans events out to its subscribers
// Publish is serialized so subscribers observe one total order
type Channel struct {
	mu   sync.Mutex
	subs []Subscriber
	now  func() time.Time
	log  logger.Logger
}

// Option configures a Channel
type Option func(*Channel)

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) Option { return func(c *Channel) { c.now = now } }

// New builds a channel over the given subscribers
func New(subs []Subscriber, opts ...Option) *Channel {
	c := &Channel{
		subs: append([]Subscriber(nil), subs...),
		now:  func() time.Time { return time.Now().UTC() },
		log:  *logger.Named("events"),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Subscribe appends a subscriber
func (c *Channel) Subscribe(s Subscriber) {
	if c == nil || s == nil {
		return
	}
	c.mu.Lock()
	c.subs = append(c.subs, s)
	c.mu.Unlock()
}

// Publish stamps and delivers ev to every subscriber in order
func (c *Channel) Publish(ctx context.Context, ev Event) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if ev.TS.IsZero() {
		ev.TS = c.now()
	}
	for _, s := range c.subs {
		if err := s.Publish(ctx, ev); err != nil {
			c.log.Warn().Err(err).
				Str("run_id", ev.RunID).
				Str("graph", ev.Graph).
				Str("node", ev.Node).
				Str("type", string(ev.Type)).
				Msg("event subscriber failed")
		}
	}
}

// Emitter binds a channel to one run and graph
func (c *Channel) Emitter(runID, graph string) Emitter {
	return Emitter{ch: c, runID: runID, graph: graph}
}

// Emitter is the stage facing side of a Channel
// the zero value drops everything
type Emitter struct {
	ch    *Channel
	runID string
	graph string
}

// RunID returns the bound run id
func (e Emitter) RunID() string { return e.runID }

// Graph returns the bound graph name
func (e Emitter) Graph() string { return e.graph }

// Sub returns an emitter for a nested graph of the same run
func (e Emitter) Sub(graph string) Emitter { return Emitter{ch: e.ch, runID: e.runID, graph: graph} }

func (e Emitter) emit(ctx context.Context, t Type, node string, data any) {
	e.ch.Publish(ctx, Event{Type: t, RunID: e.runID, Graph: e.graph, Node: node, Data: data})
}

// NodeStart reports a node is about to run
func (e Emitter) NodeStart(ctx context.Context, node string, data any) {
	e.emit(ctx, NodeStart, node, data)
}

// NodeEnd reports a node finished with its summary
func (e Emitter) NodeEnd(ctx context.Context, node string, data any) {
	e.emit(ctx, NodeEnd, node, data)
}

// ToolCall reports an external call made by a node
func (e Emitter) ToolCall(ctx context.Context, node, tool string, input any) {
	e.emit(ctx, ToolCall, node, map[string]any{"tool": tool, "input": input})
}

// Artifact reports a produced artifact of a given kind
func (e Emitter) Artifact(ctx context.Context, node, kind string, v any) {
	e.emit(ctx, Artifact, node, map[string]any{"kind": kind, "artifact": v})
}

// Error reports a failure that the node degraded around
func (e Emitter) Error(ctx context.Context, node string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	e.emit(ctx, Error, node, map[string]any{"message": msg})
}
