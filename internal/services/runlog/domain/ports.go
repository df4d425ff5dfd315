// Package domain holds the run log ports
package domain

import (
	"context"
	"encoding/json"
	"time"

	"sentinel/internal/core/events"
)

// Row is one persisted event of a run
type Row struct {
	RunID string
	Graph string
	Node  string
	Type  string
	TS    time.Time
	Data  json.RawMessage
}

// WriterPort appends run log rows
type WriterPort interface {
	Append(ctx context.Context, r Row) error
}

// Ports exposed by the runlog module
type Ports struct {
	// Subscribers are the durable and fan out sinks every run channel carries
	Subscribers []events.Subscriber
}

// RowOf converts an event to a run log row
func RowOf(ev events.Event) (Row, error) {
	r := Row{RunID: ev.RunID, Graph: ev.Graph, Node: ev.Node, Type: string(ev.Type), TS: ev.TS}
	if ev.Data != nil {
		b, err := json.Marshal(ev.Data)
		if err != nil {
			return Row{}, err
		}
		r.Data = b
	}
	return r, nil
}

// Subscriber adapts a WriterPort to the event channel
func Subscriber(w WriterPort) events.Subscriber {
	return events.SubscriberFunc(func(ctx context.Context, ev events.Event) error {
		r, err := RowOf(ev)
		if err != nil {
			return err
		}
		return w.Append(ctx, r)
	})
}
