// Package bus publishes pipeline events to NATS so other services can follow runs
package bus

import (
	"context"
	"encoding/json"
	"strings"

	"sentinel/internal/core/events"
	perr "sentinel/internal/platform/errors"
)

const defaultSubject = "sentinel.events"

// Publisher is the part of *nats.Conn the subscriber needs
// the connection itself is opened by platform/store
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NewSubscriber publishes each event as json on <prefix>.<graph>.<type>
func NewSubscriber(p Publisher, prefix string) events.Subscriber {
	if prefix == "" {
		prefix = defaultSubject
	}
	return events.SubscriberFunc(func(_ context.Context, ev events.Event) error {
		b, err := json.Marshal(ev)
		if err != nil {
			return perr.Wrapf(err, perr.ErrorCodeJSON, "bus encode event")
		}
		if err := p.Publish(Subject(prefix, ev), b); err != nil {
			return perr.Wrapf(err, perr.ErrorCodeUnavailable, "bus publish")
		}
		return nil
	})
}

// Subject builds the subject an event is published on
func Subject(prefix string, ev events.Event) string {
	return prefix + "." + token(ev.Graph) + "." + token(strings.TrimPrefix(string(ev.Type), "on_"))
}

// token makes s safe as a single subject token
func token(s string) string {
	if s == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\n', '\r':
			return '_'
		}
		return r
	}, s)
}
