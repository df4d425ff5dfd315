package events

import (
	"context"

	"sentinel/internal/platform/metrics"
)

// Metrics returns a subscriber counting events per graph, node and type
func Metrics() Subscriber {
	return SubscriberFunc(func(_ context.Context, ev Event) error {
		metrics.ObserveEvent(ev.Graph, ev.Node, string(ev.Type))
		return nil
	})
}
