// Package http provides the monitor stream transport
package http

import (
	"context"
	stdhttp "net/http"

	"sentinel/internal/core/aml"
	"sentinel/internal/core/events"
	"sentinel/internal/modkit/httpkit"
	perr "sentinel/internal/platform/errors"
	"sentinel/internal/platform/logger"
	phttp "sentinel/internal/platform/net/http"
	"sentinel/internal/platform/net/http/bind"
	"sentinel/internal/services/sentinel/domain"
	"sentinel/internal/services/sentinel/service"
)

// Lister lists transactions for a batch
type Lister interface {
	List(ctx context.Context, limit int) ([]aml.Transaction, error)
}

// Handlers carries what the monitor route needs
type Handlers struct {
	Runner      *service.Runner
	Subscribers []events.Subscriber
	// Transactions backs requests without ids; CSV backs csv_demo requests
	Transactions Lister
	CSV          Lister
	DefaultLimit int
	// NewRunID overrides run id generation
	NewRunID func() string
}

// Register mounts the monitor endpoint
func Register(r httpkit.Router, h Handlers) {
	r.Post("/monitor", h.monitor)
}

// seeds resolves the request into initial run states
func (h Handlers) seeds(ctx context.Context, in domain.MonitorInput) ([]aml.SentinelState, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = h.DefaultLimit
	}
	switch {
	case len(in.TransactionIDs) > 0:
		ids := in.TransactionIDs
		if limit > 0 && len(ids) > limit {
			ids = ids[:limit]
		}
		return service.SeedIDs(ids), nil
	case in.CSVDemo:
		if h.CSV == nil {
			return nil, perr.NotConfiguredf("demo csv not configured")
		}
		txs, err := h.CSV.List(ctx, limit)
		if err != nil {
			return nil, err
		}
		return service.Seeds(txs), nil
	case h.Transactions != nil:
		txs, err := h.Transactions.List(ctx, limit)
		if err != nil {
			return nil, err
		}
		return service.Seeds(txs), nil
	}
	return nil, perr.WithField(perr.InvalidArgf("transaction_ids or csv_demo is required"), "transaction_ids")
}

// swagger:route POST /monitor Sentinel sentinelMonitor
// @Summary Score transactions one at a time and stream every stage
// @Description Each row is one run: transaction, regulatory when the score reaches the threshold, then alert. Frames are event: <type> / data: <json>
// @Tags Sentinel
// @Accept json
// @Produce text/event-stream
// @Param payload body domain.MonitorInput true "Transactions to monitor"
// @Success 200 {string} string "event stream"
// @Failure 400 {object} phttp.Envelope "bad request"
// @Failure 503 {object} phttp.Envelope "source not configured"
// @Router /monitor [post]
func (h Handlers) monitor(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	in, err := bind.ParseJSON[domain.MonitorInput](r)
	if err != nil {
		phttp.RespondError(w, r, err)
		return
	}
	ctx := r.Context()
	seeds, err := h.seeds(ctx, in)
	if err != nil {
		phttp.RespondError(w, r, err)
		return
	}

	runner := *h.Runner
	if len(in.Regulators) > 0 {
		runner.Regulators = in.Regulators
	}
	b := service.NewBatch(&runner)
	if h.NewRunID != nil {
		b.NewRunID = h.NewRunID
	}

	events.SetStreamHeaders(w)
	w.WriteHeader(stdhttp.StatusOK)
	sw := events.NewStreamWriter(w)
	ch := events.New(append(append([]events.Subscriber(nil), h.Subscribers...), sw.SSE()))

	out := b.Run(ctx, ch, seeds, nil)
	logger.C(ctx).Info().Int("rows", len(seeds)).Int("completed", len(out)).Msg("monitor stream finished")
}
