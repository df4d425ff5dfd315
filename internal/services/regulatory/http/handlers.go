// Package http provides http transport for the regulatory pipeline
package http

import (
	"context"
	stdhttp "net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"sentinel/internal/core/aml"
	"sentinel/internal/core/events"
	"sentinel/internal/modkit/httpkit"
	perr "sentinel/internal/platform/errors"
	"sentinel/internal/platform/logger"
	phttp "sentinel/internal/platform/net/http"
	"sentinel/internal/platform/net/http/bind"
	"sentinel/internal/services/regulatory/domain"
)

// graph is the top level graph name of a standalone regulatory run
const graph = "regulatory"

// ScrapeInput is the body of both regulatory routes
type ScrapeInput struct {
	Regulators []string             `json:"regulators,omitempty" validate:"omitempty,max=32,dive,regulator"`
	Cursor     string               `json:"cursor,omitempty"`
	State      *aml.RegulatoryState `json:"state,omitempty"`
}

// ScrapeOutput is the buffered result of one pass
type ScrapeOutput struct {
	RunID      string              `json:"run_id"`
	Regulators []string            `json:"regulators"`
	State      aml.RegulatoryState `json:"state"`
	Events     []events.Event      `json:"events"`
}

// Handlers carries what the routes need
type Handlers struct {
	Orchestrator domain.OrchestratorPort
	Subscribers  []events.Subscriber
	Timeout      time.Duration
	// NewRunID overrides run id generation
	NewRunID func() string
}

var parseOpts = bind.JSONOptions{MaxBytes: 8 << 20, DisallowUnknown: true, AllowEmptyBody: true}

// Register mounts the regulatory endpoints on the given router
func Register(r httpkit.Router, h Handlers) {
	if h.NewRunID == nil {
		h.NewRunID = uuid.NewString
	}

	// buffered pass, bounded like every non streaming route
	r.Group(func(g httpkit.Router) {
		g.Use(httpkit.Bounded(h.Timeout))
		g.Post("/scrape", h.scrape)
	})

	// ui stream, lives as long as the client
	r.Post("/stream", h.stream)
}

func (h Handlers) request(in ScrapeInput) domain.Request {
	req := domain.Request{Regulators: in.Regulators}
	if in.State != nil {
		req.State = *in.State
	}
	if c := strings.TrimSpace(in.Cursor); c != "" {
		req.State.Cursor = c
	}
	return req
}

// swagger:route POST /regulatory/scrape Regulatory regulatoryScrape
// @Summary Run one regulatory pass and return the resulting state
// @Tags Regulatory
// @Accept json
// @Produce json
// @Param payload body ScrapeInput false "Regulator filter and prior state"
// @Success 200 {object} ScrapeOutput "ok"
// @Failure 400 {object} phttp.Envelope "bad request"
// @Router /regulatory/scrape [post]
func (h Handlers) scrape(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	in, err := bind.ParseJSON[ScrapeInput](r, parseOpts)
	if err != nil {
		phttp.RespondError(w, r, err)
		return
	}
	runID := h.NewRunID()
	ctx := logger.WithRun(r.Context(), runID)

	var buf events.Buffer
	ch := events.New(append(append([]events.Subscriber(nil), h.Subscribers...), &buf))
	res := h.Orchestrator.Run(ctx, ch.Emitter(runID, graph), h.request(in))

	phttp.RespondOK(w, r, ScrapeOutput{
		RunID:      runID,
		Regulators: res.Regulators,
		State:      res.State,
		Events:     buf.Events(),
	})
}

// swagger:route POST /regulatory/stream Regulatory regulatoryStream
// @Summary Run one regulatory pass as a ui stream
// @Description Frames are data: {"type":"data-status|data-event|data-final|data-error","data":...}, terminated by data: [DONE]
// @Tags Regulatory
// @Accept json
// @Produce text/event-stream
// @Param payload body ScrapeInput false "Regulator filter and prior state"
// @Success 200 {string} string "ui stream"
// @Router /regulatory/stream [post]
func (h Handlers) stream(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	in, err := bind.ParseJSON[ScrapeInput](r, parseOpts)
	if err != nil {
		phttp.RespondError(w, r, err)
		return
	}
	runID := h.NewRunID()
	ctx := logger.WithRun(r.Context(), runID)
	log := logger.C(ctx)

	events.SetStreamHeaders(w)
	w.WriteHeader(stdhttp.StatusOK)
	sw := events.NewStreamWriter(w)

	_ = sw.Part(ctx, events.PartStatus, map[string]string{"status": "started", "run_id": runID})
	ch := events.New(append(append([]events.Subscriber(nil), h.Subscribers...), sw.UI()))

	res, runErr := h.run(ctx, ch.Emitter(runID, graph), h.request(in))
	if runErr != nil {
		log.Error().Err(runErr).Msg("regulatory stream failed")
		_ = sw.Part(ctx, events.PartError, map[string]string{"message": runErr.Error()})
	} else {
		_ = sw.Part(ctx, events.PartFinal, ScrapeOutput{RunID: runID, Regulators: res.Regulators, State: res.State})
	}
	_ = sw.WriteFrame(ctx, events.UIDone)
}

// run guards the stream against a panicking orchestrator implementation
func (h Handlers) run(ctx context.Context, em events.Emitter, req domain.Request) (res domain.Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = perr.PanicErrf("regulatory stream panic: %v", rec)
		}
	}()
	return h.Orchestrator.Run(ctx, em, req), nil
}
