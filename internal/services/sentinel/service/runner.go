// Package service implements the sentinel runner, its alert builder and the batch driver
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"sentinel/internal/core/aml"
	"sentinel/internal/core/events"
	perr "sentinel/internal/platform/errors"
	"sentinel/internal/platform/logger"
	"sentinel/internal/platform/metrics"
	regdomain "sentinel/internal/services/regulatory/domain"
	"sentinel/internal/services/sentinel/domain"
)

// Graph is the event graph name of a sentinel run
const Graph = "sentinel"

// Report is the result of one run
type Report struct {
	State  aml.SentinelState
	Stages []domain.Stage
	// ScoreErr is set when the transaction stage failed
	ScoreErr error
}

// Runner walks transaction, optional regulatory and alert stages
type Runner struct {
	Scorer     domain.ScorerPort
	Regulatory domain.RegulatoryPort
	Alerts     domain.AlertStore
	Threshold  float64
	Regulators []string
	NewID      func() string
}

// NewRunner constructs a runner; a zero threshold takes the default
func NewRunner(sc domain.ScorerPort, reg domain.RegulatoryPort, alerts domain.AlertStore, threshold float64, regs []string) *Runner {
	if threshold <= 0 {
		threshold = domain.DefaultThreshold
	}
	return &Runner{
		Scorer:     sc,
		Regulatory: reg,
		Alerts:     alerts,
		Threshold:  threshold,
		Regulators: regs,
		NewID:      uuid.NewString,
	}
}

// Run executes one run and always reaches the alert stage
func (r *Runner) Run(ctx context.Context, em events.Emitter, st aml.SentinelState) Report {
	ctx = logger.WithRun(ctx, em.RunID())
	if st.RuleHits == nil {
		st.RuleHits = []aml.RuleHit{}
	}
	rep := Report{}

	for stage := domain.StageTransaction; stage != domain.StageDone; stage = domain.Next(stage, st.Score, r.Threshold) {
		rep.Stages = append(rep.Stages, stage)
		switch stage {
		case domain.StageTransaction:
			r.step(ctx, em, stage, map[string]any{"transaction_id": st.TransactionID}, func() map[string]any {
				var sum map[string]any
				st, sum, rep.ScoreErr = r.transaction(ctx, em, st)
				return sum
			})
		case domain.StageRegulatory:
			r.step(ctx, em, stage, map[string]any{"score": st.Score, "regulators": r.Regulators}, func() map[string]any {
				var sum map[string]any
				st, sum = r.regulatory(ctx, em, st)
				return sum
			})
		case domain.StageAlert:
			r.step(ctx, em, stage, nil, func() map[string]any {
				var sum map[string]any
				st, sum = r.alert(ctx, em, st)
				return sum
			})
		}
	}
	rep.State = st
	return rep
}

// step brackets fn with node events; a panic becomes on_error and the run goes on
func (r *Runner) step(ctx context.Context, em events.Emitter, stage domain.Stage, pre any, fn func() map[string]any) {
	node := string(stage)
	start := time.Now()
	em.NodeStart(ctx, node, pre)

	var sum map[string]any
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				err := perr.PanicErrf("sentinel %s stage panic: %v", node, rec)
				logger.C(ctx).Error().Err(err).Str("node", node).Msg("stage aborted")
				em.Error(ctx, node, err)
				sum = map[string]any{"aborted": true}
			}
		}()
		sum = fn()
	}()

	metrics.ObserveStage(Graph, node, time.Since(start))
	em.NodeEnd(ctx, node, sum)
}

func (r *Runner) transaction(ctx context.Context, em events.Emitter, st aml.SentinelState) (aml.SentinelState, map[string]any, error) {
	node := string(domain.StageTransaction)
	if r.Scorer == nil {
		err := aml.ErrLLMNotConfigured
		em.Error(ctx, node, err)
		return st, map[string]any{"score": st.Score, "failed": true}, err
	}
	em.ToolCall(ctx, node, "llm", map[string]any{"transaction_id": st.TransactionID})

	res, err := r.Scorer.Score(ctx, st)
	if err != nil {
		logger.C(ctx).Warn().Err(err).Str("transaction_id", st.TransactionID).Msg("scoring failed")
		em.Error(ctx, node, err)
		return st, map[string]any{"score": st.Score, "failed": true}, err
	}

	before := st.RuleHits
	tx := res.Transaction
	st.Transaction = &tx
	if tx.ID != "" {
		st.TransactionID = tx.ID
	}
	st.RuleHits = aml.Merge(st.RuleHits, res.RuleHits, ruleKey)
	st.Score = res.Score

	return st, map[string]any{
		"score":         st.Score,
		"rule_hits":     len(st.RuleHits),
		"new_rule_hits": aml.Added(before, st.RuleHits, ruleKey),
		"dropped":       res.Dropped,
		"triggered":     st.Score >= r.Threshold,
	}, nil
}

func (r *Runner) regulatory(ctx context.Context, em events.Emitter, st aml.SentinelState) (aml.SentinelState, map[string]any) {
	node := string(domain.StageRegulatory)
	if r.Regulatory == nil {
		em.Error(ctx, node, perr.NotConfiguredf("regulatory pipeline not wired"))
		return st, map[string]any{"skipped": true}
	}
	res := r.Regulatory.Run(ctx, em, regdomain.Request{Regulators: r.Regulators, State: st.Regulatory})
	st.Regulatory = res.State
	return st, map[string]any{
		"regulators":     res.Regulators,
		"new_candidates": res.Delta.Candidates,
		"new_documents":  res.Delta.Documents,
		"new_proposals":  res.Delta.Proposals,
		"new_versions":   res.Delta.Versions,
		"snippets":       len(st.Regulatory.Snippets),
	}
}

func (r *Runner) alert(ctx context.Context, em events.Emitter, st aml.SentinelState) (aml.SentinelState, map[string]any) {
	node := string(domain.StageAlert)
	id := em.RunID()
	if r.NewID != nil {
		id = r.NewID()
	}
	a := BuildAlert(id, st)
	st.Alert = &a
	em.Artifact(ctx, node, "alert", a)

	if r.Alerts != nil {
		if err := r.Alerts.InsertAlert(ctx, em.RunID(), a); err != nil {
			logger.C(ctx).Warn().Err(err).Str("alert_id", a.ID).Msg("alert not persisted")
			em.Error(ctx, node, err)
		}
	}
	return st, map[string]any{"alert_id": a.ID, "severity": a.Severity, "score": st.Score}
}

func ruleKey(h aml.RuleHit) string { return h.RuleID }
