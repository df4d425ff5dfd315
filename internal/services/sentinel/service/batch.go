package service

import (
	"context"

	"github.com/google/uuid"

	"sentinel/internal/core/aml"
	"sentinel/internal/core/events"
	"sentinel/internal/platform/logger"
	"sentinel/internal/platform/metrics"
	"sentinel/internal/services/sentinel/domain"
)

// Batch drives runs strictly one after another over a shared channel
type Batch struct {
	Runner   *Runner
	NewRunID func() string
}

// NewBatch constructs a batch driver over r
func NewBatch(r *Runner) *Batch { return &Batch{Runner: r, NewRunID: uuid.NewString} }

// Seeds turns transactions into initial run states
func Seeds(txs []aml.Transaction) []aml.SentinelState {
	out := make([]aml.SentinelState, 0, len(txs))
	for i := range txs {
		tx := txs[i]
		out = append(out, aml.SentinelState{TransactionID: tx.ID, Transaction: &tx, RuleHits: []aml.RuleHit{}})
	}
	return out
}

// SeedIDs turns transaction ids into initial run states; the scorer loads each one
func SeedIDs(ids []string) []aml.SentinelState {
	out := make([]aml.SentinelState, 0, len(ids))
	for _, id := range ids {
		out = append(out, aml.SentinelState{TransactionID: id, RuleHits: []aml.RuleHit{}})
	}
	return out
}

// Run processes seeds in order, one complete run at a time
// a failed row is reported and the batch continues; a cancelled ctx stops before the next row
// a seed without regulatory state inherits the previous row's, so a later row never re-versions
// what an earlier row already versioned
func (b *Batch) Run(ctx context.Context, ch *events.Channel, seeds []aml.SentinelState, each func(domain.Outcome)) []domain.Outcome {
	log := logger.C(ctx).With().Str("component", "batch").Logger()
	out := make([]domain.Outcome, 0, len(seeds))
	var carry aml.RegulatoryState
	for i, seed := range seeds {
		if err := ctx.Err(); err != nil {
			log.Info().Int("processed", i).Int("remaining", len(seeds)-i).Msg("batch cancelled")
			break
		}
		if blank(seed.Regulatory) {
			seed.Regulatory = carry.Clone()
		}
		runID := b.NewRunID()
		rep := b.Runner.Run(ctx, ch.Emitter(runID, Graph), seed)
		carry = rep.State.Regulatory
		carry.Snippets = nil

		o := domain.Outcome{
			RunID:         runID,
			TransactionID: rep.State.TransactionID,
			Score:         rep.State.Score,
			Stages:        rep.Stages,
			Alert:         rep.State.Alert,
			State:         rep.State,
		}
		if rep.ScoreErr != nil {
			metrics.ScorerFailed()
			o.Err = rep.ScoreErr.Error()
			log.Warn().Err(rep.ScoreErr).Str("run_id", runID).Str("transaction_id", o.TransactionID).Msg("row failed, continuing")
		}
		out = append(out, o)
		if each != nil {
			each(o)
		}
	}
	return out
}

func blank(s aml.RegulatoryState) bool {
	return len(s.Candidates) == 0 && len(s.Documents) == 0 && len(s.Proposals) == 0 &&
		len(s.Versions) == 0 && s.Cursor == ""
}
