// Package service implements the transaction scorer
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"sentinel/internal/core/aml"
	"sentinel/internal/core/catalog"
	perr "sentinel/internal/platform/errors"
	"sentinel/internal/platform/logger"
	"sentinel/internal/services/scorer/domain"
)

// configured is implemented by completers that can report missing credentials up front
type configured interface {
	Configured() bool
}

type named interface {
	Model() string
}

// Service implements domain.ScorerPort
type Service struct {
	LLM domain.Completer
	Txs domain.TransactionSource
	Cat *catalog.Catalog
}

// New constructs a scorer; txs may be nil when callers always pass the transaction
func New(llm domain.Completer, txs domain.TransactionSource, cat *catalog.Catalog) *Service {
	if cat == nil {
		cat = catalog.MustDefault()
	}
	return &Service{LLM: llm, Txs: txs, Cat: cat}
}

// Score evaluates the state's transaction against the catalog with one completion
func (s *Service) Score(ctx context.Context, st aml.SentinelState) (domain.Result, error) {
	if s.LLM == nil {
		return domain.Result{}, aml.ErrLLMNotConfigured
	}
	if c, ok := s.LLM.(configured); ok && !c.Configured() {
		return domain.Result{}, aml.ErrLLMNotConfigured
	}

	tx, err := s.transaction(ctx, st)
	if err != nil {
		return domain.Result{}, err
	}

	log := logger.C(ctx).With().Str("component", "scorer").Str("transaction_id", tx.ID).Logger()
	start := time.Now()
	raw, err := s.LLM.Complete(ctx, systemPrompt(s.Cat), userPrompt(tx))
	if err != nil {
		if errors.Is(err, aml.ErrLLMNotConfigured) {
			return domain.Result{}, err
		}
		return domain.Result{}, perr.Wrapf(err, perr.ErrorCodeUnavailable, "scorer: completion for %s", tx.ID)
	}

	doc, err := decodeReply(raw)
	if err != nil {
		log.Warn().Err(err).Int("reply_chars", len(raw)).Msg("unparseable scorer reply")
		return domain.Result{}, err
	}
	hits, score, dropped := sanitize(doc, s.Cat)

	res := domain.Result{
		Transaction: tx,
		RuleHits:    hits,
		Score:       score,
		Dropped:     dropped,
	}
	if n, ok := s.LLM.(named); ok {
		res.Model = n.Model()
	}
	log.Debug().
		Int("hits", len(hits)).
		Int("dropped", dropped).
		Float64("score", score).
		Dur("latency", time.Since(start)).
		Msg("transaction scored")
	return res, nil
}

func (s *Service) transaction(ctx context.Context, st aml.SentinelState) (aml.Transaction, error) {
	if st.Transaction != nil {
		return *st.Transaction, nil
	}
	id := strings.TrimSpace(st.TransactionID)
	if id == "" {
		return aml.Transaction{}, perr.WithField(perr.InvalidArgf("scorer: transaction id is required"), "transaction_id")
	}
	if s.Txs == nil {
		return aml.Transaction{}, perr.NotConfiguredf("scorer: no transaction source to load %s", id)
	}
	tx, err := s.Txs.Transaction(ctx, id)
	if err != nil {
		return aml.Transaction{}, err
	}
	return tx, nil
}
