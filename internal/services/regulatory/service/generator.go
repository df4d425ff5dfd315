package service

import (
	"context"
	"fmt"

	"sentinel/internal/core/aml"
	"sentinel/internal/core/events"
	"sentinel/internal/core/regtext"
	"sentinel/internal/platform/logger"
)

const summaryRunes = 400

// Generator derives rule proposals from document text
type Generator struct{}

// NewGenerator constructs a generator
func NewGenerator() *Generator { return &Generator{} }

// Generate builds a proposal per document unless an existing versioned
// proposal already carries the same content hash
func (g *Generator) Generate(ctx context.Context, em events.Emitter, docs []aml.Document, existing []aml.Proposal) aml.RegulatoryState {
	if len(docs) == 0 {
		return aml.RegulatoryState{}
	}
	log := logger.C(ctx).With().Str("component", "generator").Logger()

	prev := make(map[string]aml.Proposal, len(existing))
	for _, p := range existing {
		prev[p.ID] = p
	}

	var (
		out      []aml.Proposal
		snippets []aml.Snippet
		skipped  int
	)
	for _, d := range docs {
		hash := regtext.ContentHash(d.Content)
		id := regtext.ProposalID(d.Regulator, d.URL)
		if p, ok := prev[id]; ok && p.Diff.ContentHash == hash && p.Versioned() {
			skipped++
			continue
		}

		p := aml.Proposal{
			ID:          id,
			Regulator:   d.Regulator,
			DocumentURL: d.URL,
			Status:      aml.StatusPendingApproval,
			Summary:     regtext.Summary(d.Content, summaryRunes),
			Criteria:    regtext.Criteria(d.Content),
			Diff:        aml.Diff{ContentHash: hash},
			DocumentID:  d.DocumentID,
		}
		if eff, ok := regtext.EffectiveDate(d.Content); ok {
			p.EffectiveDate = eff
		}
		out = append(out, p)
		em.Artifact(ctx, NodeGenerate, "proposal", p)
		snippets = append(snippets, aml.Snippet{
			RuleID:    id,
			Text:      fmt.Sprintf("drafted %s rule proposal with %d criteria", d.Regulator, len(p.Criteria)),
			SourceURL: d.URL,
			Level:     aml.LevelSuccess,
		})
	}
	log.Info().Int("documents", len(docs)).Int("proposals", len(out)).Int("unchanged", skipped).Msg("generate done")
	return aml.RegulatoryState{Proposals: out, Snippets: snippets}
}
