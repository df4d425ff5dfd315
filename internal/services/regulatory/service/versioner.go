package service

import (
	"context"
	"encoding/json"
	"fmt"

	"sentinel/internal/core/aml"
	"sentinel/internal/core/chunk"
	"sentinel/internal/core/events"
	"sentinel/internal/core/regtext"
	"sentinel/internal/platform/logger"
	"sentinel/internal/services/regulatory/domain"
)

// Versioner persists proposals as immutable rule versions
type Versioner struct {
	Store domain.DocumentStore
	Cfg   Config
}

// NewVersioner constructs a versioner; a nil store turns it into a reporting no-op
func NewVersioner(store domain.DocumentStore, cfg Config) *Versioner {
	return &Versioner{Store: store, Cfg: cfg.norm()}
}

// rulePayload is the json body stored with every rule version
type rulePayload struct {
	ProposalID    string   `json:"proposal_id"`
	Regulator     string   `json:"regulator"`
	DocumentURL   string   `json:"document_url"`
	Summary       string   `json:"summary"`
	Criteria      []string `json:"criteria"`
	EffectiveDate string   `json:"effective_date,omitempty"`
	Diff          aml.Diff `json:"diff"`
}

// Version persists every unversioned proposal of st
// each proposal is fault isolated; failures leave it unversioned for a later run
func (v *Versioner) Version(ctx context.Context, em events.Emitter, st aml.RegulatoryState) aml.RegulatoryState {
	var todo []aml.Proposal
	for _, p := range st.Proposals {
		if !p.Versioned() {
			todo = append(todo, p)
		}
	}
	if len(todo) == 0 {
		return aml.RegulatoryState{}
	}
	if v.Store == nil {
		return aml.RegulatoryState{Snippets: []aml.Snippet{{
			Text:  fmt.Sprintf("%d proposals left unversioned: no document store", len(todo)),
			Level: aml.LevelWarning,
		}}}
	}
	log := logger.C(ctx).With().Str("component", "versioner").Logger()
	now := v.Cfg.Now()

	docs := make(map[string]aml.Document, len(st.Documents))
	for _, d := range st.Documents {
		docs[d.URL] = d
	}

	var out aml.RegulatoryState
	warn := func(p aml.Proposal, text string) {
		out.Snippets = append(out.Snippets, aml.Snippet{RuleID: p.ID, Text: text, SourceURL: p.DocumentURL, Level: aml.LevelWarning})
	}

	for _, p := range todo {
		if ctx.Err() != nil {
			warn(p, "versioning cancelled")
			break
		}
		d, ok := docs[p.DocumentURL]
		if !ok {
			warn(p, "no extracted document for proposal")
			continue
		}

		if d.DocumentID == "" {
			id, err := v.persistDocument(ctx, em, d)
			if err != nil {
				log.Warn().Err(err).Str("url", d.URL).Msg("document upsert failed")
				em.Error(ctx, NodeVersion, err)
				warn(p, fmt.Sprintf("document not stored: %v", err))
				continue
			}
			d.DocumentID = id
			docs[d.URL] = d
			out.Documents = append(out.Documents, d)
		}

		body, err := json.Marshal(rulePayload{
			ProposalID:    p.ID,
			Regulator:     p.Regulator,
			DocumentURL:   p.DocumentURL,
			Summary:       p.Summary,
			Criteria:      p.Criteria,
			EffectiveDate: p.EffectiveDate,
			Diff:          p.Diff,
		})
		if err != nil {
			warn(p, fmt.Sprintf("rule payload: %v", err))
			continue
		}
		em.ToolCall(ctx, NodeVersion, "store.rule_version", map[string]any{"rule_id": p.ID})
		rvID, err := v.Store.InsertRuleVersion(ctx, domain.RuleVersionWrite{
			RuleID:      p.ID,
			DocumentID:  d.DocumentID,
			Regulator:   p.Regulator,
			Status:      string(aml.StatusPendingApproval),
			ContentHash: p.Diff.ContentHash,
			Payload:     body,
		})
		if err != nil {
			log.Warn().Err(err).Str("rule_id", p.ID).Msg("rule version insert failed")
			em.Error(ctx, NodeVersion, err)
			warn(p, fmt.Sprintf("rule version not stored: %v", err))
			continue
		}

		p.RuleVersionID = rvID
		p.DocumentID = d.DocumentID
		p.Status = aml.StatusPendingApproval
		rec := aml.VersionRecord{
			RuleVersionID: rvID,
			RuleID:        p.ID,
			DocumentID:    d.DocumentID,
			Status:        aml.StatusPendingApproval,
			CreatedAt:     now,
		}
		out.Proposals = append(out.Proposals, p)
		out.Versions = append(out.Versions, rec)
		em.Artifact(ctx, NodeVersion, "rule_version", rec)
		out.Snippets = append(out.Snippets, aml.Snippet{
			RuleID:    p.ID,
			Text:      fmt.Sprintf("versioned %s as %s", p.ID, rvID),
			SourceURL: p.DocumentURL,
			Level:     aml.LevelSuccess,
		})
	}
	log.Info().Int("pending", len(todo)).Int("versioned", len(out.Versions)).Msg("version done")
	return out
}

// persistDocument upserts d and stores its chunks; chunk failures are reported only
func (v *Versioner) persistDocument(ctx context.Context, em events.Emitter, d aml.Document) (string, error) {
	hash := regtext.ContentHash(d.Content)
	title := d.Title
	if title == "" {
		title = regtext.Title(d.Content)
	}
	em.ToolCall(ctx, NodeVersion, "store.document", map[string]any{"url": d.URL})
	id, err := v.Store.UpsertDocument(ctx, domain.DocumentWrite{
		URL:         d.URL,
		Regulator:   d.Regulator,
		Title:       title,
		ContentType: string(d.ContentType),
		Content:     d.Content,
		ContentHash: hash,
	})
	if err != nil {
		return "", err
	}

	parts := chunk.Split(d.Content, v.Cfg.Chunk)
	rows := make([]domain.ChunkWrite, 0, len(parts))
	for _, c := range parts {
		rows = append(rows, domain.ChunkWrite{Ordinal: c.Ordinal, Content: c.Text, SourceURL: d.URL, ContentHash: hash})
	}
	if err := v.Store.InsertChunks(ctx, id, rows); err != nil {
		logger.C(ctx).Warn().Err(err).Str("url", d.URL).Int("chunks", len(rows)).Msg("chunk insert failed")
		em.Error(ctx, NodeVersion, err)
	}
	return id, nil
}
