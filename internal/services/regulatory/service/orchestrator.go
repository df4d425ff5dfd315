package service

import (
	"context"
	"fmt"
	"time"

	"sentinel/internal/core/aml"
	"sentinel/internal/core/events"
	"sentinel/internal/core/regtext"
	"sentinel/internal/core/regulators"
	perr "sentinel/internal/platform/errors"
	"sentinel/internal/platform/logger"
	"sentinel/internal/platform/metrics"
	"sentinel/internal/services/regulatory/domain"
)

// Orchestrator composes scan, extract, generate and version
type Orchestrator struct {
	Regs      regulators.Set
	Scanner   *Scanner
	Extractor *Extractor
	Generator *Generator
	Versioner *Versioner
}

// NewOrchestrator wires the four stages over a regulator set
func NewOrchestrator(regs regulators.Set, sc *Scanner, ex *Extractor, gen *Generator, ver *Versioner) *Orchestrator {
	return &Orchestrator{Regs: regs, Scanner: sc, Extractor: ex, Generator: gen, Versioner: ver}
}

// Run executes one pass and never fails; problems surface as snippets and on_error events
func (o *Orchestrator) Run(ctx context.Context, em events.Emitter, req domain.Request) (res domain.Result) {
	em = em.Sub(Graph)
	log := logger.C(ctx).With().Str("component", "orchestrator").Logger()

	before := req.State.Clone()
	state := req.State.Clone()
	cfgs := o.Regs.Filter(req.Regulators)
	res.Regulators = cfgs.Codes()

	defer func() {
		if r := recover(); r != nil {
			err := perr.PanicErrf("regulatory pipeline panic: %v", r)
			log.Error().Err(err).Msg("regulatory pass aborted")
			em.Error(ctx, "", err)
			state.Snippets = aml.AppendSnippets(state.Snippets, aml.Snippet{Text: err.Error(), Level: aml.LevelError})
		}
		res.State = state
		res.Delta = aml.DiffRegulatory(before, state)
	}()

	if len(cfgs) == 0 {
		state.Snippets = aml.AppendSnippets(state.Snippets, aml.Snippet{
			Text:  fmt.Sprintf("no active regulator matches %v", req.Regulators),
			Level: aml.LevelWarning,
		})
		log.Warn().Strs("regulators", req.Regulators).Msg("no active regulator matches filter")
		return res
	}

	// scan
	var fresh []aml.Candidate
	o.stage(ctx, em, NodeScan, &state, map[string]any{"regulators": res.Regulators}, func(st aml.RegulatoryState) (aml.RegulatoryState, map[string]any) {
		var up aml.RegulatoryState
		up, fresh = o.Scanner.Scan(ctx, em, cfgs, st)
		return up, map[string]any{"new_candidates": len(fresh)}
	})
	pending := aml.Merge(fresh, unextracted(state), aml.CandidateKey)
	retry := unsettled(state)
	if len(pending) == 0 && len(retry) == 0 {
		state.Snippets = aml.AppendSnippets(state.Snippets, aml.Snippet{Text: "no new candidates", Level: aml.LevelInfo})
		return res
	}

	// extract
	var newDocs []aml.Document
	if len(pending) > 0 {
		o.stage(ctx, em, NodeExtract, &state, map[string]any{"pending": len(pending)}, func(st aml.RegulatoryState) (aml.RegulatoryState, map[string]any) {
			var up aml.RegulatoryState
			up, newDocs = o.Extractor.Extract(ctx, em, cfgs, pending, st.Documents)
			return up, map[string]any{"changed_documents": len(newDocs)}
		})
	}
	newDocs = aml.Merge(retry, newDocs, aml.DocumentKey)
	if len(newDocs) == 0 {
		state.Snippets = aml.AppendSnippets(state.Snippets, aml.Snippet{Text: "no new documents", Level: aml.LevelInfo})
		return res
	}

	// generate
	o.stage(ctx, em, NodeGenerate, &state, map[string]any{"documents": len(newDocs)}, func(st aml.RegulatoryState) (aml.RegulatoryState, map[string]any) {
		return o.Generator.Generate(ctx, em, newDocs, st.Proposals), nil
	})

	// version
	o.stage(ctx, em, NodeVersion, &state, nil, func(st aml.RegulatoryState) (aml.RegulatoryState, map[string]any) {
		return o.Versioner.Version(ctx, em, st), nil
	})
	return res
}

// stage wraps one step with start and end events and merges its update into state
func (o *Orchestrator) stage(
	ctx context.Context,
	em events.Emitter,
	node string,
	state *aml.RegulatoryState,
	input map[string]any,
	fn func(aml.RegulatoryState) (aml.RegulatoryState, map[string]any),
) {
	start := time.Now()
	em.NodeStart(ctx, node, input)
	before := *state
	up, extra := fn(state.Clone())
	*state = aml.MergeRegulatory(*state, up)

	d := aml.DiffRegulatory(before, *state)
	summary := map[string]any{
		"new_candidates": d.Candidates,
		"new_documents":  d.Documents,
		"new_proposals":  d.Proposals,
		"new_versions":   d.Versions,
		"snippets":       len(up.Snippets),
	}
	for k, v := range extra {
		summary[k] = v
	}
	metrics.ObserveStage(Graph, node, time.Since(start))
	em.NodeEnd(ctx, node, summary)
}

// unextracted returns the candidates no document was produced from yet
func unextracted(st aml.RegulatoryState) []aml.Candidate {
	have := make(map[string]struct{}, len(st.Documents)*2)
	for _, d := range st.Documents {
		have[d.URL] = struct{}{}
		if d.SourceURL != "" {
			have[d.SourceURL] = struct{}{}
		}
	}
	var out []aml.Candidate
	for _, c := range st.Candidates {
		if _, ok := have[c.URL]; !ok {
			out = append(out, c)
		}
	}
	return out
}

// unsettled returns the documents whose proposal never reached a rule version
func unsettled(st aml.RegulatoryState) []aml.Document {
	versioned := make(map[string]struct{}, len(st.Proposals))
	for _, p := range st.Proposals {
		if p.Versioned() {
			versioned[p.ID] = struct{}{}
		}
	}
	var out []aml.Document
	for _, d := range st.Documents {
		if _, ok := versioned[regtext.ProposalID(d.Regulator, d.URL)]; !ok {
			out = append(out, d)
		}
	}
	return out
}
