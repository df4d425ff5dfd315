package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"sentinel/internal/core/aml"
	"sentinel/internal/core/events"
	regdomain "sentinel/internal/services/regulatory/domain"
	scorerdomain "sentinel/internal/services/scorer/domain"
)

type fakeScorer struct {
	scores map[string]float64
	fail   map[string]error
	calls  []string
}

func (f *fakeScorer) Score(_ context.Context, st aml.SentinelState) (scorerdomain.Result, error) {
	f.calls = append(f.calls, st.TransactionID)
	if err := f.fail[st.TransactionID]; err != nil {
		return scorerdomain.Result{}, err
	}
	tx := aml.Transaction{ID: st.TransactionID}
	if st.Transaction != nil {
		tx = *st.Transaction
	}
	score := f.scores[st.TransactionID]
	var hits []aml.RuleHit
	if score > 0 {
		hits = []aml.RuleHit{{RuleID: "cash:large_amount", Rationale: "large", Weight: 0.3}}
	}
	return scorerdomain.Result{Transaction: tx, RuleHits: hits, Score: score}, nil
}

type fakeRegulatory struct {
	mu       sync.Mutex
	reqs     []regdomain.Request
	panic    bool
	versions int
}

func (f *fakeRegulatory) Run(ctx context.Context, em events.Emitter, req regdomain.Request) regdomain.Result {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()
	if f.panic {
		panic("portal exploded")
	}
	em = em.Sub("regulatory")
	em.NodeStart(ctx, "scan", nil)
	em.NodeEnd(ctx, "scan", nil)
	st := req.State.Clone()
	if !slices.ContainsFunc(st.Candidates, func(c aml.Candidate) bool { return c.URL == "https://www.mas.gov.sg/n1" }) {
		f.versions++
		st.Candidates = append(st.Candidates, aml.Candidate{URL: "https://www.mas.gov.sg/n1", Regulator: "MAS"})
		st.Versions = append(st.Versions, aml.VersionRecord{RuleVersionID: fmt.Sprintf("rv-%d", f.versions), RuleID: "mas-n1", Status: aml.StatusDraft})
	}
	st.Snippets = aml.AppendSnippets(st.Snippets, aml.Snippet{Text: "MAS notice found", Level: aml.LevelSuccess})
	return regdomain.Result{Regulators: []string{"MAS"}, State: st, Delta: aml.DiffRegulatory(req.State, st)}
}

type fakeAlerts struct {
	saved []aml.Alert
	runs  []string
	err   error
}

func (f *fakeAlerts) InsertAlert(_ context.Context, runID string, a aml.Alert) error {
	if f.err != nil {
		return f.err
	}
	f.runs = append(f.runs, runID)
	f.saved = append(f.saved, a)
	return nil
}

func seqIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

var errParse = errors.New("scorer: reply is not json")

// nodes lists "graph/node type" for a run's events
func nodes(evs []events.Event) []string {
	out := make([]string, 0, len(evs))
	for _, ev := range evs {
		out = append(out, ev.Graph+"/"+ev.Node+" "+string(ev.Type))
	}
	return out
}
