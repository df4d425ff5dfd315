package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentinel/internal/core/aml"
	"sentinel/internal/core/events"
	scorer "sentinel/internal/services/scorer/service"
)

// scriptedLLM answers like a model that read the user prompt
type scriptedLLM struct{ user string }

func (s *scriptedLLM) Complete(_ context.Context, _, user string) (string, error) {
	s.user = user
	if strings.Contains(user, "sanctions_screening: potential") {
		return "Here is the assessment:\n" + `{"rule_hits":[
			{"rule_id":"screening:sanctions_potential","rationale":"screening returned a potential match","weight":0.45},
			{"rule_id":"cash:large_amount","rationale":"2,000,000 is far above the reporting line","weight":0.3},
			{"rule_id":"made:up","rationale":"x","weight":0.2}
		],"score":0.82}`, nil
	}
	return `{"rule_hits":[],"score":0.05}`, nil
}

func TestEndToEnd_SanctionsHitRaisesHighAlert(t *testing.T) {
	llm := &scriptedLLM{}
	reg := &fakeRegulatory{}
	r := NewRunner(scorer.New(llm, nil, nil), reg, nil, 0, nil)

	tx := aml.Transaction{
		ID:         "tx-e2e",
		Amount:     2000000,
		Currency:   "USD",
		CustomerID: "c-1",
		Metadata:   map[string]any{"sanctions_screening": "potential"},
	}
	var buf events.Buffer
	rep := r.Run(context.Background(), events.New([]events.Subscriber{&buf}).Emitter("run-e2e", Graph), Seeds([]aml.Transaction{tx})[0])

	assert.Contains(t, llm.user, "amount: 2000000")
	assert.GreaterOrEqual(t, rep.State.Score, 0.65)
	ids := make([]string, 0, len(rep.State.RuleHits))
	for _, h := range rep.State.RuleHits {
		ids = append(ids, h.RuleID)
	}
	assert.Contains(t, ids, "screening:sanctions_potential")
	assert.NotContains(t, ids, "made:up")

	evs := buf.Events()
	assert.True(t, startedRegulatory(evs))
	last := evs[len(evs)-2]
	require.Equal(t, events.Artifact, last.Type)
	art := last.Data.(map[string]any)
	assert.Equal(t, "alert", art["kind"])
	alert := art["artifact"].(aml.Alert)
	assert.Equal(t, aml.SeverityHigh, alert.Severity)
	assert.Equal(t, "tx-e2e", alert.Payload.TransactionID)
	assert.NotEmpty(t, alert.Payload.Snippets)
}
