package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentinel/internal/core/aml"
	"sentinel/internal/core/catalog"
	perr "sentinel/internal/platform/errors"
)

type fakeLLM struct {
	reply   string
	err     error
	off     bool
	calls   int
	system  string
	user    string
	modelID string
}

func (f *fakeLLM) Complete(_ context.Context, system, user string) (string, error) {
	f.calls++
	f.system, f.user = system, user
	return f.reply, f.err
}

func (f *fakeLLM) Configured() bool { return !f.off }
func (f *fakeLLM) Model() string    { return f.modelID }

type fakeTxs map[string]aml.Transaction

func (f fakeTxs) Transaction(_ context.Context, id string) (aml.Transaction, error) {
	tx, ok := f[id]
	if !ok {
		return aml.Transaction{}, perr.NotFoundf("transaction %s not found", id)
	}
	return tx, nil
}

var sampleTx = aml.Transaction{
	ID:         "tx-1",
	Amount:     1250000,
	Currency:   "SGD",
	CustomerID: "cust-9",
	Metadata: map[string]any{
		"sanctions_screening": "potential",
		"pep_flag":            true,
		"zz_custom":           "last",
		"aa_custom":           "first",
	},
}

func TestScore_SanitizesReply(t *testing.T) {
	llm := &fakeLLM{modelID: "m-1", reply: `{
		"rule_hits": [
			{"rule_id": "cash:large_amount", "rationale": "amount above 1M", "weight": 0.9},
			{"rule_id": "screening:pep", "rationale": "pep flag", "weight": "0.01"},
			{"rule_id": "made:up", "rationale": "x", "weight": 0.2},
			{"rule_id": "screening:sanctions_potential", "rationale": 42, "weight": 0.3},
			{"rule_id": "cash:large_amount", "rationale": "dup", "weight": 0.3},
			{"rule_id": "kyc:expired", "rationale": "` + strings.Repeat("r", 300) + `", "weight": "abc"},
			"not an object"
		],
		"score": 1.7
	}`}
	s := New(llm, nil, catalog.MustDefault())

	res, err := s.Score(context.Background(), aml.SentinelState{Transaction: &sampleTx})
	require.NoError(t, err)

	require.Len(t, res.RuleHits, 2)
	assert.Equal(t, aml.RuleHit{RuleID: "cash:large_amount", Rationale: "amount above 1M", Weight: 0.5}, res.RuleHits[0])
	assert.Equal(t, aml.RuleHit{RuleID: "screening:pep", Rationale: "pep flag", Weight: 0.05}, res.RuleHits[1])
	assert.Equal(t, 5, res.Dropped)
	assert.Equal(t, 1.0, res.Score)
	assert.Equal(t, "m-1", res.Model)
	assert.Equal(t, sampleTx.ID, res.Transaction.ID)
	assert.Equal(t, 1, llm.calls)
}

func TestScore_TruncatesRationale(t *testing.T) {
	long := strings.Repeat("é", 400)
	llm := &fakeLLM{reply: `{"rule_hits":[{"rule_id":"kyc:expired","rationale":"` + long + `","weight":0.1}],"score":"0.3"}`}
	res, err := New(llm, nil, nil).Score(context.Background(), aml.SentinelState{Transaction: &sampleTx})
	require.NoError(t, err)
	require.Len(t, res.RuleHits, 1)
	assert.Equal(t, 220, len([]rune(res.RuleHits[0].Rationale)))
	assert.InDelta(t, 0.3, res.Score, 1e-9)
}

func TestScore_NonNumericScoreIsZero(t *testing.T) {
	llm := &fakeLLM{reply: `{"rule_hits":[],"score":"high"}`}
	res, err := New(llm, nil, nil).Score(context.Background(), aml.SentinelState{Transaction: &sampleTx})
	require.NoError(t, err)
	assert.Zero(t, res.Score)
	assert.Empty(t, res.RuleHits)
}

func TestScore_BraceFallback(t *testing.T) {
	llm := &fakeLLM{reply: "Here you go:\n```json\n{\"rule_hits\":[{\"rule_id\":\"fx:unusual_pair\",\"rationale\":\"pair\",\"weight\":0.1}],\"score\":0.2}\n```"}
	res, err := New(llm, nil, nil).Score(context.Background(), aml.SentinelState{Transaction: &sampleTx})
	require.NoError(t, err)
	require.Len(t, res.RuleHits, 1)
	assert.Equal(t, "fx:unusual_pair", res.RuleHits[0].RuleID)
}

func TestScore_StructuralErrors(t *testing.T) {
	cases := map[string]string{
		"not json":          "no json here",
		"broken braces":     "{ nope }",
		"missing rule_hits": `{"score":0.4}`,
		"rule_hits object":  `{"rule_hits":{"a":1},"score":0.4}`,
		"top level array":   `[{"rule_hits":[]}]`,
	}
	for name, reply := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New(&fakeLLM{reply: reply}, nil, nil).Score(context.Background(), aml.SentinelState{Transaction: &sampleTx})
			require.Error(t, err)
			assert.True(t, perr.IsCode(err, perr.ErrorCodeJSON), "got %v", err)
		})
	}
}

func TestScore_NotConfigured(t *testing.T) {
	llm := &fakeLLM{off: true}
	_, err := New(llm, nil, nil).Score(context.Background(), aml.SentinelState{Transaction: &sampleTx})
	require.ErrorIs(t, err, aml.ErrLLMNotConfigured)
	assert.Zero(t, llm.calls)

	_, err = New(nil, nil, nil).Score(context.Background(), aml.SentinelState{Transaction: &sampleTx})
	require.ErrorIs(t, err, aml.ErrLLMNotConfigured)
}

func TestScore_CompletionErrorIsUnavailable(t *testing.T) {
	llm := &fakeLLM{err: errors.New("connection reset")}
	_, err := New(llm, nil, nil).Score(context.Background(), aml.SentinelState{Transaction: &sampleTx})
	require.Error(t, err)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeUnavailable))
}

func TestScore_LoadsTransactionByID(t *testing.T) {
	llm := &fakeLLM{reply: `{"rule_hits":[],"score":0.1}`}
	s := New(llm, fakeTxs{"tx-1": sampleTx}, nil)

	res, err := s.Score(context.Background(), aml.SentinelState{TransactionID: "tx-1"})
	require.NoError(t, err)
	assert.Equal(t, "cust-9", res.Transaction.CustomerID)

	_, err = s.Score(context.Background(), aml.SentinelState{TransactionID: "tx-404"})
	assert.True(t, perr.IsCode(err, perr.ErrorCodeNotFound))

	_, err = s.Score(context.Background(), aml.SentinelState{})
	assert.True(t, perr.IsCode(err, perr.ErrorCodeInvalidArgument))
}

func TestPrompts(t *testing.T) {
	llm := &fakeLLM{reply: `{"rule_hits":[],"score":0}`}
	_, err := New(llm, nil, nil).Score(context.Background(), aml.SentinelState{Transaction: &sampleTx})
	require.NoError(t, err)

	for _, id := range catalog.MustDefault().IDs() {
		assert.Contains(t, llm.system, id)
	}
	assert.Contains(t, llm.system, `"rule_hits"`)

	assert.Contains(t, llm.user, "- amount: 1250000\n")
	assert.Contains(t, llm.user, "- currency: SGD\n")
	assert.Contains(t, llm.user, "- pep_flag: true\n")
	assert.Contains(t, llm.user, "screening:sanctions_potential")

	// known fields first, then the rest sorted
	sanctions := strings.Index(llm.user, "- sanctions_screening:")
	aa := strings.Index(llm.user, "- aa_custom:")
	zz := strings.Index(llm.user, "- zz_custom:")
	assert.True(t, sanctions < aa && aa < zz, "unexpected order in %q", llm.user)
}
