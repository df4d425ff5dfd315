package service

import (
	"sentinel/internal/core/aml"
)

// severity bands
const (
	HighAt   = 0.65
	MediumAt = 0.35
)

// SeverityFor grades a clamped score
func SeverityFor(score float64) aml.Severity {
	switch {
	case score >= HighAt:
		return aml.SeverityHigh
	case score >= MediumAt:
		return aml.SeverityMedium
	default:
		return aml.SeverityLow
	}
}

// BuildAlert derives the run's alert from its final state
func BuildAlert(id string, st aml.SentinelState) aml.Alert {
	hits := append([]aml.RuleHit{}, st.RuleHits...)
	snips := append([]aml.Snippet{}, st.Regulatory.Snippets...)
	txID := st.TransactionID
	if txID == "" && st.Transaction != nil {
		txID = st.Transaction.ID
	}
	return aml.Alert{
		ID:       id,
		Severity: SeverityFor(st.Score),
		Payload: aml.AlertPayload{
			TransactionID: txID,
			Score:         st.Score,
			RuleHits:      hits,
			Snippets:      snips,
		},
	}
}
