package domain

import "sentinel/internal/core/aml"

// Bounds applied by the sanitizer
const (
	MinWeight       = 0.05
	MaxWeight       = 0.5
	MaxRationaleLen = 220
)

// Result is the sanitized scoring outcome for one transaction
type Result struct {
	Transaction aml.Transaction `json:"transaction"`
	RuleHits    []aml.RuleHit   `json:"rule_hits"`
	Score       float64         `json:"score"`

	// Dropped counts model hits the sanitizer discarded
	Dropped int    `json:"dropped"`
	Model   string `json:"model,omitempty"`
}
