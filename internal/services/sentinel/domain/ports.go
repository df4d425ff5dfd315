// Package domain holds the sentinel runner's stages, ports and transport types
package domain

import (
	"context"

	"sentinel/internal/core/aml"
	regdomain "sentinel/internal/services/regulatory/domain"
	scorerdomain "sentinel/internal/services/scorer/domain"
)

// ScorerPort scores the state's transaction
type ScorerPort = scorerdomain.ScorerPort

// RegulatoryPort runs one regulatory pass
type RegulatoryPort = regdomain.OrchestratorPort

// AlertStore persists alerts; writes are best effort
type AlertStore interface {
	InsertAlert(ctx context.Context, runID string, a aml.Alert) error
}

// TransactionSource loads transactions for a batch
type TransactionSource interface {
	Transaction(ctx context.Context, id string) (aml.Transaction, error)
	List(ctx context.Context, limit int) ([]aml.Transaction, error)
}

// Outcome is what the batch driver reports per row
type Outcome struct {
	RunID         string            `json:"run_id"`
	TransactionID string            `json:"transaction_id"`
	Score         float64           `json:"score"`
	Stages        []Stage           `json:"stages"`
	Alert         *aml.Alert        `json:"alert,omitempty"`
	Err           string            `json:"error,omitempty"`
	State         aml.SentinelState `json:"-"`
}

// MonitorInput selects what the monitor route processes
// ids win over the csv demo when both are given
type MonitorInput struct {
	TransactionIDs []string `json:"transaction_ids,omitempty" validate:"omitempty,max=500,dive,required"`
	CSVDemo        bool     `json:"csv_demo,omitempty"`
	Limit          int      `json:"limit,omitempty" validate:"omitempty,min=1,max=1000"`
	Regulators     []string `json:"regulators,omitempty" validate:"omitempty,max=32,dive,regulator"`
}
