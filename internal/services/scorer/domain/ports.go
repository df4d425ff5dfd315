// Package domain holds the scorer's ports and result types
package domain

import (
	"context"

	"sentinel/internal/core/aml"
)

// Completer issues one system plus user completion and returns the raw reply
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// TransactionSource loads a transaction by id
type TransactionSource interface {
	Transaction(ctx context.Context, id string) (aml.Transaction, error)
}

// ScorerPort is what the runner and the batch driver call
type ScorerPort interface {
	Score(ctx context.Context, st aml.SentinelState) (Result, error)
}

// Deps are the optional ports injected into the scorer module
// a nil LLM makes the module build its own client from config
type Deps struct {
	LLM          Completer
	Transactions TransactionSource
}
