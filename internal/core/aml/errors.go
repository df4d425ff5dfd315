package aml

import perr "sentinel/internal/platform/errors"

// configuration errors shared by the adapters and the pipeline stages
var (
	ErrLLMNotConfigured    = perr.New(perr.ErrorCodeNotConfigured, "llm not configured")
	ErrSearchNotConfigured = perr.New(perr.ErrorCodeNotConfigured, "search provider not configured")
)
