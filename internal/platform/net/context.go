// Package net provides utilities for working with request contexts
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"

	"sentinel/internal/platform/logger"
)

// WithRequest annotates ctx with the request id and the pipeline run it serves
// the request id is stored where chi's RequestID middleware puts it
func WithRequest(ctx context.Context, reqID, runID string) context.Context {
	if reqID != "" {
		ctx = context.WithValue(ctx, chimw.RequestIDKey, reqID)
	}
	return logger.WithRequest(ctx, reqID, runID)
}

// RequestID returns the request id on the context if present
func RequestID(ctx context.Context) string { return chimw.GetReqID(ctx) }

// RunID returns the pipeline run id on the context if present
func RunID(ctx context.Context) string { return logger.RunID(ctx) }
