package store

import (
	"context"
	"time"

	perr "sentinel/internal/platform/errors"
	"sentinel/internal/platform/logger"
)

// TxAttempts bounds how often RunInTx replays a transaction that lost a serialization race
const TxAttempts = 3

var txBackoff = 25 * time.Millisecond

// RunInTx runs fn in a transaction on tx with the run id on ctx
// transient conflicts (serialization failures, deadlocks) replay fn up to TxAttempts times
func RunInTx(ctx context.Context, tx TxRunner, runID string, fn func(ctx context.Context, q RowQuerier) error) error {
	if runID != "" {
		ctx = WithRun(ctx, runID)
	}
	var err error
	for attempt := 1; attempt <= TxAttempts; attempt++ {
		err = tx.Tx(ctx, func(q RowQuerier) error { return fn(ctx, q) })
		if err == nil || !perr.IsRetryable(err) || attempt == TxAttempts {
			return err
		}
		logger.C(ctx).Warn().Err(err).Int("attempt", attempt).Msg("transaction conflict, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * txBackoff):
		}
	}
	return err
}
