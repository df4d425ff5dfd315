package pg

import (
	"context"
	"errors"
	"testing"

	"sentinel/internal/platform/testkit"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenParseError(t *testing.T) {
	_, err := Open(context.Background(), Config{URL: "://bad"}, nil, nil)
	assert.Error(t, err)
}

func TestOpenPoolError(t *testing.T) {
	testkit.Serial(t)
	testkit.Swap(t, &newPool, func(context.Context, *pgxpool.Config) (*pgxpool.Pool, error) {
		return nil, errors.New("boom")
	})
	_, err := Open(context.Background(), Config{URL: "postgres://u:p@h:5432/sentinel"}, nil, nil)
	assert.EqualError(t, err, "boom")
}

func TestOpenAppliesConfig(t *testing.T) {
	testkit.Serial(t)
	var seen *pgxpool.Config
	testkit.Swap(t, &newPool, func(_ context.Context, c *pgxpool.Config) (*pgxpool.Pool, error) {
		seen = c
		return &pgxpool.Pool{}, nil
	})

	var mutated bool
	p, err := Open(context.Background(), Config{URL: "postgres://u:p@h:5432/sentinel", MaxConns: 7, SlowMs: 250}, nil,
		func(*pgxpool.Config) { mutated = true })
	require.NoError(t, err)
	assert.True(t, mutated)
	assert.EqualValues(t, 7, seen.MaxConns)
	assert.Equal(t, 250, p.SlowMs)

	var nilPG *PG
	nilPG.Close()
}
