package store

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenNothingEnabled(t *testing.T) {
	s, err := Open(context.Background(), Config{}, WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	assert.Nil(t, s.PG)
	assert.Nil(t, s.CH)
	assert.Nil(t, s.Bus)
	assert.NoError(t, s.Guard(context.Background()))
	assert.NoError(t, s.Close(context.Background()))
}

func TestOpenBubblesBackendErrors(t *testing.T) {
	for name, cfg := range map[string]Config{
		"pg bad url":     {PG: PGConfig{Enabled: true, URL: "://bad"}},
		"ch empty url":   {CH: CHConfig{Enabled: true}},
		"nats empty url": {NATS: NATSConfig{Enabled: true}},
		"pg fails first": {PG: PGConfig{Enabled: true, URL: "://bad"}, CH: CHConfig{Enabled: true, URL: "clickhouse://local"}},
	} {
		t.Run(name, func(t *testing.T) {
			s, err := Open(context.Background(), cfg)
			assert.Error(t, err)
			assert.Nil(t, s)
		})
	}
}

type fakeBus struct {
	connected bool
	drained   bool
}

func (b *fakeBus) Publish(string, []byte) error { return nil }
func (b *fakeBus) Drain() error                 { b.drained = true; return nil }
func (b *fakeBus) IsConnected() bool            { return b.connected }

type pingCH struct {
	Clickhouse
	err    error
	closed bool
}

func (c *pingCH) Ping(context.Context) error { return c.err }
func (c *pingCH) Close() error               { c.closed = true; return nil }

func TestGuardAndClose(t *testing.T) {
	bus := &fakeBus{}
	chc := &pingCH{err: errors.New("connection refused")}
	s := &Store{Bus: bus, CH: chc}

	err := s.Guard(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ch: connection refused")
	assert.Contains(t, err.Error(), "nats: not connected")

	bus.connected, chc.err = true, nil
	assert.NoError(t, s.Guard(context.Background()))

	require.NoError(t, s.Close(context.Background()))
	assert.True(t, bus.drained)
	assert.True(t, chc.closed)

	var nilStore *Store
	assert.Error(t, nilStore.Guard(context.Background()))
}

func TestRunID(t *testing.T) {
	_, ok := RunID(context.Background())
	assert.False(t, ok)

	id, ok := RunID(WithRun(context.Background(), "run-1"))
	assert.True(t, ok)
	assert.Equal(t, "run-1", id)

	_, ok = RunID(WithRun(context.Background(), ""))
	assert.False(t, ok)
}
