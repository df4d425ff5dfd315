package repokit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type nopQueryer struct{ Queryer }

type docRepo struct{ q Queryer }

func TestBinder(t *testing.T) {
	var b Binder[docRepo] = BindFunc[docRepo](func(q Queryer) docRepo { return docRepo{q: q} })
	q := nopQueryer{}
	assert.Equal(t, docRepo{q: q}, MustBind(b, q))
	assert.PanicsWithValue(t, "repokit: nil Queryer", func() { MustBind(b, nil) })
}

type guardFunc func(context.Context) error

func (f guardFunc) Guard(ctx context.Context) error { return f(ctx) }

func TestMustGuard(t *testing.T) {
	var sawDeadline bool
	ok := guardFunc(func(ctx context.Context) error {
		_, sawDeadline = ctx.Deadline()
		return nil
	})
	assert.NotPanics(t, func() { MustGuard(context.Background(), ok, time.Second) })
	assert.True(t, sawDeadline)

	down := guardFunc(func(context.Context) error { return errors.New("nats: not connected") })
	assert.PanicsWithError(t, "dependency guard failed: nats: not connected", func() {
		MustGuard(context.Background(), down, 0)
	})
}
