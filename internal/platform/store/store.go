// Package store opens the optional backends (postgres, clickhouse, nats)
// and hands them to services as small seams. A disabled backend stays nil
package store

import (
	"context"
	"errors"
	"fmt"

	"sentinel/internal/platform/logger"
)

// Store holds the enabled backends; the zero value has none
type Store struct {
	Log logger.Logger // traces sql when PG.LogSQL is set

	PG  TxRunner
	CH  Clickhouse
	Bus Bus
}

// Option customises Open
type Option func(*Store) error

// WithLogger sets the logger backends trace through
func WithLogger(log logger.Logger) Option {
	return func(s *Store) error {
		s.Log = log
		return nil
	}
}

// Open connects every backend enabled in cfg, in the order pg, ch, nats.
// The first failure aborts Open
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}

	var err error
	if cfg.PG.Enabled {
		if s.PG, err = openPG(ctx, cfg, s); err != nil {
			return nil, err
		}
	}
	if cfg.CH.Enabled {
		if s.CH, err = openCH(ctx, cfg, s); err != nil {
			return nil, err
		}
	}
	if cfg.NATS.Enabled {
		if s.Bus, err = openNATS(ctx, cfg, s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

type backend struct {
	name string
	impl any
}

func (s *Store) backends() []backend {
	return []backend{{"pg", s.PG}, {"ch", s.CH}, {"nats", s.Bus}}
}

// Guard pings every enabled backend and joins the failures
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return errors.New("store: nil")
	}
	var errs []error
	for _, b := range s.backends() {
		switch v := b.impl.(type) {
		case Pinger:
			if err := v.Ping(ctx); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", b.name, err))
			}
		case interface{ IsConnected() bool }:
			if !v.IsConnected() {
				errs = append(errs, fmt.Errorf("%s: not connected", b.name))
			}
		}
	}
	return errors.Join(errs...)
}

// Close drains the bus first, then closes clickhouse and postgres
func (s *Store) Close(context.Context) error {
	var errs []error
	if s.Bus != nil {
		errs = append(errs, s.Bus.Drain())
	}
	if s.CH != nil {
		errs = append(errs, s.CH.Close())
	}
	if c, ok := s.PG.(interface{ Close() error }); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
