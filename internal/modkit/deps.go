// Package modkit builds api modules from shared backends and functional options
package modkit

import (
	"sentinel/internal/modkit/repokit"
	"sentinel/internal/platform/config"
	"sentinel/internal/platform/logger"
	"sentinel/internal/platform/store"
)

// Deps are the shared backends every module constructor receives
// PG, CH and Bus are nil when that backend is not configured
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
	Bus store.Bus
}
