// @title         Sentinel API
// @version       0.1.0
// @description   Transaction monitoring and regulatory intelligence pipeline

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sentinel/internal/modkit/repokit"
	"sentinel/internal/platform/config"
	"sentinel/internal/platform/logger"
	phttp "sentinel/internal/platform/net/http"
	"sentinel/internal/platform/store"

	"sentinel/internal/services/api"
)

func main() {
	// service-scoped config for HTTP etc (CORE_API_*); modules read the root
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	pgCfg := root.Prefix("SERVICE_PGSQL_")      // pgCfg lives under SERVICE_PGSQL_*
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_") // chCfg lives under SERVICE_CLICKHOUSE_*
	natsCfg := root.Prefix("SERVICE_NATS_")     // natsCfg lives under SERVICE_NATS_*
	// bring up logging early
	l := logger.Get()

	// every backend is optional; the pipeline degrades to in-memory sinks
	st, err := store.Open(
		context.Background(),
		store.Config{
			AppName: "sentinel-api",
			PG: store.PGConfig{
				Enabled:     pgCfg.MayBool("ENABLED", pgCfg.MayString("DBURL", "") != ""),
				URL:         pgCfg.MayString("DBURL", ""),
				MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
				SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
				LogSQL:      pgCfg.MayBool("LOG_SQL", false),

				ConnectRetries: pgCfg.MayInt("CONNECT_RETRIES", 6),
				PingTimeout:    pgCfg.MayDuration("PING_TIMEOUT", 5*time.Second),
			},
			CH: store.CHConfig{
				Enabled: chCfg.MayBool("ENABLED", chCfg.MayString("DBURL", "") != ""),
				URL:     chCfg.MayString("DBURL", ""),
				Role:    "sentinel",
				Tag:     "api",
			},
			NATS: store.NATSConfig{
				Enabled: natsCfg.MayBool("ENABLED", natsCfg.MayString("URL", "") != ""),
				URL:     natsCfg.MayString("URL", ""),
				Timeout: natsCfg.MayDuration("TIMEOUT", 0),
			},
		},
		store.WithLogger(*logger.Get()),
	)
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// fail fast when a configured backend is unreachable
	repokit.MustGuard(context.Background(), st, apiCfg.MayDuration("GUARD_TIMEOUT", 10*time.Second))

	// http server (reads CORE_API_ADDR / CORE_API_SHUTDOWN_GRACE)
	srv := phttp.NewServer(apiCfg)

	api.Mount(
		srv.Router(),
		api.Options{
			Config:         root,
			Store:          st,
			Logger:         l,
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
			EnableMetrics:  apiCfg.MayBool("METRICS", true),
			CORSOrigins:    apiCfg.MayCSV("CORS_ORIGINS", nil),
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
