package module

import (
	"sentinel/internal/platform/config"
)

// Options holds configuration settings for the run log module
type Options struct {
	// Persist writes every event to the run_events table when postgres is wired
	Persist bool
	// Archive copies events to clickhouse when it is wired
	Archive bool
	// Subject is the nats subject prefix events are published on
	Subject string
}

// FromConfig extracts Options from the given config.Conf
func FromConfig(cfg config.Conf) Options {
	rc := cfg.Prefix("CORE_SENTINEL_")
	return Options{
		Persist: rc.MayBool("RUN_LOG", true),
		Archive: rc.MayBool("ARCHIVE", false),
		Subject: rc.MayString("NATS_SUBJECT", "sentinel.events"),
	}
}
