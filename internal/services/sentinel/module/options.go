package module

import (
	"sentinel/internal/platform/config"
	"sentinel/internal/services/sentinel/domain"
)

// Options holds configuration settings for the sentinel module
type Options struct {
	Threshold    float64
	Regulators   []string
	DemoCSV      string
	DefaultLimit int
}

// FromConfig extracts Options from the given config.Conf
func FromConfig(cfg config.Conf) Options {
	sc := cfg.Prefix("CORE_SENTINEL_")
	return Options{
		Threshold:    sc.MayFloat64("REGULATORY_THRESHOLD", domain.DefaultThreshold),
		Regulators:   sc.MayCSV("REGULATORS", nil),
		DemoCSV:      sc.MayString("DEMO_CSV", "data/demo_transactions.csv"),
		DefaultLimit: sc.MayInt("DEFAULT_LIMIT", 25),
	}
}
