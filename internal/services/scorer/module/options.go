package module

import (
	"time"

	"sentinel/internal/platform/config"
)

// Options holds configuration settings for the scorer module
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	RatePerSec float64
	Timeout    time.Duration
}

// FromConfig extracts Options from the given config.Conf
func FromConfig(cfg config.Conf) Options {
	sc := cfg.Prefix("CORE_SCORER_")
	return Options{
		APIKey:     sc.MayString("LLM_API_KEY", ""),
		BaseURL:    sc.MayString("LLM_BASE_URL", ""),
		Model:      sc.MayString("LLM_MODEL", "gpt-4o-mini"),
		RatePerSec: sc.MayFloat64("LLM_RPS", 0),
		Timeout:    sc.MayDuration("LLM_TIMEOUT", 60*time.Second),
	}
}
