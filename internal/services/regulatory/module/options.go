package module

import (
	"time"

	"sentinel/internal/platform/config"
)

// Options holds configuration settings for the regulatory module
type Options struct {
	SearchAPIKey      string
	SearchBaseURL     string
	SearchMaxResults  int
	LookbackDays      int
	ExtractMaxURLs    int
	PortalBaseURL     string
	PortalMaxPages    int
	PortalRatePerSec  float64
	DetailConcurrency int
	FetchTimeout      time.Duration
	PDFMaxBytes       int64
	ChunkSize         int
	ChunkOverlap      int
	MaxChunks         int
	// ScrapeTimeout bounds the buffered scrape route
	ScrapeTimeout time.Duration
}

// FromConfig extracts Options from the given config.Conf
func FromConfig(cfg config.Conf) Options {
	rc := cfg.Prefix("CORE_REGULATORY_")
	return Options{
		SearchAPIKey:      rc.MayString("SEARCH_API_KEY", ""),
		SearchBaseURL:     rc.MayString("SEARCH_BASE_URL", ""),
		SearchMaxResults:  rc.MayInt("SEARCH_MAX_RESULTS", 5),
		LookbackDays:      rc.MayInt("LOOKBACK_DAYS", 30),
		ExtractMaxURLs:    rc.MayInt("EXTRACT_MAX_URLS", 20),
		PortalBaseURL:     rc.MayString("PORTAL_BASE_URL", "https://www.mas.gov.sg"),
		PortalMaxPages:    rc.MayInt("PORTAL_MAX_PAGES", 3),
		PortalRatePerSec:  rc.MayFloat64("PORTAL_RPS", 2),
		DetailConcurrency: rc.MayInt("DETAIL_CONCURRENCY", 4),
		FetchTimeout:      rc.MayDuration("FETCH_TIMEOUT", 30*time.Second),
		PDFMaxBytes:       int64(rc.MayInt("PDF_MAX_BYTES", 25<<20)),
		ChunkSize:         rc.MayInt("CHUNK_SIZE", 1200),
		ChunkOverlap:      rc.MayInt("CHUNK_OVERLAP", 150),
		MaxChunks:         rc.MayInt("MAX_CHUNKS", 30),
		ScrapeTimeout:     rc.MayDuration("SCRAPE_TIMEOUT", 5*time.Minute),
	}
}
