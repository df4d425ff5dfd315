// Package service implements the regulatory sub-pipeline: scan, extract,
// generate and version, composed by the Orchestrator
package service

import (
	"time"

	"sentinel/internal/core/chunk"
)

// node names used on the event channel
const (
	Graph        = "regulatory"
	NodeScan     = "scan"
	NodeExtract  = "extract"
	NodeGenerate = "generate"
	NodeVersion  = "version"
)

// Config tunes the pipeline stages
type Config struct {
	LookbackDays      int
	SearchMaxResults  int
	ExtractMaxURLs    int
	DetailConcurrency int
	Chunk             chunk.Options

	// Now is the clock used for cursors and extraction stamps
	Now func() time.Time
}

func (c Config) norm() Config {
	if c.LookbackDays <= 0 {
		c.LookbackDays = 30
	}
	if c.SearchMaxResults <= 0 {
		c.SearchMaxResults = 5
	}
	if c.ExtractMaxURLs <= 0 {
		c.ExtractMaxURLs = 20
	}
	if c.DetailConcurrency <= 0 {
		c.DetailConcurrency = 4
	}
	if c.Now == nil {
		c.Now = func() time.Time { return time.Now().UTC() }
	}
	return c
}

const dateLayout = "2006-01-02"

// cursorDate returns the YYYY-MM-DD part of an RFC 3339 or date cursor
func cursorDate(cursor string) (string, bool) {
	if t, err := time.Parse(time.RFC3339, cursor); err == nil {
		return t.UTC().Format(dateLayout), true
	}
	if _, err := time.Parse(dateLayout, cursor); err == nil {
		return cursor, true
	}
	return "", false
}
