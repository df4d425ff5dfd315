// Package regulators holds the discovery configuration for each regulatory authority
package regulators

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
)

//go:embed regulators.json
var embedded []byte

// Config describes how to discover publications of one regulator
type Config struct {
	Code               string   `json:"code"`
	Regulator          string   `json:"regulator"`
	Active             bool     `json:"active"`
	Portal             string   `json:"portal,omitempty"`
	IncludeDomains     []string `json:"include_domains"`
	Queries            []string `json:"queries"`
	PortalTopics       []string `json:"portal_topics,omitempty"`
	PortalContentTypes []string `json:"portal_content_types,omitempty"`
}

// HasPortal reports whether the regulator has a dedicated portal crawler
func (c Config) HasPortal() bool { return c.Portal != "" }

type rawFile struct {
	Version    int      `json:"version"`
	Regulators []Config `json:"regulators"`
}

// Set is an ordered list of regulator configs
type Set []Config

// Default returns the embedded regulator set
func Default() (Set, error) { return Parse(embedded) }

// Parse decodes and validates a regulators document
func Parse(b []byte) (Set, error) {
	var rf rawFile
	if err := json.Unmarshal(b, &rf); err != nil {
		return nil, fmt.Errorf("regulators: parse: %w", err)
	}
	seen := map[string]struct{}{}
	out := make(Set, 0, len(rf.Regulators))
	for _, c := range rf.Regulators {
		c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
		if c.Code == "" {
			return nil, fmt.Errorf("regulators: empty code")
		}
		if _, dup := seen[c.Code]; dup {
			return nil, fmt.Errorf("regulators: duplicate code %q", c.Code)
		}
		seen[c.Code] = struct{}{}
		out = append(out, c)
	}
	return out, nil
}

// Filter returns the active configs matching codes (case-insensitive)
// an empty filter selects every active config
func (s Set) Filter(codes []string) Set {
	want := map[string]struct{}{}
	for _, c := range codes {
		if c = strings.ToUpper(strings.TrimSpace(c)); c != "" {
			want[c] = struct{}{}
		}
	}
	var out Set
	for _, c := range s {
		if !c.Active {
			continue
		}
		if len(want) > 0 {
			if _, ok := want[c.Code]; !ok {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

// Codes returns the codes in order
func (s Set) Codes() []string {
	out := make([]string, 0, len(s))
	for _, c := range s {
		out = append(out, c.Code)
	}
	return out
}
