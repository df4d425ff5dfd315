// Package catalog loads the fixed AML rule catalog from the embedded rules.json.
// The scorer only accepts rule hits whose id is a member of this catalog
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

//go:embed rules.json
var embedded []byte

type rawRule struct {
	ID            string   `json:"id"`
	Category      string   `json:"category"`
	DefaultWeight float64  `json:"default_weight"`
	Description   string   `json:"description"`
	Fields        []string `json:"fields"`
}

type rawCatalog struct {
	Version    int            `json:"version"`
	Meta       map[string]any `json:"meta"`
	Categories []string       `json:"categories"`
	Rules      []rawRule      `json:"rules"`
}

// Rule is one catalog entry
type Rule struct {
	ID            string
	Category      string
	DefaultWeight float64
	Description   string
	Fields        []string
}

// Catalog is the compiled rule catalog
type Catalog struct {
	Version    int
	Categories []string
	Rules      []Rule // sorted by id
	byID       map[string]Rule
}

// Size is the number of rules the catalog must carry
const Size = 16

var (
	once    sync.Once
	loaded  *Catalog
	loadErr error
)

// Default returns the embedded catalog, parsed once
func Default() (*Catalog, error) {
	once.Do(func() { loaded, loadErr = Parse(embedded) })
	return loaded, loadErr
}

// MustDefault is Default for wiring code that cannot proceed without a catalog
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse compiles a catalog document
func Parse(b []byte) (*Catalog, error) {
	var rc rawCatalog
	if err := json.Unmarshal(b, &rc); err != nil {
		return nil, fmt.Errorf("catalog: parse rules.json: %w", err)
	}
	if rc.Version != 1 {
		return nil, fmt.Errorf("catalog: unsupported rules.json version %d (want 1)", rc.Version)
	}

	cats := make(map[string]struct{}, len(rc.Categories))
	for _, c := range rc.Categories {
		cats[c] = struct{}{}
	}

	c := &Catalog{
		Version:    rc.Version,
		Categories: rc.Categories,
		byID:       make(map[string]Rule, len(rc.Rules)),
	}
	for _, r := range rc.Rules {
		id := strings.TrimSpace(r.ID)
		if id == "" {
			return nil, fmt.Errorf("catalog: empty rule id")
		}
		if _, dup := c.byID[id]; dup {
			return nil, fmt.Errorf("catalog: duplicate rule id %q", id)
		}
		if _, ok := cats[r.Category]; !ok {
			return nil, fmt.Errorf("catalog: rule %q has unknown category %q", id, r.Category)
		}
		if !strings.HasPrefix(id, r.Category+":") {
			return nil, fmt.Errorf("catalog: rule %q must be prefixed by its category", id)
		}
		rule := Rule{
			ID:            id,
			Category:      r.Category,
			DefaultWeight: r.DefaultWeight,
			Description:   strings.TrimSpace(r.Description),
			Fields:        r.Fields,
		}
		c.byID[id] = rule
		c.Rules = append(c.Rules, rule)
	}
	if len(c.Rules) != Size {
		return nil, fmt.Errorf("catalog: expected %d rules, got %d", Size, len(c.Rules))
	}

	sort.Slice(c.Rules, func(i, j int) bool { return c.Rules[i].ID < c.Rules[j].ID })
	return c, nil
}

// Has reports whether id is a catalog rule
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Get returns the rule for id
func (c *Catalog) Get(id string) (Rule, bool) {
	r, ok := c.byID[id]
	return r, ok
}

// IDs returns the sorted rule ids
func (c *Catalog) IDs() []string {
	out := make([]string, 0, len(c.Rules))
	for _, r := range c.Rules {
		out = append(out, r.ID)
	}
	return out
}
