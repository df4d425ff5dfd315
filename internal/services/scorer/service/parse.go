package service

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"sentinel/internal/core/aml"
	"sentinel/internal/core/catalog"
	"sentinel/internal/core/regtext"
	perr "sentinel/internal/platform/errors"
	"sentinel/internal/services/scorer/domain"
)

const replySchemaURL = "https://sentinel.local/schemas/scorer-reply.json"

// the reply shape is checked loosely; the sanitizer owns field level repair
const replySchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["rule_hits"],
  "properties": {
    "rule_hits": {"type": "array", "items": {"type": "object"}}
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := c.AddResource(replySchemaURL, strings.NewReader(replySchema)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile(replySchemaURL)
	})
	return schema, schemaErr
}

// decodeReply parses the model reply into a generic document
// when the whole reply is not json, the outermost {...} span is tried
func decodeReply(raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		i, j := strings.Index(raw, "{"), strings.LastIndex(raw, "}")
		if i < 0 || j <= i {
			return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "scorer: reply is not json")
		}
		if err := json.Unmarshal([]byte(raw[i:j+1]), &doc); err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "scorer: reply is not json")
		}
	}

	s, err := compiledSchema()
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "scorer: compile reply schema")
	}
	if err := s.Validate(doc); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "scorer: reply does not match schema")
	}
	return doc.(map[string]any), nil
}

// sanitize keeps catalog hits only, repairs their fields and clamps the score
// it returns the cleaned hits, the score and how many hits were dropped
func sanitize(doc map[string]any, cat *catalog.Catalog) ([]aml.RuleHit, float64, int) {
	items, _ := doc["rule_hits"].([]any)
	hits := make([]aml.RuleHit, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	dropped := 0
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			dropped++
			continue
		}
		id, _ := m["rule_id"].(string)
		id = strings.TrimSpace(id)
		if !cat.Has(id) {
			dropped++
			continue
		}
		rationale, okR := m["rationale"].(string)
		w, okW := number(m["weight"])
		if !okR || !okW {
			dropped++
			continue
		}
		if _, dup := seen[id]; dup {
			dropped++
			continue
		}
		seen[id] = struct{}{}
		hits = append(hits, aml.RuleHit{
			RuleID:    id,
			Rationale: regtext.Truncate(strings.TrimSpace(rationale), domain.MaxRationaleLen),
			Weight:    ClampWeight(w),
		})
	}

	score, ok := number(doc["score"])
	if !ok {
		score = 0
	}
	return hits, ClampScore(score), dropped
}

// number accepts json numbers and numeric strings
func number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, !math.IsNaN(x)
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// ClampWeight bounds a hit weight to [MinWeight, MaxWeight]
func ClampWeight(w float64) float64 {
	return math.Min(domain.MaxWeight, math.Max(domain.MinWeight, w))
}

// ClampScore bounds a score to [0, 1]
func ClampScore(s float64) float64 {
	if math.IsNaN(s) {
		return 0
	}
	return math.Min(1, math.Max(0, s))
}
