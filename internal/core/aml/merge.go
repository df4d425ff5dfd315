package aml

// Merge returns base with incoming folded in by key
// base order is kept, values present in both take incoming's value and
// unseen incoming keys are appended in incoming order
func Merge[T any](base, incoming []T, key func(T) string) []T {
	out := make([]T, 0, len(base)+len(incoming))
	at := make(map[string]int, len(base)+len(incoming))
	for _, v := range base {
		k := key(v)
		if i, ok := at[k]; ok {
			out[i] = v
			continue
		}
		at[k] = len(out)
		out = append(out, v)
	}
	for _, v := range incoming {
		k := key(v)
		if i, ok := at[k]; ok {
			out[i] = v
			continue
		}
		at[k] = len(out)
		out = append(out, v)
	}
	return out
}

// Dedup collapses duplicates in xs, last value wins, first position kept
func Dedup[T any](xs []T, key func(T) string) []T { return Merge(nil, xs, key) }

// Unseen returns the items of incoming whose key is absent from base
func Unseen[T any](base, incoming []T, key func(T) string) []T {
	seen := Keys(base, key)
	var out []T
	for _, v := range incoming {
		k := key(v)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Keys returns the key set of xs
func Keys[T any](xs []T, key func(T) string) map[string]struct{} {
	out := make(map[string]struct{}, len(xs))
	for _, v := range xs {
		out[key(v)] = struct{}{}
	}
	return out
}

// Added counts keys present in after but not in before
func Added[T any](before, after []T, key func(T) string) int {
	seen := Keys(before, key)
	n := 0
	for k := range Keys(after, key) {
		if _, ok := seen[k]; !ok {
			n++
		}
	}
	return n
}

// CandidateKey keys candidates by url
func CandidateKey(c Candidate) string { return c.URL }

// DocumentKey keys documents by url
func DocumentKey(d Document) string { return d.URL }

// ProposalKey keys proposals by deterministic id
func ProposalKey(p Proposal) string { return p.ID }

// VersionKey keys ledger entries by rule version id
func VersionKey(v VersionRecord) string { return v.RuleVersionID }

// AppendSnippets appends and keeps the newest MaxSnippets entries
func AppendSnippets(base []Snippet, more ...Snippet) []Snippet {
	out := make([]Snippet, 0, len(base)+len(more))
	out = append(out, base...)
	out = append(out, more...)
	if len(out) > MaxSnippets {
		out = out[len(out)-MaxSnippets:]
	}
	return out
}

// MergeRegulatory folds a stage update into a regulatory state
// the update's cursor wins when set
func MergeRegulatory(base, update RegulatoryState) RegulatoryState {
	out := RegulatoryState{
		Candidates: Merge(base.Candidates, update.Candidates, CandidateKey),
		Documents:  Merge(base.Documents, update.Documents, DocumentKey),
		Proposals:  Merge(base.Proposals, update.Proposals, ProposalKey),
		Versions:   Merge(base.Versions, update.Versions, VersionKey),
		Snippets:   AppendSnippets(base.Snippets, update.Snippets...),
		Cursor:     base.Cursor,
	}
	if update.Cursor != "" {
		out.Cursor = update.Cursor
	}
	return out
}

// Clone returns a deep enough copy of s so callers can merge into it freely
func (s RegulatoryState) Clone() RegulatoryState {
	return RegulatoryState{
		Candidates: append([]Candidate(nil), s.Candidates...),
		Documents:  append([]Document(nil), s.Documents...),
		Proposals:  append([]Proposal(nil), s.Proposals...),
		Versions:   append([]VersionRecord(nil), s.Versions...),
		Snippets:   append([]Snippet(nil), s.Snippets...),
		Cursor:     s.Cursor,
	}
}

// Delta is the key-set difference between two regulatory states
type Delta struct {
	Candidates int `json:"new_candidates"`
	Documents  int `json:"new_documents"`
	Proposals  int `json:"new_proposals"`
	Versions   int `json:"new_versions"`
}

// DiffRegulatory counts items whose key appears in after but not in before
func DiffRegulatory(before, after RegulatoryState) Delta {
	return Delta{
		Candidates: Added(before.Candidates, after.Candidates, CandidateKey),
		Documents:  Added(before.Documents, after.Documents, DocumentKey),
		Proposals:  Added(before.Proposals, after.Proposals, ProposalKey),
		Versions:   Added(before.Versions, after.Versions, VersionKey),
	}
}
