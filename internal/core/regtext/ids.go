package regtext

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const maxSlug = 120

// ContentHash is the stable sha256 hex digest of the full text
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Slug reduces a url to lowercase alphanumerics joined by dashes
// scheme, query and fragment are ignored so tracking parameters do not fork ids
func Slug(rawURL string) string {
	s := strings.ToLower(strings.TrimSpace(rawURL))
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimPrefix(s, "www.")

	var b strings.Builder
	b.Grow(len(s))
	dash := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimRight(b.String(), "-")
	if len(out) > maxSlug {
		out = strings.TrimRight(out[:maxSlug], "-")
	}
	return out
}

// ProposalID derives the deterministic proposal id for a regulator document
func ProposalID(regulator, docURL string) string {
	reg := strings.ToUpper(strings.TrimSpace(regulator))
	sum := sha256.Sum256([]byte(reg + "|" + Slug(docURL)))
	return strings.ToLower(reg) + "-" + hex.EncodeToString(sum[:])[:16]
}
