// Package regtext turns extracted regulatory text into rule proposal material.
// It cleans text, splits sentences, picks normative statements, finds effective
// dates and derives the stable hashes and ids used for change detection
package regtext

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// pool of transformer chains; a chain carries state so it is not shared
var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKC,
			runes.Remove(runes.In(unicode.Cf)), // soft hyphens, zero widths, BOM
			width.Fold,
		)
	},
}

// Sanitize drops invalid UTF-8, NUL, DEL, C0 controls other than tab and line
// breaks, and C1 controls
func Sanitize(s string) string {
	if s == "" {
		return s
	}
	s = strings.ToValidUTF8(s, "")
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			return r
		case r < 0x20 || r == 0x7f:
			return -1
		case r >= 0x80 && r <= 0x9f:
			return -1
		}
		return r
	}, s)
}

// Clean sanitizes and NFKC folds s, keeping line structure
// case is preserved since proposals quote the source
func Clean(s string) string {
	s = Sanitize(s)
	if s == "" {
		return s
	}
	tr := chainPool.Get().(transform.Transformer)
	out, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		return s
	}
	return out
}

// Collapse turns every whitespace run into one space and trims the ends
func Collapse(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// Truncate cuts s to at most n runes
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// Summary is the first n runes of the whitespace collapsed text
func Summary(s string, n int) string { return Truncate(Collapse(s), n) }
