package regtext

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	// MaxNormative caps the criteria taken from normative sentences
	MaxNormative = 6
	// FallbackSentences is how many leading sentences stand in when nothing is normative
	FallbackSentences = 3
	// maxSentenceRunes keeps one runaway pdf "sentence" from swallowing a proposal
	maxSentenceRunes = 600
)

var normativeRe = regexp.MustCompile(`(?i)\b(must|should|shall|required|ensure[sd]?|prohibit\w*|oblig\w*)\b`)

// Sentences splits text on terminal punctuation followed by whitespace and on
// blank-line paragraph breaks, returning collapsed non-empty sentences
func Sentences(s string) []string {
	rs := []rune(s)
	var out []string
	start := 0
	emit := func(end int) {
		if end <= start {
			return
		}
		if sent := Collapse(string(rs[start:end])); len(sent) > 1 {
			out = append(out, Truncate(sent, maxSentenceRunes))
		}
		start = end
	}
	for i := 0; i < len(rs); i++ {
		switch r := rs[i]; {
		case r == '.' || r == '!' || r == '?':
			if i+1 == len(rs) || unicode.IsSpace(rs[i+1]) {
				emit(i + 1)
			}
		case r == '\n':
			// paragraph break: a newline followed by optional spaces and another newline
			j := i + 1
			for j < len(rs) && (rs[j] == ' ' || rs[j] == '\t' || rs[j] == '\r') {
				j++
			}
			if j < len(rs) && rs[j] == '\n' {
				emit(i)
			}
		}
	}
	emit(len(rs))
	return out
}

// IsNormative reports whether a sentence carries an obligation keyword
func IsNormative(s string) bool { return normativeRe.MatchString(s) }

// Criteria picks up to MaxNormative normative sentences, falling back to the
// first FallbackSentences sentences when none qualify
func Criteria(text string) []string {
	sents := Sentences(text)
	var out []string
	for _, s := range sents {
		if IsNormative(s) {
			out = append(out, s)
			if len(out) == MaxNormative {
				return out
			}
		}
	}
	if len(out) > 0 {
		return out
	}
	if len(sents) > FallbackSentences {
		sents = sents[:FallbackSentences]
	}
	return append([]string(nil), sents...)
}

// firstLine is used for titles when a source gives none
func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return Collapse(s)
}

// Title returns a short display title for extracted text
func Title(s string) string { return Truncate(firstLine(s), 160) }
