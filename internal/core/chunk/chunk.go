// Package chunk splits document text into overlapping windows for retrieval
package chunk

import (
	"strings"
	"unicode"
)

// Defaults for document chunking
const (
	DefaultSize    = 1200
	DefaultOverlap = 150
	DefaultMax     = 30
)

// Options tunes the splitter; zero values take the defaults
type Options struct {
	Size    int
	Overlap int
	Max     int
}

func (o Options) norm() Options {
	if o.Size <= 0 {
		o.Size = DefaultSize
	}
	if o.Overlap <= 0 || o.Overlap >= o.Size/2 {
		o.Overlap = DefaultOverlap
		if o.Overlap >= o.Size/2 {
			o.Overlap = o.Size / 4
		}
	}
	if o.Max <= 0 {
		o.Max = DefaultMax
	}
	return o
}

// Chunk is one window of a document
type Chunk struct {
	Ordinal int
	Start   int // rune offset
	End     int // rune offset, exclusive
	Text    string
}

// Split cuts text into windows of about Size runes that overlap by Overlap
// a window end snaps back to the last whitespace found past half the window
// at most Max chunks are returned
func Split(text string, o Options) []Chunk {
	o = o.norm()
	rs := []rune(text)
	var out []Chunk
	start := 0
	for start < len(rs) && len(out) < o.Max {
		end := start + o.Size
		if end >= len(rs) {
			end = len(rs)
		} else {
			for i := end; i > start+o.Size/2; i-- {
				if unicode.IsSpace(rs[i]) {
					end = i
					break
				}
			}
		}

		if t := strings.TrimSpace(string(rs[start:end])); t != "" {
			out = append(out, Chunk{Ordinal: len(out), Start: start, End: end, Text: t})
		}
		if end == len(rs) {
			break
		}

		next := end - o.Overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return out
}
