// Package chunker splits extracted document text into overlapping chunks
// suitable for embedding.
package chunker

import (
	"regexp"
	"strings"
)

// DefaultMaxSize is the default chunk size in characters.
const DefaultMaxSize = 1000

// DefaultOverlap is the default number of characters carried over from the
// end of one chunk into the next.
const DefaultOverlap = 200

// paragraphSep matches blank-line runs separating paragraphs.
var paragraphSep = regexp.MustCompile(`\n\s*\n`)

// Split breaks text into paragraph-aware chunks of at most maxSize
// characters, with the trailing overlap characters of each emitted chunk
// seeding the next one. Paragraphs are never split: a single paragraph longer
// than maxSize is emitted as one oversize chunk. Character counts are runes,
// so multi-byte text is never cut mid-character.
//
// An overlap >= maxSize would make the buffer grow without bound, so it is
// clamped to maxSize/4.
func Split(text string, maxSize, overlap int) []string {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	if overlap >= maxSize {
		overlap = maxSize / 4
	}

	paragraphs := paragraphSep.Split(text, -1)

	var chunks []string
	var current string

	for _, para := range paragraphs {
		if runeLen(current)+runeLen(para) > maxSize && current != "" {
			chunks = append(chunks, strings.TrimSpace(current))
			current = tail(current, overlap) + "\n\n" + para
			continue
		}
		if current != "" {
			current += "\n\n" + para
		} else {
			current = para
		}
	}

	if trimmed := strings.TrimSpace(current); trimmed != "" {
		chunks = append(chunks, trimmed)
	}

	return chunks
}

func runeLen(s string) int {
	return len([]rune(s))
}

// tail returns the last n runes of s.
func tail(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
