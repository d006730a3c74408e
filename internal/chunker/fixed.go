package chunker

import (
	"strings"

	"github.com/statico/quickrag/pkg/types"
)

const (
	// charsPerToken converts the token budget into a character window,
	// mirroring the rough four-characters-per-token rule.
	charsPerToken = 4

	// sentenceLookback is how far back from the window end a sentence
	// boundary is searched for.
	sentenceLookback = 100
)

// abbreviations are words whose trailing period does not end a sentence.
var abbreviations = map[string]struct{}{
	"Mr.": {}, "Mrs.": {}, "Ms.": {}, "Dr.": {}, "Prof.": {},
	"St.": {}, "Jr.": {}, "Sr.": {}, "No.": {},
	"vs.": {}, "etc.": {}, "e.g.": {}, "i.e.": {},
}

// FixedChunker splits purely on character count, snapping each cut to the
// nearest sentence-ending punctuation within a lookback window. It shares
// the overlap and forward-progress contract of the recursive chunker.
type FixedChunker struct {
	opts Options
}

// NewFixed creates a fixed-size character chunker.
func NewFixed(opts Options) (*FixedChunker, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &FixedChunker{opts: opts}, nil
}

// Chunk implements the Chunker interface.
func (c *FixedChunker) Chunk(text, sourcePath string) ([]types.TextUnit, error) {
	if blank(text) {
		return nil, nil
	}

	window := c.opts.TargetTokens * charsPerToken
	li := newLineIndex(text)
	var units []types.TextUnit

	start := 0
	for start < len(text) {
		end := start + window
		if end >= len(text) {
			end = len(text)
		} else {
			end = sentenceBoundary(text, start, end)
		}
		chunk := text[start:end]

		if trimmed := strings.TrimSpace(chunk); keep(trimmed, c.opts.MinUnitChars) {
			units = append(units, makeUnit(li, text, sourcePath, start, end))
		}

		if end >= len(text) {
			break
		}
		start = nextStart(start, end, chunk, c.opts.OverlapTokens)
	}

	return units, nil
}

// sentenceBoundary searches backwards from end, within the lookback window,
// for sentence-ending punctuation followed by a space, skipping known
// abbreviations. It returns the offset just after the space, or end when no
// boundary is found.
func sentenceBoundary(text string, start, end int) int {
	lo := end - sentenceLookback
	if lo <= start {
		lo = start + 1
	}
	for i := end - 2; i >= lo; i-- {
		ch := text[i]
		if (ch == '.' || ch == '!' || ch == '?') && text[i+1] == ' ' {
			if ch == '.' && isAbbreviation(text, i) {
				continue
			}
			return i + 2
		}
	}
	return end
}

// isAbbreviation reports whether the period at offset dot terminates a known
// abbreviation rather than a sentence.
func isAbbreviation(text string, dot int) bool {
	j := dot
	for j > 0 && !isSpace(text[j-1]) {
		j--
	}
	_, ok := abbreviations[text[j:dot+1]]
	return ok
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}
