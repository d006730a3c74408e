package chunker

import (
	"strings"

	"github.com/statico/quickrag/internal/tokens"
	"github.com/statico/quickrag/pkg/types"
)

// separators is the boundary ladder tried coarse to fine: paragraph breaks,
// line breaks, sentence terminators, secondary punctuation, single spaces.
// Spans that none of these can break are cut proportionally by character
// count as a last resort.
var separators = []string{"\n\n", "\n", ". ", "! ", "? ", "; ", ", ", " "}

// RecursiveChunker splits text at the coarsest boundary that keeps each
// chunk within the token budget, recursing to finer boundaries as needed.
//
// The outer loop re-runs the full recursive split on the remaining suffix of
// the document each iteration and keeps only the first produced group; the
// rest is recomputed, not reused, on the next iteration. This recomputation
// is a known inefficiency accepted for simplicity; optimizing it naively
// could shift boundaries.
type RecursiveChunker struct {
	opts Options
}

// NewRecursive creates a recursive boundary-aware chunker.
func NewRecursive(opts Options) (*RecursiveChunker, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &RecursiveChunker{opts: opts}, nil
}

// Chunk implements the Chunker interface.
func (c *RecursiveChunker) Chunk(text, sourcePath string) ([]types.TextUnit, error) {
	if blank(text) {
		return nil, nil
	}

	li := newLineIndex(text)
	var units []types.TextUnit

	start := 0
	for start < len(text) {
		first := splitSpan(text[start:], c.opts.TargetTokens, 0)[0]
		end := start + len(first)

		if trimmed := strings.TrimSpace(first); keep(trimmed, c.opts.MinUnitChars) {
			units = append(units, makeUnit(li, text, sourcePath, start, end))
		}

		if end >= len(text) {
			break
		}
		start = nextStart(start, end, first, c.opts.OverlapTokens)
	}

	return units, nil
}

// splitSpan splits a span against a token budget. A span that already fits
// is returned unsplit. Otherwise each separator is tried in order: the span
// is split on it and the pieces greedily re-accumulated into groups whose
// estimated tokens stay within budget; if that yields more than one group,
// each group recurses with the finer separators and the results are
// flattened. A span no separator can break is one unbreakable long token:
// it is truncated proportionally to the budget, which may cut mid-word.
// The truncated remainder is not lost; the document-level loop restarts
// from the cut.
func splitSpan(span string, budget, sepIdx int) []string {
	if tokens.Estimate(span) <= budget {
		return []string{span}
	}

	for i := sepIdx; i < len(separators); i++ {
		pieces := strings.SplitAfter(span, separators[i])
		if len(pieces) < 2 {
			continue
		}
		groups := regroup(span, pieces, budget)
		if len(groups) < 2 {
			continue
		}
		var out []string
		for _, g := range groups {
			out = append(out, splitSpan(g, budget, i+1)...)
		}
		return out
	}

	est := tokens.Estimate(span)
	cut := len(span) * budget / est
	if cut < 1 {
		cut = 1
	}
	return []string{span[:cut]}
}

// regroup greedily accumulates pieces, in their original order, into groups
// whose estimated token count stays within budget, starting a new group
// whenever adding the next piece would exceed it. Pieces are contiguous
// substrings of span, so each group is addressed by offsets and estimated
// over its exact concatenated text.
func regroup(span string, pieces []string, budget int) []string {
	var groups []string
	gStart, gEnd := 0, 0
	for _, p := range pieces {
		if gEnd > gStart && tokens.Estimate(span[gStart:gEnd+len(p)]) > budget {
			groups = append(groups, span[gStart:gEnd])
			gStart = gEnd
		}
		gEnd += len(p)
	}
	if gEnd > gStart {
		groups = append(groups, span[gStart:gEnd])
	}
	return groups
}
