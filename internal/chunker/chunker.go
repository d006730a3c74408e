package chunker

import (
	"fmt"
	"sort"
	"strings"

	"github.com/statico/quickrag/internal/tokens"
	"github.com/statico/quickrag/pkg/types"
)

// Chunking strategies selectable at configuration time. All strategies
// implement the same contract and are interchangeable.
const (
	StrategyRecursive = "recursive"
	StrategyFixed     = "fixed"
	StrategyMarkdown  = "markdown"
)

// Chunker turns one document's text into an ordered sequence of bounded,
// overlapping text units. Empty or whitespace-only text yields an empty
// sequence.
type Chunker interface {
	Chunk(text, sourcePath string) ([]types.TextUnit, error)
}

// Options configures a chunker. OverlapTokens must be strictly smaller than
// TargetTokens; units whose trimmed text is shorter than MinUnitChars are
// dropped after chunking.
type Options struct {
	TargetTokens  int
	OverlapTokens int
	MinUnitChars  int
}

// Validate checks chunking parameters, returning a configuration error
// before any work begins.
func (o Options) Validate() error {
	if o.TargetTokens <= 0 {
		return fmt.Errorf("%w: target tokens must be positive, got %d", types.ErrConfiguration, o.TargetTokens)
	}
	if o.OverlapTokens < 0 {
		return fmt.Errorf("%w: overlap tokens must be non-negative, got %d", types.ErrConfiguration, o.OverlapTokens)
	}
	if o.OverlapTokens >= o.TargetTokens {
		return fmt.Errorf("%w: overlap tokens (%d) must be smaller than target tokens (%d)",
			types.ErrConfiguration, o.OverlapTokens, o.TargetTokens)
	}
	if o.MinUnitChars < 0 {
		return fmt.Errorf("%w: minimum unit size must be non-negative, got %d", types.ErrConfiguration, o.MinUnitChars)
	}
	return nil
}

// New creates a chunker for the named strategy.
func New(strategy string, opts Options) (Chunker, error) {
	switch strategy {
	case StrategyRecursive:
		return NewRecursive(opts)
	case StrategyFixed:
		return NewFixed(opts)
	case StrategyMarkdown:
		return NewMarkdown(opts)
	default:
		return nil, fmt.Errorf("%w: unknown chunking strategy %q", types.ErrConfiguration, strategy)
	}
}

// lineIndex maps byte offsets to 1-indexed line numbers via a precomputed
// table of line-start offsets and binary search.
type lineIndex struct {
	starts []int
}

func newLineIndex(text string) *lineIndex {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lineIndex{starts: starts}
}

func (li *lineIndex) lineAt(offset int) int {
	return sort.Search(len(li.starts), func(i int) bool {
		return li.starts[i] > offset
	})
}

// makeUnit builds a TextUnit for the span [start, end) of text.
func makeUnit(li *lineIndex, text, sourcePath string, start, end int) types.TextUnit {
	last := end - 1
	if last < start {
		last = start
	}
	return types.TextUnit{
		Text:        text[start:end],
		SourcePath:  sourcePath,
		StartLine:   li.lineAt(start),
		EndLine:     li.lineAt(last),
		StartOffset: start,
		EndOffset:   end,
	}
}

// keep reports whether a chunk's trimmed text clears the empty and
// minimum-size filters.
func keep(trimmed string, minChars int) bool {
	return trimmed != "" && len(trimmed) >= minChars
}

// nextStart computes the start offset of the next chunk after emitting the
// span [start, end). The overlap ratio is capped at 50% of the chunk, and
// the result advances at least one character past start so progress is
// guaranteed even when overlap would otherwise stall it.
func nextStart(start, end int, chunk string, overlapTokens int) int {
	next := end
	if overlapTokens > 0 {
		if est := tokens.Estimate(chunk); est > 0 {
			ratio := float64(overlapTokens) / float64(est)
			if ratio > 0.5 {
				ratio = 0.5
			}
			next = end - int(float64(len(chunk))*ratio)
		}
	}
	if next < start+1 {
		next = start + 1
	}
	return next
}

// blank reports whether text contains nothing but whitespace.
func blank(text string) bool {
	return strings.TrimSpace(text) == ""
}
