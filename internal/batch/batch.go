// Package batch packs deduplicated text units into embedding batches
// bounded by count, character, and token budgets.
package batch

import (
	"github.com/statico/quickrag/internal/tokens"
	"github.com/statico/quickrag/pkg/types"
)

// Limits bounds a single batch. A limit of zero or less means unbounded for
// that dimension.
type Limits struct {
	MaxUnits  int
	MaxChars  int
	MaxTokens int
}

// Plan greedily packs units into batches, preserving input order within and
// across batches. Batches are numbered sequentially starting at 1. A unit
// joins the current batch when the batch is empty or adding it keeps the
// running character and token sums within their limits and the unit count
// below MaxUnits; otherwise the batch closes and a new one starts.
//
// A single unit that alone exceeds MaxChars or MaxTokens cannot be placed in
// any batch; that is a fatal BatchTooLargeError, never a silently oversized
// batch or a dropped unit.
func Plan(units []types.TextUnit, limits Limits) ([]types.Batch, error) {
	var batches []types.Batch
	current := types.Batch{Seq: 1}

	flush := func() {
		if len(current.Units) > 0 {
			batches = append(batches, current)
			current = types.Batch{Seq: current.Seq + 1}
		}
	}

	for _, u := range units {
		chars := len(u.Text)
		toks := tokens.Estimate(u.Text)

		if (limits.MaxChars > 0 && chars > limits.MaxChars) ||
			(limits.MaxTokens > 0 && toks > limits.MaxTokens) {
			return nil, &types.BatchTooLargeError{
				Unit:      u,
				Chars:     chars,
				Tokens:    toks,
				MaxChars:  limits.MaxChars,
				MaxTokens: limits.MaxTokens,
			}
		}

		if !fits(&current, chars, toks, limits) {
			flush()
		}
		current.Units = append(current.Units, u)
		current.EstimatedChars += chars
		current.EstimatedTokens += toks
	}
	flush()

	return batches, nil
}

func fits(b *types.Batch, chars, toks int, limits Limits) bool {
	if len(b.Units) == 0 {
		return true
	}
	if limits.MaxUnits > 0 && len(b.Units) >= limits.MaxUnits {
		return false
	}
	if limits.MaxChars > 0 && b.EstimatedChars+chars > limits.MaxChars {
		return false
	}
	if limits.MaxTokens > 0 && b.EstimatedTokens+toks > limits.MaxTokens {
		return false
	}
	return true
}
