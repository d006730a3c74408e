// Package tokens provides a cheap token-count heuristic used for sizing
// decisions throughout the pipeline. The estimate is approximate, never
// exact; budgets built on it must leave margin.
package tokens

import "math"

// longWordThreshold is the average characters-per-word above which the word
// count is inflated, since long words tend to split into multiple tokens.
const longWordThreshold = 5

// Estimate approximates the token count of text by counting
// whitespace-delimited words over a single byte scan, with no allocation.
// When the average word length exceeds longWordThreshold the count is
// multiplied by 1.3 and rounded up. Empty or whitespace-only text yields 0.
func Estimate(text string) int {
	words := 0
	chars := 0
	inWord := false

	for i := 0; i < len(text); i++ {
		switch text[i] {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			inWord = false
		default:
			chars++
			if !inWord {
				words++
				inWord = true
			}
		}
	}

	if words == 0 {
		return 0
	}
	if float64(chars)/float64(words) > longWordThreshold {
		return int(math.Ceil(float64(words) * 1.3))
	}
	return words
}
