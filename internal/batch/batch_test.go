package batch

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statico/quickrag/internal/tokens"
	"github.com/statico/quickrag/pkg/types"
)

func unitsOf(texts ...string) []types.TextUnit {
	units := make([]types.TextUnit, len(texts))
	for i, text := range texts {
		units[i] = types.TextUnit{Text: text, SourcePath: "doc.txt", StartLine: i + 1, EndLine: i + 1}
	}
	return units
}

func TestPlan_Empty(t *testing.T) {
	batches, err := Plan(nil, Limits{MaxUnits: 10})
	require.NoError(t, err)
	assert.Empty(t, batches)
}

func TestPlan_SingleBatch(t *testing.T) {
	batches, err := Plan(unitsOf("one two", "three four"), Limits{MaxUnits: 10, MaxChars: 1000, MaxTokens: 1000})
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, 1, batches[0].Seq)
	assert.Len(t, batches[0].Units, 2)
}

func TestPlan_MaxUnitsSplits(t *testing.T) {
	batches, err := Plan(unitsOf("a", "b", "c", "d", "e"), Limits{MaxUnits: 2})
	require.NoError(t, err)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0].Units, 2)
	assert.Len(t, batches[1].Units, 2)
	assert.Len(t, batches[2].Units, 1)
	for i, b := range batches {
		assert.Equal(t, i+1, b.Seq)
	}
}

func TestPlan_CharLimitSplits(t *testing.T) {
	// 10 chars each, limit 25: two per batch.
	texts := []string{
		strings.Repeat("a", 10), strings.Repeat("b", 10),
		strings.Repeat("c", 10), strings.Repeat("d", 10),
	}
	batches, err := Plan(unitsOf(texts...), Limits{MaxChars: 25})
	require.NoError(t, err)
	require.Len(t, batches, 2)
	for _, b := range batches {
		assert.LessOrEqual(t, b.EstimatedChars, 25)
	}
}

func TestPlan_TokenLimitSplits(t *testing.T) {
	texts := []string{"one two three", "four five six", "seven eight nine"}
	batches, err := Plan(unitsOf(texts...), Limits{MaxTokens: 6})
	require.NoError(t, err)
	require.Len(t, batches, 2)
	for _, b := range batches {
		assert.LessOrEqual(t, b.EstimatedTokens, 6)
	}
}

func TestPlan_OrderPreserved(t *testing.T) {
	var texts []string
	for i := 0; i < 50; i++ {
		texts = append(texts, fmt.Sprintf("unit number %d", i))
	}
	batches, err := Plan(unitsOf(texts...), Limits{MaxUnits: 7})
	require.NoError(t, err)

	var flat []string
	for _, b := range batches {
		for _, u := range b.Units {
			flat = append(flat, u.Text)
		}
	}
	assert.Equal(t, texts, flat)
}

func TestPlan_UnitTooLargeByChars(t *testing.T) {
	huge := strings.Repeat("x", 100)
	_, err := Plan(unitsOf("ok", huge), Limits{MaxChars: 50})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrBatchTooLarge)

	var tooLarge *types.BatchTooLargeError
	require.ErrorAs(t, err, &tooLarge)
	assert.Equal(t, huge, tooLarge.Unit.Text)
	assert.Equal(t, 100, tooLarge.Chars)
}

func TestPlan_UnitTooLargeByTokens(t *testing.T) {
	wordy := strings.TrimSpace(strings.Repeat("word ", 30))
	require.Greater(t, tokens.Estimate(wordy), 10)

	_, err := Plan(unitsOf(wordy), Limits{MaxTokens: 10})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrBatchTooLarge)
}

func TestPlan_AllBatchesLegal(t *testing.T) {
	var texts []string
	for i := 0; i < 200; i++ {
		texts = append(texts, strings.TrimSpace(strings.Repeat(fmt.Sprintf("w%d ", i), i%9+1)))
	}
	limits := Limits{MaxUnits: 5, MaxChars: 120, MaxTokens: 20}
	batches, err := Plan(unitsOf(texts...), limits)
	require.NoError(t, err)
	require.NotEmpty(t, batches)

	for _, b := range batches {
		assert.LessOrEqual(t, len(b.Units), limits.MaxUnits)
		assert.LessOrEqual(t, b.EstimatedChars, limits.MaxChars)
		assert.LessOrEqual(t, b.EstimatedTokens, limits.MaxTokens)
	}
}
