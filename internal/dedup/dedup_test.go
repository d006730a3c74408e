package dedup

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statico/quickrag/pkg/types"
)

func unit(text, path string) types.TextUnit {
	return types.TextUnit{Text: text, SourcePath: path}
}

func TestFilter_AllUnique(t *testing.T) {
	known := NewSet()
	units := []types.TextUnit{unit("alpha", "a"), unit("beta", "a"), unit("gamma", "b")}

	unique, skipped := Filter(units, known)
	assert.Len(t, unique, 3)
	assert.Equal(t, 0, skipped)
	assert.Len(t, known, 3)
}

func TestFilter_IntraCallDuplicates(t *testing.T) {
	known := NewSet()
	units := []types.TextUnit{
		unit("same text", "a.txt"),
		unit("same text", "b.txt"), // identical content, different file
		unit("other", "a.txt"),
	}

	unique, skipped := Filter(units, known)
	require.Len(t, unique, 2)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, "a.txt", unique[0].SourcePath)
	assert.Equal(t, "other", unique[1].Text)
}

func TestFilter_CrossCallSharedSet(t *testing.T) {
	known := NewSet()

	unique, skipped := Filter([]types.TextUnit{unit("shared", "a")}, known)
	assert.Len(t, unique, 1)
	assert.Equal(t, 0, skipped)

	// The same set carried into a second call sees the first acceptance.
	unique, skipped = Filter([]types.TextUnit{unit("shared", "b")}, known)
	assert.Empty(t, unique)
	assert.Equal(t, 1, skipped)
}

func TestFilter_SeededSet(t *testing.T) {
	known := NewSet()
	known.Add(types.FingerprintOf("persisted earlier"))

	unique, skipped := Filter([]types.TextUnit{unit("persisted earlier", "a")}, known)
	assert.Empty(t, unique)
	assert.Equal(t, 1, skipped)
}

func TestFilter_TrimmedEquivalence(t *testing.T) {
	// Fingerprints cover trimmed text, so leading/trailing whitespace does
	// not defeat deduplication.
	known := NewSet()
	units := []types.TextUnit{unit("hello world", "a"), unit("  hello world\n", "b")}

	unique, skipped := Filter(units, known)
	assert.Len(t, unique, 1)
	assert.Equal(t, 1, skipped)
}

func TestFilter_OrderPreserved(t *testing.T) {
	known := NewSet()
	var units []types.TextUnit
	for i := 0; i < 1000; i++ {
		units = append(units, unit(fmt.Sprintf("unit %d", i), "a"))
	}

	unique, skipped := Filter(units, known)
	require.Len(t, unique, 1000)
	assert.Equal(t, 0, skipped)
	for i, u := range unique {
		assert.Equal(t, fmt.Sprintf("unit %d", i), u.Text)
	}
}
