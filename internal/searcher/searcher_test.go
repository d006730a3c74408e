package searcher

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statico/quickrag/internal/embedder"
	"github.com/statico/quickrag/internal/storage"
	"github.com/statico/quickrag/pkg/types"
)

func setupSearcher(t *testing.T) (*Searcher, *storage.SQLiteStore) {
	store, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	emb, err := embedder.NewLocalProvider(nil)
	require.NoError(t, err)

	return New(store, emb), store
}

func indexTexts(t *testing.T, store *storage.SQLiteStore, emb embedder.Embedder, texts map[string]string) {
	t.Helper()
	ctx := context.Background()
	line := 0
	var units []types.IndexedUnit
	for path, text := range texts {
		line++
		vecs, err := emb.EmbedBatch(ctx, []string{text})
		require.NoError(t, err)
		units = append(units, types.IndexedUnit{
			TextUnit: types.TextUnit{
				Text:       text,
				SourcePath: path,
				StartLine:  1,
				EndLine:    1,
				EndOffset:  len(text),
			},
			Fingerprint: types.FingerprintOf(text),
			Vector:      vecs[0],
		})
	}
	require.NoError(t, store.WriteUnits(ctx, units))
}

func TestSearchReturnsIndexedText(t *testing.T) {
	s, store := setupSearcher(t)
	emb, err := embedder.NewLocalProvider(nil)
	require.NoError(t, err)

	indexTexts(t, store, emb, map[string]string{
		"docs/a.md": "the quick brown fox",
		"docs/b.md": "completely unrelated content",
	})

	// Local embeddings are hash-derived, so an exact text match scores 1.0
	resp, err := s.Search(context.Background(), Request{Query: "the quick brown fox"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "docs/a.md", resp.Results[0].Path)
	assert.InDelta(t, 1.0, resp.Results[0].Score, 1e-5)
}

func TestSearchEmptyQuery(t *testing.T) {
	s, _ := setupSearcher(t)

	_, err := s.Search(context.Background(), Request{Query: "   "})
	assert.Error(t, err)
}

func TestSearchLimitNormalization(t *testing.T) {
	req := Request{Query: "q", Limit: 0}
	require.NoError(t, validateRequest(&req))
	assert.Equal(t, DefaultLimit, req.Limit)

	req = Request{Query: "q", Limit: 5000}
	require.NoError(t, validateRequest(&req))
	assert.Equal(t, MaxLimit, req.Limit)
}

func TestSearchCacheHit(t *testing.T) {
	s, store := setupSearcher(t)
	emb, err := embedder.NewLocalProvider(nil)
	require.NoError(t, err)

	indexTexts(t, store, emb, map[string]string{
		"docs/a.md": "cached passage",
	})

	ctx := context.Background()
	first, err := s.Search(ctx, Request{Query: "cached passage", UseCache: true})
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	second, err := s.Search(ctx, Request{Query: "cached passage", UseCache: true})
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Results, second.Results)
}

func TestSearchCacheExpiry(t *testing.T) {
	s, store := setupSearcher(t)
	emb, err := embedder.NewLocalProvider(nil)
	require.NoError(t, err)

	indexTexts(t, store, emb, map[string]string{
		"docs/a.md": "short lived",
	})

	ctx := context.Background()
	_, err = s.Search(ctx, Request{Query: "short lived", UseCache: true, CacheTTL: time.Nanosecond})
	require.NoError(t, err)

	time.Sleep(time.Millisecond)
	resp, err := s.Search(ctx, Request{Query: "short lived", UseCache: true, CacheTTL: time.Nanosecond})
	require.NoError(t, err)
	assert.False(t, resp.CacheHit)
}

func TestSearchEmptyIndex(t *testing.T) {
	s, _ := setupSearcher(t)

	resp, err := s.Search(context.Background(), Request{Query: "anything"})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
}
