package embedder

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalProviderDeterministic(t *testing.T) {
	emb, err := NewLocalProvider(nil)
	require.NoError(t, err)
	defer func() { _ = emb.Close() }()

	first, err := emb.EmbedBatch(context.Background(), []string{"hello world", "goodbye"})
	require.NoError(t, err)
	second, err := emb.EmbedBatch(context.Background(), []string{"hello world", "goodbye"})
	require.NoError(t, err)

	require.Len(t, first, 2)
	assert.Equal(t, first, second, "same input must produce same vectors")
	assert.NotEqual(t, first[0], first[1], "different texts should produce different vectors")
}

func TestLocalProviderDimension(t *testing.T) {
	emb, err := NewLocalProvider(nil)
	require.NoError(t, err)

	vecs, err := emb.EmbedBatch(context.Background(), []string{"some text"})
	require.NoError(t, err)
	require.Len(t, vecs, 1)
	assert.Len(t, vecs[0], emb.Dimension())
	assert.Equal(t, LocalDimension, emb.Dimension())
}

func TestLocalProviderNormalized(t *testing.T) {
	emb, err := NewLocalProvider(nil)
	require.NoError(t, err)

	vecs, err := emb.EmbedBatch(context.Background(), []string{"normalize me"})
	require.NoError(t, err)

	var sum float64
	for _, v := range vecs[0] {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5, "local vectors should be unit length")
}

func TestValidateBatch(t *testing.T) {
	assert.ErrorIs(t, ValidateBatch(nil), ErrInvalidInput)
	assert.ErrorIs(t, ValidateBatch([]string{}), ErrInvalidInput)
	assert.ErrorIs(t, ValidateBatch([]string{"ok", ""}), ErrInvalidInput)
	assert.NoError(t, ValidateBatch([]string{"ok", "also ok"}))
}

func TestComputeHash(t *testing.T) {
	a := ComputeHash("content")
	b := ComputeHash("content")
	c := ComputeHash("other content")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64, "expected hex-encoded SHA-256")
}

func TestCacheDeepCopy(t *testing.T) {
	cache := NewCache(16)
	cache.Set("k", []float32{1, 2, 3})

	got, ok := cache.Get("k")
	require.True(t, ok)
	got[0] = 99

	again, ok := cache.Get("k")
	require.True(t, ok)
	assert.Equal(t, float32(1), again[0], "caller mutation must not pollute the cache")
}

func TestCacheClear(t *testing.T) {
	cache := NewCache(16)
	cache.Set("a", []float32{1})
	cache.Set("b", []float32{2})
	assert.Equal(t, 2, cache.Size())

	cache.Clear()
	assert.Equal(t, 0, cache.Size())
	_, ok := cache.Get("a")
	assert.False(t, ok)
}

func TestWithCacheFetchesOnlyMisses(t *testing.T) {
	cache := NewCache(16)
	var fetched [][]string
	fetch := func(_ context.Context, texts []string) ([][]float32, error) {
		fetched = append(fetched, texts)
		vecs := make([][]float32, len(texts))
		for i, text := range texts {
			vecs[i] = localVector(text)
		}
		return vecs, nil
	}

	texts := []string{"alpha", "beta", "gamma"}
	first, err := withCache(context.Background(), cache, texts, fetch)
	require.NoError(t, err)
	require.Len(t, fetched, 1)
	assert.Equal(t, texts, fetched[0])

	// Second call with one new text should only fetch the new one.
	second, err := withCache(context.Background(), cache, []string{"beta", "delta", "alpha"}, fetch)
	require.NoError(t, err)
	require.Len(t, fetched, 2)
	assert.Equal(t, []string{"delta"}, fetched[1])

	// Order must be preserved regardless of cache hits.
	assert.Equal(t, first[1], second[0])
	assert.Equal(t, first[0], second[2])
	assert.Equal(t, localVector("delta"), second[1])
}

func TestWithCacheVectorCountMismatch(t *testing.T) {
	cache := NewCache(16)
	fetch := func(_ context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1}}, nil
	}

	_, err := withCache(context.Background(), cache, []string{"a", "b"}, fetch)
	assert.ErrorIs(t, err, ErrProviderFailed)
}

func TestFactoryExplicitProvider(t *testing.T) {
	emb, err := New(Config{Provider: ProviderLocal})
	require.NoError(t, err)
	assert.Equal(t, ProviderLocal, emb.Provider())

	emb, err = New(Config{Provider: ProviderOpenAI, APIKey: "test-key"})
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, emb.Provider())
	assert.Equal(t, DefaultOpenAIModel, emb.Model())

	emb, err = New(Config{Provider: ProviderOllama})
	require.NoError(t, err)
	assert.Equal(t, ProviderOllama, emb.Provider())
	assert.Equal(t, DefaultOllamaModel, emb.Model())
}

func TestFactoryUnknownProvider(t *testing.T) {
	_, err := New(Config{Provider: "quantum"})
	assert.ErrorIs(t, err, ErrNoProviderEnabled)
}

func TestFactoryOpenAIRequiresKey(t *testing.T) {
	_, err := New(Config{Provider: ProviderOpenAI})
	assert.ErrorIs(t, err, ErrNoProviderEnabled)
}

func TestFactoryAutoDetect(t *testing.T) {
	emb, err := New(Config{APIKey: "sk-test"})
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, emb.Provider())

	emb, err = New(Config{BaseURL: "http://localhost:11434"})
	require.NoError(t, err)
	assert.Equal(t, ProviderOllama, emb.Provider())

	emb, err = New(Config{})
	require.NoError(t, err)
	assert.Equal(t, ProviderLocal, emb.Provider())
}

func TestDetectProvider(t *testing.T) {
	t.Setenv(EnvProvider, "")
	t.Setenv(EnvOpenAIAPIKey, "")
	t.Setenv(EnvOllamaURL, "")
	assert.Equal(t, ProviderLocal, DetectProvider())

	t.Setenv(EnvOllamaURL, "http://localhost:11434")
	assert.Equal(t, ProviderOllama, DetectProvider())

	t.Setenv(EnvOpenAIAPIKey, "sk-test")
	assert.Equal(t, ProviderOpenAI, DetectProvider())

	t.Setenv(EnvProvider, "LOCAL")
	assert.Equal(t, ProviderLocal, DetectProvider())
}
