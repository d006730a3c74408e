package integration

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/statico/quickrag/internal/embedder"
)

// FlakyEmbedder fails any multi-text batch containing a poison marker but
// succeeds on singletons. Lets tests exercise the bisection retry path with
// deterministic failures.
type FlakyEmbedder struct {
	dimension int
	poison    string
	calls     atomic.Int64
	failures  atomic.Int64
}

// NewFlakyEmbedder creates a mock embedder that poisons batches containing
// the given substring.
func NewFlakyEmbedder(dimension int, poison string) *FlakyEmbedder {
	return &FlakyEmbedder{
		dimension: dimension,
		poison:    poison,
	}
}

func (m *FlakyEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.calls.Add(1)

	if len(texts) > 1 {
		for _, text := range texts {
			if strings.Contains(text, m.poison) {
				m.failures.Add(1)
				return nil, fmt.Errorf("simulated provider failure")
			}
		}
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = m.vector(text)
	}
	return vectors, nil
}

// vector derives a deterministic pseudo-embedding from the text hash
func (m *FlakyEmbedder) vector(text string) []float32 {
	digest := sha256.Sum256([]byte(text))
	vec := make([]float32, m.dimension)
	for i := range vec {
		vec[i] = float32(digest[i%len(digest)])/255.0 - 0.5
	}
	return embedder.NormalizeVector(vec)
}

func (m *FlakyEmbedder) Dimension() int   { return m.dimension }
func (m *FlakyEmbedder) Provider() string { return "mock" }
func (m *FlakyEmbedder) Model() string    { return "flaky-v1" }
func (m *FlakyEmbedder) Close() error     { return nil }

// Calls returns how many EmbedBatch invocations were made
func (m *FlakyEmbedder) Calls() int64 { return m.calls.Load() }

// Failures returns how many invocations were rejected
func (m *FlakyEmbedder) Failures() int64 { return m.failures.Load() }
