package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statico/quickrag/internal/chunker"
	"github.com/statico/quickrag/pkg/types"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"QUICKRAG_CORPUS_DIR", "QUICKRAG_DB_PATH", "QUICKRAG_EXTENSIONS",
		"QUICKRAG_CHUNK_STRATEGY", "QUICKRAG_TARGET_TOKENS", "QUICKRAG_OVERLAP_TOKENS",
		"QUICKRAG_MIN_UNIT_CHARS", "QUICKRAG_BATCH_MAX_UNITS", "QUICKRAG_BATCH_MAX_CHARS",
		"QUICKRAG_BATCH_MAX_TOKENS", "QUICKRAG_WORKERS", "QUICKRAG_RETRY_DEPTH",
		"QUICKRAG_EMBED_RATE_PER_SEC",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("QUICKRAG_DB_PATH", t.TempDir()+"/quickrag.db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, chunker.StrategyRecursive, cfg.Strategy)
	assert.Equal(t, DefaultTargetTokens, cfg.TargetTokens)
	assert.Equal(t, DefaultOverlapTokens, cfg.OverlapTokens)
	assert.Equal(t, DefaultBatchMaxUnits, cfg.BatchMaxUnits)
	assert.Equal(t, DefaultRetryDepth, cfg.RetryDepth)
	assert.Equal(t, []string{".md", ".txt"}, cfg.Extensions)
	assert.Zero(t, cfg.EmbedRatePerSec)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("QUICKRAG_DB_PATH", t.TempDir()+"/quickrag.db")
	t.Setenv("QUICKRAG_EXTENSIONS", "rst, TXT,.adoc")
	t.Setenv("QUICKRAG_TARGET_TOKENS", "200")
	t.Setenv("QUICKRAG_OVERLAP_TOKENS", "20")
	t.Setenv("QUICKRAG_EMBED_RATE_PER_SEC", "2.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{".rst", ".txt", ".adoc"}, cfg.Extensions)
	assert.Equal(t, 200, cfg.TargetTokens)
	assert.Equal(t, 20, cfg.OverlapTokens)
	assert.Equal(t, 2.5, cfg.EmbedRatePerSec)
}

func TestLoadInvalidInteger(t *testing.T) {
	clearEnv(t)
	t.Setenv("QUICKRAG_TARGET_TOKENS", "not-a-number")

	_, err := Load()
	assert.ErrorIs(t, err, types.ErrConfiguration)
}

func TestLoadInvalidRate(t *testing.T) {
	clearEnv(t)
	t.Setenv("QUICKRAG_EMBED_RATE_PER_SEC", "-1")

	_, err := Load()
	assert.ErrorIs(t, err, types.ErrConfiguration)
}

func TestValidateOverlapBound(t *testing.T) {
	cfg := &Config{
		TargetTokens:  100,
		OverlapTokens: 100,
		Extensions:    []string{".md"},
	}
	assert.ErrorIs(t, cfg.Validate(), types.ErrConfiguration)

	cfg.OverlapTokens = 99
	assert.NoError(t, cfg.Validate())
}

func TestValidateRequiresExtensions(t *testing.T) {
	cfg := &Config{TargetTokens: 100, OverlapTokens: 10}
	assert.ErrorIs(t, cfg.Validate(), types.ErrConfiguration)
}

func TestSplitExtensions(t *testing.T) {
	assert.Equal(t, []string{".md"}, splitExtensions("md"))
	assert.Equal(t, []string{".md", ".txt"}, splitExtensions(".md,.txt"))
	assert.Nil(t, splitExtensions(" , ,"))
}
