package embedder

import (
	"fmt"
	"os"
	"strings"
)

// Config holds embedder configuration
type Config struct {
	Provider  string
	APIKey    string
	BaseURL   string
	Model     string
	CacheSize int
}

// NewFromEnv creates an embedder based on environment variables.
// Priority:
//  1. QUICKRAG_EMBEDDING_PROVIDER (openai, ollama, local)
//  2. OPENAI_API_KEY set → OpenAI
//  3. OLLAMA_URL set → Ollama
//  4. Default to local
func NewFromEnv() (Embedder, error) {
	return New(Config{
		Provider:  os.Getenv(EnvProvider),
		APIKey:    os.Getenv(EnvOpenAIAPIKey),
		BaseURL:   os.Getenv(EnvOllamaURL),
		Model:     os.Getenv(EnvModel),
		CacheSize: 10000,
	})
}

// New creates an embedder with explicit configuration.
func New(cfg Config) (Embedder, error) {
	var cache *Cache
	if cfg.CacheSize > 0 {
		cache = NewCache(cfg.CacheSize)
	}

	provider := strings.ToLower(cfg.Provider)
	switch provider {
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey, cfg.Model, cache)
	case ProviderOllama:
		return NewOllamaProvider(cfg.BaseURL, cfg.Model, cache)
	case ProviderLocal:
		return NewLocalProvider(cache)
	case "":
		// Auto-detect based on available credentials.
		if cfg.APIKey != "" {
			return NewOpenAIProvider(cfg.APIKey, cfg.Model, cache)
		}
		if cfg.BaseURL != "" {
			return NewOllamaProvider(cfg.BaseURL, cfg.Model, cache)
		}
		return NewLocalProvider(cache)
	default:
		return nil, fmt.Errorf("%w: unknown provider %s", ErrNoProviderEnabled, cfg.Provider)
	}
}

// DetectProvider returns the provider that would be used based on the
// current environment.
func DetectProvider() string {
	if provider := os.Getenv(EnvProvider); provider != "" {
		return strings.ToLower(provider)
	}
	if os.Getenv(EnvOpenAIAPIKey) != "" {
		return ProviderOpenAI
	}
	if os.Getenv(EnvOllamaURL) != "" {
		return ProviderOllama
	}
	return ProviderLocal
}
