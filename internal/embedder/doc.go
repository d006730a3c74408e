// Package embedder generates vector embeddings for text units using various providers.
//
// The embedder supports multiple embedding providers (OpenAI, Ollama, local
// models) and provides caching, retries, and error handling for production use.
//
// # Basic Usage
//
//	// Create embedder (auto-detects provider from environment)
//	emb, err := embedder.NewFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer emb.Close()
//
//	vectors, err := emb.EmbedBatch(ctx, []string{"first passage", "second passage"})
//	fmt.Printf("Vector dimension: %d\n", len(vectors[0]))
//
// # Provider Selection
//
// The embedder selects a provider based on environment variables:
//
//  1. If QUICKRAG_EMBEDDING_PROVIDER is set → use specified provider
//  2. Else if OPENAI_API_KEY is set → use OpenAI
//  3. Else if OLLAMA_URL is set → use Ollama
//  4. Else → fallback to local provider (offline mode)
//
// Provider configuration:
//
//	// Explicit provider selection
//	os.Setenv("QUICKRAG_EMBEDDING_PROVIDER", "openai")
//	os.Setenv("OPENAI_API_KEY", "your-api-key")
//
//	// Or pass explicit configuration
//	emb, err := embedder.New(embedder.Config{
//	    Provider: "ollama",
//	    BaseURL:  "http://localhost:11434",
//	    Model:    "nomic-embed-text",
//	})
//
// # Caching
//
// Providers share an LRU cache keyed by a content hash. Repeated texts within
// a run (or across runs with a long-lived embedder) are served from the cache
// instead of hitting the provider API. Cache hits preserve input order: a
// batch with mixed hits and misses only sends the misses upstream.
//
// # Local Provider
//
// The local provider produces deterministic pseudo-embeddings derived from a
// content hash. The vectors carry no semantic signal but are normalized,
// stable, and dimension-consistent, which makes the provider suitable for
// tests and for running the full pipeline offline.
//
// # Retries
//
// Remote providers wrap API calls in exponential backoff with jitter. Context
// cancellation aborts the retry loop immediately.
package embedder
