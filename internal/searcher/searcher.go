// Package searcher answers similarity queries against the stored index by
// embedding the query text and ranking units by cosine similarity.
package searcher

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/statico/quickrag/internal/embedder"
	"github.com/statico/quickrag/internal/storage"
)

const (
	// DefaultLimit is used when a request does not specify one
	DefaultLimit = 10
	// MaxLimit caps the number of results a single request can ask for
	MaxLimit = 100
	// DefaultCacheTTL is how long cached responses stay valid
	DefaultCacheTTL = 5 * time.Minute
)

// Request contains parameters for a search operation
type Request struct {
	Query    string
	Limit    int
	UseCache bool
	CacheTTL time.Duration
}

// Response contains search results and metadata
type Response struct {
	Results  []storage.SearchResult
	Duration time.Duration
	CacheHit bool
}

// cacheEntry represents a cached response with expiration time
type cacheEntry struct {
	response  *Response
	expiresAt time.Time
}

// Searcher coordinates query embedding and vector search
type Searcher struct {
	store storage.Store
	emb   embedder.Embedder
	cache *lru.Cache[[32]byte, *cacheEntry]
}

// New creates a new Searcher instance
func New(store storage.Store, emb embedder.Embedder) *Searcher {
	cache, err := lru.New[[32]byte, *cacheEntry](1000)
	if err != nil {
		// This should never happen with valid size parameter
		panic(fmt.Sprintf("failed to create LRU cache: %v", err))
	}

	return &Searcher{
		store: store,
		emb:   emb,
		cache: cache,
	}
}

// Search embeds the query and returns the most similar stored units.
func (s *Searcher) Search(ctx context.Context, req Request) (*Response, error) {
	startTime := time.Now()

	if s.emb == nil {
		return nil, fmt.Errorf("embedder not initialized")
	}
	if err := validateRequest(&req); err != nil {
		return nil, fmt.Errorf("invalid search request: %w", err)
	}

	key := cacheKey(req)
	if req.UseCache {
		if cached := s.checkCache(key); cached != nil {
			cached.CacheHit = true
			cached.Duration = time.Since(startTime)
			return cached, nil
		}
	}

	vectors, err := s.emb.EmbedBatch(ctx, []string{req.Query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := s.store.Search(ctx, vectors[0], req.Limit)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	response := &Response{
		Results:  results,
		Duration: time.Since(startTime),
	}

	if req.UseCache && len(results) > 0 {
		ttl := req.CacheTTL
		if ttl <= 0 {
			ttl = DefaultCacheTTL
		}
		s.cache.Add(key, &cacheEntry{
			response:  &Response{Results: results},
			expiresAt: time.Now().Add(ttl),
		})
	}

	return response, nil
}

// validateRequest normalizes and validates request parameters in place
func validateRequest(req *Request) error {
	if strings.TrimSpace(req.Query) == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if req.Limit <= 0 {
		req.Limit = DefaultLimit
	}
	if req.Limit > MaxLimit {
		req.Limit = MaxLimit
	}
	return nil
}

// cacheKey builds a stable hash for the query and limit
func cacheKey(req Request) [32]byte {
	return sha256.Sum256([]byte(fmt.Sprintf("%s|%d", req.Query, req.Limit)))
}

// checkCache returns a copy of a cached response if present and unexpired
func (s *Searcher) checkCache(key [32]byte) *Response {
	entry, ok := s.cache.Get(key)
	if !ok {
		return nil
	}
	if time.Now().After(entry.expiresAt) {
		s.cache.Remove(key)
		return nil
	}
	return &Response{Results: entry.response.Results}
}
