// Package executor submits embedding batches under a concurrency limit,
// recovering from per-batch failures by bisection and reassembling results
// in the original unit order.
package executor

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/statico/quickrag/pkg/types"
)

// DefaultRetryDepth is how many times a failing batch may be bisected
// before the failure is escalated.
const DefaultRetryDepth = 3

// EmbedFunc turns a slice of texts into one vector per text, in input
// order. Any error is treated as retryable via bisection.
type EmbedFunc func(ctx context.Context, texts []string) ([][]float32, error)

// Options configures an Execute call.
type Options struct {
	// MaxConcurrent bounds how many batches may be calling the backend at
	// once. Must be >= 1.
	MaxConcurrent int

	// RetryDepth is the bisection budget per batch. Zero means
	// DefaultRetryDepth.
	RetryDepth int

	// Limiter optionally throttles backend calls (including bisection
	// retries). Nil means unthrottled.
	Limiter *rate.Limiter

	// Logger receives per-batch progress. Nil means slog.Default().
	Logger *slog.Logger
}

// Execute embeds all batches and returns the indexed units ordered by the
// original unit order, regardless of network completion timing. An
// admission limiter allows at most MaxConcurrent batches in flight;
// additional batches queue and are admitted as slots free.
//
// A batch failure that survives bisection aborts the whole call and all
// partial results are discarded; there is no partial-success mode.
func Execute(ctx context.Context, batches []types.Batch, embed EmbedFunc, opts Options) ([]types.IndexedUnit, error) {
	if opts.MaxConcurrent < 1 {
		return nil, fmt.Errorf("%w: max concurrent embedding calls must be >= 1, got %d",
			types.ErrConfiguration, opts.MaxConcurrent)
	}
	depth := opts.RetryDepth
	if depth <= 0 {
		depth = DefaultRetryDepth
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sem := semaphore.NewWeighted(int64(opts.MaxConcurrent))
	g, gctx := errgroup.WithContext(ctx)

	// Results are slotted by batch index, so completion order never
	// affects output order.
	vectors := make([][][]float32, len(batches))

	for i := range batches {
		b := &batches[i]
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			vecs, err := embedWithRetry(gctx, b.Texts(), embed, opts.Limiter, depth)
			if err != nil {
				return fmt.Errorf("batch %d: %w", b.Seq, err)
			}
			logger.DebugContext(gctx, "batch embedded", "seq", b.Seq, "units", len(b.Units))
			vectors[b.Seq-1] = vecs
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var indexed []types.IndexedUnit
	for i := range batches {
		b := &batches[i]
		for j, u := range b.Units {
			indexed = append(indexed, types.IndexedUnit{
				TextUnit:    u,
				Fingerprint: types.FingerprintOf(u.Text),
				Vector:      vectors[i][j],
			})
		}
	}
	return indexed, nil
}

// embedWithRetry calls the backend once; on failure it splits the texts at
// the midpoint and retries each half independently with a decremented depth
// budget, concatenating the halves in order. This isolates a single
// malformed or oversized input without discarding the whole batch. The
// depth budget is an explicit parameter, not call-stack convention, so it
// is directly testable.
func embedWithRetry(ctx context.Context, texts []string, embed EmbedFunc, limiter *rate.Limiter, depth int) ([][]float32, error) {
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	vecs, err := embed(ctx, texts)
	if err == nil {
		if len(vecs) != len(texts) {
			return nil, fmt.Errorf("%w: backend returned %d vectors for %d texts",
				types.ErrEmbedding, len(vecs), len(texts))
		}
		return vecs, nil
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if depth == 0 || len(texts) <= 1 {
		return nil, fmt.Errorf("%w: %v", types.ErrEmbedding, err)
	}

	mid := len(texts) / 2
	left, err := embedWithRetry(ctx, texts[:mid], embed, limiter, depth-1)
	if err != nil {
		return nil, err
	}
	right, err := embedWithRetry(ctx, texts[mid:], embed, limiter, depth-1)
	if err != nil {
		return nil, err
	}
	return append(left, right...), nil
}
