package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/statico/quickrag/internal/batch"
	"github.com/statico/quickrag/internal/chunker"
	"github.com/statico/quickrag/internal/dedup"
	"github.com/statico/quickrag/internal/embedder"
	"github.com/statico/quickrag/internal/executor"
	"github.com/statico/quickrag/internal/storage"
	"github.com/statico/quickrag/internal/syncer"
	"github.com/statico/quickrag/pkg/types"
)

// State identifies the current stage of an indexing run
type State string

const (
	StateScanning    State = "scanning"
	StateReconciling State = "reconciling"
	StatePreparing   State = "preparing"
	StateEmbedding   State = "embedding"
	StateWriting     State = "writing"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

// Config contains configuration for the indexer
type Config struct {
	Root       string   // Corpus root directory
	Extensions []string // File extensions to index (e.g. ".md", ".txt")

	Strategy     string          // Chunking strategy
	ChunkOptions chunker.Options // Chunking parameters

	BatchLimits batch.Limits // Batch packing limits

	Workers    int           // Concurrent embedding requests (default: runtime.NumCPU())
	RetryDepth int           // Bisection retry depth for failed batches
	Limiter    *rate.Limiter // Optional rate limit on embedding requests
}

// Report summarizes an indexing run
type Report struct {
	RunID        string
	State        State
	FilesScanned int
	FilesIndexed int
	FilesFailed  int
	FilesDeleted int
	UnitsWritten int
	UnitsSkipped int
	Batches      int
	Duration     time.Duration
}

// Indexer coordinates the pipeline: scan -> reconcile -> chunk -> embed -> store
type Indexer struct {
	store  storage.Store
	emb    embedder.Embedder
	logger *slog.Logger

	lock RunLock
}

// New creates a new Indexer instance
func New(store storage.Store, emb embedder.Embedder, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{
		store:  store,
		emb:    emb,
		logger: logger,
	}
}

// fileContent pairs a corpus path with its text
type fileContent struct {
	path string
	text string
}

// chunkedFile holds a file's units between chunking and deduplication
type chunkedFile struct {
	path  string
	units []types.TextUnit
}

// Run executes a full incremental indexing pass. Only one run may be active
// per Indexer at a time.
func (idx *Indexer) Run(ctx context.Context, config Config) (*Report, error) {
	if !idx.lock.TryAcquire() {
		return nil, fmt.Errorf("indexing already in progress")
	}
	defer idx.lock.Release()

	startTime := time.Now()
	report := &Report{
		RunID: uuid.NewString(),
		State: StateScanning,
	}
	logger := idx.logger.With("run_id", report.RunID)

	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	if config.RetryDepth <= 0 {
		config.RetryDepth = executor.DefaultRetryDepth
	}

	chk, err := chunker.New(config.Strategy, config.ChunkOptions)
	if err != nil {
		return idx.fail(report, startTime, err)
	}

	// Scanning: snapshot the corpus
	snapshot, err := syncer.Scan(config.Root, config.Extensions)
	if err != nil {
		return idx.fail(report, startTime, fmt.Errorf("scan %s: %w", config.Root, err))
	}
	report.FilesScanned = len(snapshot)
	logger.Info("scanned corpus", "root", config.Root, "files", len(snapshot))

	// Reconciling: diff against the persisted snapshot
	report.State = StateReconciling
	persisted, err := idx.store.FileRecords(ctx)
	if err != nil {
		return idx.fail(report, startTime, err)
	}
	plan := syncer.Reconcile(snapshot, persisted)
	if plan.Empty() {
		report.State = StateDone
		report.Duration = time.Since(startTime)
		logger.Info("index up to date")
		return report, nil
	}
	logger.Info("reconciled snapshot", "to_index", len(plan.ToIndex), "to_delete", len(plan.ToDelete))

	// Preparing: apply deletions, then read, chunk and deduplicate
	report.State = StatePreparing
	report.FilesDeleted = idx.applyDeletions(ctx, logger, plan.ToDelete)

	modTimes := make(map[string]time.Time, len(snapshot))
	for _, stat := range snapshot {
		modTimes[stat.Path] = stat.ModTime
	}

	contents := idx.readFiles(ctx, logger, config, plan.ToIndex, report)

	chunked := make([]chunkedFile, 0, len(contents))
	for _, fc := range contents {
		fileUnits, err := chk.Chunk(fc.text, fc.path)
		if err != nil {
			logger.Warn("chunking failed", "path", fc.path, "error", err)
			report.FilesFailed++
			continue
		}
		chunked = append(chunked, chunkedFile{path: fc.path, units: fileUnits})
	}

	// Re-indexed files are replaced wholesale. Purge their stored units
	// before seeding the fingerprint set, otherwise a touched file's own
	// prior units would read as duplicates and the rewrite would drop them.
	// Unlike vanished-file cleanup in applyDeletions, a failure here is
	// fatal: continuing would leave stale rows next to the fresh write.
	for _, cf := range chunked {
		if err := idx.store.DeleteUnitsForPath(ctx, cf.path); err != nil {
			return idx.fail(report, startTime, err)
		}
	}

	known, err := idx.store.KnownFingerprints(ctx)
	if err != nil {
		return idx.fail(report, startTime, err)
	}

	var units []types.TextUnit
	indexedPaths := make([]string, 0, len(chunked))
	for _, cf := range chunked {
		unique, skipped := dedup.Filter(cf.units, known)
		report.UnitsSkipped += skipped
		units = append(units, unique...)
		indexedPaths = append(indexedPaths, cf.path)
	}

	// Embedding: pack batches and run them through the executor
	report.State = StateEmbedding
	batches, err := batch.Plan(units, config.BatchLimits)
	if err != nil {
		return idx.fail(report, startTime, err)
	}
	report.Batches = len(batches)

	indexed, err := executor.Execute(ctx, batches, idx.emb.EmbedBatch, executor.Options{
		MaxConcurrent: config.Workers,
		RetryDepth:    config.RetryDepth,
		Limiter:       config.Limiter,
		Logger:        logger,
	})
	if err != nil {
		return idx.fail(report, startTime, fmt.Errorf("embedding: %w", err))
	}
	logger.Info("embedded units", "units", len(indexed), "batches", len(batches))

	// Writing: store the embedded units and refresh file records. Old units
	// for these paths were purged during Preparing.
	report.State = StateWriting
	if err := idx.store.WriteUnits(ctx, indexed); err != nil {
		return idx.fail(report, startTime, err)
	}
	report.UnitsWritten = len(indexed)

	for _, path := range indexedPaths {
		if err := idx.store.UpsertFileRecord(ctx, path, modTimes[path]); err != nil {
			return idx.fail(report, startTime, err)
		}
		report.FilesIndexed++
	}

	report.State = StateDone
	report.Duration = time.Since(startTime)
	logger.Info("indexing complete",
		"files_indexed", report.FilesIndexed,
		"files_failed", report.FilesFailed,
		"files_deleted", report.FilesDeleted,
		"units_written", report.UnitsWritten,
		"units_skipped", report.UnitsSkipped,
		"duration", report.Duration)
	return report, nil
}

// applyDeletions removes units and file records for vanished files. Store
// errors here are logged and skipped so a stale row cannot wedge the run.
func (idx *Indexer) applyDeletions(ctx context.Context, logger *slog.Logger, paths []string) int {
	deleted := 0
	for _, path := range paths {
		if err := idx.store.DeleteUnitsForPath(ctx, path); err != nil {
			logger.Warn("failed to delete units", "path", path, "error", err)
			continue
		}
		if err := idx.store.DeleteFileRecord(ctx, path); err != nil {
			logger.Warn("failed to delete file record", "path", path, "error", err)
			continue
		}
		deleted++
	}
	return deleted
}

// readFiles loads the files marked for indexing concurrently. Read failures
// are logged and counted, not fatal. Results come back in plan order.
func (idx *Indexer) readFiles(ctx context.Context, logger *slog.Logger, config Config,
	paths []string, report *Report) []fileContent {

	results := make([]*fileContent, len(paths))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(config.Workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			data, err := os.ReadFile(filepath.Join(config.Root, filepath.FromSlash(path)))
			if err != nil {
				logger.Warn("failed to read file", "path", path, "error", err)
				return nil
			}
			results[i] = &fileContent{
				path: path,
				text: string(data),
			}
			return nil
		})
	}
	// Goroutines never return errors; Wait is for completion only.
	_ = g.Wait()

	contents := make([]fileContent, 0, len(paths))
	for _, fc := range results {
		if fc == nil {
			report.FilesFailed++
			continue
		}
		contents = append(contents, *fc)
	}
	return contents
}

// fail stamps the report as failed and returns it alongside the error
func (idx *Indexer) fail(report *Report, startTime time.Time, err error) (*Report, error) {
	report.State = StateFailed
	report.Duration = time.Since(startTime)
	idx.logger.Error("indexing failed", "run_id", report.RunID, "state", report.State, "error", err)
	return report, err
}
