// Package indexer orchestrates the incremental indexing pipeline:
// scan -> reconcile -> chunk -> embed -> store.
//
// A run moves through a fixed sequence of states and produces a Report
// describing what happened:
//
//	idx := indexer.New(store, emb, logger)
//	report, err := idx.Run(ctx, indexer.Config{
//	    Root:       "./docs",
//	    Extensions: []string{".md", ".txt"},
//	    Strategy:   chunker.StrategyRecursive,
//	    ChunkOptions: chunker.Options{
//	        TargetTokens:  400,
//	        OverlapTokens: 40,
//	    },
//	    BatchLimits: batch.Limits{MaxUnits: 64},
//	})
//
// # Incremental Behavior
//
// The run compares the filesystem snapshot against the persisted file
// records by modification time. Unchanged files are skipped entirely.
// Files whose records exist but which no longer appear on disk have their
// units and records removed. Re-indexed files are replaced wholesale: their
// prior units are purged before deduplication, so only units whose content
// fingerprint is stored for some other file, or appeared earlier in the same
// run, are skipped.
//
// # Error Handling
//
// Failures are handled at three levels:
//
//   - Per-file read or chunk errors are logged and counted in
//     Report.FilesFailed; the run continues with the remaining files.
//   - Deletion errors for vanished files are logged and skipped so a stale
//     row cannot wedge the run.
//   - Embedding and write errors abort the run with State = StateFailed.
//
// # Concurrency
//
// File reads and embedding requests run concurrently, bounded by
// Config.Workers. Only one Run may be active per Indexer; a second call
// fails immediately instead of queueing.
package indexer
