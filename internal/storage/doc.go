// Package storage provides persistent SQLite storage for the text index.
//
// The store tracks two things: the file snapshot used for incremental
// synchronization (path and modification time) and the indexed units with
// their embedding vectors. Vectors are stored as little-endian float32 blobs.
//
// # Basic Usage
//
//	store, err := storage.NewSQLiteStore("index.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	// Persist embedded units
//	err = store.WriteUnits(ctx, units)
//
//	// Record the file as indexed at its current mtime
//	err = store.UpsertFileRecord(ctx, "docs/guide.md", modTime)
//
// # Incremental Indexing
//
// FileRecords returns the persisted snapshot for reconciliation against the
// filesystem, and KnownFingerprints seeds content deduplication so reruns
// skip units whose trimmed text is already indexed:
//
//	persisted, _ := store.FileRecords(ctx)
//	known, _ := store.KnownFingerprints(ctx)
//
// # Search
//
// Search scans stored vectors and ranks by cosine similarity:
//
//	results, err := store.Search(ctx, queryVector, 10)
//	for _, r := range results {
//	    fmt.Printf("%s:%d-%d score=%.3f\n", r.Path, r.StartLine, r.EndLine, r.Score)
//	}
//
// # Build Modes
//
// The package compiles against one of two SQLite drivers selected by build
// tags:
//
//   - default (purego): modernc.org/sqlite, no CGO, cosine similarity
//     computed in Go
//   - sqlite_vec tag: github.com/mattn/go-sqlite3 with the sqlite-vec
//     extension, similarity computed in SQL
//
// # Schema Migrations
//
// The schema is versioned with semver and applied through ApplyMigrations on
// open. Each migration carries an Up and Down script; RollbackMigration
// reverts the most recent one.
//
// # Concurrency
//
// The connection pool is pinned to a single connection (SQLite has a single
// writer) and WAL mode is enabled. All write paths run inside transactions.
package storage
