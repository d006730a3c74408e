package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/statico/quickrag/internal/dedup"
	"github.com/statico/quickrag/pkg/types"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStore creates a new SQLite store instance
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// File record operations

// FileRecords returns the persisted file snapshot as a path to modification
// time map.
func (s *SQLiteStore) FileRecords(ctx context.Context) (map[string]time.Time, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT path, mod_time FROM files")
	if err != nil {
		return nil, fmt.Errorf("%w: query files: %v", types.ErrStore, err)
	}
	defer func() { _ = rows.Close() }()

	records := make(map[string]time.Time)
	for rows.Next() {
		var path string
		var modTime time.Time
		if err := rows.Scan(&path, &modTime); err != nil {
			return nil, fmt.Errorf("%w: scan file record: %v", types.ErrStore, err)
		}
		records[path] = modTime
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate file records: %v", types.ErrStore, err)
	}
	return records, nil
}

// UpsertFileRecord replaces the record for path with the given modification
// time. Runs as delete-then-insert inside a transaction so the record is
// always fresh regardless of prior state.
func (s *SQLiteStore) UpsertFileRecord(ctx context.Context, path string, modTime time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin tx: %v", types.ErrStore, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM files WHERE path = ?", path); err != nil {
		return fmt.Errorf("%w: delete file record %s: %v", types.ErrStore, path, err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO files (path, mod_time, indexed_at) VALUES (?, ?, ?)",
		path, modTime, time.Now()); err != nil {
		return fmt.Errorf("%w: insert file record %s: %v", types.ErrStore, path, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit file record %s: %v", types.ErrStore, path, err)
	}
	return nil
}

// DeleteFileRecord removes the record for path. Missing records are not an
// error.
func (s *SQLiteStore) DeleteFileRecord(ctx context.Context, path string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM files WHERE path = ?", path); err != nil {
		return fmt.Errorf("%w: delete file record %s: %v", types.ErrStore, path, err)
	}
	return nil
}

// Unit operations

// WriteUnits persists a batch of embedded units in a single transaction.
// Units that collide on (path, start_line, end_line) replace the existing
// row.
func (s *SQLiteStore) WriteUnits(ctx context.Context, units []types.IndexedUnit) error {
	if len(units) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin tx: %v", types.ErrStore, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO units (path, start_line, end_line, start_offset, end_offset, content, fingerprint, vector, dimension)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path, start_line, end_line) DO UPDATE SET
			start_offset = excluded.start_offset,
			end_offset = excluded.end_offset,
			content = excluded.content,
			fingerprint = excluded.fingerprint,
			vector = excluded.vector,
			dimension = excluded.dimension
	`)
	if err != nil {
		return fmt.Errorf("%w: prepare insert: %v", types.ErrStore, err)
	}
	defer func() { _ = stmt.Close() }()

	for _, unit := range units {
		blob := serializeVector(unit.Vector)
		if _, err := stmt.ExecContext(ctx,
			unit.SourcePath, unit.StartLine, unit.EndLine,
			unit.StartOffset, unit.EndOffset,
			unit.Text, string(unit.Fingerprint),
			blob, len(unit.Vector)); err != nil {
			return fmt.Errorf("%w: insert unit %s: %v", types.ErrStore, unit.Key(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit units: %v", types.ErrStore, err)
	}
	return nil
}

// DeleteUnitsForPath removes every unit indexed for path.
func (s *SQLiteStore) DeleteUnitsForPath(ctx context.Context, path string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM units WHERE path = ?", path); err != nil {
		return fmt.Errorf("%w: delete units for %s: %v", types.ErrStore, path, err)
	}
	return nil
}

// KnownFingerprints returns the set of fingerprints already present in the
// index. Used to seed deduplication across runs.
func (s *SQLiteStore) KnownFingerprints(ctx context.Context) (dedup.Set, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT fingerprint FROM units")
	if err != nil {
		return nil, fmt.Errorf("%w: query fingerprints: %v", types.ErrStore, err)
	}
	defer func() { _ = rows.Close() }()

	set := dedup.NewSet()
	for rows.Next() {
		var fp string
		if err := rows.Scan(&fp); err != nil {
			return nil, fmt.Errorf("%w: scan fingerprint: %v", types.ErrStore, err)
		}
		set.Add(types.Fingerprint(fp))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate fingerprints: %v", types.ErrStore, err)
	}
	return set, nil
}

// Status operations

func (s *SQLiteStore) CountUnits(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM units").Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: count units: %v", types.ErrStore, err)
	}
	return count, nil
}

func (s *SQLiteStore) CountFiles(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM files").Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: count files: %v", types.ErrStore, err)
	}
	return count, nil
}

// Search operations

// Search returns the units most similar to the query vector, ordered by
// cosine similarity descending.
func (s *SQLiteStore) Search(ctx context.Context, vector []float32, limit int) ([]SearchResult, error) {
	return searchVector(ctx, s.db, vector, limit)
}
