package storage

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
)

// searchVector performs vector similarity search using cosine similarity
func searchVector(ctx context.Context, db *sql.DB, queryVector []float32, limit int) ([]SearchResult, error) {
	// Use optimized SQL-based search when sqlite-vec is available
	if VectorExtensionAvailable {
		return searchVectorOptimized(ctx, db, queryVector, limit)
	}
	// Fall back to Go-based computation for purego builds
	return searchVectorFallback(ctx, db, queryVector, limit)
}

// searchVectorOptimized uses sqlite-vec extension for SQL-based vector similarity search
func searchVectorOptimized(ctx context.Context, db *sql.DB, queryVector []float32, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		return []SearchResult{}, nil
	}

	queryVectorBlob := serializeVector(queryVector)

	// sqlite-vec's vec_distance_cosine returns distance (lower is better).
	// Convert to similarity (1 - distance) to keep scores comparable with
	// the fallback path.
	query := `
		SELECT path, start_line, end_line, content,
		       1.0 - vec_distance_cosine(vector, ?) as similarity
		FROM units
		WHERE dimension = ?
		ORDER BY similarity DESC
		LIMIT ?
	`
	rows, err := db.QueryContext(ctx, query, queryVectorBlob, len(queryVector), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to execute vector search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := make([]SearchResult, 0, limit)
	for rows.Next() {
		var result SearchResult
		if err := rows.Scan(&result.Path, &result.StartLine, &result.EndLine, &result.Content, &result.Score); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// searchVectorFallback performs vector search using Go-based cosine similarity
// computation. This is used when sqlite-vec extension is not available
// (purego builds).
func searchVectorFallback(ctx context.Context, db *sql.DB, queryVector []float32, limit int) ([]SearchResult, error) {
	rows, err := db.QueryContext(ctx, "SELECT path, start_line, end_line, content, vector FROM units")
	if err != nil {
		return nil, fmt.Errorf("failed to query units: %w", err)
	}
	defer func() { _ = rows.Close() }()

	candidates := make([]SearchResult, 0, 256)
	for rows.Next() {
		var result SearchResult
		var blob []byte
		if err := rows.Scan(&result.Path, &result.StartLine, &result.EndLine, &result.Content, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan unit: %w", err)
		}

		vector := deserializeVector(blob)
		if len(vector) != len(queryVector) {
			continue // Dimension mismatch, skip
		}

		result.Score = cosineSimilarity(queryVector, vector)
		candidates = append(candidates, result)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if limit <= 0 || limit > len(candidates) {
		limit = len(candidates)
	}
	return candidates[:limit], nil
}

// serializeVector converts a float32 slice to a little-endian byte blob
func serializeVector(vector []float32) []byte {
	blob := make([]byte, len(vector)*4)
	for i, v := range vector {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(v))
	}
	return blob
}

// deserializeVector converts a byte blob back to a float32 slice
func deserializeVector(blob []byte) []float32 {
	vector := make([]float32, len(blob)/4)
	for i := range vector {
		bits := binary.LittleEndian.Uint32(blob[i*4:])
		vector[i] = math.Float32frombits(bits)
	}
	return vector
}

// cosineSimilarity computes the cosine similarity between two vectors
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i] * b[i])
		normA += float64(a[i] * a[i])
		normB += float64(b[i] * b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
