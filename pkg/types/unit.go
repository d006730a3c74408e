package types

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// TextUnit is a bounded span of a document's text, the atomic item that gets
// embedded and stored. Offsets are byte offsets into the source document;
// line numbers are 1-indexed. A TextUnit is immutable once created.
type TextUnit struct {
	Text        string
	SourcePath  string
	StartLine   int
	EndLine     int
	StartOffset int
	EndOffset   int
}

// Fingerprint is the content-hash identity of a unit's trimmed text. Two
// units with identical trimmed text always share a fingerprint, regardless
// of source file or position.
type Fingerprint string

// FingerprintOf computes the fingerprint for a unit text. SHA-256 is used
// for its negligible collision probability, not for security.
func FingerprintOf(text string) Fingerprint {
	sum := sha256.Sum256([]byte(strings.TrimSpace(text)))
	return Fingerprint(hex.EncodeToString(sum[:]))
}

// FileRecord maps a source path to the modification time it was last
// indexed at. One record exists per indexed source file.
type FileRecord struct {
	Path         string
	ModifiedTime time.Time
}

// Batch groups text units for a single embedding backend call. Batches are
// numbered sequentially starting at 1 and are transient: built by the
// planner, consumed by the executor.
type Batch struct {
	Units           []TextUnit
	Seq             int
	EstimatedTokens int
	EstimatedChars  int
}

// Texts returns the unit texts in batch order, the payload submitted to the
// embedding backend.
func (b *Batch) Texts() []string {
	texts := make([]string, len(b.Units))
	for i, u := range b.Units {
		texts[i] = u.Text
	}
	return texts
}

// IndexedUnit is a text unit together with its fingerprint and embedding
// vector, the form persisted to the store.
type IndexedUnit struct {
	TextUnit
	Fingerprint Fingerprint
	Vector      []float32
}

// Key returns the identity key of an indexed unit within the store.
func (u *IndexedUnit) Key() string {
	return fmt.Sprintf("%s:%d:%d", u.SourcePath, u.StartLine, u.EndLine)
}
