package types

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrConfiguration indicates invalid pipeline parameters. It is raised
	// before any work begins and is always fatal.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrBatchTooLarge indicates a single unit cannot fit any batch under
	// the configured limits. Fatal; no automatic re-chunking is attempted.
	ErrBatchTooLarge = errors.New("unit exceeds batch limits")

	// ErrEmbedding indicates an embedding backend call failed after the
	// bisection retry budget was exhausted.
	ErrEmbedding = errors.New("embedding failed")

	// ErrStore indicates a read/write against the external store failed.
	ErrStore = errors.New("store operation failed")
)

// BatchTooLargeError reports the unit that could not be placed in any batch.
//
// The sentinel ErrBatchTooLarge can be matched via errors.Is.
type BatchTooLargeError struct {
	Unit      TextUnit
	Chars     int
	Tokens    int
	MaxChars  int
	MaxTokens int
}

func (e *BatchTooLargeError) Error() string {
	return fmt.Sprintf("unit %s:%d-%d exceeds batch limits (%d chars, ~%d tokens; max %d chars, %d tokens)",
		e.Unit.SourcePath, e.Unit.StartLine, e.Unit.EndLine,
		e.Chars, e.Tokens, e.MaxChars, e.MaxTokens)
}

func (e *BatchTooLargeError) Unwrap() error { return ErrBatchTooLarge }
