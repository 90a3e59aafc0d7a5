package batch

import (
	"errors"
	"fmt"
)

// Sentinel errors for batch validation.
var (
	// ErrEmptyBatch is returned for a batch with no items.
	ErrEmptyBatch = errors.New("batch: no items")

	// ErrBatchTooLarge is returned when a batch exceeds the configured maximum.
	ErrBatchTooLarge = errors.New("batch: too many items")

	// ErrInvalidChunkSize is returned for a chunk size below one.
	ErrInvalidChunkSize = errors.New("batch: chunk size must be positive")
)

// ChunkError reports which chunk failed.
type ChunkError struct {
	Index  int
	Chunks int
	Err    error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("batch: chunk %d of %d: %v", e.Index+1, e.Chunks, e.Err)
}

func (e *ChunkError) Unwrap() error { return e.Err }
