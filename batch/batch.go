package batch

import (
	"context"
	"fmt"
	"maps"
)

// DefaultChunkSize is the upstream cap on identifiers per POST.
const DefaultChunkSize = 200

// DefaultMaxItems bounds a single logical batch.
const DefaultMaxItems = 1000

// Validate checks a batch of n items against limit. A limit of zero or less
// disables the upper bound.
func Validate(n, limit int) error {
	if n == 0 {
		return ErrEmptyBatch
	}
	if limit > 0 && n > limit {
		return fmt.Errorf("%w: %d items, limit %d", ErrBatchTooLarge, n, limit)
	}
	return nil
}

// Chunk splits items into contiguous sub-slices of at most size elements,
// preserving order. The sub-slices share items' backing array.
func Chunk[T any](items []T, size int) ([][]T, error) {
	if size < 1 {
		return nil, ErrInvalidChunkSize
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end:end])
	}
	return chunks, nil
}

// IssueFunc issues one chunk.
type IssueFunc[T, R any] func(ctx context.Context, chunk []T) (R, error)

// MergeFunc folds a chunk result into the accumulated result.
type MergeFunc[R any] func(acc, next R) R

// Execute chunks items and issues each chunk sequentially, folding results
// with merge starting from zero. The first failing chunk aborts the batch
// with a *ChunkError. Empty batches are rejected before anything is issued.
func Execute[T, R any](ctx context.Context, items []T, size int, issue IssueFunc[T, R], merge MergeFunc[R], zero R) (R, error) {
	if err := Validate(len(items), 0); err != nil {
		return zero, err
	}
	chunks, err := Chunk(items, size)
	if err != nil {
		return zero, err
	}

	acc := zero
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return zero, &ChunkError{Index: i, Chunks: len(chunks), Err: err}
		}
		res, err := issue(ctx, chunk)
		if err != nil {
			return zero, &ChunkError{Index: i, Chunks: len(chunks), Err: err}
		}
		acc = merge(acc, res)
	}
	return acc, nil
}

// MergeKeyed unions keyed results. A key present in both keeps next's value.
// acc may be nil.
func MergeKeyed[K comparable, V any](acc, next map[K]V) map[K]V {
	if acc == nil {
		acc = make(map[K]V, len(next))
	}
	maps.Copy(acc, next)
	return acc
}

// MergeOrdered concatenates ordered results in chunk order.
func MergeOrdered[V any](acc, next []V) []V {
	return append(acc, next...)
}
