// Package batch splits oversized identifier lists into capped chunks, issues
// each chunk in turn and merges the results.
//
// Chunks are contiguous and issued sequentially, so a caller that passes
// every chunk through a shared rate limiter keeps its spacing guarantees.
// Validation happens before any chunk is issued.
package batch
