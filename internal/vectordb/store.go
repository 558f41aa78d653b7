// Package vectordb stores document chunks and searches them by embedding
// similarity.
package vectordb

import "context"

// Store defines the interface for persisting and searching chunks by
// embedding.
type Store interface {
	// AddChunks adds or updates chunks in the store.
	AddChunks(ctx context.Context, chunks []Chunk) error

	// Search returns up to limit chunks whose similarity to the query
	// embedding is at or above threshold, ranked by descending similarity.
	Search(ctx context.Context, embedding []float32, threshold float32, limit int) ([]SearchResult, error)

	// DeleteByHash removes all chunks belonging to the document with the
	// given content hash.
	DeleteByHash(ctx context.Context, hash string) error

	// Count returns the total number of chunks in the store.
	Count() int
}
