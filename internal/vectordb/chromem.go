package vectordb

import (
	"context"
	"fmt"

	chromem "github.com/philippgille/chromem-go"

	"github.com/docchat/docchat/internal/embeddings"
)

const collectionName = "documents"

// ChromemStore implements Store using chromem-go with on-disk persistence.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// NewChromemStore opens (or creates) a persistent chromem store under dir.
// The embedder is only consulted by chromem for documents added without a
// precomputed embedding; the ingestion pipeline always precomputes.
func NewChromemStore(dir string, embedder embeddings.Embedder) (*ChromemStore, error) {
	db, err := chromem.NewPersistentDB(dir, false)
	if err != nil {
		return nil, fmt.Errorf("open vector db: %w", err)
	}

	col, err := db.GetOrCreateCollection(collectionName, nil, embeddings.ToChromemFunc(embedder))
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &ChromemStore{db: db, collection: col}, nil
}

func (s *ChromemStore) AddChunks(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	docs := make([]chromem.Document, len(chunks))
	for i, c := range chunks {
		docs[i] = chromem.Document{
			ID:        c.ID,
			Content:   c.Content,
			Embedding: c.Embedding,
			Metadata:  metadataToMap(c.Metadata),
		}
	}

	return s.collection.AddDocuments(ctx, docs, 1)
}

func (s *ChromemStore) Search(ctx context.Context, embedding []float32, threshold float32, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 5
	}

	// chromem-go requires nResults <= collection size.
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if limit > count {
		limit = count
	}

	results, err := s.collection.QueryEmbedding(ctx, embedding, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	var searchResults []SearchResult
	for _, r := range results {
		if r.Similarity < threshold {
			continue
		}
		searchResults = append(searchResults, SearchResult{
			Chunk: Chunk{
				ID:       r.ID,
				Content:  r.Content,
				Metadata: mapToMetadata(r.Metadata),
			},
			Similarity: r.Similarity,
		})
	}

	return searchResults, nil
}

func (s *ChromemStore) DeleteByHash(ctx context.Context, hash string) error {
	if s.collection.Count() == 0 {
		return nil
	}
	where := map[string]string{"hash": hash}
	if err := s.collection.Delete(ctx, where, nil); err != nil {
		return fmt.Errorf("chromem delete by hash: %w", err)
	}
	return nil
}

func (s *ChromemStore) Count() int {
	return s.collection.Count()
}
