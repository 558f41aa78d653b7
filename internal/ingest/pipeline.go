package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/docchat/docchat/internal/blob"
	"github.com/docchat/docchat/internal/chunker"
	"github.com/docchat/docchat/internal/embeddings"
	"github.com/docchat/docchat/internal/extract"
	"github.com/docchat/docchat/internal/vectordb"
)

// ErrNotFound is returned by Remove when no document matches the hash.
var ErrNotFound = errors.New("document not found")

// Pipeline orchestrates document ingestion: hashing, deduplication, blob
// storage, text extraction, chunking, embedding, and registry bookkeeping.
type Pipeline struct {
	registry *Store
	blobs    *blob.Store
	vectors  vectordb.Store
	embedder embeddings.Embedder

	chunkSize    int
	chunkOverlap int
}

// NewPipeline creates a Pipeline with the given backends and chunking
// parameters.
func NewPipeline(registry *Store, blobs *blob.Store, vectors vectordb.Store, embedder embeddings.Embedder, chunkSize, chunkOverlap int) *Pipeline {
	if chunkSize <= 0 {
		chunkSize = chunker.DefaultMaxSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = chunker.DefaultOverlap
	}
	return &Pipeline{
		registry:     registry,
		blobs:        blobs,
		vectors:      vectors,
		embedder:     embedder,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Ingest processes one uploaded file. When the content hash matches an
// existing document it returns immediately with AlreadyExists set and does
// no work. The registry row is written last, so a document is only listed
// once all of its chunks are persisted; on a mid-ingestion failure the
// already-stored vectors and blob are cleaned up before the error is
// returned.
func (p *Pipeline) Ingest(ctx context.Context, filename, mimeType string, data []byte) (*Result, error) {
	hash := ContentHash(data)

	existing, err := p.registry.GetByHash(ctx, hash)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &Result{AlreadyExists: true, DocumentID: existing.ID}, nil
	}

	key := fmt.Sprintf("%d_%s%s", time.Now().UnixMilli(), hash[:16], filepath.Ext(filename))
	storagePath, err := p.blobs.Save(key, data)
	if err != nil {
		return nil, fmt.Errorf("storing file: %w", err)
	}

	text, err := extract.Extract(data, mimeType, filepath.Ext(filename))
	if err != nil {
		p.cleanup(ctx, hash, storagePath)
		return nil, err
	}

	chunks := chunker.Split(text, p.chunkSize, p.chunkOverlap)

	meta := vectordb.ChunkMetadata{
		Filename:    filename,
		Hash:        hash,
		MIMEType:    mimeType,
		StoragePath: storagePath,
	}
	for i, content := range chunks {
		embedding, err := embeddings.EmbedOne(ctx, p.embedder, content)
		if err != nil {
			p.cleanup(ctx, hash, storagePath)
			return nil, fmt.Errorf("embedding chunk %d: %w", i, err)
		}
		chunk := vectordb.Chunk{
			ID:        fmt.Sprintf("%s:%d", hash[:16], i),
			Content:   content,
			Embedding: embedding,
			Metadata:  meta,
		}
		if err := p.vectors.AddChunks(ctx, []vectordb.Chunk{chunk}); err != nil {
			p.cleanup(ctx, hash, storagePath)
			return nil, fmt.Errorf("storing chunk %d: %w", i, err)
		}
	}

	doc := Document{
		ID:          uuid.NewString(),
		Filename:    filename,
		Hash:        hash,
		MIMEType:    mimeType,
		StoragePath: storagePath,
		SizeBytes:   int64(len(data)),
		ChunkCount:  len(chunks),
	}
	if err := p.registry.Insert(ctx, doc); err != nil {
		p.cleanup(ctx, hash, storagePath)
		return nil, err
	}

	return &Result{DocumentID: doc.ID, ChunksProcessed: len(chunks)}, nil
}

// Remove deletes the document with the given hash: its vector chunks, its
// stored blob, and its registry row. It returns ErrNotFound when the hash
// is unknown.
func (p *Pipeline) Remove(ctx context.Context, hash string) error {
	doc, err := p.registry.GetByHash(ctx, hash)
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrNotFound
	}

	if err := p.vectors.DeleteByHash(ctx, hash); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	if err := p.blobs.Delete(doc.StoragePath); err != nil {
		return fmt.Errorf("deleting stored file: %w", err)
	}

	existed, err := p.registry.DeleteByHash(ctx, hash)
	if err != nil {
		return err
	}
	if !existed {
		return ErrNotFound
	}
	return nil
}

// cleanup best-effort removes the partial leftovers of a failed ingestion.
func (p *Pipeline) cleanup(ctx context.Context, hash, storagePath string) {
	if err := p.vectors.DeleteByHash(ctx, hash); err != nil {
		log.Printf("ingest: cleanup of chunks for %s: %v", hash[:16], err)
	}
	if err := p.blobs.Delete(storagePath); err != nil {
		log.Printf("ingest: cleanup of blob %s: %v", storagePath, err)
	}
}
