package ingest

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/docchat/docchat/internal/blob"
	"github.com/docchat/docchat/internal/db"
	"github.com/docchat/docchat/internal/vectordb"
)

// countingEmbedder records how many texts it has embedded and can be set to
// fail after a given number of calls.
type countingEmbedder struct {
	calls     int
	failAfter int // fail on call number failAfter and later; 0 means never
}

func (e *countingEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.failAfter > 0 && e.calls >= e.failAfter {
		return nil, errors.New("embedding backend unavailable")
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{1, 0, 0}
	}
	return vectors, nil
}

func (e *countingEmbedder) Dimensions() int { return 3 }
func (e *countingEmbedder) Name() string    { return "counting" }

type testEnv struct {
	pipeline *Pipeline
	registry *Store
	vectors  vectordb.Store
	blobDir  string
	embedder *countingEmbedder
}

func setupPipeline(t *testing.T) *testEnv {
	t.Helper()

	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	embedder := &countingEmbedder{}
	vectors, err := vectordb.NewChromemStore(t.TempDir(), embedder)
	if err != nil {
		t.Fatalf("NewChromemStore: %v", err)
	}

	blobDir := t.TempDir()
	blobs, err := blob.NewStore(blobDir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	registry := NewStore(database)
	return &testEnv{
		pipeline: NewPipeline(registry, blobs, vectors, embedder, 50, 10),
		registry: registry,
		vectors:  vectors,
		blobDir:  blobDir,
		embedder: embedder,
	}
}

func (env *testEnv) blobCount(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir(env.blobDir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	return len(entries)
}

// twoParagraphs is sized so that a 50-rune chunk limit splits it in two.
const twoParagraphs = "The quick brown fox jumps over the lazy dog.\n\nPack my box with five dozen liquor jugs."

func TestIngestStoresDocument(t *testing.T) {
	env := setupPipeline(t)
	ctx := context.Background()

	result, err := env.pipeline.Ingest(ctx, "pangrams.txt", "text/plain", []byte(twoParagraphs))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if result.AlreadyExists {
		t.Error("AlreadyExists = true for a new document")
	}
	if result.ChunksProcessed != 2 {
		t.Errorf("ChunksProcessed = %d, want 2", result.ChunksProcessed)
	}
	if env.vectors.Count() != 2 {
		t.Errorf("vector count = %d, want 2", env.vectors.Count())
	}

	hash := ContentHash([]byte(twoParagraphs))
	doc, err := env.registry.GetByHash(ctx, hash)
	if err != nil {
		t.Fatalf("GetByHash: %v", err)
	}
	if doc == nil {
		t.Fatal("document not registered")
	}
	if doc.ID != result.DocumentID {
		t.Errorf("document ID = %q, want %q", doc.ID, result.DocumentID)
	}
	if doc.Filename != "pangrams.txt" || doc.MIMEType != "text/plain" {
		t.Errorf("metadata mismatch: %+v", doc)
	}
	if doc.SizeBytes != int64(len(twoParagraphs)) {
		t.Errorf("SizeBytes = %d, want %d", doc.SizeBytes, len(twoParagraphs))
	}
	if doc.ChunkCount != 2 {
		t.Errorf("ChunkCount = %d, want 2", doc.ChunkCount)
	}
	if !strings.Contains(doc.StoragePath, hash[:16]) || !strings.HasSuffix(doc.StoragePath, ".txt") {
		t.Errorf("StoragePath = %q, want <millis>_<hash16>.txt", doc.StoragePath)
	}
	if env.blobCount(t) != 1 {
		t.Errorf("blob count = %d, want 1", env.blobCount(t))
	}
}

func TestIngestDeduplicates(t *testing.T) {
	env := setupPipeline(t)
	ctx := context.Background()

	first, err := env.pipeline.Ingest(ctx, "a.txt", "text/plain", []byte(twoParagraphs))
	if err != nil {
		t.Fatalf("first Ingest: %v", err)
	}
	callsAfterFirst := env.embedder.calls

	// Same bytes under a different name still dedup.
	second, err := env.pipeline.Ingest(ctx, "b.txt", "text/plain", []byte(twoParagraphs))
	if err != nil {
		t.Fatalf("second Ingest: %v", err)
	}
	if !second.AlreadyExists {
		t.Error("AlreadyExists = false for duplicate content")
	}
	if second.DocumentID != first.DocumentID {
		t.Errorf("DocumentID = %q, want %q", second.DocumentID, first.DocumentID)
	}
	if env.embedder.calls != callsAfterFirst {
		t.Errorf("duplicate ingest ran the embedder (%d calls, want %d)", env.embedder.calls, callsAfterFirst)
	}
	if env.vectors.Count() != 2 {
		t.Errorf("vector count = %d, want 2", env.vectors.Count())
	}
	if env.blobCount(t) != 1 {
		t.Errorf("blob count = %d, want 1", env.blobCount(t))
	}
}

func TestIngestUnsupportedFormat(t *testing.T) {
	env := setupPipeline(t)

	_, err := env.pipeline.Ingest(context.Background(), "binary.xyz", "application/octet-stream", []byte("data"))
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}

	// Nothing is left behind.
	if env.vectors.Count() != 0 {
		t.Errorf("vector count = %d, want 0", env.vectors.Count())
	}
	if env.blobCount(t) != 0 {
		t.Errorf("blob count = %d, want 0", env.blobCount(t))
	}
	docs, err := env.registry.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("registry has %d documents, want 0", len(docs))
	}
}

func TestIngestEmbedFailureCleansUp(t *testing.T) {
	env := setupPipeline(t)
	env.embedder.failAfter = 2 // first chunk embeds, second fails
	ctx := context.Background()

	_, err := env.pipeline.Ingest(ctx, "pangrams.txt", "text/plain", []byte(twoParagraphs))
	if err == nil {
		t.Fatal("expected embedding error")
	}

	if env.vectors.Count() != 0 {
		t.Errorf("vector count = %d after cleanup, want 0", env.vectors.Count())
	}
	if env.blobCount(t) != 0 {
		t.Errorf("blob count = %d after cleanup, want 0", env.blobCount(t))
	}
	doc, err := env.registry.GetByHash(ctx, ContentHash([]byte(twoParagraphs)))
	if err != nil {
		t.Fatalf("GetByHash: %v", err)
	}
	if doc != nil {
		t.Error("failed ingestion left a registry row")
	}
}

func TestRemove(t *testing.T) {
	env := setupPipeline(t)
	ctx := context.Background()

	if _, err := env.pipeline.Ingest(ctx, "pangrams.txt", "text/plain", []byte(twoParagraphs)); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	hash := ContentHash([]byte(twoParagraphs))

	if err := env.pipeline.Remove(ctx, hash); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if env.vectors.Count() != 0 {
		t.Errorf("vector count = %d after Remove, want 0", env.vectors.Count())
	}
	if env.blobCount(t) != 0 {
		t.Errorf("blob count = %d after Remove, want 0", env.blobCount(t))
	}
	doc, err := env.registry.GetByHash(ctx, hash)
	if err != nil {
		t.Fatalf("GetByHash: %v", err)
	}
	if doc != nil {
		t.Error("registry row survived Remove")
	}

	if err := env.pipeline.Remove(ctx, hash); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Remove error = %v, want ErrNotFound", err)
	}
}

func TestRemoveUnknownHash(t *testing.T) {
	env := setupPipeline(t)
	if err := env.pipeline.Remove(context.Background(), "deadbeef"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Remove error = %v, want ErrNotFound", err)
	}
}
