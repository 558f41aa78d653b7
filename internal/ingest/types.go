package ingest

import "time"

// Document is one registered source document. Its chunks live in the
// vector store; the raw bytes live in the blob store under StoragePath.
type Document struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	Hash        string    `json:"hash"`
	MIMEType    string    `json:"mimeType"`
	StoragePath string    `json:"storagePath"`
	SizeBytes   int64     `json:"sizeBytes"`
	ChunkCount  int       `json:"chunkCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Result is the outcome of one ingestion.
type Result struct {
	// AlreadyExists is set when the content hash matched an existing
	// document and no work was performed.
	AlreadyExists bool

	// DocumentID identifies the stored document (the existing one on a
	// dedup hit).
	DocumentID string

	// ChunksProcessed is the number of chunks embedded and persisted.
	ChunksProcessed int
}
