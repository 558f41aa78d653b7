package vectordb

// ChunkMetadata holds structured information about a chunk's source
// document. All chunks sharing a hash carry identical metadata; only the
// content and embedding differ.
type ChunkMetadata struct {
	Filename    string
	Hash        string
	MIMEType    string
	StoragePath string
}

// Chunk is the unit of storage: one text segment of a document together
// with its embedding.
type Chunk struct {
	ID        string
	Content   string
	Embedding []float32
	Metadata  ChunkMetadata
}

// SearchResult pairs a chunk with its similarity score.
type SearchResult struct {
	Chunk      Chunk
	Similarity float32
}

// metadataToMap converts ChunkMetadata to a flat map[string]string for
// chromem.
func metadataToMap(m ChunkMetadata) map[string]string {
	return map[string]string{
		"filename":     m.Filename,
		"hash":         m.Hash,
		"mime_type":    m.MIMEType,
		"storage_path": m.StoragePath,
	}
}

// mapToMetadata converts a flat map[string]string back to ChunkMetadata.
func mapToMetadata(m map[string]string) ChunkMetadata {
	return ChunkMetadata{
		Filename:    m["filename"],
		Hash:        m["hash"],
		MIMEType:    m["mime_type"],
		StoragePath: m["storage_path"],
	}
}
