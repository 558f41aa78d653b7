package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/docchat/docchat/internal/db"
)

// Store provides CRUD operations for the document registry. The hash
// column is unique and indexed, so the dedup check is a single lookup.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Insert adds a document row.
func (s *Store) Insert(ctx context.Context, doc Document) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, filename, hash, mime_type, storage_path, size_bytes, chunk_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Filename, doc.Hash, doc.MIMEType, doc.StoragePath, doc.SizeBytes, doc.ChunkCount,
	)
	if err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}
	return nil
}

// GetByHash returns the document with the given content hash, or nil if no
// such document exists.
func (s *Store) GetByHash(ctx context.Context, hash string) (*Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, filename, hash, mime_type, storage_path, size_bytes, chunk_count, created_at
		FROM documents WHERE hash = ?`, hash)

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying document by hash: %w", err)
	}
	return doc, nil
}

// List returns all documents, newest first.
func (s *Store) List(ctx context.Context) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, filename, hash, mime_type, storage_path, size_bytes, chunk_count, created_at
		FROM documents ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// DeleteByHash removes the document row for hash. It reports whether a row
// existed.
func (s *Store) DeleteByHash(ctx context.Context, hash string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE hash = ?`, hash)
	if err != nil {
		return false, fmt.Errorf("deleting document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*Document, error) {
	var (
		doc       Document
		createdAt string
	)
	err := row.Scan(
		&doc.ID,
		&doc.Filename,
		&doc.Hash,
		&doc.MIMEType,
		&doc.StoragePath,
		&doc.SizeBytes,
		&doc.ChunkCount,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	// SQLite stores datetime('now') as text; accept both spellings.
	if t, parseErr := time.Parse(time.DateTime, createdAt); parseErr == nil {
		doc.CreatedAt = t
	} else if t, parseErr := time.Parse(time.RFC3339, createdAt); parseErr == nil {
		doc.CreatedAt = t
	}
	return &doc, nil
}
