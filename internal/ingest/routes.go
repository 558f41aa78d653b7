package ingest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/docchat/docchat/internal/extract"
)

// RegisterRoutes mounts the document upload and management API routes.
func RegisterRoutes(r chi.Router, pipeline *Pipeline, maxUploadBytes int64) {
	r.Post("/api/upload", handleUpload(pipeline, maxUploadBytes))
	r.Get("/api/documents", handleListDocuments(pipeline.registry))
	r.Delete("/api/documents/{hash}", handleDeleteDocument(pipeline))
}

func handleUpload(pipeline *Pipeline, maxUploadBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

		file, header, err := r.FormFile("file")
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "file too large"})
				return
			}
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No file provided"})
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reading upload failed"})
			return
		}

		mimeType := header.Header.Get("Content-Type")
		result, err := pipeline.Ingest(r.Context(), header.Filename, mimeType, data)
		if err != nil {
			// Only a format we don't handle is the client's fault;
			// extraction failures are server-side like any other stage.
			if errors.Is(err, extract.ErrUnsupportedFormat) {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
				return
			}
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}

		if result.AlreadyExists {
			writeJSON(w, http.StatusOK, map[string]any{
				"message": "File already exists",
				"id":      result.DocumentID,
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"message":         "File processing successful",
			"id":              result.DocumentID,
			"chunksProcessed": result.ChunksProcessed,
		})
	}
}

func handleListDocuments(registry *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docs, err := registry.List(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if docs == nil {
			docs = []Document{}
		}
		writeJSON(w, http.StatusOK, docs)
	}
}

func handleDeleteDocument(pipeline *Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hash := chi.URLParam(r, "hash")
		err := pipeline.Remove(r.Context(), hash)
		if errors.Is(err, ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "document not found"})
			return
		}
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "document deleted"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
