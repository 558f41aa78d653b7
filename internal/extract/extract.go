// Package extract converts uploaded file bytes into plain text, dispatching
// on MIME type and file extension.
package extract

import (
	"errors"
	"log"
	"strings"
)

// ErrUnsupportedFormat is returned when neither the MIME type nor the
// extension matches a known decoder.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrExtraction is returned for any decode failure. The underlying cause is
// logged but deliberately not surfaced: callers only need to know extraction
// failed.
var ErrExtraction = errors.New("failed to extract text from file")

// officeExtensions are the office document formats handled by the OOXML
// decoder.
var officeExtensions = map[string]bool{
	"ppt":  true,
	"pptx": true,
	"doc":  true,
	"docx": true,
}

// Extract returns the plain-text content of the given file bytes.
// Layout and formatting are lost; only text order is preserved.
func Extract(data []byte, mimeType, extension string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(extension, "."))

	switch {
	case mimeType == "application/pdf" || ext == "pdf":
		return wrapDecode(extractPDF(data))
	case ext == "csv" || mimeType == "text/csv":
		return wrapDecode(extractCSV(data))
	case ext == "txt" || mimeType == "text/plain":
		return string(data), nil
	case officeExtensions[ext]:
		return wrapDecode(extractOffice(data))
	}

	return "", ErrUnsupportedFormat
}

// wrapDecode maps decoder failures onto the opaque ErrExtraction.
func wrapDecode(text string, err error) (string, error) {
	if err != nil {
		log.Printf("extract: %v", err)
		return "", ErrExtraction
	}
	return text, nil
}
