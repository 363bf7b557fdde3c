package pdftext

import (
	"auction-normalizer-service/internal/contextkeys"
	"auction-normalizer-service/internal/core/port"
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
)

// PDFTextAdapter reads plain text out of locally stored PDF documents.
type PDFTextAdapter struct {
	// MaxBytes caps the size of documents worth opening. Zero means no limit.
	MaxBytes int64
}

func NewPDFTextAdapter(maxBytes int64) *PDFTextAdapter {
	return &PDFTextAdapter{MaxBytes: maxBytes}
}

// ExtractText returns the document text. Broken or oversized files are errors;
// callers treat them as a missing document.
func (a *PDFTextAdapter) ExtractText(ctx context.Context, path string) (text string, err error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PDFTextAdapter",
		"path":      path,
	})

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat document: %w", err)
	}
	if a.MaxBytes > 0 && info.Size() > a.MaxBytes {
		return "", fmt.Errorf("document %s is %d bytes, limit is %d", path, info.Size(), a.MaxBytes)
	}

	// The pdf reader panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to read document %s: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract document text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("failed to read document text: %w", err)
	}

	logger.Debug("Document text extracted", port.Fields{"pages": r.NumPage(), "chars": buf.Len()})
	return buf.String(), nil
}
