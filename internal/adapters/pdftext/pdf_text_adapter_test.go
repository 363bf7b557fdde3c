package pdftext

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExtractText_MissingFile(t *testing.T) {
	a := NewPDFTextAdapter(0)
	_, err := a.ExtractText(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestExtractText_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edicto.pdf")
	if err := os.WriteFile(path, []byte("this is not a pdf"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	_, err := NewPDFTextAdapter(0).ExtractText(context.Background(), path)
	if err == nil {
		t.Fatal("expected an error for a non-PDF file")
	}
}

func TestExtractText_SizeLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.pdf")
	if err := os.WriteFile(path, []byte(strings.Repeat("x", 2048)), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	_, err := NewPDFTextAdapter(1024).ExtractText(context.Background(), path)
	if err == nil || !strings.Contains(err.Error(), "limit") {
		t.Fatalf("expected a size limit error, got %v", err)
	}
}
