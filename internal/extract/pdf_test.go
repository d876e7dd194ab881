package extract

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestPDFOpener_MissingFile(t *testing.T) {
	o := NewPDFOpener()
	_, err := o.Open(filepath.Join(t.TempDir(), "does-not-exist.pdf"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, ErrOpen) {
		t.Errorf("error = %v, want ErrOpen", err)
	}
}

func TestPDFOpener_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.pdf")
	if err := os.WriteFile(path, []byte("this is not a pdf"), 0644); err != nil {
		t.Fatal(err)
	}
	o := NewPDFOpener()
	_, err := o.Open(path)
	if err == nil {
		t.Fatal("expected error for non-PDF content")
	}
	if !errors.Is(err, ErrOpen) {
		t.Errorf("error = %v, want ErrOpen", err)
	}
}
