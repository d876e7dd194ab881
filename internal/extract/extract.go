// Package extract provides page- and block-level text extraction from PDF files.
package extract

import "errors"

// ErrOpen reports that a source file could not be opened or parsed.
var ErrOpen = errors.New("open document failed")

// Document is an open source document. Pages are 1-based.
type Document interface {
	// PageCount returns the number of pages.
	PageCount() int
	// PageText returns the full text of one page.
	PageText(page int) (string, error)
	// Blocks returns the visual text blocks of one page, in reading order.
	Blocks(page int) ([]string, error)
	Close() error
}

// Opener opens documents by path. The builder takes an Opener so tests can
// substitute in-memory documents for real PDFs.
type Opener interface {
	Open(path string) (Document, error)
}
