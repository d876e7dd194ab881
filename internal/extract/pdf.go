package extract

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFOpener opens PDF files from the filesystem.
type PDFOpener struct{}

// NewPDFOpener returns a new PDFOpener.
func NewPDFOpener() *PDFOpener {
	return &PDFOpener{}
}

// Open opens the PDF at path. Returns an error wrapping ErrOpen if the file
// cannot be read or is not a parseable PDF.
func (o *PDFOpener) Open(path string) (Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOpen, path, err)
	}
	return &pdfDocument{file: f, reader: r}, nil
}

type pdfDocument struct {
	file   *os.File
	reader *pdf.Reader
}

func (d *pdfDocument) PageCount() int {
	return d.reader.NumPage()
}

// PageText returns the plain text of the page (1-based). Null pages yield "".
func (d *pdfDocument) PageText(page int) (string, error) {
	p, err := d.page(page)
	if err != nil {
		return "", err
	}
	if p.V.IsNull() {
		return "", nil
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("extract page %d: %w", page, err)
	}
	return text, nil
}

// Blocks returns the page's text grouped by visual row, top to bottom.
// Rows approximate the visual blocks of the page layout.
func (d *pdfDocument) Blocks(page int) ([]string, error) {
	p, err := d.page(page)
	if err != nil {
		return nil, err
	}
	if p.V.IsNull() {
		return nil, nil
	}
	rows, err := p.GetTextByRow()
	if err != nil {
		return nil, fmt.Errorf("extract page %d blocks: %w", page, err)
	}
	blocks := make([]string, 0, len(rows))
	for _, row := range rows {
		var b strings.Builder
		for _, word := range row.Content {
			b.WriteString(word.S)
		}
		if text := strings.TrimSpace(b.String()); text != "" {
			blocks = append(blocks, text)
		}
	}
	return blocks, nil
}

func (d *pdfDocument) page(page int) (pdf.Page, error) {
	if page < 1 || page > d.reader.NumPage() {
		return pdf.Page{}, fmt.Errorf("page %d out of range [1, %d]", page, d.reader.NumPage())
	}
	return d.reader.Page(page), nil
}

func (d *pdfDocument) Close() error {
	return d.file.Close()
}
