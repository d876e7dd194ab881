// Package builder drives extraction, normalization, and encoding to produce a
// vector store from batches of PDF files.
package builder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/shirabe/internal/embedding"
	"github.com/hyperjump/shirabe/internal/extract"
	"github.com/hyperjump/shirabe/internal/models"
	"github.com/hyperjump/shirabe/internal/normalize"
	"github.com/hyperjump/shirabe/internal/store"
)

// Resolution is the granularity of text extraction.
type Resolution string

const (
	// ResolutionBlock extracts one text unit per visual block per page.
	ResolutionBlock Resolution = "block"
	// ResolutionPage extracts one text unit per page.
	ResolutionPage Resolution = "page"
)

// CorpusFiles names one corpus and the source files to build it from.
type CorpusFiles struct {
	Name  string
	Paths []string
}

// Options configure a build pass.
type Options struct {
	// Resolution selects block or page extraction. Defaults to block.
	Resolution Resolution
	// Preprocess normalizes each text unit before encoding.
	Preprocess bool
	// NormalizeEmbeddings unit-normalizes each embedding, making dot product
	// equal to cosine similarity at search time.
	NormalizeEmbeddings bool
	// NormalizeOptions are the normalization settings used when Preprocess is set.
	NormalizeOptions normalize.Options
}

// DefaultOptions returns the standard build options: block resolution,
// preprocessing on, unit-normalized embeddings.
func DefaultOptions() Options {
	return Options{
		Resolution:          ResolutionBlock,
		Preprocess:          true,
		NormalizeEmbeddings: true,
		NormalizeOptions:    normalize.DefaultOptions(),
	}
}

// Builder builds corpora from source files. Per-file and per-unit failures are
// logged and skipped; a build always completes with whatever succeeded.
type Builder struct {
	opener  extract.Opener
	encoder embedding.Encoder
	opts    Options
	logger  *zap.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithLogger sets a logger for skip and progress events.
func WithLogger(l *zap.Logger) BuilderOption {
	return func(b *Builder) { b.logger = l }
}

// New creates a builder. Returns an error if opts.Resolution is not "block" or "page".
func New(opener extract.Opener, encoder embedding.Encoder, opts Options, bopts ...BuilderOption) (*Builder, error) {
	if opts.Resolution == "" {
		opts.Resolution = ResolutionBlock
	}
	if opts.Resolution != ResolutionBlock && opts.Resolution != ResolutionPage {
		return nil, fmt.Errorf("resolution must be %q or %q, got %q", ResolutionBlock, ResolutionPage, opts.Resolution)
	}
	b := &Builder{
		opener:  opener,
		encoder: encoder,
		opts:    opts,
		logger:  zap.NewNop(),
	}
	for _, opt := range bopts {
		opt(b)
	}
	return b, nil
}

// Build processes every corpus in input order and returns the resulting store.
// Files are processed strictly sequentially so record order is deterministic.
// Missing or unopenable files and failing text units are logged and skipped,
// never aborting the build. The only error returned is ctx cancellation, in
// which case the partial store built so far is also returned.
func (b *Builder) Build(ctx context.Context, corpora []CorpusFiles) (*store.Store, error) {
	s := store.New()
	for _, corpus := range corpora {
		if err := ctx.Err(); err != nil {
			return s, err
		}
		b.logger.Info("building corpus",
			zap.String("corpus", corpus.Name),
			zap.Int("files", len(corpus.Paths)),
		)
		entry := models.CorpusEntry{Name: corpus.Name, Records: b.buildRecords(ctx, corpus)}
		s.Corpora = append(s.Corpora, entry)
	}
	return s, ctx.Err()
}

func (b *Builder) buildRecords(ctx context.Context, corpus CorpusFiles) []models.FileRecord {
	records := make([]models.FileRecord, 0, len(corpus.Paths))
	for _, path := range corpus.Paths {
		if ctx.Err() != nil {
			return records
		}
		if _, err := os.Stat(path); err != nil {
			b.logger.Error("file not found, skipping",
				zap.String("corpus", corpus.Name),
				zap.String("path", path),
			)
			continue
		}
		doc, err := b.opener.Open(path)
		if err != nil {
			b.logger.Error("cannot open file, skipping",
				zap.String("corpus", corpus.Name),
				zap.String("path", path),
				zap.Error(err),
			)
			continue
		}
		record := models.FileRecord{
			Source:  sourceStem(path),
			Entries: b.buildEntries(ctx, doc, path),
		}
		_ = doc.Close()
		records = append(records, record)
		b.logger.Debug("file processed",
			zap.String("path", path),
			zap.Int("entries", len(record.Entries)),
		)
	}
	return records
}

// buildEntries walks the document page by page, extracting units at the
// configured resolution. Blank units are discarded; unit-level normalization
// or encoding failures are logged and the unit dropped.
func (b *Builder) buildEntries(ctx context.Context, doc extract.Document, path string) []models.TextEntry {
	entries := make([]models.TextEntry, 0)
	for page := 1; page <= doc.PageCount(); page++ {
		units, err := b.pageUnits(doc, page)
		if err != nil {
			b.logger.Error("page extraction failed, skipping page",
				zap.String("path", path),
				zap.Int("page", page),
				zap.Error(err),
			)
			continue
		}
		for _, raw := range units {
			entry, ok := b.buildEntry(ctx, raw, page, path)
			if ok {
				entries = append(entries, entry)
			}
		}
	}
	return entries
}

func (b *Builder) pageUnits(doc extract.Document, page int) ([]string, error) {
	if b.opts.Resolution == ResolutionPage {
		text, err := doc.PageText(page)
		if err != nil {
			return nil, err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return nil, nil
		}
		return []string{text}, nil
	}
	blocks, err := doc.Blocks(page)
	if err != nil {
		return nil, err
	}
	units := make([]string, 0, len(blocks))
	for _, block := range blocks {
		if trimmed := strings.TrimSpace(block); trimmed != "" {
			units = append(units, trimmed)
		}
	}
	return units, nil
}

func (b *Builder) buildEntry(ctx context.Context, raw string, page int, path string) (models.TextEntry, bool) {
	content := raw
	if b.opts.Preprocess {
		content = normalize.Normalize(raw, b.opts.NormalizeOptions)
	}
	if content == "" {
		return models.TextEntry{}, false
	}
	vec, err := b.encoder.Encode(ctx, content, b.opts.NormalizeEmbeddings)
	if err != nil {
		b.logger.Error("encoding failed, dropping unit",
			zap.String("path", path),
			zap.Int("page", page),
			zap.Error(err),
		)
		return models.TextEntry{}, false
	}
	return models.NewTextEntry(content, page, vec), true
}

// sourceStem returns the file name without directory or extension.
func sourceStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
