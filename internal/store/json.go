package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hyperjump/shirabe/internal/models"
)

// Persisted format: an ordered JSON array of single-key objects, each mapping
// a corpus name to its file records. Entry text is stored under "page_content"
// with page, embedding, and doc_uuid nested in a "metadata" object.

type wireRecord struct {
	Source   string      `json:"source"`
	Contents []wireEntry `json:"contents"`
}

type wireEntry struct {
	PageContent string   `json:"page_content"`
	Metadata    wireMeta `json:"metadata"`
}

type wireMeta struct {
	Page      int       `json:"page"`
	Embedding []float32 `json:"embedding"`
	DocUUID   string    `json:"doc_uuid"`
}

// Save serializes the store to path, creating parent directories as needed.
// Returns an error wrapping ErrSerialization if a value cannot be represented
// as JSON (NaN or Inf embedding components).
func (s *Store) Save(path string) error {
	doc := make([]map[string][]wireRecord, 0, len(s.Corpora))
	for _, corpus := range s.Corpora {
		records := make([]wireRecord, 0, len(corpus.Records))
		for _, rec := range corpus.Records {
			contents := make([]wireEntry, 0, len(rec.Entries))
			for _, entry := range rec.Entries {
				contents = append(contents, wireEntry{
					PageContent: entry.Content,
					Metadata: wireMeta{
						Page:      entry.Page,
						Embedding: entry.Embedding,
						DocUUID:   entry.ID,
					},
				})
			}
			records = append(records, wireRecord{Source: rec.Source, Contents: contents})
		}
		doc = append(doc, map[string][]wireRecord{corpus.Name: records})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	return nil
}

// Load deserializes a store from path. Returns an error wrapping ErrNotFound
// if the path does not exist, or ErrFormat if the file is not valid JSON or
// does not have the expected structure.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read store file: %w", err)
	}

	var doc []map[string][]wireRecord
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	corpora := make([]models.CorpusEntry, 0, len(doc))
	for i, item := range doc {
		if len(item) != 1 {
			return nil, fmt.Errorf("%w: element %d has %d keys, want exactly 1", ErrFormat, i, len(item))
		}
		for name, wireRecords := range item {
			records := make([]models.FileRecord, 0, len(wireRecords))
			for _, wr := range wireRecords {
				entries := make([]models.TextEntry, 0, len(wr.Contents))
				for j, we := range wr.Contents {
					if we.Metadata.DocUUID == "" {
						return nil, fmt.Errorf("%w: corpus %q source %q entry %d missing doc_uuid", ErrFormat, name, wr.Source, j)
					}
					if we.Metadata.Page < 1 {
						return nil, fmt.Errorf("%w: corpus %q source %q entry %d has page %d", ErrFormat, name, wr.Source, j, we.Metadata.Page)
					}
					entries = append(entries, models.TextEntry{
						Content:   we.PageContent,
						Page:      we.Metadata.Page,
						Embedding: we.Metadata.Embedding,
						ID:        we.Metadata.DocUUID,
					})
				}
				records = append(records, models.FileRecord{Source: wr.Source, Entries: entries})
			}
			corpora = append(corpora, models.CorpusEntry{Name: name, Records: records})
		}
	}
	return New(corpora...), nil
}
