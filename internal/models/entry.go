// Package models defines core data structures for corpora, text entries, and search results.
package models

import "github.com/google/uuid"

// TextEntry is one embedded unit of text extracted from a source document.
type TextEntry struct {
	Content   string    `json:"content"`
	Page      int       `json:"page"`
	Embedding []float32 `json:"embedding"`
	// ID is derived from the entry's content (UUIDv5 over the DNS namespace),
	// so identical text always yields the same identifier.
	ID string `json:"id"`
}

// NewTextEntry creates a TextEntry with a content-derived identifier.
// The ID depends only on content, never on page or embedding.
func NewTextEntry(content string, page int, embedding []float32) TextEntry {
	return TextEntry{
		Content:   content,
		Page:      page,
		Embedding: embedding,
		ID:        ContentID(content),
	}
}

// ContentID returns the deterministic identifier for the given text content.
func ContentID(content string) string {
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(content)).String()
}

// FileRecord holds all entries extracted from one source file,
// ordered by page then extraction order within the page.
type FileRecord struct {
	Source  string      `json:"source"`
	Entries []TextEntry `json:"entries"`
}

// CorpusEntry is one named corpus: an ordered list of processed files.
// Corpus names are assumed unique within a store; uniqueness is not
// enforced on construction.
type CorpusEntry struct {
	Name    string       `json:"corpus_name"`
	Records []FileRecord `json:"records"`
}

// Entries returns the corpus's text entries flattened across all records,
// in record then entry order.
func (c *CorpusEntry) Entries() []TextEntry {
	var out []TextEntry
	for _, rec := range c.Records {
		out = append(out, rec.Entries...)
	}
	return out
}
