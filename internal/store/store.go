// Package store holds the vector store aggregate: persistence to a JSON
// document and brute-force semantic search over all corpora.
package store

import (
	"errors"

	"github.com/hyperjump/shirabe/internal/models"
)

var (
	// ErrNotFound reports that a referenced file or path does not exist.
	ErrNotFound = errors.New("not found")
	// ErrFormat reports that a persisted store failed to parse into the expected structure.
	ErrFormat = errors.New("malformed store file")
	// ErrSerialization reports an in-memory value that cannot be converted to
	// the persisted representation (e.g. NaN or Inf embedding components).
	ErrSerialization = errors.New("value not serializable")
	// ErrInvalidArgument reports a caller-supplied parameter violating a precondition.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Store is the aggregate of all corpora. The zero value is an empty store.
// A Store is owned by its caller; it is not safe for concurrent mutation.
type Store struct {
	Corpora []models.CorpusEntry
}

// New returns a store over the given corpora.
func New(corpora ...models.CorpusEntry) *Store {
	return &Store{Corpora: corpora}
}

// Size returns the total number of text entries across all corpora.
func (s *Store) Size() int {
	n := 0
	for _, c := range s.Corpora {
		for _, rec := range c.Records {
			n += len(rec.Entries)
		}
	}
	return n
}

// CorpusNames returns the corpus names in store order.
func (s *Store) CorpusNames() []string {
	names := make([]string, len(s.Corpora))
	for i, c := range s.Corpora {
		names[i] = c.Name
	}
	return names
}

// Corpus returns the first corpus with the given name, or nil.
func (s *Store) Corpus(name string) *models.CorpusEntry {
	for i := range s.Corpora {
		if s.Corpora[i].Name == name {
			return &s.Corpora[i]
		}
	}
	return nil
}
