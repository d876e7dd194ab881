package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/hyperjump/shirabe/internal/embedding"
	"github.com/hyperjump/shirabe/internal/models"
	"github.com/hyperjump/shirabe/pkg/utils"
)

const (
	// DefaultTopK is the default number of candidates ranked per corpus.
	DefaultTopK = 32
	// DefaultMinLength is the default minimum word count of a returned result.
	DefaultMinLength = 15
)

// Search encodes query and ranks every entry of every corpus against it by
// dot product (cosine similarity for unit-normalized embeddings). Ranking is
// per corpus: the topK best candidates of each corpus are selected
// independently, then filtered to entries with at least minLength words, so a
// corpus can contribute fewer than topK results. Results are concatenated in
// corpus order; within a corpus they are ordered by descending score with ties
// kept in insertion order.
//
// The query must be encoded by the same encoder family that built the store;
// entry dimensions are checked against the query vector and a mismatch returns
// an error wrapping ErrInvalidArgument. Entries without an embedding are
// skipped. An empty store returns an empty slice.
//
// Brute force, O(entries x dimensions) per query; the store is assumed to fit
// in memory.
func (s *Store) Search(ctx context.Context, query string, enc embedding.Encoder, topK, minLength int) ([]models.SearchResult, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: query must not be empty", ErrInvalidArgument)
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: topK must be positive, got %d", ErrInvalidArgument, topK)
	}
	if minLength <= 0 {
		return nil, fmt.Errorf("%w: minLength must be positive, got %d", ErrInvalidArgument, minLength)
	}

	queryVec, err := enc.Encode(ctx, query, true)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	results := make([]models.SearchResult, 0)
	for _, corpus := range s.Corpora {
		candidates := corpus.Entries()
		type hit struct {
			entry models.TextEntry
			score float64
		}
		hits := make([]hit, 0, len(candidates))
		for _, entry := range candidates {
			if len(entry.Embedding) == 0 {
				continue
			}
			if len(entry.Embedding) != len(queryVec) {
				return nil, fmt.Errorf("%w: corpus %q entry %s has dimension %d, query has %d",
					ErrInvalidArgument, corpus.Name, entry.ID, len(entry.Embedding), len(queryVec))
			}
			hits = append(hits, hit{entry: entry, score: utils.DotProduct(queryVec, entry.Embedding)})
		}
		sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
		if len(hits) > topK {
			hits = hits[:topK]
		}
		for _, h := range hits {
			if utils.WordCount(h.entry.Content) < minLength {
				continue
			}
			results = append(results, models.SearchResult{
				CorpusName: corpus.Name,
				Score:      h.score,
				Entry:      h.entry,
			})
		}
	}
	return results, nil
}
