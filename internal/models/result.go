package models

// SearchResult is a single semantic search hit with the owning corpus and score.
type SearchResult struct {
	CorpusName string    `json:"corpus_name"`
	Score      float64   `json:"score"`
	Entry      TextEntry `json:"entry"`
}
