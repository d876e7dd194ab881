// Package cli provides output formatting for the shirabe command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hyperjump/shirabe/internal/models"
	"github.com/hyperjump/shirabe/pkg/utils"
)

// OutputFormat is the format for search result output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// WriteSearchResults writes results to w in the given format. An unknown
// format is an error.
func WriteSearchResults(w io.Writer, results []models.SearchResult, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case OutputText:
		writeSearchResultsText(w, results)
		return nil
	default:
		return fmt.Errorf("unknown output format %q, want %q or %q", format, OutputText, OutputJSON)
	}
}

func writeSearchResultsText(w io.Writer, results []models.SearchResult) {
	fmt.Fprintf(w, "\nFound %d results\n\n", len(results))
	for i, result := range results {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "Rank: %d | Corpus: %s | Score: %.4f\n", i+1, result.CorpusName, result.Score)
		fmt.Fprintf(w, "Page: %d | ID: %s\n", result.Entry.Page, result.Entry.ID)
		fmt.Fprintf(w, "%s\n", utils.Truncate(result.Entry.Content, 300))
	}
}
