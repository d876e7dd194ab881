// Package normalize cleans raw text extracted from documents before embedding.
package normalize

import (
	"regexp"
	"strings"
)

// Options control which normalization steps are applied.
type Options struct {
	// FixQuotes converts HTML-entity apostrophes (&#x27;) left over from
	// scraped or re-encoded documents into plain apostrophes.
	FixQuotes bool
	// StripNewlines replaces newline runs with a single space.
	StripNewlines bool
	// Lowercase converts the entire text to lowercase.
	Lowercase bool
}

// DefaultOptions returns the options used by the corpus builder:
// quotes fixed, newlines stripped, case preserved.
func DefaultOptions() Options {
	return Options{FixQuotes: true, StripNewlines: true}
}

var (
	curlySingle  = regexp.MustCompile("[‘’]")
	curlyDouble  = regexp.MustCompile("[“”]")
	entityApos   = regexp.MustCompile(`(&\\#x27;|&#x27;)`)
	newlineRuns  = regexp.MustCompile("[\n\r]+")
	tabNbspRuns  = regexp.MustCompile("[\t ]+")
	backslashes  = regexp.MustCompile(`\\+`)
	spaceRuns    = regexp.MustCompile(`\s+`)
)

// Normalize cleans text: curly quotes become straight quotes, tabs and
// non-breaking spaces become spaces, stray backslashes are removed, and
// whitespace runs collapse to a single space. Pure and idempotent:
// Normalize(Normalize(t)) == Normalize(t) for any t.
func Normalize(text string, opts Options) string {
	out := curlySingle.ReplaceAllString(text, "'")
	out = curlyDouble.ReplaceAllString(out, `"`)

	if opts.FixQuotes {
		out = entityApos.ReplaceAllString(out, "'")
	}
	if opts.StripNewlines {
		out = newlineRuns.ReplaceAllString(out, " ")
	}
	out = tabNbspRuns.ReplaceAllString(out, " ")
	out = backslashes.ReplaceAllString(out, "")
	out = strings.TrimSpace(spaceRuns.ReplaceAllString(out, " "))

	if opts.Lowercase {
		out = strings.ToLower(out)
	}
	return out
}
