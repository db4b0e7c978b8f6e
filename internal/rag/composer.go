package rag

import (
	"fmt"
	"strings"

	"wikirag/internal/index"
)

// DefaultMaxChars bounds how much of each retrieved body makes it into the
// prompt context.
const DefaultMaxChars = 800

// blockDelimiter separates per-result blocks in the composed context.
const blockDelimiter = "\n\n"

// Composer formats retrieved results into a single bounded context block.
// It performs no network or index access.
type Composer struct {
	// MaxChars is the per-result body limit in runes. Bodies are hard-cut
	// at the limit on a rune boundary; no word snapping. Zero means
	// DefaultMaxChars.
	MaxChars int
}

// Compose concatenates the results, in ranking order, into the context
// block handed to the completion service.
func (c Composer) Compose(results []index.Result) string {
	limit := c.MaxChars
	if limit <= 0 {
		limit = DefaultMaxChars
	}

	blocks := make([]string, 0, len(results))
	for i, r := range results {
		var b strings.Builder
		fmt.Fprintf(&b, "[Reference %d]\n", i+1)
		fmt.Fprintf(&b, "Title: %s\n", orNA(r.Metadata["title"]))
		fmt.Fprintf(&b, "ID: %s\n", orNA(r.ID))
		if cats := r.Metadata["categories"]; cats != "" {
			fmt.Fprintf(&b, "Categories: %s\n", cats)
		}
		fmt.Fprintf(&b, "Content:\n%s\n", truncateRunes(r.Content, limit))
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, blockDelimiter)
}

// truncateRunes hard-cuts s after limit runes. Cutting on a rune boundary
// keeps the output valid UTF-8 and deterministic.
func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
