package usecase

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kmalykh/bank-assistant/internal/core/domain"
)

// noContextSentinel keeps the generation prompt well-formed when retrieval
// returned nothing.
const noContextSentinel = "No information available."

const chunkSeparator = "\n\n---\n\n"

// FormatChunks renders retrieved chunks into the context block handed to the
// generator. Each chunk carries a numbered source header; the page is "N/A"
// for chunks without page provenance.
func FormatChunks(chunks []domain.RetrievedChunk) string {
	if len(chunks) == 0 {
		return noContextSentinel
	}

	parts := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		page := "N/A"
		if chunk.Page > 0 {
			page = strconv.Itoa(chunk.Page)
		}
		parts = append(parts, fmt.Sprintf("[Source %d: %s, p. %s]\n%s", i+1, chunk.Source, page, chunk.Text))
	}
	return strings.Join(parts, chunkSeparator)
}

// FormatSources renders a compact user-facing attribution line per source
// file, e.g. "deposits.pdf (p. 1, 3)". Pages are deduplicated and sorted
// ascending; files keep first-appearance order.
func FormatSources(chunks []domain.RetrievedChunk) string {
	type sourcePages struct {
		name  string
		pages []int
		seen  map[int]struct{}
	}

	order := make([]string, 0, len(chunks))
	bySource := make(map[string]*sourcePages, len(chunks))
	for _, chunk := range chunks {
		sp, ok := bySource[chunk.Source]
		if !ok {
			sp = &sourcePages{name: chunk.Source, seen: make(map[int]struct{})}
			bySource[chunk.Source] = sp
			order = append(order, chunk.Source)
		}
		if chunk.Page <= 0 {
			continue
		}
		if _, dup := sp.seen[chunk.Page]; dup {
			continue
		}
		sp.seen[chunk.Page] = struct{}{}
		sp.pages = append(sp.pages, chunk.Page)
	}

	lines := make([]string, 0, len(order))
	for _, name := range order {
		sp := bySource[name]
		if len(sp.pages) == 0 {
			lines = append(lines, sp.name)
			continue
		}
		sort.Ints(sp.pages)
		rendered := make([]string, len(sp.pages))
		for i, p := range sp.pages {
			rendered[i] = strconv.Itoa(p)
		}
		lines = append(lines, fmt.Sprintf("%s (p. %s)", sp.name, strings.Join(rendered, ", ")))
	}
	return strings.Join(lines, "\n")
}
