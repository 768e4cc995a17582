// Package answer builds templated answers from ranked retrieval results.
// Generation is deterministic: the same results always produce the same
// answer text, which the evaluator relies on for exact-match scoring.
package answer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mick2004/beyond-vector-search/internal/corpus"
	"github.com/mick2004/beyond-vector-search/internal/retriever"
)

// FallbackText is returned when retrieval produced no results.
const FallbackText = "No relevant documents matched the query."

// DefaultMaxContextChars caps the size of the assembled context block.
const DefaultMaxContextChars = 900

var sentenceSplit = regexp.MustCompile(`[.!?]\s+`)

// Answer is a templated response with the doc_ids it cites.
type Answer struct {
	Text      string   `json:"text"`
	Citations []string `json:"citations"`
}

// JoinTopSentences returns the first maxSentences sentences of text joined
// with a trailing period.
func JoinTopSentences(text string, maxSentences int) string {
	var parts []string
	for _, p := range sentenceSplit.Split(text, -1) {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	if len(parts) > maxSentences {
		parts = parts[:maxSentences]
	}
	out := strings.TrimSpace(strings.Join(parts, ". "))
	if strings.HasSuffix(out, ".") || strings.HasSuffix(out, "!") || strings.HasSuffix(out, "?") {
		return out
	}
	return out + "."
}

// BuildContext assembles a citation-prefixed context block from the ranked
// results, stopping before maxChars is exceeded.
func BuildContext(results []retriever.Result, docs map[string]corpus.Document, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxContextChars
	}
	var blocks []string
	used := 0
	for _, r := range results {
		d, ok := docs[r.DocID]
		if !ok {
			continue
		}
		snippet := JoinTopSentences(d.Text, 2)
		block := fmt.Sprintf("[%s] %s: %s", d.ID, d.Title, snippet)
		if used+len(block) > maxChars {
			break
		}
		blocks = append(blocks, block)
		used += len(block)
	}
	return strings.Join(blocks, "\n")
}

// Generate builds the templated answer from the top-1 result.
func Generate(query string, results []retriever.Result, docs map[string]corpus.Document) Answer {
	if len(results) == 0 {
		return Answer{Text: FallbackText}
	}
	top, ok := docs[results[0].DocID]
	if !ok {
		return Answer{Text: FallbackText}
	}
	snippet := JoinTopSentences(top.Text, 2)
	text := fmt.Sprintf("Based on the retrieved context, here's the best match:\n\n%s\n%s\n\n(Query: %s)",
		top.Title, snippet, query)
	return Answer{Text: text, Citations: []string{top.ID}}
}
