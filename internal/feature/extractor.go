// Package feature derives routing signals from query text and frozen corpus
// statistics. Extraction is a pure function of (query, stats): no hidden
// mutable state, no side effects.
package feature

import (
	"github.com/mick2004/beyond-vector-search/internal/corpus"
)

// Features are the per-query routing signals. All ratios lie in [0,1].
type Features struct {
	NTokens    int     `json:"n_tokens"`
	DigitRatio float64 `json:"digit_ratio"`
	OOVRatio   float64 `json:"oov_ratio"`
	RareRatio  float64 `json:"rare_ratio"`
}

// Extractor computes Features against a fixed corpus vocabulary.
type Extractor struct {
	stats *corpus.Stats
}

// NewExtractor creates an extractor bound to the given corpus statistics.
func NewExtractor(stats *corpus.Stats) *Extractor {
	return &Extractor{stats: stats}
}

// Extract tokenizes the query and computes routing features.
// An empty or whitespace-only query yields the zero value.
func (e *Extractor) Extract(query string) Features {
	toks := corpus.Tokenize(query)
	n := len(toks)
	if n == 0 {
		return Features{}
	}

	var digits, oov, rare int
	for _, t := range toks {
		if hasDigit(t) {
			digits++
		}
		if _, ok := e.stats.Vocab[t]; !ok {
			oov++
		}
		if _, ok := e.stats.RareTerms[t]; ok {
			rare++
		}
	}

	fn := float64(n)
	return Features{
		NTokens:    n,
		DigitRatio: float64(digits) / fn,
		OOVRatio:   float64(oov) / fn,
		RareRatio:  float64(rare) / fn,
	}
}

func hasDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
