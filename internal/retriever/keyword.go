package retriever

import (
	"github.com/mick2004/beyond-vector-search/internal/corpus"
)

// KeywordConfig holds the BM25 constants.
type KeywordConfig struct {
	// K1 is the term frequency saturation parameter.
	K1 float64
	// B is the document length normalization parameter.
	B float64
}

// DefaultKeywordConfig returns the standard BM25 constants.
func DefaultKeywordConfig() KeywordConfig {
	return KeywordConfig{K1: 1.5, B: 0.75}
}

// Keyword scores documents with the saturating TF/IDF (BM25) formula.
// The inverted statistics are built once at construction and never mutated.
type Keyword struct {
	docs   []corpus.Document
	stats  *corpus.Stats
	docTFs map[string]map[string]int
	cfg    KeywordConfig
}

// NewKeyword builds per-document term frequencies for the corpus.
func NewKeyword(docs []corpus.Document, stats *corpus.Stats, cfg KeywordConfig) *Keyword {
	docTFs := make(map[string]map[string]int, len(docs))
	for _, d := range docs {
		docTFs[d.ID] = corpus.TermFreq(corpus.Tokenize(d.IndexText()))
	}
	return &Keyword{docs: docs, stats: stats, docTFs: docTFs, cfg: cfg}
}

// Search returns up to k documents that share at least one term with the
// query, scored by BM25. Documents with zero term overlap are never padded
// into the result; fewer than k results may be returned.
func (r *Keyword) Search(query string, k int) []Result {
	qTF := corpus.TermFreq(corpus.Tokenize(query))
	if len(qTF) == 0 {
		return []Result{}
	}

	avgDL := r.stats.AvgDocLen
	if avgDL == 0 {
		avgDL = 1.0
	}

	candidates := make([]Result, 0, len(r.docs))
	for _, d := range r.docs {
		tf := r.docTFs[d.ID]
		dl := float64(r.stats.DocLen[d.ID])
		denomNorm := r.cfg.K1 * (1.0 - r.cfg.B + r.cfg.B*(dl/avgDL))

		score := 0.0
		for term := range qTF {
			idf, ok := r.stats.IDF[term]
			if !ok {
				continue
			}
			f := float64(tf[term])
			if f <= 0 {
				continue
			}
			score += idf * (f * (r.cfg.K1 + 1.0)) / (f + denomNorm)
		}
		if score > 0 {
			candidates = append(candidates, Result{DocID: d.ID, Score: score})
		}
	}

	return topK(candidates, k)
}

var _ Searcher = (*Keyword)(nil)
