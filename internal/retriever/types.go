// Package retriever implements the three retrieval strategies over a static
// corpus: BM25-like keyword scoring, character n-gram TF-IDF cosine as a
// CPU-friendly vector proxy, and a score-blended hybrid of the two.
//
// All strategies return results in descending score order with a
// deterministic tie-break by ascending doc_id, so repeated runs over the
// same corpus produce identical rankings.
package retriever

import "sort"

// Strategy names a retrieval strategy.
type Strategy string

const (
	StrategyKeyword Strategy = "keyword"
	StrategyVector  Strategy = "vector"
	StrategyHybrid  Strategy = "hybrid"
)

// Strategies lists all strategies in canonical order.
var Strategies = []Strategy{StrategyKeyword, StrategyVector, StrategyHybrid}

// Result is one ranked document.
type Result struct {
	DocID string  `json:"doc_id"`
	Score float64 `json:"score"`
}

// Searcher is the common search contract implemented by every strategy.
type Searcher interface {
	// Search returns up to k ranked results for the query.
	Search(query string, k int) []Result
}

// sortResults orders results by descending score, ties by ascending doc_id.
func sortResults(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].DocID < results[j].DocID
	})
}

// topK sorts results and truncates to at most k entries.
func topK(results []Result, k int) []Result {
	if k <= 0 {
		return []Result{}
	}
	sortResults(results)
	if len(results) > k {
		return results[:k]
	}
	return results
}
