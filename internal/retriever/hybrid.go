package retriever

// HybridConfig holds the score blending constant.
type HybridConfig struct {
	// Alpha is the keyword share of the blended score; the vector share is
	// 1-alpha. Must lie in [0,1].
	Alpha float64
}

// DefaultHybridConfig returns an even keyword/vector blend.
func DefaultHybridConfig() HybridConfig {
	return HybridConfig{Alpha: 0.5}
}

// Hybrid blends the keyword and vector strategies over a shared candidate
// set. Each sub-result list is rescaled to [0,1] by dividing by its maximum
// score (divide-by-max, kept fixed for reproducibility), then blended as
// alpha*keyword + (1-alpha)*vector. Candidates are the union of both
// strategies' top-2k results, so a document strong in only one strategy can
// still surface in the final top-k.
type Hybrid struct {
	keyword *Keyword
	vector  *Vector
	cfg     HybridConfig
}

// NewHybrid creates a hybrid searcher over the two sub-strategies.
func NewHybrid(keyword *Keyword, vector *Vector, cfg HybridConfig) *Hybrid {
	return &Hybrid{keyword: keyword, vector: vector, cfg: cfg}
}

// Search returns up to k blended results.
func (r *Hybrid) Search(query string, k int) []Result {
	if k <= 0 {
		return []Result{}
	}

	// Oversample both strategies before the final cut.
	kwResults := r.keyword.Search(query, k*2)
	vecResults := r.vector.Search(query, k*2)

	kwScores := make(map[string]float64, len(kwResults))
	kwMax := 0.0
	for _, res := range kwResults {
		kwScores[res.DocID] = res.Score
		if res.Score > kwMax {
			kwMax = res.Score
		}
	}

	vecScores := make(map[string]float64, len(vecResults))
	vecMax := 0.0
	for _, res := range vecResults {
		vecScores[res.DocID] = res.Score
		if res.Score > vecMax {
			vecMax = res.Score
		}
	}

	union := make(map[string]struct{}, len(kwScores)+len(vecScores))
	for id := range kwScores {
		union[id] = struct{}{}
	}
	for id := range vecScores {
		union[id] = struct{}{}
	}

	candidates := make([]Result, 0, len(union))
	for id := range union {
		kwNorm := 0.0
		if kwMax > 0 {
			kwNorm = kwScores[id] / kwMax
		}
		vecNorm := 0.0
		if vecMax > 0 {
			vecNorm = vecScores[id] / vecMax
		}
		score := r.cfg.Alpha*kwNorm + (1.0-r.cfg.Alpha)*vecNorm
		candidates = append(candidates, Result{DocID: id, Score: score})
	}

	return topK(candidates, k)
}

var _ Searcher = (*Hybrid)(nil)
