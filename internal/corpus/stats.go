package corpus

import "math"

// Stats holds corpus-wide term statistics: vocabulary, document frequency,
// smoothed IDF, document lengths, and the set of rare terms. Built once at
// startup; read-only for the remainder of the process lifetime.
type Stats struct {
	Vocab     map[string]struct{}
	DF        map[string]int
	IDF       map[string]float64
	AvgDocLen float64
	DocLen    map[string]int
	RareTerms map[string]struct{}
}

// BuildStats computes term statistics over the corpus. Terms with document
// frequency at or below rareDFThreshold are marked rare.
func BuildStats(docs []Document, rareDFThreshold int) *Stats {
	df := make(map[string]int)
	docLen := make(map[string]int, len(docs))
	totalLen := 0

	for _, d := range docs {
		toks := Tokenize(d.IndexText())
		docLen[d.ID] = len(toks)
		totalLen += len(toks)

		seen := make(map[string]struct{}, len(toks))
		for _, t := range toks {
			seen[t] = struct{}{}
		}
		for t := range seen {
			df[t]++
		}
	}

	nDocs := len(docs)
	if nDocs < 1 {
		nDocs = 1
	}

	idf := make(map[string]float64, len(df))
	vocab := make(map[string]struct{}, len(df))
	rare := make(map[string]struct{})
	for t, c := range df {
		// BM25-style smoothed IDF; always positive.
		idf[t] = math.Log(1.0 + (float64(nDocs)-float64(c)+0.5)/(float64(c)+0.5))
		vocab[t] = struct{}{}
		if c <= rareDFThreshold {
			rare[t] = struct{}{}
		}
	}

	return &Stats{
		Vocab:     vocab,
		DF:        df,
		IDF:       idf,
		AvgDocLen: float64(totalLen) / float64(nDocs),
		DocLen:    docLen,
		RareTerms: rare,
	}
}
