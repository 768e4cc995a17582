package retriever

import (
	"math"
	"regexp"
	"strings"

	"github.com/mick2004/beyond-vector-search/internal/corpus"
)

// VectorConfig holds the character n-gram vectorizer settings.
type VectorConfig struct {
	// NGram is the character n-gram size.
	NGram int
}

// DefaultVectorConfig returns the standard n-gram size.
func DefaultVectorConfig() VectorConfig {
	return VectorConfig{NGram: 4}
}

// Vector ranks documents by cosine similarity of character n-gram TF-IDF
// vectors. The n-gram space is deliberately separate from the token space
// used by Keyword, so the two strategies can meaningfully disagree. Document
// vectors and the IDF table are frozen at construction; queries are
// vectorized with the same table and never contribute to IDF.
type Vector struct {
	docs     []corpus.Document
	idf      map[string]float64
	docVecs  map[string]map[string]float64
	docNorms map[string]float64
	cfg      VectorConfig
}

var wsRegex = regexp.MustCompile(`\s+`)

// charNGrams returns the character n-grams of the normalized text. Text
// shorter than n yields the whole string as a single gram; empty text yields
// none.
func charNGrams(text string, n int) []string {
	s := strings.TrimSpace(wsRegex.ReplaceAllString(strings.ToLower(text), " "))
	runes := []rune(s)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) < n {
		return []string{s}
	}
	grams := make([]string, 0, len(runes)-n+1)
	for i := 0; i+n <= len(runes); i++ {
		grams = append(grams, string(runes[i:i+n]))
	}
	return grams
}

// tfidfVector builds a sublinear TF-IDF vector over the frozen IDF table.
// Grams absent from the table are dropped.
func tfidfVector(grams []string, idf map[string]float64) map[string]float64 {
	tf := corpus.TermFreq(grams)
	vec := make(map[string]float64, len(tf))
	for g, c := range tf {
		w, ok := idf[g]
		if !ok {
			continue
		}
		vec[g] = (1.0 + math.Log(float64(c))) * w
	}
	return vec
}

func l2Norm(v map[string]float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

func dot(a, b map[string]float64) float64 {
	if len(a) > len(b) {
		a, b = b, a
	}
	sum := 0.0
	for k, v := range a {
		sum += v * b[k]
	}
	return sum
}

// NewVector builds the n-gram IDF table and one TF-IDF vector per document.
func NewVector(docs []corpus.Document, cfg VectorConfig) *Vector {
	nDocs := len(docs)
	if nDocs < 1 {
		nDocs = 1
	}

	df := make(map[string]int)
	perDocGrams := make(map[string][]string, len(docs))
	for _, d := range docs {
		grams := charNGrams(d.IndexText(), cfg.NGram)
		perDocGrams[d.ID] = grams
		seen := make(map[string]struct{}, len(grams))
		for _, g := range grams {
			seen[g] = struct{}{}
		}
		for g := range seen {
			df[g]++
		}
	}

	idf := make(map[string]float64, len(df))
	for g, c := range df {
		idf[g] = math.Log(1.0 + (float64(nDocs)-float64(c)+0.5)/(float64(c)+0.5))
	}

	docVecs := make(map[string]map[string]float64, len(docs))
	docNorms := make(map[string]float64, len(docs))
	for _, d := range docs {
		v := tfidfVector(perDocGrams[d.ID], idf)
		docVecs[d.ID] = v
		norm := l2Norm(v)
		if norm == 0 {
			norm = 1.0
		}
		docNorms[d.ID] = norm
	}

	return &Vector{docs: docs, idf: idf, docVecs: docVecs, docNorms: docNorms, cfg: cfg}
}

// Search returns up to k documents by descending cosine similarity. A query
// producing no known n-grams scores 0 against every document, so the top-k
// degenerates to the first k doc_ids in ascending order.
func (r *Vector) Search(query string, k int) []Result {
	q := tfidfVector(charNGrams(query, r.cfg.NGram), r.idf)
	qNorm := l2Norm(q)
	if qNorm == 0 {
		qNorm = 1.0
	}

	candidates := make([]Result, 0, len(r.docs))
	for _, d := range r.docs {
		sim := dot(q, r.docVecs[d.ID]) / (qNorm * r.docNorms[d.ID])
		candidates = append(candidates, Result{DocID: d.ID, Score: sim})
	}

	return topK(candidates, k)
}

var _ Searcher = (*Vector)(nil)
