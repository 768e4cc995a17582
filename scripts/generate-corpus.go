//go:build ignore

// Generates a synthetic support-article corpus and matching labeled queries
// for benchmarking the retrieval strategies.
// Usage: go run scripts/generate-corpus.go -docs 500 -labels 100 -output data
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
)

var (
	numDocs   = flag.Int("docs", 500, "Number of documents to generate")
	numLabels = flag.Int("labels", 100, "Number of labeled queries to generate")
	outputDir = flag.String("output", "data", "Output directory")
	seed      = flag.Int64("seed", 42, "Random seed for reproducibility")
)

var topics = []string{
	"duplicate presentment", "chargeback filing", "refund processing",
	"settlement timing", "dispute evidence", "payout reconciliation",
	"card verification", "fraud review", "invoice correction",
	"subscription renewal",
}

var verbs = []string{
	"occurs when", "is resolved by", "must be reported within",
	"requires documentation for", "is reviewed during",
}

var tails = []string{
	"the same transaction posts twice",
	"the issuer requests supporting evidence",
	"sixty days of the statement date",
	"each disputed line item",
	"the weekly reconciliation window",
}

func main() {
	flag.Parse()
	rng := rand.New(rand.NewSource(*seed))

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		fatal(err)
	}

	corpusPath := filepath.Join(*outputDir, "corpus.jsonl")
	labelsPath := filepath.Join(*outputDir, "labels.jsonl")

	corpus, err := os.Create(corpusPath)
	if err != nil {
		fatal(err)
	}
	defer corpus.Close()

	type doc struct {
		ID    string `json:"doc_id"`
		Title string `json:"title"`
		Text  string `json:"text"`
	}
	docs := make([]doc, 0, *numDocs)
	enc := json.NewEncoder(corpus)
	for i := 0; i < *numDocs; i++ {
		topic := topics[rng.Intn(len(topics))]
		d := doc{
			ID:    fmt.Sprintf("doc-%04d", i),
			Title: fmt.Sprintf("%s guide %d", strings.Title(topic), i),
			Text: fmt.Sprintf("%s %s %s. Reference ticket INC-%05d for history.",
				strings.Title(topic), verbs[rng.Intn(len(verbs))], tails[rng.Intn(len(tails))], rng.Intn(99999)),
		}
		docs = append(docs, d)
		if err := enc.Encode(d); err != nil {
			fatal(err)
		}
	}

	labels, err := os.Create(labelsPath)
	if err != nil {
		fatal(err)
	}
	defer labels.Close()

	type label struct {
		QueryID        string `json:"query_id"`
		Query          string `json:"query"`
		ExpectedDocID  string `json:"expected_doc_id"`
		ExpectedAnswer string `json:"expected_answer"`
	}
	lenc := json.NewEncoder(labels)
	for i := 0; i < *numLabels; i++ {
		target := docs[rng.Intn(len(docs))]
		// Alternate identifier-heavy and natural-language query shapes so
		// both routing regimes are represented.
		query := "how is " + strings.ToLower(target.Title) + " handled"
		if i%2 == 0 {
			query = target.ID + " " + strings.Fields(strings.ToLower(target.Title))[0]
		}
		l := label{
			QueryID:       fmt.Sprintf("q-%04d", i),
			Query:         query,
			ExpectedDocID: target.ID,
		}
		if err := lenc.Encode(l); err != nil {
			fatal(err)
		}
	}

	fmt.Printf("wrote %d docs to %s and %d labels to %s\n", *numDocs, corpusPath, *numLabels, labelsPath)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
