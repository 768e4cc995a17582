package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// LoadCorpus reads a jsonl corpus file (one Document per line).
// Blank lines are skipped. Duplicate doc_ids are rejected.
func LoadCorpus(path string) ([]Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer func() { _ = f.Close() }()

	var docs []Document
	seen := make(map[string]struct{})

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var d Document
		if err := json.Unmarshal(line, &d); err != nil {
			return nil, fmt.Errorf("parse corpus line %d: %w", lineNo, err)
		}
		if d.ID == "" {
			return nil, fmt.Errorf("corpus line %d: missing doc_id", lineNo)
		}
		if _, dup := seen[d.ID]; dup {
			return nil, fmt.Errorf("corpus line %d: duplicate doc_id %q", lineNo, d.ID)
		}
		seen[d.ID] = struct{}{}
		docs = append(docs, d)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	return docs, nil
}

// LoadLabels reads a jsonl labeled-query file (one QueryLabel per line).
func LoadLabels(path string) ([]QueryLabel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open labels: %w", err)
	}
	defer func() { _ = f.Close() }()

	var labels []QueryLabel
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var l QueryLabel
		if err := json.Unmarshal(line, &l); err != nil {
			return nil, fmt.Errorf("parse labels line %d: %w", lineNo, err)
		}
		labels = append(labels, l)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}
	return labels, nil
}

// ByID builds a doc_id lookup map for a corpus slice.
func ByID(docs []Document) map[string]Document {
	m := make(map[string]Document, len(docs))
	for _, d := range docs {
		m[d.ID] = d
	}
	return m
}
