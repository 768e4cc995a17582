// Package corpus provides the document corpus, the labeled evaluation set,
// and corpus-wide term statistics shared by every retrieval strategy.
// The corpus is built once at startup and is read-only afterwards.
package corpus

// Document is a single retrievable document. IDs are unique within a corpus.
type Document struct {
	ID    string `json:"doc_id"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// IndexText returns the text that is tokenized and indexed for this document.
func (d Document) IndexText() string {
	return d.Title + " " + d.Text
}

// QueryLabel is one labeled item of the evaluation set.
type QueryLabel struct {
	QueryID        string `json:"query_id"`
	Query          string `json:"query"`
	ExpectedDocID  string `json:"expected_doc_id"`
	ExpectedAnswer string `json:"expected_answer"`
}
