package corpus

import (
	"regexp"
	"strings"
)

// tokenRegex keeps hyphen/underscore joined tokens ("inc-49217", "user_id")
// and strips other punctuation.
var tokenRegex = regexp.MustCompile(`[A-Za-z0-9]+(?:[-_][A-Za-z0-9]+)*`)

// Tokenize splits text into lowercase tokens tuned for operational text:
// identifiers and ticket numbers survive as single tokens.
func Tokenize(text string) []string {
	words := tokenRegex.FindAllString(text, -1)
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		tokens = append(tokens, strings.ToLower(w))
	}
	return tokens
}

// TermFreq counts occurrences of each token.
func TermFreq(tokens []string) map[string]int {
	tf := make(map[string]int, len(tokens))
	for _, t := range tokens {
		tf[t]++
	}
	return tf
}
