package index

import (
	"strings"
	"unicode"

	"github.com/blevesearch/go-porterstemmer"
)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "by": {}, "for": {}, "from": {}, "has": {}, "he": {},
	"in": {}, "is": {}, "it": {}, "its": {}, "of": {}, "on": {},
	"or": {}, "that": {}, "the": {}, "to": {}, "was": {}, "were": {},
	"will": {}, "with": {}, "this": {}, "but": {}, "they": {},
	"have": {}, "had": {}, "what": {}, "when": {}, "where": {},
	"who": {}, "which": {}, "their": {}, "if": {}, "each": {},
	"do": {}, "not": {}, "no": {}, "so": {}, "can": {},
	"we": {}, "our": {}, "you": {}, "your": {}, "i": {},
	"s": {}, "t": {},
}

// Normalize turns raw text into the ordered term sequence used for both
// document ingestion and query processing: lowercase, split on
// non-alphanumeric boundaries, drop stopwords, Porter-stem. It never fails;
// empty or all-stopword input yields an empty slice.
func Normalize(text string) []string {
	text = strings.ToLower(text)
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	terms := make([]string, 0, len(words))
	for _, word := range words {
		if _, isStop := stopWords[word]; isStop {
			continue
		}
		stemmed := porterstemmer.StemString(word)
		if stemmed == "" {
			continue
		}
		terms = append(terms, stemmed)
	}
	return terms
}

// termCounts returns the raw occurrence count of each term in the sequence.
func termCounts(terms []string) map[string]int {
	counts := make(map[string]int, len(terms))
	for _, t := range terms {
		counts[t]++
	}
	return counts
}
