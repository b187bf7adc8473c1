package index

import "math"

// Posting records one document's final TF-IDF weight for a term.
type Posting struct {
	DocID  int     `json:"doc_id"`
	Weight float64 `json:"weight"`
}

// Vector is a sparse term-weight vector. Terms with zero weight are never
// stored; absence means zero.
type Vector map[string]float64

// Weight returns the weight of a term, or 0 when the term is absent. It
// never materialises an entry.
func (v Vector) Weight(term string) float64 {
	return v[term]
}

// magnitude returns the Euclidean norm of the vector.
func (v Vector) magnitude() float64 {
	var sum float64
	for _, w := range v {
		sum += w * w
	}
	return math.Sqrt(sum)
}

// State is a complete, immutable index snapshot: it is created atomically by
// Build or by the persistence layer, is safe for unlimited concurrent
// readers, and is replaced wholesale on rebuild.
type State struct {
	// Inverted maps each term to its posting list, in build insertion
	// order (ascending document ID).
	Inverted map[string][]Posting
	// Vectors maps each document ID to its sparse TF-IDF vector. Every
	// weight stored here also appears in the corresponding posting list.
	Vectors map[int]Vector
	// DocCounts maps each term to the number of distinct documents
	// containing it.
	DocCounts map[string]int
	// Docs holds document metadata ordered by ID.
	Docs []Document
}

// NumDocs returns the number of documents in the snapshot.
func (s *State) NumDocs() int {
	return len(s.Docs)
}

// NumTerms returns the number of distinct terms in the snapshot.
func (s *State) NumTerms() int {
	return len(s.Inverted)
}

// DocFreq returns the number of documents containing the term, 0 for
// unknown terms.
func (s *State) DocFreq(term string) int {
	return s.DocCounts[term]
}

// IDF returns the smoothed inverse document frequency of a term:
// ln((N+1)/(df+1)) + 1. The +1 smoothing keeps the value finite and nonzero
// for terms absent from the corpus (df=0 gives ln(N+1)+1).
func (s *State) IDF(term string) float64 {
	n := float64(len(s.Docs))
	df := float64(s.DocCounts[term])
	return math.Log((n+1)/(df+1)) + 1
}
