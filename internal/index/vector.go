package index

// QueryVector converts a query string into a weighted term vector against
// the given snapshot. Query terms are weighted by raw occurrence count (not
// log-scaled, which keeps exact query-term matches sharp) multiplied by the
// corpus IDF. Terms absent from the corpus still receive ln(N+1)+1, so they
// inflate the query norm without ever matching a document; that smoothing
// behaviour is kept deliberately.
//
// An empty or all-stopword query yields an empty vector.
func QueryVector(query string, s *State) Vector {
	terms := Normalize(query)
	if len(terms) == 0 {
		return nil
	}
	v := make(Vector, len(terms))
	for _, t := range terms {
		v[t]++
	}
	for t := range v {
		v[t] *= s.IDF(t)
	}
	return v
}

// cosine computes the cosine similarity between two sparse vectors over the
// intersection of their nonzero terms. It returns 0 when either magnitude
// is 0.
func cosine(a, b Vector) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	// Iterate the smaller vector; only shared terms contribute to the
	// dot product.
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	var dot float64
	for term, w := range small {
		dot += w * large.Weight(term)
	}
	if dot == 0 {
		return 0
	}
	denom := a.magnitude() * b.magnitude()
	if denom == 0 {
		return 0
	}
	return dot / denom
}
