package index

import "sort"

// ScoredDoc pairs a document with its similarity score against a query.
// Score carries full float64 precision; rounding for presentation is the
// caller's concern.
type ScoredDoc struct {
	Doc   Document
	Score float64
}

// Rank scores every document vector in the snapshot against the query
// vector and returns the full ranking, descending by score with ties broken
// by ascending document ID. A query vector with no overlap still yields
// every document, all at score 0, so callers can distinguish "no matches"
// from "no query". An empty query vector yields an empty ranking
// immediately. topN > 0 truncates the result after sorting.
func Rank(queryVec Vector, s *State, topN int) []ScoredDoc {
	if len(queryVec) == 0 {
		return nil
	}
	ranked := make([]ScoredDoc, 0, len(s.Docs))
	for id := range s.Docs {
		ranked = append(ranked, ScoredDoc{
			Doc:   s.Docs[id],
			Score: cosine(queryVec, s.Vectors[id]),
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Doc.ID < ranked[j].Doc.ID
	})
	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}
