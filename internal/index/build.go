package index

import (
	"log/slog"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Build constructs a complete State from an ordered sequence of raw records.
// Document IDs are assigned by input position. Records with missing fields
// are indexed with zero-value defaults; Build never rejects a record. An
// empty input produces a valid empty state.
//
// The build runs in two phases. Phase one tokenises each document and
// computes its log-scaled term frequencies; documents are independent, so
// this phase is parallelised. Phase two runs after all documents finish: it
// accumulates document frequencies in input order and multiplies every
// stored TF by the term's IDF, in both the posting lists and the document
// vectors. The result is deterministic for identical input.
func Build(records []Record) *State {
	logger := slog.Default().With("component", "index-builder")

	type docTF struct {
		raw map[string]int
		tf  Vector
	}
	perDoc := make([]docTF, len(records))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range records {
		i := i
		g.Go(func() error {
			raw := termCounts(Normalize(records[i].indexText()))
			tf := make(Vector, len(raw))
			for term, count := range raw {
				// Terms with zero raw count are absent, never
				// stored with weight 0.
				tf[term] = 1 + math.Log(float64(count))
			}
			perDoc[i] = docTF{raw: raw, tf: tf}
			return nil
		})
	}
	// Normalisation is total; the group exists only to bound parallelism
	// and to enforce the barrier before the global IDF phase.
	_ = g.Wait()

	state := &State{
		Inverted:  make(map[string][]Posting),
		Vectors:   make(map[int]Vector, len(records)),
		DocCounts: make(map[string]int),
		Docs:      make([]Document, 0, len(records)),
	}

	for id, rec := range records {
		state.Docs = append(state.Docs, Document{
			ID:       id,
			Title:    rec.Title,
			URL:      rec.URL,
			Date:     rec.Date,
			Authors:  rec.Authors,
			Abstract: rec.Abstract,
		})
		tf := perDoc[id].tf
		for term := range tf {
			state.DocCounts[term]++
			state.Inverted[term] = append(state.Inverted[term], Posting{
				DocID:  id,
				Weight: tf[term],
			})
		}
		state.Vectors[id] = tf
	}

	// Posting lists and vectors hold provisional TF weights until this
	// point; the IDF factor needs the final N and df.
	for term, postings := range state.Inverted {
		idf := state.IDF(term)
		for i := range postings {
			postings[i].Weight *= idf
			state.Vectors[postings[i].DocID][term] *= idf
		}
	}

	logger.Info("index built",
		"documents", len(state.Docs),
		"terms", len(state.Inverted),
	)
	return state
}
