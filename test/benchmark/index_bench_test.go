// Package benchmark contains Go benchmarks for the index builder, the
// normalisation pipeline, and query ranking, measuring throughput and
// allocation behaviour.
package benchmark

import (
	"fmt"
	"testing"

	"pubsearch/internal/index"
)

var sampleAbstracts = []string{
	"statistical models for citation networks and scholarly impact prediction",
	"deep learning approaches to information retrieval over large corpora",
	"economic growth and the distribution of research funding across regions",
	"bayesian inference methods for sparse high dimensional data",
	"a survey of ranking functions for full text publication search",
}

func syntheticRecords(n int) []index.Record {
	recs := make([]index.Record, n)
	for i := range recs {
		recs[i] = index.Record{
			Title:    fmt.Sprintf("Publication %d on applied research methods", i),
			URL:      fmt.Sprintf("https://example.org/pub/%d", i),
			Date:     "2021-06-01",
			Authors:  []index.Author{{Name: fmt.Sprintf("Author %d", i%50)}},
			Abstract: sampleAbstracts[i%len(sampleAbstracts)],
		}
	}
	return recs
}

// BenchmarkBuild measures full two-phase index construction over 1 000
// records.
func BenchmarkBuild(b *testing.B) {
	recs := syntheticRecords(1000)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		state := index.Build(recs)
		_ = state
	}
}

// BenchmarkNormalize measures the tokenise-stopword-stem pipeline on a
// typical abstract.
func BenchmarkNormalize(b *testing.B) {
	text := sampleAbstracts[0] + " " + sampleAbstracts[1]
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		terms := index.Normalize(text)
		_ = terms
	}
}

// BenchmarkRank measures scoring a query against 10 000 documents.
func BenchmarkRank(b *testing.B) {
	state := index.Build(syntheticRecords(10000))
	qv := index.QueryVector("deep learning ranking models", state)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ranked := index.Rank(qv, state, 10)
		_ = ranked
	}
}

// BenchmarkRankParallel measures concurrent read throughput against one
// shared snapshot.
func BenchmarkRankParallel(b *testing.B) {
	state := index.Build(syntheticRecords(10000))
	qv := index.QueryVector("deep learning ranking models", state)
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			ranked := index.Rank(qv, state, 10)
			_ = ranked
		}
	})
}
