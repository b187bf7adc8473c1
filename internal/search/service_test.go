package search

import (
	"errors"
	"math"
	"testing"

	"pubsearch/internal/index"
	apperrors "pubsearch/pkg/errors"
)

func readyHolder(recs []index.Record) *index.Holder {
	h := index.NewHolder()
	h.Publish(index.Build(recs))
	return h
}

func fruitRecords() []index.Record {
	return []index.Record{
		{Title: "Apple Banana Apple", URL: "https://example.org/0"},
		{Title: "Banana Cherry", URL: "https://example.org/1"},
		{Title: "Cherry Cherry", URL: "https://example.org/2"},
	}
}

func TestSearchBlankQuery(t *testing.T) {
	svc := New(readyHolder(fruitRecords()), nil)
	for _, q := range []string{"", "   ", "\t\n"} {
		results, err := svc.Search(q, 0)
		if err != nil {
			t.Fatalf("Search(%q): %v", q, err)
		}
		if len(results) != 0 {
			t.Errorf("Search(%q) = %d results, want 0", q, len(results))
		}
	}
}

// A blank query must not require an index at all.
func TestSearchBlankQueryBeforeFirstBuild(t *testing.T) {
	svc := New(index.NewHolder(), nil)
	results, err := svc.Search("  ", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestSearchIndexNotReady(t *testing.T) {
	svc := New(index.NewHolder(), nil)
	_, err := svc.Search("banana", 0)
	if !errors.Is(err, apperrors.ErrIndexNotReady) {
		t.Fatalf("error = %v, want ErrIndexNotReady", err)
	}
}

func TestSearchRanksAndRounds(t *testing.T) {
	svc := New(readyHolder(fruitRecords()), nil)
	results, err := svc.Search("cherry", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].ID != 2 {
		t.Errorf("top result ID = %d, want 2", results[0].ID)
	}
	if results[0].Title != "Cherry Cherry" || results[0].URL != "https://example.org/2" {
		t.Errorf("metadata not carried through: %+v", results[0])
	}
	for _, r := range results {
		if math.Round(r.Score*10000)/10000 != r.Score {
			t.Errorf("score %v not rounded to 4 decimal places", r.Score)
		}
	}
}

func TestSearchNoOverlapReturnsAllAtZero(t *testing.T) {
	svc := New(readyHolder(fruitRecords()), nil)
	results, err := svc.Search("xylophone9", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want all 3 documents", len(results))
	}
	for i, r := range results {
		if r.Score != 0 {
			t.Errorf("result %d score = %v, want 0", i, r.Score)
		}
		if r.ID != i {
			t.Errorf("position %d holds doc %d, want ascending IDs", i, r.ID)
		}
	}
}

func TestSearchStopwordOnlyQuery(t *testing.T) {
	svc := New(readyHolder(fruitRecords()), nil)
	results, err := svc.Search("the of and", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0 for all-stopword query", len(results))
	}
}

func TestSearchTopN(t *testing.T) {
	svc := New(readyHolder(fruitRecords()), nil)
	results, err := svc.Search("banana cherry", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("got %d results with topN=2", len(results))
	}
}

func TestReady(t *testing.T) {
	holder := index.NewHolder()
	svc := New(holder, nil)
	if svc.Ready() {
		t.Error("Ready before publish")
	}
	holder.Publish(index.Build(nil))
	if !svc.Ready() {
		t.Error("not Ready after publish")
	}
}
