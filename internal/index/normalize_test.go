package index

import (
	"reflect"
	"testing"
)

func TestNormalizeLowercasesAndSplits(t *testing.T) {
	terms := Normalize("Deep-Learning: Models, models; MODELS!")
	want := []string{"deep", "learn", "model", "model", "model"}
	if !reflect.DeepEqual(terms, want) {
		t.Fatalf("Normalize = %v, want %v", terms, want)
	}
}

func TestNormalizeDropsStopwords(t *testing.T) {
	terms := Normalize("the growth of a network")
	want := []string{"growth", "network"}
	if !reflect.DeepEqual(terms, want) {
		t.Fatalf("Normalize = %v, want %v", terms, want)
	}
}

func TestNormalizeKeepsDigits(t *testing.T) {
	terms := Normalize("covid19 2021")
	want := []string{"covid19", "2021"}
	if !reflect.DeepEqual(terms, want) {
		t.Fatalf("Normalize = %v, want %v", terms, want)
	}
}

func TestNormalizeEmptyInputs(t *testing.T) {
	for _, text := range []string{"", "   ", "the of and is", "!!! ---"} {
		if terms := Normalize(text); len(terms) != 0 {
			t.Errorf("Normalize(%q) = %v, want empty", text, terms)
		}
	}
}

// Documents and queries must go through the same pipeline, or query terms
// would never match indexed terms.
func TestNormalizeSamePipelineForDocsAndQueries(t *testing.T) {
	doc := Normalize("Statistical Models for Networks")
	query := Normalize("statistical model network")
	if !reflect.DeepEqual(doc, query) {
		t.Fatalf("document terms %v != query terms %v", doc, query)
	}
}

func TestTermCounts(t *testing.T) {
	counts := termCounts([]string{"model", "network", "model"})
	if counts["model"] != 2 || counts["network"] != 1 {
		t.Fatalf("termCounts = %v", counts)
	}
}
