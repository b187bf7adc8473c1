// Package index implements the inverted-index construction and TF-IDF
// cosine-similarity ranking engine for harvested publication records.
//
// A build consumes an ordered sequence of raw records and produces an
// immutable State: the inverted index, one sparse weight vector per
// document, per-term document-frequency counts, and the document metadata
// list. Query-time code converts a query string into a weighted vector with
// the same normalisation pipeline and scores every document against it.
package index

// Author is a single publication author, optionally with a profile URL.
type Author struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// Record is a raw harvested publication record as produced by the external
// collector. Any field may be absent; the builder applies zero-value
// defaults and never rejects a partial record.
type Record struct {
	Title    string   `json:"title"`
	URL      string   `json:"url"`
	Date     string   `json:"date"`
	Authors  []Author `json:"authors"`
	Abstract string   `json:"abstract"`
}

// Document is an indexed publication. ID is the 0-based position of the
// record in the build input and is never reused across rebuilds without a
// full index replacement. Documents are immutable after creation.
type Document struct {
	ID       int      `json:"id"`
	Title    string   `json:"title"`
	URL      string   `json:"url"`
	Date     string   `json:"date"`
	Authors  []Author `json:"authors"`
	Abstract string   `json:"abstract"`
}

// indexText returns the text that is indexed for a record: title, abstract,
// and author names, space-joined.
func (r Record) indexText() string {
	text := r.Title + " " + r.Abstract
	for _, a := range r.Authors {
		text += " " + a.Name
	}
	return text
}
