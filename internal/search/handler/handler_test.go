package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"pubsearch/internal/index"
	"pubsearch/internal/search"
)

func newTestHandler(t *testing.T, recs []index.Record) *Handler {
	t.Helper()
	holder := index.NewHolder()
	if recs != nil {
		holder.Publish(index.Build(recs))
	}
	svc := search.New(holder, nil)
	return New(svc, nil, nil, 5, 100, nil)
}

func doSearch(t *testing.T, h *Handler, target string) (*httptest.ResponseRecorder, *SearchResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)
	if rec.Code != http.StatusOK {
		return rec, nil
	}
	var resp SearchResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return rec, &resp
}

func sevenDocs() []index.Record {
	return []index.Record{
		{Title: "Banana zero"},
		{Title: "Banana one"},
		{Title: "Banana two"},
		{Title: "Banana three"},
		{Title: "Banana four"},
		{Title: "Banana five"},
		{Title: "Banana six"},
	}
}

func TestSearchBlankQueryReturnsEmptyPage(t *testing.T) {
	h := newTestHandler(t, sevenDocs())
	rec, resp := doSearch(t, h, "/api/v1/search?q=")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if resp.TotalResults != 0 || len(resp.Results) != 0 {
		t.Errorf("blank query returned results: %+v", resp)
	}
	if resp.TotalPages != 1 || resp.Page != 1 {
		t.Errorf("blank query pagination = page %d of %d, want 1 of 1", resp.Page, resp.TotalPages)
	}
}

func TestSearchIndexNotReady(t *testing.T) {
	h := newTestHandler(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?q=banana", nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["error"] == "" {
		t.Error("error response missing error field")
	}
}

func TestSearchPagination(t *testing.T) {
	h := newTestHandler(t, sevenDocs())

	_, resp := doSearch(t, h, "/api/v1/search?q=banana&per_page=3")
	if resp.TotalResults != 7 || resp.TotalPages != 3 || resp.Page != 1 {
		t.Fatalf("page 1: %+v", resp)
	}
	if len(resp.Results) != 3 {
		t.Errorf("page 1 has %d results, want 3", len(resp.Results))
	}

	_, resp = doSearch(t, h, "/api/v1/search?q=banana&per_page=3&page=3")
	if len(resp.Results) != 1 {
		t.Errorf("last page has %d results, want 1", len(resp.Results))
	}

	// Out-of-range pages clamp instead of erroring.
	_, resp = doSearch(t, h, "/api/v1/search?q=banana&per_page=3&page=99")
	if resp.Page != 3 || len(resp.Results) != 1 {
		t.Errorf("overflow page = %d with %d results, want clamped to 3 with 1", resp.Page, len(resp.Results))
	}
	_, resp = doSearch(t, h, "/api/v1/search?q=banana&per_page=3&page=-2")
	if resp.Page != 1 {
		t.Errorf("negative page = %d, want 1", resp.Page)
	}

	// Unparseable pagination params fall back to defaults.
	_, resp = doSearch(t, h, "/api/v1/search?q=banana&page=abc&per_page=xyz")
	if resp.Page != 1 || resp.PerPage != 5 {
		t.Errorf("invalid params: page=%d perPage=%d, want defaults 1 and 5", resp.Page, resp.PerPage)
	}
}

func TestSearchTopNValidation(t *testing.T) {
	h := newTestHandler(t, sevenDocs())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?q=banana&top_n=abc", nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSearchTopNCapped(t *testing.T) {
	holder := index.NewHolder()
	holder.Publish(index.Build(sevenDocs()))
	h := New(search.New(holder, nil), nil, nil, 10, 4, nil)

	_, resp := doSearch(t, h, "/api/v1/search?q=banana&top_n=1000")
	if resp == nil {
		t.Fatal("expected 200")
	}
	if resp.TotalResults != 4 {
		t.Errorf("total_results = %d, want capped at 4", resp.TotalResults)
	}
}

func TestSearchTopNTruncates(t *testing.T) {
	h := newTestHandler(t, sevenDocs())
	_, resp := doSearch(t, h, "/api/v1/search?q=banana&top_n=2")
	if resp.TotalResults != 2 {
		t.Errorf("total_results = %d, want 2", resp.TotalResults)
	}
}

func TestCacheEndpointsWithoutCache(t *testing.T) {
	h := newTestHandler(t, sevenDocs())

	rec := httptest.NewRecorder()
	h.CacheStats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cache/stats", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("CacheStats status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.CacheInvalidate(rec, httptest.NewRequest(http.MethodPost, "/api/v1/cache/invalidate", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("CacheInvalidate status = %d, want 503", rec.Code)
	}
}

func TestReloadWithoutReloader(t *testing.T) {
	h := newTestHandler(t, nil)
	rec := httptest.NewRecorder()
	h.Reload(rec, httptest.NewRequest(http.MethodPost, "/api/v1/index/reload", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
