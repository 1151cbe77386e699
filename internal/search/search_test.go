package search

import (
	"context"
	"testing"

	"github.com/quotemill/quotemill/internal/store"
)

type sliceLister struct {
	quotes []store.Quotation
}

func (s sliceLister) ListQuotations(_ context.Context, limit, offset int) ([]store.Quotation, error) {
	if offset >= len(s.quotes) {
		return nil, nil
	}
	end := offset + limit
	if end > len(s.quotes) {
		end = len(s.quotes)
	}
	return s.quotes[offset:end], nil
}

func buildTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := Open("")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = idx.Close() })

	lister := sliceLister{quotes: []store.Quotation{
		{ID: 1, TextOriginal: "The unexamined life is not worth living.", Author: "Socrates", LangOriginal: "en", SourceURL: "quotable"},
		{ID: 2, TextOriginal: "Imagination is more important than knowledge.", Author: "Albert Einstein", LangOriginal: "en", SourceURL: "wikiquote"},
		{ID: 3, TextOriginal: "Жизнь прекрасна и удивительна.", Author: "Маяковский", LangOriginal: "ru", SourceURL: "citaty"},
	}}
	n, err := idx.Build(context.Background(), lister)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if n != 3 {
		t.Fatalf("indexed = %d, want 3", n)
	}
	return idx
}

func TestQueryByText(t *testing.T) {
	idx := buildTestIndex(t)

	hits, err := idx.Query("imagination", "", 10)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "2" {
		t.Fatalf("hits = %+v", hits)
	}
	if hits[0].Author != "Albert Einstein" {
		t.Errorf("author = %q", hits[0].Author)
	}
}

func TestQueryByAuthor(t *testing.T) {
	idx := buildTestIndex(t)

	hits, err := idx.Query("socrates", "", 10)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "1" {
		t.Fatalf("hits = %+v", hits)
	}
}

func TestQueryLanguageFilter(t *testing.T) {
	idx := buildTestIndex(t)

	hits, err := idx.Query("жизнь", "ru", 10)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(hits) != 1 || hits[0].Lang != "ru" {
		t.Fatalf("hits = %+v", hits)
	}

	hits, err = idx.Query("life", "ru", 10)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("hits = %+v, want none outside language", hits)
	}
}
