// Package search maintains a bleve full-text index over persisted quotations
// for the search command. The index is derived data: it is rebuilt from the
// store and never written to by the pipeline.
package search

import (
	"context"
	"fmt"
	"strconv"

	"github.com/blevesearch/bleve"

	"github.com/quotemill/quotemill/internal/store"
)

const indexBatchSize = 500

// Lister is the slice of the store the indexer reads.
type Lister interface {
	ListQuotations(ctx context.Context, limit, offset int) ([]store.Quotation, error)
}

// document is the indexed shape of one quotation.
type document struct {
	Text       string   `json:"text"`
	Translated string   `json:"translated"`
	Author     string   `json:"author"`
	Lang       string   `json:"lang"`
	Source     string   `json:"source"`
	Tags       []string `json:"tags"`
}

// Hit is one search result.
type Hit struct {
	ID     string
	Text   string
	Author string
	Lang   string
	Score  float64
}

type Index struct {
	idx bleve.Index
}

// Open creates or reuses the index at path. An empty path yields an in-memory
// index, used by tests and one-shot queries.
func Open(path string) (*Index, error) {
	mapping := bleve.NewIndexMapping()
	if path == "" {
		idx, err := bleve.NewMemOnly(mapping)
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
		return &Index{idx: idx}, nil
	}
	idx, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		idx, err = bleve.New(path, mapping)
	}
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	return &Index{idx: idx}, nil
}

func (i *Index) Close() error { return i.idx.Close() }

// Build walks the whole store into the index in batches.
func (i *Index) Build(ctx context.Context, lister Lister) (int, error) {
	indexed := 0
	for offset := 0; ; offset += indexBatchSize {
		if ctx.Err() != nil {
			return indexed, ctx.Err()
		}
		quotes, err := lister.ListQuotations(ctx, indexBatchSize, offset)
		if err != nil {
			return indexed, fmt.Errorf("list quotations: %w", err)
		}
		if len(quotes) == 0 {
			return indexed, nil
		}
		batch := i.idx.NewBatch()
		for _, q := range quotes {
			doc := document{
				Text:       q.TextOriginal,
				Translated: q.TextTranslated,
				Author:     q.Author,
				Lang:       q.LangOriginal,
				Source:     q.SourceURL,
				Tags:       q.Tags,
			}
			if err := batch.Index(strconv.FormatInt(q.ID, 10), doc); err != nil {
				return indexed, fmt.Errorf("index quotation %d: %w", q.ID, err)
			}
		}
		if err := i.idx.Batch(batch); err != nil {
			return indexed, fmt.Errorf("commit index batch: %w", err)
		}
		indexed += len(quotes)
	}
}

// Query matches terms against text, translation and author. A non-empty lang
// restricts hits to that original language.
func (i *Index) Query(q, lang string, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = 10
	}
	match := bleve.NewMatchQuery(q)

	var query = bleve.NewConjunctionQuery(match)
	if lang != "" {
		langQ := bleve.NewTermQuery(lang)
		langQ.SetField("lang")
		query.AddQuery(langQ)
	}

	req := bleve.NewSearchRequestOptions(query, limit, 0, false)
	req.Fields = []string{"text", "author", "lang"}
	res, err := i.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hit := Hit{ID: h.ID, Score: h.Score}
		if v, ok := h.Fields["text"].(string); ok {
			hit.Text = v
		}
		if v, ok := h.Fields["author"].(string); ok {
			hit.Author = v
		}
		if v, ok := h.Fields["lang"].(string); ok {
			hit.Lang = v
		}
		hits = append(hits, hit)
	}
	return hits, nil
}
