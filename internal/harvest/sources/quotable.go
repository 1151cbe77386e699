package sources

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/quotemill/quotemill/internal/harvest"
)

const quotablePageSize = 150

// Quotable walks the paged Quotable API until the API reports its end or the
// page cap is hit.
type Quotable struct {
	meta
	pageCap int
}

func NewQuotable(pageCap int) *Quotable {
	if pageCap <= 0 {
		pageCap = 100
	}
	return &Quotable{
		meta: meta{
			id:       "quotable",
			lang:     "en",
			delay:    500 * time.Millisecond,
			variants: []string{"https://api.quotable.io/quotes", "http://api.quotable.io/quotes"},
		},
		pageCap: pageCap,
	}
}

func (s *Quotable) PageURLs(base string, page int) []string {
	if page >= s.pageCap {
		return nil
	}
	return []string{fmt.Sprintf("%s?page=%d&limit=%d", base, page+1, quotablePageSize)}
}

func (s *Quotable) Extract(page int, body []byte) ([]harvest.Candidate, bool, error) {
	var payload struct {
		Results []struct {
			Content string `json:"content"`
			Author  string `json:"author"`
		} `json:"results"`
		HasNext    *bool `json:"hasNext"`
		TotalCount int   `json:"totalCount"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, false, fmt.Errorf("decode quotable payload: %w", err)
	}
	if len(payload.Results) == 0 {
		return nil, true, nil
	}

	cands := make([]harvest.Candidate, 0, len(payload.Results))
	for _, r := range payload.Results {
		cands = append(cands, harvest.Candidate{Text: r.Content, Author: r.Author})
	}

	done := payload.HasNext != nil && !*payload.HasNext
	if payload.HasNext == nil && payload.TotalCount > 0 {
		// The API sometimes omits hasNext; estimate the page count instead.
		lastPage := (payload.TotalCount + quotablePageSize - 1) / quotablePageSize
		done = page+1 >= lastPage
	}
	return cands, done, nil
}
