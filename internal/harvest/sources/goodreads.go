package sources

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/quotemill/quotemill/internal/harvest"
)

// Goodreads scrapes the public quotes listing. The listing is partially
// rendered client side, so the strategy can be run through the browser
// fetcher when enabled in config.
type Goodreads struct {
	meta
	maxPages int
}

func NewGoodreads(maxPages int, renderJS bool) *Goodreads {
	if maxPages <= 0 {
		maxPages = 10
	}
	return &Goodreads{
		meta: meta{
			id:       "goodreads",
			lang:     "en",
			delay:    10 * time.Second,
			renderJS: renderJS,
			variants: []string{"https://www.goodreads.com/quotes", "http://www.goodreads.com/quotes"},
		},
		maxPages: maxPages,
	}
}

func (s *Goodreads) PageURLs(base string, page int) []string {
	if page >= s.maxPages {
		return nil
	}
	return []string{fmt.Sprintf("%s?page=%d", base, page+1)}
}

func (s *Goodreads) Extract(page int, body []byte) ([]harvest.Candidate, bool, error) {
	doc, err := document(body)
	if err != nil {
		return nil, false, fmt.Errorf("parse goodreads page: %w", err)
	}

	var cands []harvest.Candidate
	doc.Find(".quoteText").Each(func(_ int, el *goquery.Selection) {
		raw := el.Clone()
		raw.Find("span, a, script").Remove()
		text := cleanText(raw.Text())
		// Goodreads appends the attribution after a horizontal bar.
		if i := strings.Index(text, "―"); i >= 0 {
			text = strings.TrimSpace(text[:i])
		}
		text = strings.Trim(text, "“”\"")
		if text == "" {
			return
		}
		author := cleanText(el.Find("span.authorOrTitle").First().Text())
		author = strings.TrimSuffix(strings.TrimSpace(author), ",")
		cands = append(cands, harvest.Candidate{Text: text, Author: author})
	})
	return cands, false, nil
}
