package sources

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/quotemill/quotemill/internal/harvest"
)

// Citaty scrapes the citaty.info listing pages. The site has shuffled its
// pagination scheme more than once, so every page is tried under three URL
// shapes, and the selector cascade degrades from quote-classed nodes to bare
// blockquotes to long paragraphs.
type Citaty struct {
	meta
	maxPages int
}

func NewCitaty(maxPages int) *Citaty {
	if maxPages <= 0 {
		maxPages = 20
	}
	return &Citaty{
		meta: meta{
			id:       "citaty",
			lang:     "ru",
			delay:    5 * time.Second,
			variants: []string{"https://citaty.info", "http://citaty.info"},
		},
		maxPages: maxPages,
	}
}

func (s *Citaty) PageURLs(base string, page int) []string {
	if page >= s.maxPages {
		return nil
	}
	n := page + 1
	return []string{
		fmt.Sprintf("%s/?page=%d", base, n),
		fmt.Sprintf("%s/page/%d/", base, n),
		fmt.Sprintf("%s/quotes?page=%d", base, n),
	}
}

func (s *Citaty) Extract(page int, body []byte) ([]harvest.Candidate, bool, error) {
	doc, err := document(body)
	if err != nil {
		return nil, false, fmt.Errorf("parse citaty page: %w", err)
	}

	sel := doc.Find(`[class*="quote"], [class*="citata"], [class*="aphorism"], [class*="text"]`)
	if sel.Length() == 0 {
		sel = doc.Find("blockquote")
	}
	if sel.Length() == 0 {
		sel = doc.Find("p").FilterFunction(func(_ int, p *goquery.Selection) bool {
			return len([]rune(strings.TrimSpace(p.Text()))) >= 20
		})
	}

	var cands []harvest.Candidate
	sel.Each(func(_ int, el *goquery.Selection) {
		text := cleanText(el.Text())
		if strings.TrimSpace(text) == "" {
			return
		}
		author := ""
		if a := el.Find(`[class*="author"]`).First(); a.Length() > 0 {
			author = cleanText(a.Text())
			text = strings.TrimSuffix(strings.TrimSpace(text), strings.TrimSpace(author))
		}
		cands = append(cands, harvest.Candidate{Text: text, Author: author})
	})
	return cands, false, nil
}
