package sources

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/quotemill/quotemill/internal/harvest"
)

// Forismatic pulls Russian quotes from the Forismatic API one at a time. The
// key parameter seeds the server-side selection, so the attempt index doubles
// as the key to avoid being served the same quote repeatedly.
type Forismatic struct {
	meta
	maxRequests int
}

func NewForismatic(maxRequests int) *Forismatic {
	if maxRequests <= 0 {
		maxRequests = 1500
	}
	return &Forismatic{
		meta: meta{
			id:       "forismatic",
			lang:     "ru",
			delay:    time.Second,
			variants: []string{"https://api.forismatic.com/api/1.0/", "http://api.forismatic.com/api/1.0/"},
		},
		maxRequests: maxRequests,
	}
}

func (s *Forismatic) PageURLs(base string, page int) []string {
	if page >= s.maxRequests {
		return nil
	}
	return []string{fmt.Sprintf("%s?method=getQuote&format=json&lang=ru&key=%d", base, page)}
}

func (s *Forismatic) Extract(page int, body []byte) ([]harvest.Candidate, bool, error) {
	var payload struct {
		QuoteText   string `json:"quoteText"`
		QuoteAuthor string `json:"quoteAuthor"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, false, fmt.Errorf("decode forismatic payload: %w", err)
	}
	if payload.QuoteText == "" {
		return nil, false, nil
	}
	return []harvest.Candidate{{Text: payload.QuoteText, Author: payload.QuoteAuthor}}, false, nil
}
