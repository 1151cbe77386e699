package sources

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/quotemill/quotemill/internal/harvest"
)

// ZenQuotes pulls single random quotes from the ZenQuotes API. One unit of
// work is one request; the API mandates its 1-second pacing.
type ZenQuotes struct {
	meta
	maxRequests int
}

func NewZenQuotes(maxRequests int) *ZenQuotes {
	if maxRequests <= 0 {
		maxRequests = 5000
	}
	return &ZenQuotes{
		meta: meta{
			id:       "zenquotes",
			lang:     "en",
			delay:    time.Second,
			variants: []string{"https://zenquotes.io/api/random"},
		},
		maxRequests: maxRequests,
	}
}

func (s *ZenQuotes) PageURLs(base string, page int) []string {
	if page >= s.maxRequests {
		return nil
	}
	return []string{base}
}

func (s *ZenQuotes) Extract(page int, body []byte) ([]harvest.Candidate, bool, error) {
	var payload []struct {
		Q string `json:"q"`
		A string `json:"a"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, false, fmt.Errorf("decode zenquotes payload: %w", err)
	}
	if len(payload) == 0 {
		return nil, false, nil
	}
	author := payload[0].A
	// The API reports itself as the author when throttling responses.
	if author == "zenquotes.io" {
		author = ""
	}
	return []harvest.Candidate{{Text: payload[0].Q, Author: author}}, false, nil
}
