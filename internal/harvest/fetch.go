package harvest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultUserAgent is sent when a strategy does not declare its own.
// Wiki-family sources require an identifying agent per their policy.
const DefaultUserAgent = "quotemill/1.0 (+https://github.com/quotemill/quotemill)"

const maxBodyBytes = 4 << 20

// Fetcher retrieves one URL and returns the body and HTTP status. Transport
// errors (timeout, connection reset, TLS) come back as a non-nil error with
// status 0; any HTTP response, success or not, comes back with err == nil.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (body []byte, status int, err error)
}

// HTTPFetcher is the plain net/http implementation used by every source that
// serves usable markup without a browser.
type HTTPFetcher struct {
	Client    *http.Client
	UserAgent string
}

// NewHTTPFetcher builds a fetcher with the given per-request timeout.
func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &HTTPFetcher{
		Client:    &http.Client{Timeout: timeout},
		UserAgent: userAgent,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.UserAgent)
	req.Header.Set("Accept", "text/html,application/json;q=0.9,*/*;q=0.8")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, 0, fmt.Errorf("read body: %w", err)
	}
	return body, resp.StatusCode, nil
}
