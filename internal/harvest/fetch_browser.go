package harvest

import (
	"context"
	"net/http"
	"time"

	"github.com/chromedp/chromedp"
)

// BrowserFetcher renders a page in headless Chrome before returning its
// markup. Used for sources whose quote listings are assembled client-side;
// everything else goes through HTTPFetcher.
type BrowserFetcher struct {
	Timeout   time.Duration
	UserAgent string
}

func NewBrowserFetcher(timeout time.Duration, userAgent string) *BrowserFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &BrowserFetcher{Timeout: timeout, UserAgent: userAgent}
}

func (f *BrowserFetcher) Fetch(ctx context.Context, url string) ([]byte, int, error) {
	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.UserAgent(f.UserAgent),
	)
	actx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	bctx, cancelBrowser := chromedp.NewContext(actx)
	defer cancelBrowser()

	var html string
	err := chromedp.Run(bctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return nil, 0, err
	}
	// The status code is not observable through OuterHTML; a rendered page
	// counts as 200, navigation failures surface as transport errors above.
	return []byte(html), http.StatusOK, nil
}
