package fetch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/gapper/internal/common"
)

// BrowserOptions configures a BrowserFetcher
type BrowserOptions struct {
	Timeout   time.Duration
	WaitTime  time.Duration // Time to let page scripts settle before reading the DOM
	UserAgent string
	Headless  bool
}

// BrowserOptionsFromConfig maps the [sources] config section
func BrowserOptionsFromConfig(config common.SourcesConfig) BrowserOptions {
	return BrowserOptions{
		Timeout:   common.ParseDurationOr(config.RequestTimeout, 10*time.Second),
		WaitTime:  common.ParseDurationOr(config.BrowserWaitTime, 2*time.Second),
		UserAgent: config.UserAgent,
		Headless:  true,
	}
}

// BrowserFetcher renders pages in headless Chrome and returns the final
// HTML. The browser is started on first use and shared by all fetches.
type BrowserFetcher struct {
	options BrowserOptions
	logger  arbor.ILogger

	mu              sync.Mutex
	browserCtx      context.Context
	browserCancel   context.CancelFunc
	allocatorCancel context.CancelFunc
}

// NewBrowserFetcher creates a browser fetcher
func NewBrowserFetcher(options BrowserOptions, logger arbor.ILogger) *BrowserFetcher {
	if options.Timeout <= 0 {
		options.Timeout = 10 * time.Second
	}
	return &BrowserFetcher{options: options, logger: logger}
}

func (b *BrowserFetcher) browser() context.Context {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browserCtx != nil {
		return b.browserCtx
	}

	allocatorOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.options.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if b.options.UserAgent != "" {
		allocatorOpts = append(allocatorOpts, chromedp.UserAgent(b.options.UserAgent))
	}

	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(context.Background(), allocatorOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)

	b.browserCtx = browserCtx
	b.browserCancel = browserCancel
	b.allocatorCancel = allocatorCancel

	b.logger.Debug().Msg("Headless browser allocated")
	return browserCtx
}

// Fetch navigates to url in a new tab and returns the rendered HTML
func (b *BrowserFetcher) Fetch(ctx context.Context, url string) (string, error) {
	tabCtx, tabCancel := chromedp.NewContext(b.browser())
	defer tabCancel()

	timeoutCtx, cancel := context.WithTimeout(tabCtx, b.options.Timeout+b.options.WaitTime)
	defer cancel()

	// Tabs derive from the browser, so follow the caller's cancellation here
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var html string
	err := chromedp.Run(timeoutCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": "en-US,en;q=0.9"}),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(b.options.WaitTime),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("browser fetch of %s failed: %w", url, err)
	}
	return html, nil
}

// Close shuts the browser down. Safe to call when it never started.
func (b *BrowserFetcher) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browserCancel != nil {
		b.browserCancel()
		b.allocatorCancel()
		b.browserCtx = nil
		b.browserCancel = nil
		b.allocatorCancel = nil
	}
	return nil
}
