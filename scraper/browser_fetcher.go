package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// BrowserFetcher renders pages in headless Chromium for sites that serve
// their listings through JavaScript
type BrowserFetcher struct {
	mu      sync.Mutex
	browser *rod.Browser
}

// NewBrowserFetcher launches a headless browser
func NewBrowserFetcher() (*BrowserFetcher, error) {
	l := launcher.New().
		Headless(true).
		NoSandbox(true).
		Leakless(false)

	// use system Chromium in Docker, auto-detect locally
	if _, err := os.Stat("/usr/bin/chromium-browser"); err == nil {
		l = l.Bin("/usr/bin/chromium-browser")
		slog.Info("using system chromium")
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	slog.Info("browser fetcher ready", "control_url", controlURL)
	return &BrowserFetcher{browser: browser}, nil
}

// Fetch opens the URL in a fresh tab and returns the rendered HTML.
// Rendered pages carry no status code, so 200 is reported on success.
func (f *BrowserFetcher) Fetch(ctx context.Context, url string, opts FetchOptions) (*Page, error) {
	page, err := f.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("%w: open tab: %v", ErrFetch, err)
	}
	defer page.Close()

	if opts.Timeout > 0 {
		page = page.Timeout(opts.Timeout)
	}

	if ua := opts.Headers["User-Agent"]; ua != "" {
		err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent:      ua,
			AcceptLanguage: opts.Headers["Accept-Language"],
		})
		if err != nil {
			return nil, fmt.Errorf("%w: set user agent: %v", ErrFetch, err)
		}
	}

	if err := page.Navigate(url); err != nil {
		return nil, fmt.Errorf("%w: navigate: %v", ErrFetch, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: wait load: %v", ErrFetch, err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("%w: read html: %v", ErrFetch, err)
	}

	return &Page{URL: url, StatusCode: 200, Body: []byte(html)}, nil
}

// Close closes the browser
func (f *BrowserFetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.browser == nil {
		return nil
	}
	err := f.browser.Close()
	f.browser = nil
	return err
}
