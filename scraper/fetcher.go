package scraper

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

// Page is a fetched response
type Page struct {
	URL        string
	StatusCode int
	Body       []byte
}

// FetchOptions controls a single fetch
type FetchOptions struct {
	Headers map[string]string
	Timeout time.Duration
}

// Fetcher retrieves raw markup for a URL
type Fetcher interface {
	Fetch(ctx context.Context, url string, opts FetchOptions) (*Page, error)
	Close() error
}

// RestyFetcher fetches pages over plain HTTP
type RestyFetcher struct {
	client *resty.Client
}

// NewRestyFetcher creates an HTTP fetcher, optionally wrapping the transport
// with Cloudflare challenge handling
func NewRestyFetcher(cloudflareBypass bool) *RestyFetcher {
	client := resty.New().
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))
	if cloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	return &RestyFetcher{client: client}
}

// Fetch performs a GET. Non-2xx statuses are returned as errors wrapping ErrFetch.
func (f *RestyFetcher) Fetch(ctx context.Context, url string, opts FetchOptions) (*Page, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	res, err := f.client.R().
		SetContext(ctx).
		SetHeaders(opts.Headers).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	page := &Page{URL: url, StatusCode: res.StatusCode(), Body: res.Body()}
	if res.StatusCode() < 200 || res.StatusCode() > 299 {
		return page, fmt.Errorf("%w: status %d", ErrFetch, res.StatusCode())
	}
	return page, nil
}

func (f *RestyFetcher) Close() error {
	return nil
}

var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
}

// UserAgentRotator hands out browser user agents picked from a seeded source
type UserAgentRotator struct {
	mu     sync.Mutex
	agents []string
	rng    *rand.Rand
}

// NewUserAgentRotator uses the built-in agent list when agents is empty
func NewUserAgentRotator(rng *rand.Rand, agents ...string) *UserAgentRotator {
	if len(agents) == 0 {
		agents = defaultUserAgents
	}
	return &UserAgentRotator{agents: agents, rng: rng}
}

// Next returns a user agent
func (r *UserAgentRotator) Next() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.agents[r.rng.Intn(len(r.agents))]
}

// Headers returns browser-like request headers with a rotated user agent
func (r *UserAgentRotator) Headers() map[string]string {
	return map[string]string{
		"User-Agent":      r.Next(),
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-IN,en;q=0.9",
		"Connection":      "keep-alive",
	}
}
