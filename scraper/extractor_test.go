package scraper

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"pricewise/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const amazonFixture = `<html><head><title>Amazon.in : samsung galaxy a15</title></head><body>
<div data-component-type="s-search-result" data-asin="A0">
  <h2><a href="/dp/A0"><span>Sponsored: no price here</span></a></h2>
</div>
<div data-component-type="s-search-result" data-asin="A1">
  <h2><a href="/Samsung-Case/dp/A1"><span>Samsung Galaxy A15 Back Case Cover</span></a></h2>
  <span class="a-price"><span class="a-offscreen">₹299</span></span>
</div>
<div data-component-type="s-search-result" data-asin="A2">
  <h2><a href="/Samsung-Galaxy-A15/dp/A2"><span>Samsung Galaxy A15 5G (Blue Black, 8GB, 128GB)</span></a></h2>
  <span class="a-price"><span class="a-price-whole">16,999.</span><span class="a-price-fraction">00</span></span>
</div>
</body></html>`

const flipkartFixture = `<html><head><title>Samsung Galaxy A15 - Buy Products Online</title></head><body>
<div data-id="MOB1">
  <a class="CGtC98" href="/samsung-galaxy-a15/p/itm1?pid=MOB1">
    <div class="KzDlHZ">Samsung Galaxy A15 5G (Light Blue, 128 GB)</div>
    <div class="Nx9bqj">Price unavailable</div>
    <div class="_30jeq3">₹16,499</div>
  </a>
</div>
</body></html>`

const snapdealFixture = `<html><head><title>Snapdeal</title></head><body>
<div class="product-tuple-listing">
  <a class="dp-widget-link" href="https://www.snapdeal.com/product/tempered-glass/1"></a>
  <p class="product-title" title="Tempered Glass Guard for Samsung Galaxy A15">Tempered Glass Guard for Samsung Galaxy A15</p>
  <span class="lfloat product-price" display-price="199">Rs. 199</span>
</div>
<div class="product-tuple-listing">
  <a class="dp-widget-link" href="https://www.snapdeal.com/product/samsung-galaxy-a15/2"></a>
  <p class="product-title" title="Samsung Galaxy A15 5G 128GB"></p>
  <span class="lfloat product-price" display-price="16799"></span>
</div>
</body></html>`

const captchaFixture = `<html><head><title>Robot Check</title></head><body>
<p>Enter the characters you see below</p>
<p>Sorry, we just need to make sure you're not a robot.</p>
</body></html>`

const amazonScriptFixture = `<html><head><title>Amazon.in : iphone 15</title>
<script>window.loadWidget("hcaptcha")</script>
<style>.recaptcha-badge { display: none }</style></head><body>
<noscript><iframe src="https://www.google.com/recaptcha/api/fallback"></iframe></noscript>
<div data-component-type="s-search-result" data-asin="B0CHX1W1XY">
  <h2><a href="/Apple-iPhone-15-128-GB/dp/B0CHX1W1XY"><span>Apple iPhone 15 (128 GB) - Black</span></a></h2>
  <span class="a-price"><span class="a-offscreen">₹69,999</span></span>
</div>
<script>document.querySelector("#captcha-guard") && verify()</script>
</body></html>`

type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	err   error
	urls  []string
	opts  []FetchOptions
}

func (f *fakeFetcher) Fetch(_ context.Context, url string, opts FetchOptions) (*Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = append(f.urls, url)
	f.opts = append(f.opts, opts)
	if f.err != nil {
		return nil, f.err
	}
	for prefix, body := range f.pages {
		if strings.HasPrefix(url, prefix) {
			return &Page{URL: url, StatusCode: 200, Body: []byte(body)}, nil
		}
	}
	return nil, ErrFetch
}

func (f *fakeFetcher) Close() error { return nil }

func site(name string) config.SiteConfig {
	for _, s := range config.DefaultSites() {
		if s.Name == name {
			return s
		}
	}
	panic("unknown site " + name)
}

func testDeps(f Fetcher) ExtractorDeps {
	return ExtractorDeps{
		Fetcher:   f,
		Agents:    NewUserAgentRotator(rand.New(rand.NewSource(1))),
		Validator: NewMatchValidator(DefaultMatchThreshold),
		Timeout:   time.Second,
	}
}

func TestAmazonExtractorCompositePrice(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{"https://www.amazon.in/": amazonFixture}}
	e := NewAmazonExtractor(site(config.SiteAmazon), testDeps(f))

	cand, err := e.Extract(context.Background(), "Samsung Galaxy A15")
	require.NoError(t, err)
	assert.Equal(t, "Samsung Galaxy A15 5G (Blue Black, 8GB, 128GB)", cand.Title)
	assert.Equal(t, "16999", cand.Price.String())
	assert.Equal(t, "https://www.amazon.in/Samsung-Galaxy-A15/dp/A2", cand.Link)

	require.Len(t, f.urls, 1)
	assert.Equal(t, "https://www.amazon.in/s?k=Samsung+Galaxy+A15", f.urls[0])
	assert.NotEmpty(t, f.opts[0].Headers["User-Agent"])
	assert.Equal(t, time.Second, f.opts[0].Timeout)
}

func TestFlipkartExtractorSelectorFallback(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{"https://www.flipkart.com/": flipkartFixture}}
	e := NewFlipkartExtractor(site(config.SiteFlipkart), testDeps(f))

	cand, err := e.Extract(context.Background(), "samsung galaxy a15")
	require.NoError(t, err)
	assert.Equal(t, "16499", cand.Price.String())
	assert.Equal(t, "https://www.flipkart.com/samsung-galaxy-a15/p/itm1?pid=MOB1", cand.Link)
}

func TestSnapdealExtractorAttributePrice(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{"https://www.snapdeal.com/": snapdealFixture}}
	e := NewSnapdealExtractor(site(config.SiteSnapdeal), testDeps(f))

	cand, err := e.Extract(context.Background(), "samsung galaxy a15")
	require.NoError(t, err)
	assert.Equal(t, "Samsung Galaxy A15 5G 128GB", cand.Title)
	assert.Equal(t, "16799", cand.Price.String())
	assert.Equal(t, "https://www.snapdeal.com/product/samsung-galaxy-a15/2", cand.Link)
	assert.Equal(t, "https://www.snapdeal.com/search?keyword=samsung+galaxy+a15", e.SearchURL(" samsung galaxy a15 "))
}

func TestExtractorRespectsListingLimit(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for iter := 0; iter < 3; iter++ {
		b.WriteString(`<div class="product-tuple-listing"><p class="product-title">Random Gadget</p><span class="product-price">Rs. 999</span></div>`)
	}
	b.WriteString(`<div class="product-tuple-listing"><p class="product-title">Dell XPS 13</p><span class="product-price">Rs. 99,999</span></div>`)
	b.WriteString("</body></html>")

	e := NewSnapdealExtractor(site(config.SiteSnapdeal), testDeps(&fakeFetcher{}))
	_, err := e.Parse([]byte(b.String()), "Dell XPS 13")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestExtractorIgnoresCaptchaInScripts(t *testing.T) {
	e := NewAmazonExtractor(site(config.SiteAmazon), testDeps(&fakeFetcher{}))

	cand, err := e.Parse([]byte(amazonScriptFixture), "iphone 15")
	require.NoError(t, err)
	assert.Equal(t, "Apple iPhone 15 (128 GB) - Black", cand.Title)
	assert.Equal(t, "69999", cand.Price.String())
	assert.Equal(t, "https://www.amazon.in/Apple-iPhone-15-128-GB/dp/B0CHX1W1XY", cand.Link)
}

func TestExtractorFailures(t *testing.T) {
	t.Run("fetch error", func(t *testing.T) {
		e := NewAmazonExtractor(site(config.SiteAmazon), testDeps(&fakeFetcher{err: errors.New("boom")}))
		cand, err := e.Extract(context.Background(), "iphone 15")
		assert.Nil(t, cand)
		assert.Error(t, err)
	})

	t.Run("bot wall", func(t *testing.T) {
		f := &fakeFetcher{pages: map[string]string{"https://www.amazon.in/": captchaFixture}}
		e := NewAmazonExtractor(site(config.SiteAmazon), testDeps(f))
		_, err := e.Extract(context.Background(), "iphone 15")
		assert.ErrorIs(t, err, ErrBlocked)
	})

	t.Run("no listings", func(t *testing.T) {
		e := NewFlipkartExtractor(site(config.SiteFlipkart), testDeps(&fakeFetcher{}))
		_, err := e.Parse([]byte("<html><body><p>No results</p></body></html>"), "iphone 15")
		assert.ErrorIs(t, err, ErrNoMatch)
	})

	t.Run("panic is contained", func(t *testing.T) {
		e := NewFlipkartExtractor(site(config.SiteFlipkart), ExtractorDeps{})
		cand, err := e.Extract(context.Background(), "iphone 15")
		assert.Nil(t, cand)
		assert.ErrorContains(t, err, "panic")
	})
}

func TestRestyFetcherAgainstServer(t *testing.T) {
	var gotUA string
	mux := http.NewServeMux()
	mux.HandleFunc("/s", func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(amazonFixture))
	})
	mux.HandleFunc("/down", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	fetcher := NewRestyFetcher(false)
	defer fetcher.Close()

	amazon := site(config.SiteAmazon)
	amazon.SearchURL = srv.URL + "/s?k="
	amazon.BaseURL = srv.URL
	e := NewAmazonExtractor(amazon, testDeps(fetcher))

	cand, err := e.Extract(context.Background(), "samsung galaxy a15")
	require.NoError(t, err)
	assert.Equal(t, "16999", cand.Price.String())
	assert.Equal(t, srv.URL+"/Samsung-Galaxy-A15/dp/A2", cand.Link)
	assert.True(t, strings.HasPrefix(gotUA, "Mozilla/5.0"))

	page, err := fetcher.Fetch(context.Background(), srv.URL+"/down", FetchOptions{})
	assert.ErrorIs(t, err, ErrFetch)
	require.NotNil(t, page)
	assert.Equal(t, http.StatusServiceUnavailable, page.StatusCode)

	_, err = fetcher.Fetch(context.Background(), srv.URL+"/slow", FetchOptions{Timeout: 50 * time.Millisecond})
	assert.ErrorIs(t, err, ErrFetch)
}

func TestNewExtractorsRejectsUnknownSite(t *testing.T) {
	extractors, err := NewExtractors(config.DefaultSites(), testDeps(&fakeFetcher{}))
	require.NoError(t, err)
	require.Len(t, extractors, 3)
	assert.Equal(t, config.SiteAmazon, extractors[0].Site())

	_, err = NewExtractors([]config.SiteConfig{{Name: "Ebay"}}, testDeps(&fakeFetcher{}))
	assert.Error(t, err)
}

func TestUserAgentRotatorIsSeeded(t *testing.T) {
	a := NewUserAgentRotator(rand.New(rand.NewSource(5)))
	b := NewUserAgentRotator(rand.New(rand.NewSource(5)))
	for iter := 0; iter < 10; iter++ {
		assert.Equal(t, a.Next(), b.Next())
	}
	single := NewUserAgentRotator(rand.New(rand.NewSource(5)), "agent/1.0")
	assert.Equal(t, "agent/1.0", single.Headers()["User-Agent"])
}
