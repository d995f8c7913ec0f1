package scraper

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"pricewise/config"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("pricewise/scraper")

// Candidate is a listing that yielded a title, a positive price and a link
type Candidate struct {
	Title string
	Price decimal.Decimal
	Link  string
}

// Extractor finds the best matching listing for a query on one site
type Extractor interface {
	Site() string
	SearchURL(query string) string
	Extract(ctx context.Context, query string) (*Candidate, error)
}

// priceFunc reads a price string out of a listing node, reporting false when absent
type priceFunc func(node *goquery.Selection) (string, bool)

// SiteExtractor is a selector-driven Extractor configured per site
type SiteExtractor struct {
	site      config.SiteConfig
	fetcher   Fetcher
	agents    *UserAgentRotator
	validator *MatchValidator
	parser    *LocaleParser
	detector  *BotDetector
	timeout   time.Duration
	// site specific price lookups tried after the configured selectors
	priceHooks []priceFunc
}

// ExtractorDeps are the collaborators shared by all site extractors
type ExtractorDeps struct {
	Fetcher   Fetcher
	Agents    *UserAgentRotator
	Validator *MatchValidator
	Timeout   time.Duration
}

func newSiteExtractor(site config.SiteConfig, deps ExtractorDeps) *SiteExtractor {
	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	validator := deps.Validator
	if validator == nil {
		validator = NewMatchValidator(DefaultMatchThreshold)
	}
	return &SiteExtractor{
		site:      site,
		fetcher:   deps.Fetcher,
		agents:    deps.Agents,
		validator: validator,
		parser:    NewLocaleParser(),
		detector:  NewBotDetector(),
		timeout:   timeout,
	}
}

func (e *SiteExtractor) Site() string {
	return e.site.Name
}

// SearchURL builds the site's search page URL for query
func (e *SiteExtractor) SearchURL(query string) string {
	return e.site.SearchURL + url.QueryEscape(strings.TrimSpace(query))
}

// Extract fetches the search page and returns the first validated listing.
// Every failure, including a panic in parsing, comes back as an error.
func (e *SiteExtractor) Extract(ctx context.Context, query string) (cand *Candidate, err error) {
	ctx, span := tracer.Start(ctx, "scraper.Extract")
	span.SetAttributes(attribute.String("site", e.site.Name), attribute.String("query", query))
	defer func() {
		if r := recover(); r != nil {
			cand, err = nil, fmt.Errorf("%s extractor panic: %v", e.site.Name, r)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	var headers map[string]string
	if e.agents != nil {
		headers = e.agents.Headers()
	}

	page, err := e.fetcher.Fetch(ctx, e.SearchURL(query), FetchOptions{Headers: headers, Timeout: e.timeout})
	if err != nil {
		return nil, err
	}

	return e.Parse(page.Body, query)
}

// Parse scans the listing nodes of a search results page
func (e *SiteExtractor) Parse(body []byte, query string) (*Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	// only visible text counts; widget scripts on results pages mention captchas
	doc.Find("script,style,noscript").Remove()
	if blocked, reason := e.detector.DetectBotWall(doc.Find("body").Text(), doc.Find("title").Text()); blocked {
		return nil, fmt.Errorf("%w: %s", ErrBlocked, reason)
	}

	nodes := e.listings(doc)
	if nodes == nil {
		return nil, ErrNoMatch
	}
	for i, n := 0, nodes.Length(); i < n; i++ {
		if i >= e.site.MaxListings {
			break
		}
		node := nodes.Eq(i)

		cand, ok := e.candidate(node)
		if !ok {
			continue
		}
		if !e.validator.Matches(cand.Title, query) {
			slog.Debug("listing rejected by validator", "site", e.site.Name, "title", cand.Title)
			continue
		}
		return cand, nil
	}

	return nil, ErrNoMatch
}

// listings returns the nodes matched by the first listing selector that finds any
func (e *SiteExtractor) listings(doc *goquery.Document) *goquery.Selection {
	for _, sel := range e.site.ListingSelectors {
		if nodes := doc.Find(sel); nodes.Length() > 0 {
			return nodes
		}
	}
	return nil
}

func (e *SiteExtractor) candidate(node *goquery.Selection) (*Candidate, bool) {
	title := e.title(node)
	if title == "" {
		return nil, false
	}

	price, ok := e.price(node)
	if !ok {
		return nil, false
	}

	return &Candidate{Title: title, Price: price, Link: e.link(node)}, true
}

func (e *SiteExtractor) price(node *goquery.Selection) (decimal.Decimal, bool) {
	for _, sel := range e.site.PriceSelectors {
		text := firstText(node.Find(sel), "content")
		if text == "" {
			continue
		}
		if v, err := e.parser.ParsePrice(text); err == nil {
			return v, true
		}
	}

	for _, hook := range e.priceHooks {
		if text, ok := hook(node); ok {
			if v, err := e.parser.ParsePrice(text); err == nil {
				return v, true
			}
		}
	}

	// some listings carry the price as an attribute of the node itself
	for _, attr := range e.site.PriceAttributes {
		if text, ok := node.Attr(attr); ok {
			if v, err := e.parser.ParsePrice(text); err == nil {
				return v, true
			}
		}
		if text := firstAttr(node.Find("["+attr+"]"), attr); text != "" {
			if v, err := e.parser.ParsePrice(text); err == nil {
				return v, true
			}
		}
	}

	return decimal.Zero, false
}

func (e *SiteExtractor) title(node *goquery.Selection) string {
	for _, sel := range e.site.TitleSelectors {
		if text := firstText(node.Find(sel), "title"); text != "" {
			return text
		}
	}
	return ""
}

func (e *SiteExtractor) link(node *goquery.Selection) string {
	for _, sel := range e.site.LinkSelectors {
		if href := firstAttr(node.Find(sel), "href"); href != "" {
			return e.absolute(href)
		}
	}
	return ""
}

func (e *SiteExtractor) absolute(href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	base, err := url.Parse(e.site.BaseURL)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// firstText returns the first non-empty text in sel, falling back to attr
func firstText(sel *goquery.Selection, attr string) string {
	out := ""
	sel.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if text := strings.Join(strings.Fields(s.Text()), " "); text != "" {
			out = text
			return false
		}
		if val, ok := s.Attr(attr); ok && strings.TrimSpace(val) != "" {
			out = strings.TrimSpace(val)
			return false
		}
		return true
	})
	return out
}

func firstAttr(sel *goquery.Selection, attr string) string {
	out := ""
	sel.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if val, ok := s.Attr(attr); ok && strings.TrimSpace(val) != "" {
			out = strings.TrimSpace(val)
			return false
		}
		return true
	})
	return out
}
