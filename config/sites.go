package config

import (
	"fmt"
	"log/slog"
	"os"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// Site names, in comparison order
const (
	SiteAmazon   = "Amazon"
	SiteFlipkart = "Flipkart"
	SiteSnapdeal = "Snapdeal"
)

// SiteConfig describes how to search one site and where its listing data lives.
// Selector lists are tried in order; the first one that yields a value wins.
type SiteConfig struct {
	Name             string   `json:"name"`
	BaseURL          string   `json:"baseUrl"`
	SearchURL        string   `json:"searchUrl"` // query is appended escaped
	MaxListings      int      `json:"maxListings"`
	ListingSelectors []string `json:"listingSelectors"`
	PriceSelectors   []string `json:"priceSelectors"`
	PriceAttributes  []string `json:"priceAttributes"`
	TitleSelectors   []string `json:"titleSelectors"`
	LinkSelectors    []string `json:"linkSelectors"`
}

// DefaultSites returns the built-in site catalogue
func DefaultSites() []SiteConfig {
	return []SiteConfig{
		{
			Name:        SiteAmazon,
			BaseURL:     "https://www.amazon.in",
			SearchURL:   "https://www.amazon.in/s?k=",
			MaxListings: 5,
			ListingSelectors: []string{
				`div[data-component-type="s-search-result"]`,
				`div.s-result-item[data-asin]`,
			},
			PriceSelectors: []string{
				".a-price .a-offscreen",
				"span.a-color-price",
			},
			TitleSelectors: []string{
				"h2 a span",
				"h2 span",
				".a-size-medium.a-color-base.a-text-normal",
				".a-size-base-plus.a-color-base.a-text-normal",
			},
			LinkSelectors: []string{
				"h2 a",
				"a.a-link-normal.s-no-outline",
				"a.a-link-normal",
			},
		},
		{
			Name:        SiteFlipkart,
			BaseURL:     "https://www.flipkart.com",
			SearchURL:   "https://www.flipkart.com/search?q=",
			MaxListings: 7,
			ListingSelectors: []string{
				"div[data-id]",
				"div._1AtVbE",
			},
			PriceSelectors: []string{
				"div.Nx9bqj",
				"div._30jeq3",
				"div._1_WHN1",
			},
			TitleSelectors: []string{
				"div.KzDlHZ",
				"div._4rR01T",
				"a.wjcEIp",
				"a.s1Q9rs",
				"a.IRpwTa",
			},
			LinkSelectors: []string{
				"a.CGtC98",
				"a._1fQZEK",
				"a.wjcEIp",
				"a.s1Q9rs",
				"a[href]",
			},
		},
		{
			Name:        SiteSnapdeal,
			BaseURL:     "https://www.snapdeal.com",
			SearchURL:   "https://www.snapdeal.com/search?keyword=",
			MaxListings: 3,
			ListingSelectors: []string{
				"div.product-tuple-listing",
				"div.product-desc-rating",
			},
			PriceSelectors: []string{
				"span.product-price",
				"span.lfloat.product-price",
			},
			PriceAttributes: []string{"data-price", "display-price"},
			TitleSelectors: []string{
				"p.product-title",
				"p[title]",
			},
			LinkSelectors: []string{
				"a.dp-widget-link",
				"a[href]",
			},
		},
	}
}

type sitesFile struct {
	Sites map[string]SiteConfig `json:"sites"`
}

// LoadSites returns the default catalogue with per-site overrides from a JSON5 file merged in.
// An empty path returns the defaults unchanged.
func LoadSites(path string) ([]SiteConfig, error) {
	sites := DefaultSites()
	if path == "" {
		return sites, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sites config: %w", err)
	}

	var overrides sitesFile
	if err := json5.Unmarshal(raw, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse sites config: %w", err)
	}

	for i := range sites {
		override, ok := overrides.Sites[sites[i].Name]
		if !ok {
			continue
		}
		override.Name = sites[i].Name
		if err := mergo.Merge(&sites[i], override, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge %s config: %w", sites[i].Name, err)
		}
		slog.Info("merged site selector overrides", "site", sites[i].Name, "file", path)
	}

	return sites, nil
}
