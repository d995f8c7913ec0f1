package scraper

import (
	"fmt"

	"pricewise/config"

	"github.com/PuerkitoBio/goquery"
)

// NewAmazonExtractor handles amazon.in search results. Prices that are split
// into whole and fraction spans are reassembled.
func NewAmazonExtractor(site config.SiteConfig, deps ExtractorDeps) *SiteExtractor {
	e := newSiteExtractor(site, deps)
	e.priceHooks = append(e.priceHooks, func(node *goquery.Selection) (string, bool) {
		whole := node.Find(".a-price-whole").First()
		if whole.Length() == 0 {
			return "", false
		}
		fraction := whole.SiblingsFiltered(".a-price-fraction").First().Text()
		return e.parser.JoinWholeFraction(whole.Text(), fraction), true
	})
	return e
}

// NewFlipkartExtractor handles flipkart.com search results
func NewFlipkartExtractor(site config.SiteConfig, deps ExtractorDeps) *SiteExtractor {
	return newSiteExtractor(site, deps)
}

// NewSnapdealExtractor handles snapdeal.com search results, which also expose
// the price as a data attribute
func NewSnapdealExtractor(site config.SiteConfig, deps ExtractorDeps) *SiteExtractor {
	return newSiteExtractor(site, deps)
}

// NewExtractors builds one extractor per configured site, in order
func NewExtractors(sites []config.SiteConfig, deps ExtractorDeps) ([]Extractor, error) {
	extractors := make([]Extractor, 0, len(sites))
	for _, site := range sites {
		switch site.Name {
		case config.SiteAmazon:
			extractors = append(extractors, NewAmazonExtractor(site, deps))
		case config.SiteFlipkart:
			extractors = append(extractors, NewFlipkartExtractor(site, deps))
		case config.SiteSnapdeal:
			extractors = append(extractors, NewSnapdealExtractor(site, deps))
		default:
			return nil, fmt.Errorf("no extractor for site %q", site.Name)
		}
	}
	return extractors, nil
}
