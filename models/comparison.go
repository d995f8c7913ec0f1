package models

import (
	"encoding/json"
)

// SiteResult is the outcome for one site in a comparison.
// An unavailable result never carries a price, and an estimated result is always available.
type SiteResult struct {
	Site      string   `json:"-"`
	Title     string   `json:"title,omitempty"`
	Price     *float64 `json:"price"`
	Link      string   `json:"link"`
	Available bool     `json:"available"`
	Estimated bool     `json:"estimated"`
}

// Unavailable builds a result for a site that yielded nothing
func Unavailable(site, link string) SiteResult {
	return SiteResult{Site: site, Link: link}
}

// Found builds a result for a scraped price
func Found(site, title string, price float64, link string) SiteResult {
	return SiteResult{Site: site, Title: title, Price: &price, Link: link, Available: true}
}

// Synthesized builds a result for a fallback estimate
func Synthesized(site, title string, price float64, link string) SiteResult {
	r := Found(site, title, price, link)
	r.Estimated = true
	return r
}

// ComparisonSet holds one result per configured site, in site order
type ComparisonSet []SiteResult

// Get returns the result for a site
func (c ComparisonSet) Get(site string) (SiteResult, bool) {
	for _, r := range c {
		if r.Site == site {
			return r, true
		}
	}
	return SiteResult{}, false
}

// AvailableCount returns how many sites produced a price
func (c ComparisonSet) AvailableCount() int {
	n := 0
	for _, r := range c {
		if r.Available {
			n++
		}
	}
	return n
}

// Estimated reports whether the set was filled by the fallback synthesizer
func (c ComparisonSet) Estimated() bool {
	return len(c) > 0 && c[0].Estimated
}

// MarshalJSON encodes the set as an object keyed by site name
func (c ComparisonSet) MarshalJSON() ([]byte, error) {
	m := make(map[string]SiteResult, len(c))
	for _, r := range c {
		m[r.Site] = r
	}
	return json.Marshal(m)
}

// CheapestResult names the lowest priced available site.
// Savings hold nil for sites that had no price.
type CheapestResult struct {
	Site    string              `json:"website"`
	Price   float64             `json:"price"`
	Link    string              `json:"link"`
	Savings map[string]*float64 `json:"savings"`
}

// Comparison is the full answer for one query
type Comparison struct {
	Query    string          `json:"product"`
	Results  ComparisonSet   `json:"comparison"`
	Cheapest *CheapestResult `json:"cheapest"`
}
