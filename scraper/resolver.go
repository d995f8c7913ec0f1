package scraper

import (
	"pricewise/models"

	"github.com/shopspring/decimal"
)

// FindCheapest picks the lowest priced available site. Ties keep the earlier
// site. Savings are nil for sites without a price. Returns nil when no site
// has a price.
func FindCheapest(set models.ComparisonSet) *models.CheapestResult {
	var best *models.SiteResult
	for i := range set {
		r := &set[i]
		if !r.Available || r.Price == nil {
			continue
		}
		if best == nil || *r.Price < *best.Price {
			best = r
		}
	}
	if best == nil {
		return nil
	}

	cheapest := decimal.NewFromFloat(*best.Price)
	savings := make(map[string]*float64, len(set))
	for _, r := range set {
		if !r.Available || r.Price == nil {
			savings[r.Site] = nil
			continue
		}
		diff, _ := decimal.NewFromFloat(*r.Price).Sub(cheapest).Round(2).Float64()
		savings[r.Site] = &diff
	}

	return &models.CheapestResult{
		Site:    best.Site,
		Price:   *best.Price,
		Link:    best.Link,
		Savings: savings,
	}
}
