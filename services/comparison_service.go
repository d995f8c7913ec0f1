package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pricewise/models"
	"pricewise/repository"
	"pricewise/scraper"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Comparer produces one result per site for a query
type Comparer interface {
	Compare(ctx context.Context, query string) models.ComparisonSet
}

// ComparisonService runs price comparisons and optionally stores their prices
type ComparisonService struct {
	comparer Comparer
	products *repository.ProductRepository
	prices   *repository.PriceRepository
	cache    *expirable.LRU[string, *models.Comparison]
	now      func() time.Time
}

func NewComparisonService(comparer Comparer, products *repository.ProductRepository, prices *repository.PriceRepository) *ComparisonService {
	return &ComparisonService{
		comparer: comparer,
		products: products,
		prices:   prices,
		now:      time.Now,
	}
}

// WithCache keeps up to size scraped comparisons for ttl, keyed by the
// lower-cased query. Estimated results are never cached.
func (s *ComparisonService) WithCache(size int, ttl time.Duration) *ComparisonService {
	if size > 0 && ttl > 0 {
		s.cache = expirable.NewLRU[string, *models.Comparison](size, nil, ttl)
	}
	return s
}

// Compare queries every site and resolves the cheapest available option
func (s *ComparisonService) Compare(ctx context.Context, query string) (*models.Comparison, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	key := strings.ToLower(query)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			slog.Debug("comparison served from cache", "query", query)
			return cached, nil
		}
	}

	start := time.Now()
	set := s.comparer.Compare(ctx, query)
	result := &models.Comparison{
		Query:    query,
		Results:  set,
		Cheapest: scraper.FindCheapest(set),
	}

	slog.Info("comparison finished",
		"query", query,
		"available", set.AvailableCount(),
		"estimated", set.Estimated(),
		"duration", time.Since(start),
	)

	if s.cache != nil && set.AvailableCount() > 0 && !set.Estimated() {
		s.cache.Add(key, result)
	}
	return result, nil
}

// Record stores the scraped prices of set against a known product.
// Estimated entries are never stored.
func (s *ComparisonService) Record(ctx context.Context, productID int, set models.ComparisonSet) (int, error) {
	if _, err := s.products.GetProduct(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrProductNotFound
		}
		return 0, err
	}

	today := models.NewDay(s.now())
	stored := 0
	for _, r := range set {
		if !r.Available || r.Estimated || r.Price == nil {
			continue
		}
		rec := models.PriceRecord{
			ProductID: productID,
			Website:   r.Site,
			Price:     *r.Price,
			Link:      models.NullString(r.Link),
			Date:      today,
		}
		if _, err := s.prices.AddPrice(ctx, rec); err != nil {
			return stored, fmt.Errorf("failed to record %s price: %w", r.Site, err)
		}
		stored++
	}

	slog.Debug("recorded comparison prices", "product_id", productID, "stored", stored)
	return stored, nil
}
