package services

import (
	"context"
	"errors"
	"sort"
	"strings"

	"pricewise/models"
	"pricewise/repository"

	"github.com/antzucaro/matchr"
)

// SearchThreshold is the minimum fuzzy score for a product to match a search
const SearchThreshold = 0.85

type ProductService struct {
	products *repository.ProductRepository
	prices   *repository.PriceRepository
}

func NewProductService(products *repository.ProductRepository, prices *repository.PriceRepository) *ProductService {
	return &ProductService{products: products, prices: prices}
}

func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	return s.products.ListProducts(ctx)
}

func (s *ProductService) Get(ctx context.Context, id int) (*models.Product, error) {
	p, err := s.products.GetProduct(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	return p, err
}

// History returns a product's prices, newest first. An unknown product and a
// product without prices both yield an empty slice.
func (s *ProductService) History(ctx context.Context, id int) ([]models.PriceRecord, error) {
	return s.prices.GetPriceHistory(ctx, id)
}

// Search ranks products by typo-tolerant similarity to q, best first.
// An empty query returns every product.
func (s *ProductService) Search(ctx context.Context, q string) ([]models.Product, error) {
	all, err := s.products.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	terms := strings.Fields(strings.ToLower(q))
	if len(terms) == 0 {
		return all, nil
	}

	type scored struct {
		product models.Product
		score   float64
	}
	var hits []scored
	for _, p := range all {
		if score := similarity(terms, p.Name); score >= SearchThreshold {
			hits = append(hits, scored{p, score})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	out := make([]models.Product, len(hits))
	for i, h := range hits {
		out[i] = h.product
	}
	return out, nil
}

// similarity averages, over the query terms, each term's best Jaro-Winkler
// score against the words of name
func similarity(terms []string, name string) float64 {
	words := strings.Fields(strings.ToLower(name))
	if len(words) == 0 {
		return 0
	}
	var total float64
	for _, t := range terms {
		best := 0.0
		for _, w := range words {
			if t == w {
				best = 1
				break
			}
			if jw := matchr.JaroWinkler(t, w, false); jw > best {
				best = jw
			}
		}
		total += best
	}
	return total / float64(len(terms))
}
