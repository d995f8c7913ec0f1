package repository

import (
	"context"
	"fmt"

	"pricewise/models"

	"github.com/jmoiron/sqlx"
)

type PriceRepository struct {
	db *sqlx.DB
}

func NewPriceRepository(db *sqlx.DB) *PriceRepository {
	return &PriceRepository{db: db}
}

// AddPrice appends a price observation and returns its ID
func (r *PriceRepository) AddPrice(ctx context.Context, rec models.PriceRecord) (int, error) {
	query := r.db.Rebind(`
		INSERT INTO prices (product_id, website, price, website_link, recorded_date)
		VALUES (?, ?, ?, ?, ?)
		RETURNING price_id
	`)

	var id int
	err := r.db.QueryRowxContext(ctx, query, rec.ProductID, rec.Website, rec.Price, rec.Link, rec.Date).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to add price for product %d: %w", rec.ProductID, err)
	}
	return id, nil
}

// GetPriceHistory returns a product's prices, newest first
func (r *PriceRepository) GetPriceHistory(ctx context.Context, productID int) ([]models.PriceRecord, error) {
	query := r.db.Rebind(`
		SELECT price_id, product_id, website, price, website_link, recorded_date
		FROM prices
		WHERE product_id = ?
		ORDER BY recorded_date DESC, price_id DESC
	`)

	history := []models.PriceRecord{}
	if err := r.db.SelectContext(ctx, &history, query, productID); err != nil {
		return nil, fmt.Errorf("failed to get price history: %w", err)
	}
	return history, nil
}

// CountPrices returns the total number of stored prices
func (r *PriceRepository) CountPrices(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM prices`); err != nil {
		return 0, fmt.Errorf("failed to count prices: %w", err)
	}
	return n, nil
}

// ProductsWithHistory returns IDs of products having at least minPoints prices
func (r *PriceRepository) ProductsWithHistory(ctx context.Context, minPoints int) ([]int, error) {
	query := r.db.Rebind(`
		SELECT product_id
		FROM prices
		GROUP BY product_id
		HAVING COUNT(*) >= ?
		ORDER BY product_id
	`)

	ids := []int{}
	if err := r.db.SelectContext(ctx, &ids, query, minPoints); err != nil {
		return nil, fmt.Errorf("failed to list products with history: %w", err)
	}
	return ids, nil
}
