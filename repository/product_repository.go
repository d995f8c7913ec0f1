package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pricewise/models"

	"github.com/jmoiron/sqlx"
)

type ProductRepository struct {
	db *sqlx.DB
}

func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// UpsertProduct inserts a product or refreshes its name and category
func (r *ProductRepository) UpsertProduct(ctx context.Context, p models.Product) error {
	query := r.db.Rebind(`
		INSERT INTO products (product_id, product_name, category)
		VALUES (?, ?, ?)
		ON CONFLICT (product_id) DO UPDATE SET
			product_name = excluded.product_name,
			category = excluded.category
	`)

	if _, err := r.db.ExecContext(ctx, query, p.ID, p.Name, p.Category); err != nil {
		return fmt.Errorf("failed to upsert product %d: %w", p.ID, err)
	}
	return nil
}

// GetProduct returns a product by ID
func (r *ProductRepository) GetProduct(ctx context.Context, id int) (*models.Product, error) {
	query := r.db.Rebind(`SELECT product_id, product_name, category FROM products WHERE product_id = ?`)

	var p models.Product
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	return &p, nil
}

// ListProducts returns all products ordered by ID
func (r *ProductRepository) ListProducts(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	query := `SELECT product_id, product_name, category FROM products ORDER BY product_id`
	if err := r.db.SelectContext(ctx, &products, query); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}
