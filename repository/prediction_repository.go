package repository

import (
	"context"
	"fmt"

	"pricewise/models"

	"github.com/jmoiron/sqlx"
)

type PredictionRepository struct {
	db *sqlx.DB
}

func NewPredictionRepository(db *sqlx.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

// AddPrediction stores a forecast result
func (r *PredictionRepository) AddPrediction(ctx context.Context, p models.PredictionRecord) (int, error) {
	query := r.db.Rebind(`
		INSERT INTO predictions (product_id, predicted_price, predicted_date, model_accuracy)
		VALUES (?, ?, ?, ?)
		RETURNING prediction_id
	`)

	var id int
	err := r.db.QueryRowxContext(ctx, query, p.ProductID, p.PredictedPrice, p.PredictedDate, p.ModelAccuracy).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to add prediction for product %d: %w", p.ProductID, err)
	}
	return id, nil
}

// ListPredictions returns a product's predictions, latest target date first
func (r *PredictionRepository) ListPredictions(ctx context.Context, productID int) ([]models.PredictionRecord, error) {
	query := r.db.Rebind(`
		SELECT prediction_id, product_id, predicted_price, predicted_date, model_accuracy
		FROM predictions
		WHERE product_id = ?
		ORDER BY predicted_date DESC, prediction_id DESC
	`)

	predictions := []models.PredictionRecord{}
	if err := r.db.SelectContext(ctx, &predictions, query, productID); err != nil {
		return nil, fmt.Errorf("failed to list predictions: %w", err)
	}
	return predictions, nil
}
