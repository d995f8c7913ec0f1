package services

import (
	"context"
	"fmt"
	"log/slog"

	"pricewise/forecast"
	"pricewise/models"
	"pricewise/repository"
)

// ForecastResult is one forecast and the diagnostics of the model behind it
type ForecastResult struct {
	ProductID    int                   `json:"product_id"`
	PredictionID int                   `json:"-"`
	Prediction   forecast.Prediction   `json:"prediction"`
	Evaluation   forecast.Evaluation   `json:"model_evaluation"`
	Coefficients forecast.Coefficients `json:"coefficients"`
	DataPoints   int                   `json:"data_points"`
}

type ForecastService struct {
	prices      *repository.PriceRepository
	predictions *repository.PredictionRepository
}

func NewForecastService(prices *repository.PriceRepository, predictions *repository.PredictionRepository) *ForecastService {
	return &ForecastService{prices: prices, predictions: predictions}
}

// Forecast trains a fresh model on the product's stored prices, predicts
// daysAhead days past the latest observation and persists the prediction
// with the model's R² as its accuracy.
func (s *ForecastService) Forecast(ctx context.Context, productID, daysAhead int) (*ForecastResult, error) {
	if daysAhead < 0 {
		return nil, ErrInvalidHorizon
	}

	model, ds, err := s.train(ctx, productID)
	if err != nil {
		return nil, err
	}

	prediction, err := model.PredictFuture(daysAhead)
	if err != nil {
		return nil, err
	}
	evaluation, err := model.Evaluate(ds.Offsets, ds.Prices)
	if err != nil {
		return nil, err
	}
	coef, err := model.Coefficients()
	if err != nil {
		return nil, err
	}

	id, err := s.predictions.AddPrediction(ctx, models.PredictionRecord{
		ProductID:      productID,
		PredictedPrice: prediction.PredictedPrice,
		PredictedDate:  prediction.PredictedDate,
		ModelAccuracy:  evaluation.R2,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("forecast saved",
		"product_id", productID,
		"days_ahead", daysAhead,
		"predicted_price", prediction.PredictedPrice,
		"r2", evaluation.R2,
		"trend", coef.Trend,
	)

	return &ForecastResult{
		ProductID:    productID,
		PredictionID: id,
		Prediction:   prediction,
		Evaluation:   evaluation,
		Coefficients: coef,
		DataPoints:   len(ds.Prices),
	}, nil
}

// Outlook projects each of the next days days without storing anything
func (s *ForecastService) Outlook(ctx context.Context, productID, days int) ([]forecast.Prediction, error) {
	if days < 1 {
		return nil, ErrInvalidHorizon
	}
	model, _, err := s.train(ctx, productID)
	if err != nil {
		return nil, err
	}
	return model.PredictRange(days)
}

// RefreshAll forecasts every product with enough history. A failing product
// is logged and skipped.
func (s *ForecastService) RefreshAll(ctx context.Context, daysAhead int) (int, error) {
	ids, err := s.prices.ProductsWithHistory(ctx, MinHistoryPoints)
	if err != nil {
		return 0, err
	}

	done := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		if _, err := s.Forecast(ctx, id, daysAhead); err != nil {
			slog.Warn("forecast refresh failed", "product_id", id, "error", err)
			continue
		}
		done++
	}
	return done, nil
}

// train fits a fresh model to the product's stored history
func (s *ForecastService) train(ctx context.Context, productID int) (*forecast.Forecaster, *forecast.Dataset, error) {
	history, err := s.prices.GetPriceHistory(ctx, productID)
	if err != nil {
		return nil, nil, err
	}
	if len(history) < MinHistoryPoints {
		return nil, nil, fmt.Errorf("%w: product %d has %d prices", ErrInsufficientHistory, productID, len(history))
	}

	model := forecast.New()
	ds, err := model.Prepare(history, productID)
	if err != nil {
		return nil, nil, err
	}
	if err := model.Fit(ds); err != nil {
		return nil, nil, err
	}
	return model, ds, nil
}

// Predictions returns stored predictions, newest target date first
func (s *ForecastService) Predictions(ctx context.Context, productID int) ([]models.PredictionRecord, error) {
	return s.predictions.ListPredictions(ctx, productID)
}
