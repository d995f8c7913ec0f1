package repository

import (
	"context"
	"testing"
	"time"

	"pricewise/config"
	"pricewise/database"
	"pricewise/models"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t testing.TB) *sqlx.DB {
	t.Helper()
	ctx := context.Background()
	db, err := database.Connect(ctx, config.DatabaseConfig{Driver: database.DriverSQLite, URL: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.CreateTables(ctx, db))
	t.Cleanup(func() { db.Close() })
	return db
}

func day(s string) models.Day {
	d, err := models.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

func exerciseRepositories(t *testing.T, db *sqlx.DB) {
	ctx := context.Background()
	products := NewProductRepository(db)
	prices := NewPriceRepository(db)
	predictions := NewPredictionRepository(db)

	require.NoError(t, products.UpsertProduct(ctx, models.Product{ID: 1, Name: "Samsung Galaxy A15", Category: models.NullString("Smartphones")}))
	require.NoError(t, products.UpsertProduct(ctx, models.Product{ID: 2, Name: "Sony WH-1000XM5"}))
	require.NoError(t, products.UpsertProduct(ctx, models.Product{ID: 1, Name: "Samsung Galaxy A15 5G", Category: models.NullString("Smartphones")}))

	p, err := products.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Samsung Galaxy A15 5G", p.Name)
	assert.Equal(t, "Smartphones", p.GetCategory())

	_, err = products.GetProduct(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := products.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "", all[1].GetCategory())

	for i, d := range []string{"2024-01-01", "2024-01-03", "2024-01-02"} {
		id, err := prices.AddPrice(ctx, models.PriceRecord{
			ProductID: 1,
			Website:   "Amazon",
			Price:     16999 + float64(i*100),
			Link:      models.NullString("https://www.amazon.in/dp/x"),
			Date:      day(d),
		})
		require.NoError(t, err)
		assert.Positive(t, id)
	}
	_, err = prices.AddPrice(ctx, models.PriceRecord{ProductID: 2, Website: "Flipkart", Price: 24990, Date: day("2024-01-01")})
	require.NoError(t, err)

	history, err := prices.GetPriceHistory(ctx, 1)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "2024-01-03", history[0].Date.String())
	assert.Equal(t, "2024-01-02", history[1].Date.String())
	assert.Equal(t, "2024-01-01", history[2].Date.String())
	assert.Equal(t, "https://www.amazon.in/dp/x", history[0].GetLink())

	other, err := prices.GetPriceHistory(ctx, 2)
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, "", other[0].GetLink())

	empty, err := prices.GetPriceHistory(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, empty)

	n, err := prices.CountPrices(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	ids, err := prices.ProductsWithHistory(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, ids)

	_, err = predictions.AddPrediction(ctx, models.PredictionRecord{ProductID: 1, PredictedPrice: 17500.5, PredictedDate: day("2024-02-01"), ModelAccuracy: 0.91})
	require.NoError(t, err)
	_, err = predictions.AddPrediction(ctx, models.PredictionRecord{ProductID: 1, PredictedPrice: 18000, PredictedDate: day("2024-03-01"), ModelAccuracy: 0.9})
	require.NoError(t, err)

	preds, err := predictions.ListPredictions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, preds, 2)
	assert.Equal(t, "2024-03-01", preds[0].PredictedDate.String())
	assert.InDelta(t, 17500.5, preds[1].PredictedPrice, 1e-9)
	assert.InDelta(t, 0.91, preds[1].ModelAccuracy, 1e-9)
	assert.Equal(t, time.February, preds[1].PredictedDate.Month())
}

func TestRepositoriesSQLite(t *testing.T) {
	exerciseRepositories(t, setupDB(t))
}
