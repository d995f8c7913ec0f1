package forecast

import (
	"errors"
	"testing"
	"time"

	"pricewise/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T, s string) models.Day {
	t.Helper()
	d, err := models.ParseDay(s)
	require.NoError(t, err)
	return d
}

func history(t *testing.T, productID int, start string, prices ...float64) []models.PriceRecord {
	t.Helper()
	first := day(t, start)
	out := make([]models.PriceRecord, 0, len(prices))
	for i, p := range prices {
		out = append(out, models.PriceRecord{
			ProductID: productID,
			Website:   "Amazon",
			Price:     p,
			Date:      first.AddDays(i),
		})
	}
	return out
}

func trained(t *testing.T, records []models.PriceRecord, productID int) (*Forecaster, *Dataset) {
	t.Helper()
	f := New()
	ds, err := f.Prepare(records, productID)
	require.NoError(t, err)
	require.NoError(t, f.Fit(ds))
	return f, ds
}

func TestRoundTripLinearSeries(t *testing.T) {
	f, _ := trained(t, history(t, 1, "2024-01-01", 1000, 1010, 1020, 1030, 1040), 1)

	coef, err := f.Coefficients()
	require.NoError(t, err)
	assert.Greater(t, coef.Slope, 0.0)
	assert.Equal(t, TrendIncreasing, coef.Trend)
	assert.InDelta(t, 10.0, coef.ChangePerDay, 1e-9)

	now, err := f.PredictFuture(0)
	require.NoError(t, err)
	assert.InDelta(t, 1040.0, now.PredictedPrice, 1e-6)
	assert.Equal(t, "2024-01-05", now.PredictedDate.String())
	assert.InDelta(t, 100.0, now.Confidence, 1e-9)

	later, err := f.PredictFuture(30)
	require.NoError(t, err)
	assert.InDelta(t, 1340.0, later.PredictedPrice, 1e-6)
	assert.Equal(t, "2024-02-04", later.PredictedDate.String())
	assert.Equal(t, 30, later.DaysAhead)
}

func TestPrepareEmptyIsDataError(t *testing.T) {
	f := New()

	_, err := f.Prepare(nil, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrData))

	var dataErr *DataError
	assert.True(t, errors.As(err, &dataErr))

	// history exists but for another product
	_, err = f.Prepare(history(t, 2, "2024-01-01", 10, 20), 1)
	assert.ErrorIs(t, err, ErrData)
}

func TestPredictBeforeTrain(t *testing.T) {
	f := New()

	_, err := f.PredictFuture(1)
	assert.ErrorIs(t, err, ErrNotTrained)

	_, err = f.PredictRange(3)
	assert.ErrorIs(t, err, ErrNotTrained)

	_, err = f.Evaluate([]float64{0}, []float64{1})
	assert.ErrorIs(t, err, ErrNotTrained)

	_, err = f.Coefficients()
	assert.ErrorIs(t, err, ErrNotTrained)
}

func TestPrepareAveragesSameDay(t *testing.T) {
	records := []models.PriceRecord{
		{ProductID: 1, Price: 300, Date: day(t, "2024-03-03")},
		{ProductID: 1, Price: 100, Date: day(t, "2024-03-01")},
		{ProductID: 1, Price: 200, Date: day(t, "2024-03-01")},
		{ProductID: 9, Price: 999, Date: day(t, "2024-03-02")},
		{ProductID: 1, Price: 500, Date: models.NewDay(time.Date(2024, 3, 3, 18, 30, 0, 0, time.UTC))},
	}

	f := New()
	ds, err := f.Prepare(records, 1)
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 2}, ds.Offsets)
	assert.Equal(t, []float64{150, 400}, ds.Prices)
	assert.Equal(t, "2024-03-01", ds.Dates[0].String())
	assert.Equal(t, "2024-03-03", ds.Dates[1].String())
}

func TestConstantPrices(t *testing.T) {
	f, ds := trained(t, history(t, 1, "2024-01-01", 499, 499, 499, 499), 1)

	coef, err := f.Coefficients()
	require.NoError(t, err)
	assert.Equal(t, TrendStable, coef.Trend)
	assert.Zero(t, coef.Slope)

	p, err := f.PredictFuture(10)
	require.NoError(t, err)
	assert.InDelta(t, 499.0, p.PredictedPrice, 1e-9)

	eval, err := f.Evaluate(ds.Offsets, ds.Prices)
	require.NoError(t, err)
	assert.Equal(t, 1.0, eval.R2)
	assert.Equal(t, "100.00%", eval.Accuracy)
	assert.Zero(t, eval.MAE)
}

func TestSingleDayHistory(t *testing.T) {
	// zero variance in offsets must not divide by zero
	f, _ := trained(t, history(t, 1, "2024-05-10", 250), 1)

	p, err := f.PredictFuture(5)
	require.NoError(t, err)
	assert.InDelta(t, 250.0, p.PredictedPrice, 1e-9)
	assert.Equal(t, "2024-05-15", p.PredictedDate.String())
}

func TestDecreasingTrendAndEvaluation(t *testing.T) {
	f, ds := trained(t, history(t, 3, "2024-01-01", 900, 880, 870, 850, 820, 815), 3)

	coef, err := f.Coefficients()
	require.NoError(t, err)
	assert.Equal(t, TrendDecreasing, coef.Trend)
	assert.Less(t, coef.ChangePerDay, 0.0)

	eval, err := f.Evaluate(ds.Offsets, ds.Prices)
	require.NoError(t, err)
	assert.Greater(t, eval.R2, 0.9)
	assert.LessOrEqual(t, eval.R2, 1.0)
	assert.InDelta(t, eval.RMSE*eval.RMSE, eval.MSE, 0.05)
	assert.GreaterOrEqual(t, eval.RMSE, eval.MAE)
	assert.Contains(t, eval.Accuracy, "%")
}

func TestPredictRange(t *testing.T) {
	f, _ := trained(t, history(t, 1, "2024-01-01", 100, 110, 120), 1)

	preds, err := f.PredictRange(3)
	require.NoError(t, err)
	require.Len(t, preds, 3)
	for i, p := range preds {
		assert.Equal(t, i+1, p.DaysAhead)
	}
	assert.InDelta(t, 130.0, preds[0].PredictedPrice, 1e-6)
	assert.InDelta(t, 150.0, preds[2].PredictedPrice, 1e-6)
	assert.Equal(t, "2024-01-06", preds[2].PredictedDate.String())
}

func TestTrainRejectsMismatchedInputs(t *testing.T) {
	f := New()
	assert.ErrorIs(t, f.Train([]float64{1, 2}, []float64{1}), ErrData)
	assert.ErrorIs(t, f.Train(nil, nil), ErrData)
}
