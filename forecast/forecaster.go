// Package forecast fits a straight line through a product's daily average
// prices and projects it forward.
//
// The model is trained and scored on the same observations. Confidence is
// the in-sample R² scaled to a percentage and is not clamped.
package forecast

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"pricewise/models"

	"github.com/shopspring/decimal"
)

// ErrData matches any DataError
var ErrData = errors.New("invalid forecast data")

// ErrNotTrained is returned when predicting before Train
var ErrNotTrained = errors.New("model must be trained first")

// DataError describes unusable input
type DataError struct {
	Reason string
}

func (e *DataError) Error() string {
	return "invalid forecast data: " + e.Reason
}

func (e *DataError) Is(target error) bool {
	return target == ErrData
}

// Dataset is a product's history grouped to one mean price per day
type Dataset struct {
	Dates   []models.Day
	Offsets []float64 // days since Dates[0]
	Prices  []float64
}

// Prediction is a single projected price
type Prediction struct {
	PredictedPrice float64    `json:"predicted_price"`
	PredictedDate  models.Day `json:"predicted_date"`
	Confidence     float64    `json:"confidence"`
	DaysAhead      int        `json:"days_ahead"`
}

// Evaluation holds fit diagnostics
type Evaluation struct {
	MAE      float64 `json:"MAE"`
	MSE      float64 `json:"MSE"`
	RMSE     float64 `json:"RMSE"`
	R2       float64 `json:"R2_Score"`
	Accuracy string  `json:"Accuracy"`
}

// Trend directions
const (
	TrendIncreasing = "INCREASING"
	TrendDecreasing = "DECREASING"
	TrendStable     = "STABLE"
)

// Coefficients describe the fitted line
type Coefficients struct {
	Slope        float64 `json:"slope"` // per standardized offset unit
	Intercept    float64 `json:"intercept"`
	ChangePerDay float64 `json:"price_change_per_day"`
	Trend        string  `json:"trend"`
}

// Forecaster is single use: Prepare, Train, then predict. It is not safe for
// concurrent use.
type Forecaster struct {
	trained bool

	first models.Day
	last  models.Day

	// standardization of offsets
	mean  float64
	scale float64

	slope     float64
	intercept float64
	r2        float64
}

// New returns an untrained forecaster
func New() *Forecaster {
	return &Forecaster{scale: 1}
}

// Prepare filters history to productID, averages prices per calendar day and
// converts days to offsets from the earliest one.
func (f *Forecaster) Prepare(history []models.PriceRecord, productID int) (*Dataset, error) {
	type acc struct {
		sum float64
		n   int
	}
	byDay := make(map[models.Day]*acc)
	for _, rec := range history {
		if rec.ProductID != productID {
			continue
		}
		d := models.NewDay(rec.Date.Time)
		a, ok := byDay[d]
		if !ok {
			a = &acc{}
			byDay[d] = a
		}
		a.sum += rec.Price
		a.n++
	}
	if len(byDay) == 0 {
		return nil, &DataError{Reason: fmt.Sprintf("no price history for product %d", productID)}
	}

	days := make([]models.Day, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j].Time) })

	ds := &Dataset{
		Dates:   days,
		Offsets: make([]float64, len(days)),
		Prices:  make([]float64, len(days)),
	}
	for i, d := range days {
		a := byDay[d]
		ds.Offsets[i] = float64(d.DaysSince(days[0]))
		ds.Prices[i] = a.sum / float64(a.n)
	}

	f.first = days[0]
	f.last = days[len(days)-1]
	return ds, nil
}

// Train standardizes offsets and fits least squares offset → price
func (f *Forecaster) Train(offsets, prices []float64) error {
	if len(offsets) == 0 || len(offsets) != len(prices) {
		return &DataError{Reason: fmt.Sprintf("need matching non-empty inputs, got %d offsets and %d prices", len(offsets), len(prices))}
	}

	f.mean, f.scale = meanStd(offsets)
	if f.scale == 0 {
		f.scale = 1
	}

	xs := make([]float64, len(offsets))
	for i, x := range offsets {
		xs[i] = f.standardize(x)
	}

	xBar, _ := meanStd(xs)
	yBar, _ := meanStd(prices)
	var sxy, sxx float64
	for i := range xs {
		dx := xs[i] - xBar
		sxy += dx * (prices[i] - yBar)
		sxx += dx * dx
	}
	if sxx == 0 {
		f.slope = 0
	} else {
		f.slope = sxy / sxx
	}
	f.intercept = yBar - f.slope*xBar

	f.trained = true
	f.r2 = rSquared(prices, f.predictAll(offsets))
	return nil
}

// Fit is Train over a prepared dataset
func (f *Forecaster) Fit(ds *Dataset) error {
	return f.Train(ds.Offsets, ds.Prices)
}

// TrainingR2 returns the in-sample R² from Train
func (f *Forecaster) TrainingR2() float64 {
	return f.r2
}

// PredictFuture projects the price daysAhead days after the last observed date
func (f *Forecaster) PredictFuture(daysAhead int) (Prediction, error) {
	if !f.trained {
		return Prediction{}, ErrNotTrained
	}

	target := f.last.AddDays(daysAhead)
	price := f.predict(float64(target.DaysSince(f.first)))

	return Prediction{
		PredictedPrice: round(price, 2),
		PredictedDate:  target,
		Confidence:     round(f.r2*100, 2),
		DaysAhead:      daysAhead,
	}, nil
}

// PredictRange predicts 1..days days ahead
func (f *Forecaster) PredictRange(days int) ([]Prediction, error) {
	if !f.trained {
		return nil, ErrNotTrained
	}
	out := make([]Prediction, 0, days)
	for d := 1; d <= days; d++ {
		p, err := f.PredictFuture(d)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Evaluate scores the fitted line against offsets and prices
func (f *Forecaster) Evaluate(offsets, prices []float64) (Evaluation, error) {
	if !f.trained {
		return Evaluation{}, ErrNotTrained
	}
	if len(offsets) == 0 || len(offsets) != len(prices) {
		return Evaluation{}, &DataError{Reason: "evaluation needs matching non-empty inputs"}
	}

	predicted := f.predictAll(offsets)
	var absSum, sqSum float64
	for i := range prices {
		diff := prices[i] - predicted[i]
		absSum += math.Abs(diff)
		sqSum += diff * diff
	}
	n := float64(len(prices))
	mse := sqSum / n
	r2 := rSquared(prices, predicted)

	return Evaluation{
		MAE:      round(absSum/n, 2),
		MSE:      round(mse, 2),
		RMSE:     round(math.Sqrt(mse), 2),
		R2:       round(r2, 4),
		Accuracy: decimal.NewFromFloat(r2*100).StringFixed(2) + "%",
	}, nil
}

// Coefficients returns the fitted line and its direction
func (f *Forecaster) Coefficients() (Coefficients, error) {
	if !f.trained {
		return Coefficients{}, ErrNotTrained
	}
	trend := TrendStable
	switch {
	case f.slope > 0:
		trend = TrendIncreasing
	case f.slope < 0:
		trend = TrendDecreasing
	}
	return Coefficients{
		Slope:        round(f.slope, 4),
		Intercept:    round(f.intercept, 2),
		ChangePerDay: round(f.slope/f.scale, 2),
		Trend:        trend,
	}, nil
}

func (f *Forecaster) standardize(offset float64) float64 {
	return (offset - f.mean) / f.scale
}

func (f *Forecaster) predict(offset float64) float64 {
	return f.slope*f.standardize(offset) + f.intercept
}

func (f *Forecaster) predictAll(offsets []float64) []float64 {
	out := make([]float64, len(offsets))
	for i, x := range offsets {
		out[i] = f.predict(x)
	}
	return out
}

// meanStd returns the mean and population standard deviation
func meanStd(xs []float64) (float64, float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))
	var ss float64
	for _, x := range xs {
		ss += (x - mean) * (x - mean)
	}
	return mean, math.Sqrt(ss / float64(len(xs)))
}

// rSquared follows the usual convention for constant targets: 1 for a
// perfect fit, 0 otherwise.
func rSquared(actual, predicted []float64) float64 {
	mean, _ := meanStd(actual)
	var ssRes, ssTot float64
	for i := range actual {
		ssRes += (actual[i] - predicted[i]) * (actual[i] - predicted[i])
		ssTot += (actual[i] - mean) * (actual[i] - mean)
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}
	return 1 - ssRes/ssTot
}

func round(v float64, places int32) float64 {
	out, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return out
}
