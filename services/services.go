// Package services holds the operations exposed to the HTTP layer, the CLI
// and the scheduler.
package services

import "errors"

// MinHistoryPoints is the fewest stored prices a forecast accepts
const MinHistoryPoints = 3

var (
	ErrEmptyQuery          = errors.New("product name is required")
	ErrProductNotFound     = errors.New("product not found")
	ErrInsufficientHistory = errors.New("not enough historical data to make prediction")
	ErrInvalidHorizon      = errors.New("days_ahead must not be negative")
)
