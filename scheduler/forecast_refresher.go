package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// RefreshFunc recomputes stored forecasts and reports how many were written
type RefreshFunc func(ctx context.Context, daysAhead int) (int, error)

// ForecastRefresher periodically re-runs forecasts over stored history.
// It never scrapes.
type ForecastRefresher struct {
	cron      *cron.Cron
	refresh   RefreshFunc
	daysAhead int
	timeout   time.Duration
}

// NewForecastRefresher schedules refresh on a standard five-field cron spec
func NewForecastRefresher(spec string, daysAhead int, refresh RefreshFunc) (*ForecastRefresher, error) {
	fr := &ForecastRefresher{
		cron:      cron.New(cron.WithLogger(cronLogger{}), cron.WithChain(cron.SkipIfStillRunning(cronLogger{}))),
		refresh:   refresh,
		daysAhead: daysAhead,
		timeout:   10 * time.Minute,
	}
	if _, err := fr.cron.AddFunc(spec, fr.RunOnce); err != nil {
		return nil, fmt.Errorf("invalid forecast refresh schedule %q: %w", spec, err)
	}
	return fr, nil
}

// Start starts the schedule
func (fr *ForecastRefresher) Start() {
	fr.cron.Start()
	slog.Info("forecast refresher scheduled", "entries", len(fr.cron.Entries()))
}

// Stop stops scheduling and waits for a running refresh to finish
func (fr *ForecastRefresher) Stop() {
	<-fr.cron.Stop().Done()
}

// RunOnce refreshes every eligible product immediately
func (fr *ForecastRefresher) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), fr.timeout)
	defer cancel()

	start := time.Now()
	n, err := fr.refresh(ctx, fr.daysAhead)
	if err != nil {
		slog.Error("forecast refresh failed", "error", err, "refreshed", n)
		return
	}
	slog.Info("forecast refresh finished", "refreshed", n, "duration", time.Since(start))
}

type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}
