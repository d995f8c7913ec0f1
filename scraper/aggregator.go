package scraper

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"pricewise/models"

	"go.opentelemetry.io/otel/attribute"
)

// Sleeper waits for d or until ctx is done
type Sleeper func(ctx context.Context, d time.Duration)

func contextSleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// AggregatorOptions tune the politeness delay between sites
type AggregatorOptions struct {
	MinDelay time.Duration
	MaxDelay time.Duration
	// Headless skips the delay entirely
	Headless bool
	Sleep    Sleeper
}

// Aggregator queries every site in turn and assembles a ComparisonSet
type Aggregator struct {
	extractors  []Extractor
	synthesizer *Synthesizer
	opts        AggregatorOptions

	mu  sync.Mutex
	rng *rand.Rand
}

// NewAggregator wires extractors, the fallback synthesizer and a seeded source for delays
func NewAggregator(extractors []Extractor, synthesizer *Synthesizer, rng *rand.Rand, opts AggregatorOptions) *Aggregator {
	if opts.Sleep == nil {
		opts.Sleep = contextSleep
	}
	if opts.MaxDelay < opts.MinDelay {
		opts.MaxDelay = opts.MinDelay
	}
	return &Aggregator{extractors: extractors, synthesizer: synthesizer, opts: opts, rng: rng}
}

// Sites returns the configured site names in comparison order
func (a *Aggregator) Sites() []string {
	names := make([]string, len(a.extractors))
	for i, e := range a.extractors {
		names[i] = e.Site()
	}
	return names
}

// Compare runs each extractor sequentially. Site failures become unavailable
// entries; if every site fails, all entries are replaced with estimates.
func (a *Aggregator) Compare(ctx context.Context, query string) models.ComparisonSet {
	ctx, span := tracer.Start(ctx, "scraper.Compare")
	defer span.End()
	span.SetAttributes(attribute.String("query", query))

	set := make(models.ComparisonSet, 0, len(a.extractors))
	for i, ext := range a.extractors {
		start := time.Now()
		searchURL := ext.SearchURL(query)

		cand, err := ext.Extract(ctx, query)
		if err != nil || cand == nil {
			slog.Warn("site unavailable", "site", ext.Site(), "query", query, "error", err, "duration", time.Since(start))
			set = append(set, models.Unavailable(ext.Site(), searchURL))
		} else {
			price, _ := cand.Price.Round(2).Float64()
			link := cand.Link
			if link == "" {
				link = searchURL
			}
			slog.Info("site price found", "site", ext.Site(), "query", query, "price", price, "duration", time.Since(start))
			set = append(set, models.Found(ext.Site(), cand.Title, price, link))
		}

		if i < len(a.extractors)-1 {
			a.pause(ctx)
		}
	}

	if set.AvailableCount() == 0 && len(set) > 0 {
		slog.Warn("no site returned a price, using estimates", "query", query)
		for i := range set {
			est := a.synthesizer.Estimate(query)
			set[i] = models.Synthesized(set[i].Site, est.Title, est.Price, set[i].Link)
		}
		span.SetAttributes(attribute.Bool("estimated", true))
	}

	span.SetAttributes(attribute.Int("available", set.AvailableCount()))
	return set
}

func (a *Aggregator) pause(ctx context.Context) {
	if a.opts.Headless || a.opts.MaxDelay <= 0 {
		return
	}
	a.opts.Sleep(ctx, a.delay())
}

// delay is uniform in [MinDelay, MaxDelay]
func (a *Aggregator) delay() time.Duration {
	span := a.opts.MaxDelay - a.opts.MinDelay
	if span <= 0 {
		return a.opts.MinDelay
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.opts.MinDelay + time.Duration(a.rng.Int63n(int64(span)+1))
}
