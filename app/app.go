// Package app wires configuration, storage, the scraper and services into a
// runnable whole for the server and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"pricewise/config"
	"pricewise/csvimport"
	"pricewise/database"
	"pricewise/repository"
	"pricewise/scraper"
	"pricewise/services"

	"github.com/jmoiron/sqlx"
)

// App holds the long-lived components
type App struct {
	Config *config.Config
	DB     *sqlx.DB

	Products    *repository.ProductRepository
	Prices      *repository.PriceRepository
	Predictions *repository.PredictionRepository

	Aggregator  *scraper.Aggregator
	Comparisons *services.ComparisonService
	Forecasts   *services.ForecastService
	Catalogue   *services.ProductService
	Importer    *csvimport.Importer

	fetcher scraper.Fetcher
}

// New connects to the database, creates tables and builds every component
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := database.CreateTables(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	a := &App{
		Config:      cfg,
		DB:          db,
		Products:    repository.NewProductRepository(db),
		Prices:      repository.NewPriceRepository(db),
		Predictions: repository.NewPredictionRepository(db),
	}

	if err := a.buildScraper(); err != nil {
		db.Close()
		return nil, err
	}

	a.Comparisons = services.NewComparisonService(a.Aggregator, a.Products, a.Prices).
		WithCache(512, cfg.Scraper.CacheTTL)
	a.Forecasts = services.NewForecastService(a.Prices, a.Predictions)
	a.Catalogue = services.NewProductService(a.Products, a.Prices)
	a.Importer = csvimport.NewImporter(a.Products, a.Prices)
	return a, nil
}

func (a *App) buildScraper() error {
	cfg := a.Config.Scraper

	sites, err := config.LoadSites(cfg.SitesFile)
	if err != nil {
		return err
	}

	a.fetcher = scraper.NewRestyFetcher(cfg.CloudflareBypass)
	if cfg.UseBrowser {
		browser, err := scraper.NewBrowserFetcher()
		if err != nil {
			slog.Warn("headless browser unavailable, using http fetcher", "error", err)
		} else {
			a.fetcher.Close()
			a.fetcher = browser
		}
	}

	// each consumer locks its own source
	seed := cfg.Seed
	extractors, err := scraper.NewExtractors(sites, scraper.ExtractorDeps{
		Fetcher:   a.fetcher,
		Agents:    scraper.NewUserAgentRotator(rand.New(rand.NewSource(seed))),
		Validator: scraper.NewMatchValidator(cfg.MatchThreshold),
		Timeout:   cfg.Timeout,
	})
	if err != nil {
		return fmt.Errorf("failed to build extractors: %w", err)
	}

	a.Aggregator = scraper.NewAggregator(
		extractors,
		scraper.NewSynthesizer(rand.New(rand.NewSource(seed+1))),
		rand.New(rand.NewSource(seed+2)),
		scraper.AggregatorOptions{
			MinDelay: cfg.MinDelay,
			MaxDelay: cfg.MaxDelay,
			Headless: cfg.Headless,
		},
	)
	slog.Debug("scraper ready", "sites", a.Aggregator.Sites(), "browser", cfg.UseBrowser, "seed", seed)
	return nil
}

// Close releases the fetcher and the database
func (a *App) Close() error {
	var errs []error
	if a.fetcher != nil {
		errs = append(errs, a.fetcher.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}
