package database

import (
	"context"
	"fmt"
	"log/slog"

	"pricewise/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Connect opens and pings the configured database
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	switch cfg.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sqlx.Open(cfg.Driver, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Driver == DriverSQLite {
		// single writer
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("connected to database", "driver", cfg.Driver)
	return db, nil
}

// CreateTables creates the necessary tables if they don't exist
func CreateTables(ctx context.Context, db *sqlx.DB) error {
	queries := postgresSchema
	if db.DriverName() == DriverSQLite {
		queries = sqliteSchema
	}

	for _, query := range queries {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		product_id INTEGER PRIMARY KEY,
		product_name TEXT NOT NULL,
		category TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS prices (
		price_id SERIAL PRIMARY KEY,
		product_id INTEGER NOT NULL REFERENCES products(product_id) ON DELETE CASCADE,
		website TEXT NOT NULL,
		price DOUBLE PRECISION NOT NULL,
		website_link TEXT,
		recorded_date DATE NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS predictions (
		prediction_id SERIAL PRIMARY KEY,
		product_id INTEGER NOT NULL REFERENCES products(product_id) ON DELETE CASCADE,
		predicted_price DOUBLE PRECISION NOT NULL,
		predicted_date DATE NOT NULL,
		model_accuracy DOUBLE PRECISION,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_prices_product_date ON prices (product_id, recorded_date)`,
	`CREATE INDEX IF NOT EXISTS idx_predictions_product ON predictions (product_id, predicted_date)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		product_id INTEGER PRIMARY KEY,
		product_name TEXT NOT NULL,
		category TEXT,
		created_at TEXT DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS prices (
		price_id INTEGER PRIMARY KEY AUTOINCREMENT,
		product_id INTEGER NOT NULL REFERENCES products(product_id) ON DELETE CASCADE,
		website TEXT NOT NULL,
		price REAL NOT NULL,
		website_link TEXT,
		recorded_date TEXT NOT NULL,
		created_at TEXT DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS predictions (
		prediction_id INTEGER PRIMARY KEY AUTOINCREMENT,
		product_id INTEGER NOT NULL REFERENCES products(product_id) ON DELETE CASCADE,
		predicted_price REAL NOT NULL,
		predicted_date TEXT NOT NULL,
		model_accuracy REAL,
		created_at TEXT DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_prices_product_date ON prices (product_id, recorded_date)`,
	`CREATE INDEX IF NOT EXISTS idx_predictions_product ON predictions (product_id, predicted_date)`,
}
