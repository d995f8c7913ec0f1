// Package csvimport loads the bootstrap product/price CSV into the database.
package csvimport

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"pricewise/models"
	"pricewise/repository"
)

// Columns lists the recognised header names. website_link is optional.
var Columns = []string{"product_id", "product_name", "category", "website", "price", "date", "website_link"}

var required = []string{"product_id", "product_name", "website", "price", "date"}

// Row is one line of the bootstrap file
type Row struct {
	Product models.Product
	Price   models.PriceRecord
}

// RowError reports a malformed line
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Load parses the CSV. Columns are located by header name, so their order
// does not matter.
func Load(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty csv")
		}
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("csv is missing column %q", col)
		}
	}

	field := func(rec []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var rows []Row
	line := 1
	for {
		rec, err := reader.Read()
		line++
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &RowError{Line: line, Err: err}
		}

		id, err := strconv.Atoi(field(rec, "product_id"))
		if err != nil {
			return nil, &RowError{Line: line, Err: fmt.Errorf("bad product_id: %w", err)}
		}
		price, err := strconv.ParseFloat(field(rec, "price"), 64)
		if err != nil {
			return nil, &RowError{Line: line, Err: fmt.Errorf("bad price: %w", err)}
		}
		date, err := models.ParseDay(field(rec, "date"))
		if err != nil {
			return nil, &RowError{Line: line, Err: err}
		}
		name := field(rec, "product_name")
		if name == "" {
			return nil, &RowError{Line: line, Err: errors.New("empty product_name")}
		}

		rows = append(rows, Row{
			Product: models.Product{
				ID:       id,
				Name:     name,
				Category: models.NullString(field(rec, "category")),
			},
			Price: models.PriceRecord{
				ProductID: id,
				Website:   field(rec, "website"),
				Price:     price,
				Link:      models.NullString(field(rec, "website_link")),
				Date:      date,
			},
		})
	}
	return rows, nil
}

// Summary counts what an import wrote
type Summary struct {
	Products int `json:"products"`
	Prices   int `json:"prices"`
}

type Importer struct {
	products *repository.ProductRepository
	prices   *repository.PriceRepository
}

func NewImporter(products *repository.ProductRepository, prices *repository.PriceRepository) *Importer {
	return &Importer{products: products, prices: prices}
}

// Import upserts each distinct product once and appends every price
func (im *Importer) Import(ctx context.Context, rows []Row) (Summary, error) {
	var sum Summary
	seen := make(map[int]bool)
	for _, row := range rows {
		if !seen[row.Product.ID] {
			if err := im.products.UpsertProduct(ctx, row.Product); err != nil {
				return sum, err
			}
			seen[row.Product.ID] = true
			sum.Products++
		}
		if _, err := im.prices.AddPrice(ctx, row.Price); err != nil {
			return sum, err
		}
		sum.Prices++
	}
	return sum, nil
}

// ImportFile loads and imports the CSV at path
func (im *Importer) ImportFile(ctx context.Context, path string) (Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to open csv: %w", err)
	}
	defer f.Close()

	rows, err := Load(f)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return im.Import(ctx, rows)
}

// Bootstrap imports path only when it exists and no prices are stored yet.
// It reports whether an import happened.
func (im *Importer) Bootstrap(ctx context.Context, path string) (bool, error) {
	if path == "" {
		return false, nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Info("no bootstrap csv found, skipping import", "path", path)
			return false, nil
		}
		return false, err
	}

	n, err := im.prices.CountPrices(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		slog.Debug("prices already present, skipping bootstrap import", "count", n)
		return false, nil
	}

	sum, err := im.ImportFile(ctx, path)
	if err != nil {
		return false, err
	}
	slog.Info("bootstrap data imported", "path", path, "products", sum.Products, "prices", sum.Prices)
	return true, nil
}
