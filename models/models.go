package models

import (
	"database/sql"
	"encoding/json"
)

// Product is a catalogue entry; its ID comes from the bootstrap data
type Product struct {
	ID       int            `json:"product_id" db:"product_id"`
	Name     string         `json:"product_name" db:"product_name"`
	Category sql.NullString `json:"-" db:"category"`
}

// GetCategory returns the category, or "" if NULL
func (p *Product) GetCategory() string {
	if p.Category.Valid {
		return p.Category.String
	}
	return ""
}

func (p Product) MarshalJSON() ([]byte, error) {
	type alias Product
	return json.Marshal(struct {
		alias
		Category string `json:"category"`
	}{alias(p), p.GetCategory()})
}

// PriceRecord is one observed price of a product on a site. Append-only.
type PriceRecord struct {
	ID        int            `json:"price_id" db:"price_id"`
	ProductID int            `json:"product_id" db:"product_id"`
	Website   string         `json:"website" db:"website"`
	Price     float64        `json:"price" db:"price"`
	Link      sql.NullString `json:"-" db:"website_link"`
	Date      Day            `json:"recorded_date" db:"recorded_date"`
}

// GetLink returns the listing link, or "" if NULL
func (r *PriceRecord) GetLink() string {
	if r.Link.Valid {
		return r.Link.String
	}
	return ""
}

func (r PriceRecord) MarshalJSON() ([]byte, error) {
	type alias PriceRecord
	return json.Marshal(struct {
		alias
		Link string `json:"website_link"`
	}{alias(r), r.GetLink()})
}

// PredictionRecord is the persisted output of one forecast. Never mutated.
type PredictionRecord struct {
	ID             int     `json:"prediction_id" db:"prediction_id"`
	ProductID      int     `json:"product_id" db:"product_id"`
	PredictedPrice float64 `json:"predicted_price" db:"predicted_price"`
	PredictedDate  Day     `json:"predicted_date" db:"predicted_date"`
	ModelAccuracy  float64 `json:"model_accuracy" db:"model_accuracy"`
}

// NullString wraps a string, treating "" as NULL
func NullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
