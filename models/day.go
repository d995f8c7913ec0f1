package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used for storage and JSON
const DateLayout = "2006-01-02"

// Day is a calendar date without a time component
type Day struct {
	time.Time
}

// NewDay truncates t to its calendar date in UTC
func NewDay(t time.Time) Day {
	y, m, d := t.Date()
	return Day{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDay parses a YYYY-MM-DD date, also tolerating timestamp forms
func ParseDay(s string) (Day, error) {
	s = strings.TrimSpace(s)
	layouts := []string{DateLayout, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05Z", "2006-01-02 15:04:05-07:00"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDay(t), nil
		}
	}
	return Day{}, fmt.Errorf("invalid date %q", s)
}

// AddDays returns the date n days later
func (d Day) AddDays(n int) Day {
	return Day{d.Time.AddDate(0, 0, n)}
}

// DaysSince returns the whole number of days between other and d
func (d Day) DaysSince(other Day) int {
	return int(d.Time.Sub(other.Time).Hours() / 24)
}

func (d Day) String() string {
	return d.Time.Format(DateLayout)
}

// Scan implements sql.Scanner
func (d *Day) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*d = NewDay(v)
		return nil
	case string:
		parsed, err := ParseDay(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		return d.Scan(string(v))
	case nil:
		*d = Day{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Day", src)
	}
}

// Value implements driver.Valuer
func (d Day) Value() (driver.Value, error) {
	return d.String(), nil
}

func (d Day) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Day) UnmarshalJSON(b []byte) error {
	parsed, err := ParseDay(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
