package scraper

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// LocaleParser turns listing price text into a number. It understands rupee
// notation (₹1,23,999 and Rs. 16,999.00) as well as $/£/€ prices.
type LocaleParser struct {
	currency *regexp.Regexp
	number   *regexp.Regexp
}

// NewLocaleParser creates a new locale-aware parser
func NewLocaleParser() *LocaleParser {
	return &LocaleParser{
		currency: regexp.MustCompile(`(?i)(₹|rs\.?|inr|\$|£|€)`),
		// grouping may be western (1,234,567) or Indian (12,34,567); a sign is
		// kept so negative amounts are rejected rather than flipped
		number: regexp.MustCompile(`-?[0-9][0-9,]*(?:\.[0-9]+)?`),
	}
}

// ParsePrice extracts the first positive amount in text
func (lp *LocaleParser) ParsePrice(text string) (decimal.Decimal, error) {
	cleaned := lp.currency.ReplaceAllString(strings.TrimSpace(text), "")
	cleaned = strings.ReplaceAll(cleaned, "\u00a0", " ")

	match := lp.number.FindString(cleaned)
	if match == "" {
		return decimal.Zero, fmt.Errorf("no valid price pattern found in: %q", text)
	}

	value, err := decimal.NewFromString(strings.ReplaceAll(match, ",", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse price %q: %w", match, err)
	}
	if !value.IsPositive() {
		return decimal.Zero, fmt.Errorf("price must be positive, got %s", value)
	}
	return value, nil
}

// JoinWholeFraction assembles a price split across whole and fraction elements
// ("16,999." and "00").
func (lp *LocaleParser) JoinWholeFraction(whole, fraction string) string {
	whole = strings.TrimSuffix(strings.TrimSpace(whole), ".")
	fraction = strings.TrimSpace(fraction)
	if fraction == "" {
		return whole
	}
	return whole + "." + fraction
}
