package scraper

import (
	"strings"
	"unicode"
)

// DefaultMatchThreshold is the share of query tokens a title must contain
const DefaultMatchThreshold = 0.4

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true,
	"new": true, "buy": true, "online": true, "best": true,
}

// brand and device words that mark a query as being for the device itself
var mainProductKeywords = map[string]bool{
	"iphone": true, "ipad": true, "macbook": true, "samsung": true, "galaxy": true,
	"pixel": true, "oneplus": true, "redmi": true, "xiaomi": true, "realme": true,
	"vivo": true, "oppo": true, "nokia": true, "motorola": true, "poco": true,
	"laptop": true, "thinkpad": true, "xps": true, "ideapad": true, "vivobook": true,
	"phone": true, "mobile": true, "smartphone": true, "watch": true, "tablet": true,
}

var accessoryKeywords = map[string]bool{
	"case": true, "cover": true, "covers": true, "cases": true, "charger": true,
	"cable": true, "strap": true, "protector": true, "tempered": true, "guard": true,
	"skin": true, "adapter": true, "holder": true, "stand": true, "pouch": true,
	"sleeve": true, "mount": true, "stylus": true, "film": true, "bumper": true,
}

// MatchValidator decides whether a listing title is the product a query asked for
type MatchValidator struct {
	threshold float64
}

// NewMatchValidator creates a validator; a non-positive threshold selects the default
func NewMatchValidator(threshold float64) *MatchValidator {
	if threshold <= 0 {
		threshold = DefaultMatchThreshold
	}
	return &MatchValidator{threshold: threshold}
}

// Threshold returns the overlap ratio required for a match
func (v *MatchValidator) Threshold() float64 {
	return v.threshold
}

// Matches reports whether title is an acceptable result for query.
// Device queries never match accessory listings, whatever the overlap.
func (v *MatchValidator) Matches(title, query string) bool {
	tokens := queryTokens(query)
	if len(tokens) == 0 {
		return true
	}

	lowerTitle := strings.ToLower(title)
	if containsWord(strings.ToLower(query), mainProductKeywords) && containsWord(lowerTitle, accessoryKeywords) {
		return false
	}

	hits := 0
	for _, tok := range tokens {
		if strings.Contains(lowerTitle, tok) {
			hits++
		}
	}
	return float64(hits)/float64(len(tokens)) >= v.threshold
}

func queryTokens(query string) []string {
	var tokens []string
	for _, word := range strings.Fields(strings.ToLower(query)) {
		if len([]rune(word)) > 2 && !stopwords[word] {
			tokens = append(tokens, word)
		}
	}
	return tokens
}

func containsWord(lower string, set map[string]bool) bool {
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if set[w] {
			return true
		}
	}
	return false
}
