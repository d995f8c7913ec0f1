package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchValidator(t *testing.T) {
	v := NewMatchValidator(0)
	assert.InDelta(t, DefaultMatchThreshold, v.Threshold(), 1e-9)

	cases := []struct {
		name  string
		query string
		title string
		want  bool
	}{
		{"accessory excluded for device query", "iPhone 15 case", "iPhone 15 Silicone Case", false},
		{"headphones accepted", "Sony WH-1000XM5", "Sony WH-1000XM5 Wireless Headphones", true},
		{"device listing accepted", "Samsung Galaxy A15", "Samsung Galaxy A15 5G (Blue Black, 8GB, 128GB)", true},
		{"cover rejected", "Samsung Galaxy A15", "Back Cover for Samsung Galaxy A15", false},
		{"unrelated rejected", "Dell XPS 13", "HP Pavilion 15 Laptop", false},
		{"partial overlap at threshold", "lenovo thinkpad e14 gen5 black", "Lenovo ThinkPad Notebook", true},
		{"empty query accepted", "", "Anything at all", true},
		{"only short and stop words", "a to the", "Anything at all", true},
		{"accessory ok for non-device query", "Sony WH-1000XM5", "Sony WH-1000XM5 carrying case", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, v.Matches(tc.title, tc.query))
		})
	}
}

func TestMatchValidatorCustomThreshold(t *testing.T) {
	strict := NewMatchValidator(1.0)
	assert.False(t, strict.Matches("Dell XPS Laptop", "Dell XPS 13 plus"))
	assert.True(t, strict.Matches("Dell XPS 13 Plus Laptop", "Dell XPS 13 plus"))
}

func TestQueryTokens(t *testing.T) {
	assert.Equal(t, []string{"iphone", "pro"}, queryTokens("The new iPhone 15 Pro"))
	assert.Empty(t, queryTokens("  "))
}
