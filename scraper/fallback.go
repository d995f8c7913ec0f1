package scraper

import (
	"math/rand"
	"sort"
	"strings"
	"sync"
)

// Estimate is a synthesized price for a query nobody could answer
type Estimate struct {
	Title string
	Price float64
	// Jittered is false when the price came straight from the catalogue
	Jittered bool
}

type catalogueEntry struct {
	Name  string
	Price float64
}

// known products and brands with typical retail prices in rupees
var fallbackCatalogue = map[string]catalogueEntry{
	"samsung galaxy a15":     {"Samsung Galaxy A15", 16999},
	"iphone 15":              {"iPhone 15", 79999},
	"oneplus 12":             {"OnePlus 12", 64999},
	"google pixel 8":         {"Google Pixel 8", 69999},
	"sony wh-1000xm5":        {"Sony WH-1000XM5", 24990},
	"apple airpods pro":      {"Apple AirPods Pro", 27900},
	"dell xps 13":            {"Dell XPS 13", 99999},
	"lenovo thinkpad e14":    {"Lenovo ThinkPad E14", 54999},
	"apple watch series 9":   {"Apple Watch Series 9", 42900},
	"samsung galaxy watch 6": {"Samsung Galaxy Watch 6", 24999},
	"iphone":                 {"Apple iPhone", 69999},
	"samsung":                {"Samsung Smartphone", 19999},
	"oneplus":                {"OnePlus Smartphone", 39999},
	"pixel":                  {"Google Pixel", 59999},
	"airpods":                {"Apple AirPods", 14900},
	"macbook":                {"Apple MacBook Air", 114900},
}

// JitterRange bounds the random offset added to a bucket base price
type JitterRange struct {
	Min, Max int
}

type bucket struct {
	name     string
	keywords []string
	title    string
	base     float64
	jitter   JitterRange
}

var categoryBuckets = []bucket{
	{
		name:     "laptop",
		keywords: []string{"laptop", "notebook", "macbook", "thinkpad", "ideapad", "vivobook", "chromebook"},
		title:    "Laptop",
		base:     54999,
		jitter:   JitterRange{-3000, 6000},
	},
	{
		name:     "wearable",
		keywords: []string{"watch", "band", "earbuds", "headphone", "headphones", "earphones", "airpods", "buds"},
		title:    "Wearable",
		base:     4999,
		jitter:   JitterRange{-500, 1500},
	},
	{
		name:     "phone",
		keywords: []string{"phone", "mobile", "smartphone", "iphone", "galaxy", "pixel", "redmi", "realme", "5g"},
		title:    "Smartphone",
		base:     19999,
		jitter:   JitterRange{-1000, 3000},
	},
}

// DefaultBase and DefaultJitter apply to queries matching no category
var (
	DefaultBase   = 15000.0
	DefaultJitter = JitterRange{-5000, 10000}
)

// Synthesizer produces estimated prices from a keyword catalogue
type Synthesizer struct {
	mu   sync.Mutex
	rng  *rand.Rand
	keys []string // catalogue keys, longest first
}

// NewSynthesizer creates a synthesizer drawing jitter from rng
func NewSynthesizer(rng *rand.Rand) *Synthesizer {
	keys := make([]string, 0, len(fallbackCatalogue))
	for k := range fallbackCatalogue {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return &Synthesizer{rng: rng, keys: keys}
}

// Estimate returns a price for query. Catalogue hits are exact; everything
// else is a category base price plus bounded jitter.
func (s *Synthesizer) Estimate(query string) Estimate {
	q := strings.ToLower(strings.TrimSpace(query))

	if entry, ok := fallbackCatalogue[q]; ok {
		return Estimate{Title: entry.Name, Price: entry.Price}
	}

	for _, key := range s.keys {
		if strings.Contains(q, key) {
			entry := fallbackCatalogue[key]
			return Estimate{Title: entry.Name, Price: entry.Price}
		}
	}

	words := strings.Fields(q)
	for _, b := range categoryBuckets {
		if hasAny(words, b.keywords) {
			return Estimate{Title: titleFor(query, b.title), Price: b.base + s.jitter(b.jitter), Jittered: true}
		}
	}

	return Estimate{Title: titleFor(query, "Product"), Price: DefaultBase + s.jitter(DefaultJitter), Jittered: true}
}

// jitter returns a uniform integer offset in [r.Min, r.Max]
func (s *Synthesizer) jitter(r JitterRange) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return float64(r.Min + s.rng.Intn(r.Max-r.Min+1))
}

func hasAny(words, keywords []string) bool {
	for _, w := range words {
		for _, kw := range keywords {
			if w == kw {
				return true
			}
		}
	}
	return false
}

func titleFor(query, fallback string) string {
	if q := strings.TrimSpace(query); q != "" {
		return q
	}
	return fallback
}
