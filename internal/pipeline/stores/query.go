package stores

import (
	"fmt"
	"strings"

	"ecoscan-relay/internal/models"
	"ecoscan-relay/internal/pipeline/vision"
)

const (
	DefaultRadiusMeters = 5000
	DefaultMaxResults   = 10
	DefaultLanguage     = "pt-BR"
)

// DefaultCategories are the place categories relevant to second-hand and
// sustainable clothing.
var DefaultCategories = []string{
	"clothing_store",
	"second_hand_store",
	"boutique",
	"department_store",
	"shopping_mall",
}

// Query is the provider-neutral search request.
type Query struct {
	// Text is a free-text query for providers with text search.
	Text string
	// Keyword is a short term for providers that match names and tags.
	Keyword      string
	Center       models.Location
	RadiusMeters int
	Categories   []string
	MaxResults   int
	Language     string
}

// Options carries the configured query bounds.
type Options struct {
	RadiusMeters int
	MaxResults   int
	Language     string
	Categories   []string
}

func (o Options) withDefaults() Options {
	if o.RadiusMeters <= 0 {
		o.RadiusMeters = DefaultRadiusMeters
	}
	if o.MaxResults <= 0 {
		o.MaxResults = DefaultMaxResults
	}
	if o.Language == "" {
		o.Language = DefaultLanguage
	}
	if len(o.Categories) == 0 {
		o.Categories = DefaultCategories
	}
	return o
}

// BuildQuery derives the search from the garment description. A sentinel
// description gives a generic query without the garment clause.
func BuildQuery(description string, center models.Location, opts Options) Query {
	opts = opts.withDefaults()
	return Query{
		Text:         searchText(description),
		Keyword:      Keyword(description),
		Center:       center,
		RadiusMeters: opts.RadiusMeters,
		Categories:   opts.Categories,
		MaxResults:   opts.MaxResults,
		Language:     opts.Language,
	}
}

func identified(description string) bool {
	return strings.TrimSpace(description) != "" && !vision.IsSentinel(description)
}

func searchText(description string) string {
	const base = "sustainable clothing store or second-hand shop"
	if !identified(description) {
		return base
	}
	return fmt.Sprintf("%s selling %s", base, strings.TrimSpace(description))
}

// Keyword refines the thrift-shop term for generic clothing words and jeans.
func Keyword(description string) string {
	if !identified(description) {
		return "brechó"
	}
	lower := strings.ToLower(description)
	switch {
	case strings.Contains(lower, "roupa"),
		strings.Contains(lower, "vestuário"),
		strings.Contains(lower, "moda"):
		return "roupa sustentável"
	case strings.Contains(lower, "jeans"):
		return "brechó jeans"
	default:
		return "brechó"
	}
}
