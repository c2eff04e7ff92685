package stores

import (
	"testing"

	"ecoscan-relay/internal/models"
	"ecoscan-relay/internal/pipeline/vision"

	"github.com/stretchr/testify/assert"
)

func TestBuildQuery(t *testing.T) {
	center := models.Location{Lat: -23.55, Lng: -46.63}

	q := BuildQuery("camiseta azul", center, Options{})
	assert.Equal(t, "sustainable clothing store or second-hand shop selling camiseta azul", q.Text)
	assert.Equal(t, "brechó", q.Keyword)
	assert.Equal(t, center, q.Center)
	assert.Equal(t, 5000, q.RadiusMeters)
	assert.Equal(t, 10, q.MaxResults)
	assert.Equal(t, DefaultCategories, q.Categories)
	assert.Equal(t, DefaultLanguage, q.Language)

	q = BuildQuery(vision.MessageNotClothing, center, Options{RadiusMeters: 2000, MaxResults: 3, Language: "en"})
	assert.Equal(t, "sustainable clothing store or second-hand shop", q.Text)
	assert.Equal(t, "brechó", q.Keyword)
	assert.Equal(t, 2000, q.RadiusMeters)
	assert.Equal(t, 3, q.MaxResults)
	assert.Equal(t, "en", q.Language)
}

func TestKeyword(t *testing.T) {
	tests := map[string]string{
		"calça jeans preta":   "brechó jeans",
		"roupa de moda praia": "roupa sustentável",
		"vestuário infantil":  "roupa sustentável",
		"camiseta azul":       "brechó",
		vision.MessageUnclear: "brechó",
	}
	for in, want := range tests {
		assert.Equal(t, want, Keyword(in), in)
	}
}
