package stores

import (
	"testing"

	"ecoscan-relay/internal/models"

	"github.com/stretchr/testify/assert"
)

func f64(v float64) *float64 { return &v }

func TestToPlace(t *testing.T) {
	tests := []struct {
		name string
		in   Candidate
		want models.Place
	}{
		{
			name: "all fallbacks",
			in:   Candidate{},
			want: models.Place{Name: NameUnavailable, Address: AddressUnavailable, Distance: DistanceUnavailable},
		},
		{
			name: "formatted address wins",
			in:   Candidate{Name: "Brechó", FormattedAddress: "Rua A, 1 - São Paulo", Street: "ignored"},
			want: models.Place{Name: "Brechó", Address: "Rua A, 1 - São Paulo", Distance: DistanceUnavailable},
		},
		{
			name: "assembled address skips empty parts",
			in:   Candidate{Name: " Loja ", Street: "Rua B", City: "Campinas", Postcode: "13000-000"},
			want: models.Place{Name: "Loja", Address: "Rua B, Campinas, 13000-000", Distance: DistanceUnavailable},
		},
		{
			name: "metres",
			in:   Candidate{Name: "x", DistanceMeters: f64(849.6), Lat: f64(1), Lng: f64(2)},
			want: models.Place{Name: "x", Address: AddressUnavailable, Distance: "850 m", Lat: f64(1), Lng: f64(2)},
		},
		{
			name: "kilometres",
			in:   Candidate{Name: "x", DistanceMeters: f64(1234)},
			want: models.Place{Name: "x", Address: AddressUnavailable, Distance: "1.2 km"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToPlace(tt.in))
		})
	}
}

func TestHasCategory(t *testing.T) {
	assert.True(t, hasCategory(nil, DefaultCategories))
	assert.True(t, hasCategory([]string{"store", "clothing_store"}, DefaultCategories))
	assert.False(t, hasCategory([]string{"restaurant"}, DefaultCategories))
	assert.True(t, hasCategory([]string{"restaurant"}, nil))
}
