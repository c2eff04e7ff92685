package stores

import (
	"context"
	"math"
)

// MockSearcher returns a fixed set of stores placed around the query centre.
type MockSearcher struct{}

func NewMockSearcher() *MockSearcher {
	return &MockSearcher{}
}

func (m *MockSearcher) Name() string {
	return "mock"
}

type mockStore struct {
	name     string
	street   string
	number   string
	dLat     float64
	dLng     float64
	distance float64
	types    []string
}

var mockStores = []mockStore{
	{"Brechó Verde", "Rua das Flores", "120", 0.0030, 0.0025, 430, []string{"second_hand_store"}},
	{"EcoModa Boutique", "Avenida Central", "845", -0.0081, 0.0042, 1010, []string{"boutique", "clothing_store"}},
	{"Segunda Vida Vintage", "Rua do Comércio", "57", 0.0152, -0.0110, 2080, []string{"second_hand_store"}},
	{"Shopping Sustentável", "Avenida das Palmeiras", "1500", -0.0205, -0.0190, 3090, []string{"shopping_mall"}},
}

// Search is deterministic for a given query.
func (m *MockSearcher) Search(ctx context.Context, q Query) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]Candidate, 0, len(mockStores))
	for _, s := range mockStores {
		if s.distance > float64(q.RadiusMeters) || !hasCategory(s.types, q.Categories) {
			continue
		}
		lat := round6(q.Center.Lat + s.dLat)
		lng := round6(q.Center.Lng + s.dLng)
		distance := s.distance
		out = append(out, Candidate{
			Name:           s.name,
			Street:         s.street,
			HouseNumber:    s.number,
			DistanceMeters: &distance,
			Lat:            &lat,
			Lng:            &lng,
			Types:          s.types,
		})
	}
	return out, nil
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
