package stores

import (
	"fmt"
	"math"
	"strings"

	"ecoscan-relay/internal/models"
)

const (
	NameUnavailable     = "name unavailable"
	AddressUnavailable  = "address unavailable"
	DistanceUnavailable = "not available"
)

// Candidate is one raw upstream record before normalisation. Providers fill
// what they have.
type Candidate struct {
	Name             string
	FormattedAddress string

	Street      string
	HouseNumber string
	City        string
	Postcode    string

	// DistanceMeters is set only when the upstream computed it.
	DistanceMeters *float64
	Lat            *float64
	Lng            *float64
	Types          []string
}

// ToPlace maps a candidate onto the fixed response shape.
func ToPlace(c Candidate) models.Place {
	p := models.Place{
		Name:     strings.TrimSpace(c.Name),
		Address:  address(c),
		Distance: formatDistance(c.DistanceMeters),
		Lat:      c.Lat,
		Lng:      c.Lng,
	}
	if p.Name == "" {
		p.Name = NameUnavailable
	}
	return p
}

func address(c Candidate) string {
	if a := strings.TrimSpace(c.FormattedAddress); a != "" {
		return a
	}
	var parts []string
	for _, part := range []string{c.Street, c.HouseNumber, c.City, c.Postcode} {
		if s := strings.TrimSpace(part); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return AddressUnavailable
	}
	return strings.Join(parts, ", ")
}

func formatDistance(meters *float64) string {
	if meters == nil || math.IsNaN(*meters) || *meters < 0 {
		return DistanceUnavailable
	}
	if *meters < 1000 {
		return fmt.Sprintf("%d m", int(math.Round(*meters)))
	}
	return fmt.Sprintf("%.1f km", *meters/1000)
}

// hasCategory reports whether any of types is in categories. Candidates
// without types are kept.
func hasCategory(types, categories []string) bool {
	if len(types) == 0 || len(categories) == 0 {
		return true
	}
	for _, t := range types {
		for _, c := range categories {
			if t == c {
				return true
			}
		}
	}
	return false
}
