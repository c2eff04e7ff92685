package models

// Location is the caller's position in decimal degrees.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// AnalysisRequest is the validated form of the two inbound fields.
type AnalysisRequest struct {
	Image    []byte
	MIMEType string
	Location Location
}

// Place is one nearby store. Lat/Lng are omitted when the provider did not
// return coordinates.
type Place struct {
	Name     string   `json:"name"`
	Address  string   `json:"address"`
	Distance string   `json:"distance"`
	Lat      *float64 `json:"lat,omitempty"`
	Lng      *float64 `json:"lng,omitempty"`
}

// AnalysisResponse is the body of a successful analysis.
type AnalysisResponse struct {
	IdentifiedClothing    string  `json:"identifiedClothing"`
	SustainableSuggestion string  `json:"sustainableSuggestion"`
	NearbyStores          []Place `json:"nearbyStores"`
}

// ToVariables renders the response as process variables for the job worker.
func (r *AnalysisResponse) ToVariables() map[string]interface{} {
	stores := make([]map[string]interface{}, 0, len(r.NearbyStores))
	for _, p := range r.NearbyStores {
		store := map[string]interface{}{
			"name":     p.Name,
			"address":  p.Address,
			"distance": p.Distance,
		}
		if p.Lat != nil {
			store["lat"] = *p.Lat
		}
		if p.Lng != nil {
			store["lng"] = *p.Lng
		}
		stores = append(stores, store)
	}
	return map[string]interface{}{
		"identifiedClothing":    r.IdentifiedClothing,
		"sustainableSuggestion": r.SustainableSuggestion,
		"nearbyStores":          stores,
	}
}

// Float64Ptr is a helper for optional coordinates.
func Float64Ptr(v float64) *float64 {
	return &v
}
