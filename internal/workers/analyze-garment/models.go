// internal/workers/analyze-garment/models.go
package analyzegarment

import "encoding/json"

type Input struct {
	ImageDataURL string `json:"imageDataUrl"`
	// UserLocation is either a JSON-encoded string or the location object.
	UserLocation json.RawMessage `json:"userLocation"`
}

// LocationText returns the location in the same textual form the HTTP
// form field carries.
func (i *Input) LocationText() string {
	var s string
	if err := json.Unmarshal(i.UserLocation, &s); err == nil {
		return s
	}
	return string(i.UserLocation)
}
