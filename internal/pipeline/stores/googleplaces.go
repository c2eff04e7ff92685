package stores

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	httpclient "ecoscan-relay/internal/common/http"
)

const (
	DefaultPlacesBaseURL = "https://places.googleapis.com"

	placesFieldMask = "places.displayName,places.formattedAddress,places.location,places.types"
)

var ErrPlacesKeyMissing = stderrors.New("google places API key is not configured")

// GooglePlacesSearcher uses the Places API (New) text search with a circular
// location bias. Category filtering happens on the returned types.
type GooglePlacesSearcher struct {
	baseURL string
	apiKey  string
	client  *httpclient.Client
}

func NewGooglePlacesSearcher(baseURL, apiKey string, client *httpclient.Client) *GooglePlacesSearcher {
	if baseURL == "" {
		baseURL = DefaultPlacesBaseURL
	}
	return &GooglePlacesSearcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
	}
}

func (s *GooglePlacesSearcher) Name() string {
	return "google"
}

type placesRequest struct {
	TextQuery      string             `json:"textQuery"`
	LanguageCode   string             `json:"languageCode,omitempty"`
	MaxResultCount int                `json:"maxResultCount,omitempty"`
	LocationBias   placesLocationBias `json:"locationBias"`
}

type placesLocationBias struct {
	Circle placesCircle `json:"circle"`
}

type placesCircle struct {
	Center placesLatLng `json:"center"`
	Radius float64      `json:"radius"`
}

type placesLatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type placesResponse struct {
	Places []struct {
		DisplayName *struct {
			Text string `json:"text"`
		} `json:"displayName"`
		FormattedAddress string        `json:"formattedAddress"`
		Location         *placesLatLng `json:"location"`
		Types            []string      `json:"types"`
	} `json:"places"`
}

type placesErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (s *GooglePlacesSearcher) Search(ctx context.Context, q Query) ([]Candidate, error) {
	if s.apiKey == "" {
		return nil, ErrPlacesKeyMissing
	}

	payload, err := json.Marshal(placesRequest{
		TextQuery:      q.Text,
		LanguageCode:   q.Language,
		MaxResultCount: q.MaxResults,
		LocationBias: placesLocationBias{Circle: placesCircle{
			Center: placesLatLng{Latitude: q.Center.Lat, Longitude: q.Center.Lng},
			Radius: float64(q.RadiusMeters),
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("encode places request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/places:searchText", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build places request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", s.apiKey)
	req.Header.Set("X-Goog-FieldMask", placesFieldMask)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("places request: %w", err)
	}
	body, err := httpclient.ReadSuccess(resp)
	if err != nil {
		return nil, describePlacesError(err)
	}

	var parsed placesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode places response: %w", err)
	}

	out := make([]Candidate, 0, len(parsed.Places))
	for _, p := range parsed.Places {
		if !hasCategory(p.Types, q.Categories) {
			continue
		}
		c := Candidate{
			FormattedAddress: p.FormattedAddress,
			Types:            p.Types,
		}
		if p.DisplayName != nil {
			c.Name = p.DisplayName.Text
		}
		if p.Location != nil {
			lat, lng := p.Location.Latitude, p.Location.Longitude
			c.Lat, c.Lng = &lat, &lng
		}
		out = append(out, c)
	}
	return out, nil
}

// describePlacesError surfaces the API's status and message when the error
// body has the usual Google shape.
func describePlacesError(err error) error {
	var statusErr *httpclient.StatusError
	if !stderrors.As(err, &statusErr) {
		return fmt.Errorf("places: %w", err)
	}
	var body placesErrorBody
	if json.Unmarshal([]byte(statusErr.Body), &body) == nil && body.Error.Status != "" {
		return fmt.Errorf("places: %s: %s: %w", body.Error.Status, body.Error.Message, err)
	}
	return fmt.Errorf("places: %w", err)
}
