package stores

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	httpclient "ecoscan-relay/internal/common/http"
)

const DefaultOverpassURL = "http://overpass-api.de/api/interpreter"

// OverpassSearcher queries OpenStreetMap through the Overpass API. It matches
// shop tags and names rather than categories, and returns no distance.
type OverpassSearcher struct {
	endpoint string
	client   *httpclient.Client
}

func NewOverpassSearcher(endpoint string, client *httpclient.Client) *OverpassSearcher {
	if endpoint == "" {
		endpoint = DefaultOverpassURL
	}
	return &OverpassSearcher{endpoint: endpoint, client: client}
}

func (s *OverpassSearcher) Name() string {
	return "overpass"
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat"`
	Lon    *float64          `json:"lon"`
	Center *overpassCenter   `json:"center"`
	Tags   map[string]string `json:"tags"`
}

type overpassCenter struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

func (s *OverpassSearcher) Search(ctx context.Context, q Query) ([]Candidate, error) {
	form := url.Values{}
	form.Set("data", BuildOverpassQuery(q))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build overpass request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("overpass request: %w", err)
	}
	body, err := httpclient.ReadSuccess(resp)
	if err != nil {
		return nil, fmt.Errorf("overpass: %w", err)
	}

	var parsed overpassResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode overpass response: %w", err)
	}

	out := make([]Candidate, 0, len(parsed.Elements))
	for _, el := range parsed.Elements {
		c := Candidate{
			Name:        el.Tags["name"],
			Street:      el.Tags["addr:street"],
			HouseNumber: el.Tags["addr:housenumber"],
			City:        el.Tags["addr:city"],
			Postcode:    el.Tags["addr:postcode"],
			Lat:         el.Lat,
			Lng:         el.Lon,
		}
		// ways and relations only carry a centre with "out center"
		if c.Lat == nil && el.Center != nil {
			c.Lat = el.Center.Lat
		}
		if c.Lng == nil && el.Center != nil {
			c.Lng = el.Center.Lon
		}
		out = append(out, c)
	}
	return out, nil
}

// BuildOverpassQuery unions second-hand and clothing shops with any element
// whose name or description mentions the keyword, all within the radius.
func BuildOverpassQuery(q Query) string {
	around := fmt.Sprintf("(around:%d,%s,%s)",
		q.RadiusMeters,
		strconv.FormatFloat(q.Center.Lat, 'f', -1, 64),
		strconv.FormatFloat(q.Center.Lng, 'f', -1, 64),
	)
	term := overpassRegexLiteral(q.Keyword)

	var b strings.Builder
	b.WriteString("[out:json][timeout:25];\n(\n")
	for _, filter := range []string{`["shop"="second_hand"]`, `["shop"="clothes"]`, `["second_hand"="yes"]`} {
		for _, kind := range []string{"node", "way", "relation"} {
			fmt.Fprintf(&b, "  %s%s%s;\n", kind, filter, around)
		}
	}
	if term != "" {
		for _, kind := range []string{"node", "way", "relation"} {
			fmt.Fprintf(&b, "  %s%s[~\"^(name|description)$\"~\"%s\",i];\n", kind, around, term)
		}
	}
	b.WriteString(");\nout center;\n")
	return b.String()
}

func overpassRegexLiteral(s string) string {
	s = regexp.QuoteMeta(strings.TrimSpace(s))
	return strings.ReplaceAll(s, `"`, `\"`)
}
