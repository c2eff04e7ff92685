package stores

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// ElasticsearchSearcher reads a curated partner-store index. Documents carry
// a geo_point "location" and a keyword "categories" field; the distance comes
// from the _geo_distance sort.
type ElasticsearchSearcher struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticsearchSearcher(client *elasticsearch.Client, index string) *ElasticsearchSearcher {
	return &ElasticsearchSearcher{client: client, index: index}
}

func (s *ElasticsearchSearcher) Name() string {
	return "elasticsearch"
}

type partnerStoreDoc struct {
	Name        string   `json:"name"`
	Address     string   `json:"address"`
	Street      string   `json:"street"`
	HouseNumber string   `json:"housenumber"`
	City        string   `json:"city"`
	Postcode    string   `json:"postcode"`
	Categories  []string `json:"categories"`
	Location    *struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"location"`
}

type esSearchResponse struct {
	Hits struct {
		Hits []struct {
			Source partnerStoreDoc `json:"_source"`
			Sort   []interface{}   `json:"sort"`
		} `json:"hits"`
	} `json:"hits"`
}

// BuildElasticsearchQuery filters by radius and category, boosts keyword
// matches and sorts nearest first.
func BuildElasticsearchQuery(q Query) map[string]interface{} {
	point := map[string]interface{}{"lat": q.Center.Lat, "lon": q.Center.Lng}

	filters := []interface{}{
		map[string]interface{}{
			"geo_distance": map[string]interface{}{
				"distance": fmt.Sprintf("%dm", q.RadiusMeters),
				"location": point,
			},
		},
	}
	if len(q.Categories) > 0 {
		filters = append(filters, map[string]interface{}{
			"terms": map[string]interface{}{"categories": q.Categories},
		})
	}

	boolQuery := map[string]interface{}{"filter": filters}
	if q.Keyword != "" {
		boolQuery["should"] = []interface{}{
			map[string]interface{}{
				"multi_match": map[string]interface{}{
					"query":  q.Keyword,
					"fields": []string{"name^2", "description"},
				},
			},
		}
	}

	return map[string]interface{}{
		"size":  q.MaxResults,
		"query": map[string]interface{}{"bool": boolQuery},
		"sort": []interface{}{
			map[string]interface{}{
				"_geo_distance": map[string]interface{}{
					"location": point,
					"order":    "asc",
					"unit":     "m",
				},
			},
		},
	}
}

func (s *ElasticsearchSearcher) Search(ctx context.Context, q Query) ([]Candidate, error) {
	body, err := json.Marshal(BuildElasticsearchQuery(q))
	if err != nil {
		return nil, fmt.Errorf("encode search body: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch search failed: %s", res.String())
	}

	var parsed esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode elasticsearch response: %w", err)
	}

	out := make([]Candidate, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		doc := hit.Source
		c := Candidate{
			Name:             doc.Name,
			FormattedAddress: doc.Address,
			Street:           doc.Street,
			HouseNumber:      doc.HouseNumber,
			City:             doc.City,
			Postcode:         doc.Postcode,
			Types:            doc.Categories,
		}
		if doc.Location != nil {
			lat, lng := doc.Location.Lat, doc.Location.Lon
			c.Lat, c.Lng = &lat, &lng
		}
		if len(hit.Sort) > 0 {
			if d, ok := hit.Sort[0].(float64); ok {
				c.DistanceMeters = &d
			}
		}
		out = append(out, c)
	}
	return out, nil
}
