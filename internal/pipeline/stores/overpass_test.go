package stores

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpclient "ecoscan-relay/internal/common/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const overpassBody = `{
  "elements": [
    {"type": "node", "id": 1, "lat": -23.551, "lon": -46.632,
     "tags": {"name": "Brechó da Vila", "shop": "second_hand", "addr:street": "Rua Augusta", "addr:housenumber": "100", "addr:city": "São Paulo", "addr:postcode": "01305-000"}},
    {"type": "way", "id": 2, "center": {"lat": -23.56, "lon": -46.64},
     "tags": {"shop": "clothes"}}
  ]
}`

func TestOverpassSearcher_Search(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, r.ParseForm())
		gotQuery = r.PostForm.Get("data")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(overpassBody))
	}))
	defer server.Close()

	s := NewOverpassSearcher(server.URL, httpclient.NewClient(time.Second))
	q := BuildQuery("calça jeans", center, Options{})

	got, err := s.Search(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, got, 2)

	p := ToPlace(got[0])
	assert.Equal(t, "Brechó da Vila", p.Name)
	assert.Equal(t, "Rua Augusta, 100, São Paulo, 01305-000", p.Address)
	assert.Equal(t, DistanceUnavailable, p.Distance)
	assert.InDelta(t, -23.551, *p.Lat, 1e-9)

	way := ToPlace(got[1])
	assert.Equal(t, NameUnavailable, way.Name)
	assert.Equal(t, AddressUnavailable, way.Address)
	require.NotNil(t, way.Lat)
	assert.InDelta(t, -23.56, *way.Lat, 1e-9)
	assert.InDelta(t, -46.64, *way.Lng, 1e-9)

	assert.Contains(t, gotQuery, `node["shop"="second_hand"](around:5000,-23.55,-46.63);`)
	assert.Contains(t, gotQuery, `relation["second_hand"="yes"](around:5000,-23.55,-46.63);`)
	assert.Contains(t, gotQuery, `brechó jeans`)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(gotQuery), "out center;"))
}

func TestOverpassSearcher_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>rate limited</html>"))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			s := NewOverpassSearcher(server.URL, httpclient.NewClient(time.Second))
			_, err := s.Search(context.Background(), BuildQuery("camiseta", center, Options{}))
			assert.Error(t, err)
		})
	}
}

func TestBuildOverpassQuery_EscapesKeyword(t *testing.T) {
	q := BuildOverpassQuery(Query{Keyword: `a"b.c`, Center: center, RadiusMeters: 100})
	assert.Contains(t, q, `a\"b\.c`)
}
