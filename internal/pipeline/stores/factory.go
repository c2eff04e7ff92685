package stores

import (
	"fmt"

	"ecoscan-relay/internal/common/config"
	"ecoscan-relay/internal/common/database"
	httpclient "ecoscan-relay/internal/common/http"
)

// NewSearcher builds the provider selected by stores.provider. The returned
// close function releases any connection the provider opened.
func NewSearcher(cfg *config.Config) (Searcher, func() error, error) {
	noop := func() error { return nil }
	sc := cfg.Stores
	client := httpclient.NewClient(config.GetDuration(sc.Timeout))

	switch sc.Provider {
	case config.ProviderMock, "":
		return NewMockSearcher(), noop, nil

	case config.ProviderOverpass:
		return NewOverpassSearcher(sc.Overpass.URL, client), noop, nil

	case config.ProviderGoogle:
		return NewGooglePlacesSearcher(sc.Google.BaseURL, sc.Google.APIKey, client), noop, nil

	case config.ProviderElasticsearch:
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return nil, noop, err
		}
		return NewElasticsearchSearcher(es.Client, sc.Elasticsearch.Index), noop, nil

	case config.ProviderPostgres:
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return nil, noop, err
		}
		searcher, err := NewPostgresSearcher(pg, sc.Postgres.Table)
		if err != nil {
			pg.Close()
			return nil, noop, err
		}
		return searcher, pg.Close, nil

	default:
		return nil, noop, fmt.Errorf("unknown store provider %q", sc.Provider)
	}
}

// OptionsFrom maps the stores config section onto query options.
func OptionsFrom(sc config.StoresConfig) Options {
	return Options{
		RadiusMeters: sc.RadiusMeters,
		MaxResults:   sc.MaxResults,
		Language:     sc.Language,
	}
}
