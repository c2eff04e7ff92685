package stores

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/lib/pq"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Querier is satisfied by *database.PostgresClient.
type Querier interface {
	Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// PostgresSearcher reads a curated partner-store table. The great-circle
// distance is computed by the database, which also applies the radius.
type PostgresSearcher struct {
	db    Querier
	query string
}

func NewPostgresSearcher(db Querier, table string) (*PostgresSearcher, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid partner store table name %q", table)
	}
	return &PostgresSearcher{db: db, query: fmt.Sprintf(partnerStoresQuery, table)}, nil
}

func (s *PostgresSearcher) Name() string {
	return "postgres"
}

// $1 lat, $2 lng, $3 radius in metres, $4 categories, $5 keyword, $6 limit.
const partnerStoresQuery = `
SELECT name, address, street, housenumber, city, postcode, lat, lng, categories, distance_m
FROM (
	SELECT name, address, street, housenumber, city, postcode, lat, lng, categories,
		6371000 * 2 * ASIN(SQRT(
			POWER(SIN(RADIANS(lat - $1) / 2), 2) +
			COS(RADIANS($1)) * COS(RADIANS(lat)) * POWER(SIN(RADIANS(lng - $2) / 2), 2)
		)) AS distance_m
	FROM %s
	WHERE cardinality($4::text[]) = 0 OR categories && $4::text[]
) AS nearby
WHERE distance_m <= $3
ORDER BY (name ILIKE '%%' || $5 || '%%') DESC, distance_m ASC
LIMIT $6`

func (s *PostgresSearcher) Search(ctx context.Context, q Query) ([]Candidate, error) {
	rows, err := s.db.Query(ctx, s.query,
		q.Center.Lat, q.Center.Lng, q.RadiusMeters, pq.Array(q.Categories), q.Keyword, q.MaxResults)
	if err != nil {
		return nil, fmt.Errorf("query partner stores: %w", err)
	}
	defer rows.Close()

	var out []Candidate
	for rows.Next() {
		var (
			name, address, street, number, city, postcode sql.NullString
			lat, lng, distance                            float64
			categories                                    []string
		)
		if err := rows.Scan(&name, &address, &street, &number, &city, &postcode,
			&lat, &lng, pq.Array(&categories), &distance); err != nil {
			return nil, fmt.Errorf("scan partner store: %w", err)
		}
		out = append(out, Candidate{
			Name:             name.String,
			FormattedAddress: address.String,
			Street:           street.String,
			HouseNumber:      number.String,
			City:             city.String,
			Postcode:         postcode.String,
			DistanceMeters:   &distance,
			Lat:              &lat,
			Lng:              &lng,
			Types:            categories,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate partner stores: %w", err)
	}
	return out, nil
}
