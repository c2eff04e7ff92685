package stores

import (
	"context"
	"errors"
	"testing"

	"ecoscan-relay/internal/common/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var partnerColumns = []string{
	"name", "address", "street", "housenumber", "city", "postcode",
	"lat", "lng", "categories", "distance_m",
}

func TestPostgresSearcher_Search(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows(partnerColumns).
		AddRow("Brechó Estação", "Rua Teodoro Sampaio, 900", nil, nil, nil, nil, -23.561, -46.682, "{second_hand_store}", 640.2).
		AddRow(nil, nil, "Rua Cardeal Arcoverde", "1200", "São Paulo", nil, -23.563, -46.684, "{boutique,clothing_store}", 2500.0)
	mock.ExpectQuery(`FROM partner_stores`).
		WithArgs(center.Lat, center.Lng, 5000, sqlmock.AnyArg(), "brechó jeans", 10).
		WillReturnRows(rows)

	s, err := NewPostgresSearcher(database.NewPostgresFromDB(db), "partner_stores")
	require.NoError(t, err)

	candidates, err := s.Search(context.Background(), BuildQuery("calça jeans", center, Options{}))
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	first := ToPlace(candidates[0])
	assert.Equal(t, "Brechó Estação", first.Name)
	assert.Equal(t, "Rua Teodoro Sampaio, 900", first.Address)
	assert.Equal(t, "640 m", first.Distance)
	assert.Equal(t, []string{"second_hand_store"}, candidates[0].Types)

	second := ToPlace(candidates[1])
	assert.Equal(t, NameUnavailable, second.Name)
	assert.Equal(t, "Rua Cardeal Arcoverde, 1200, São Paulo", second.Address)
	assert.Equal(t, "2.5 km", second.Distance)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSearcher_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM partner_stores`).WillReturnError(errors.New("relation does not exist"))

	s, err := NewPostgresSearcher(database.NewPostgresFromDB(db), "partner_stores")
	require.NoError(t, err)

	_, err = s.Search(context.Background(), BuildQuery("camiseta", center, Options{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relation does not exist")
}

func TestNewPostgresSearcher_RejectsTableName(t *testing.T) {
	for _, table := range []string{"", "stores; DROP TABLE x", "1stores", "a.b.c"} {
		_, err := NewPostgresSearcher(nil, table)
		assert.Error(t, err, table)
	}
	_, err := NewPostgresSearcher(nil, "public.partner_stores")
	assert.NoError(t, err)
}
