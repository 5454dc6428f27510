package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{
	"id", "title", "address", "price", "bedrooms", "bathrooms", "sqft",
	"description", "amenities", "image_ids", "owner_name", "owner_avatar_id",
}

func newMockRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepositoryFromDB(sqlx.NewDb(db, "postgres")), mock
}

func TestPostgresRepository_ListProperties(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM properties`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`SELECT .* FROM properties ORDER BY id LIMIT \$1 OFFSET \$2`).
		WithArgs(1, 0).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			"a1", "Garden Flat", "1 Garden Row, Leeds", 1250.0, 1, 1, 600,
			"Ground floor flat with a private garden.",
			[]byte(`["Garden","Storage"]`), nil, "Ann", "owner-9",
		))

	props, total, err := repo.ListProperties(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, props, 1)
	assert.Equal(t, "a1", props[0].ID)
	assert.Equal(t, []string{"Garden", "Storage"}, []string(props[0].Amenities))
	assert.NotNil(t, props[0].ImageIDs)
	assert.Equal(t, "Ann", props[0].Owner.Name)
	assert.Equal(t, "owner-9", props[0].Owner.AvatarID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_GetProperty(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`SELECT .* FROM properties WHERE id = \$1`).
			WithArgs("a1").
			WillReturnRows(sqlmock.NewRows(columns).AddRow(
				"a1", "Garden Flat", "1 Garden Row, Leeds", 1250.0, 1, 1, 600,
				"Ground floor flat with a private garden.",
				`["Garden"]`, `["img-1"]`, nil, nil,
			))

		p, err := repo.GetProperty(context.Background(), "a1")
		require.NoError(t, err)
		assert.Equal(t, "Garden Flat", p.Title)
		assert.Equal(t, []string{"img-1"}, []string(p.ImageIDs))
		assert.Empty(t, p.Owner.Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`SELECT .* FROM properties WHERE id = \$1`).
			WithArgs("nope").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetProperty(context.Background(), "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("query error", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`SELECT .* FROM properties WHERE id = \$1`).
			WithArgs("a1").
			WillReturnError(sql.ErrConnDone)

		_, err := repo.GetProperty(context.Background(), "a1")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
	})
}
