package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"rentals/internal/model"
)

const propertyColumns = `
	id, title, address, price, bedrooms, bathrooms, sqft,
	description, amenities, image_ids, owner_name, owner_avatar_id`

// propertyRow is the flat shape of a properties row.
type propertyRow struct {
	ID            string          `db:"id"`
	Title         string          `db:"title"`
	Address       string          `db:"address"`
	Price         float64         `db:"price"`
	Bedrooms      int             `db:"bedrooms"`
	Bathrooms     int             `db:"bathrooms"`
	Sqft          int             `db:"sqft"`
	Description   string          `db:"description"`
	Amenities     model.JSONArray `db:"amenities"`
	ImageIDs      model.JSONArray `db:"image_ids"`
	OwnerName     sql.NullString  `db:"owner_name"`
	OwnerAvatarID sql.NullString  `db:"owner_avatar_id"`
}

func (r propertyRow) toModel() model.Property {
	p := model.Property{
		ID:          r.ID,
		Title:       r.Title,
		Address:     r.Address,
		Price:       r.Price,
		Bedrooms:    r.Bedrooms,
		Bathrooms:   r.Bathrooms,
		Sqft:        r.Sqft,
		Description: r.Description,
		Amenities:   r.Amenities,
		ImageIDs:    r.ImageIDs,
		Owner:       model.Owner{Name: r.OwnerName.String, AvatarID: r.OwnerAvatarID.String},
	}
	if p.Amenities == nil {
		p.Amenities = model.JSONArray{}
	}
	if p.ImageIDs == nil {
		p.ImageIDs = model.JSONArray{}
	}
	return p
}

// PostgresRepository reads the catalog from the properties table.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository connects to dsn and verifies the connection.
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	// Disable prepared statement caching to avoid "unnamed prepared statement does not exist" errors
	if strings.Contains(dsn, "://") {
		if !strings.Contains(dsn, "?") {
			dsn += "?prefer_simple_protocol=true"
		} else {
			dsn += "&prefer_simple_protocol=true"
		}
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	return NewPostgresRepositoryFromDB(db), nil
}

// NewPostgresRepositoryFromDB wraps an existing connection pool.
func NewPostgresRepositoryFromDB(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// Ping checks the database is reachable.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ListProperties returns a page of properties ordered by id and the total count.
func (r *PostgresRepository) ListProperties(ctx context.Context, limit, offset int) ([]model.Property, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM properties`); err != nil {
		return nil, 0, fmt.Errorf("failed to count properties: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM properties ORDER BY id LIMIT $1 OFFSET $2`, propertyColumns)
	var rows []propertyRow
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to fetch properties: %w", err)
	}

	properties := make([]model.Property, len(rows))
	for i, row := range rows {
		properties[i] = row.toModel()
	}
	return properties, total, nil
}

// GetProperty retrieves a single property by id or returns ErrNotFound.
func (r *PostgresRepository) GetProperty(ctx context.Context, id string) (*model.Property, error) {
	query := fmt.Sprintf(`SELECT %s FROM properties WHERE id = $1`, propertyColumns)
	var row propertyRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get property: %w", err)
	}
	p := row.toModel()
	return &p, nil
}
