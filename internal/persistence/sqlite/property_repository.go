package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/estate-events/internal/persistence"
)

// PropertyRepository implements persistence.PropertyRepository using SQLite.
type PropertyRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewPropertyRepository creates a new SQLite property repository.
func NewPropertyRepository(pool *ConnectionPool) *PropertyRepository {
	return &PropertyRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateProperty inserts a new property catalog entry.
func (r *PropertyRepository) CreateProperty(ctx context.Context, property persistence.Property) error {
	if property.ID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO properties (id, name, address, price, type,
			latitude, longitude, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	var price sql.NullInt64
	if property.Price != nil {
		price = sql.NullInt64{Int64: *property.Price, Valid: true}
	}
	_, err := r.helper.Exec(ctx, query,
		property.ID,
		property.Name,
		property.Address,
		price,
		nullString(property.Type),
		property.Coordinates.Latitude,
		property.Coordinates.Longitude,
		formatTime(property.CreatedAt),
		formatTime(property.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// GetProperty retrieves a property by ID.
func (r *PropertyRepository) GetProperty(ctx context.Context, id string) (persistence.Property, error) {
	row := r.helper.QueryRow(ctx, `
		SELECT id, name, address, price, type, latitude, longitude, created_at, updated_at
		FROM properties WHERE id = ?
	`, id)
	return r.scanProperty(row)
}

// ListProperties returns all properties ordered by CreatedAt ascending.
func (r *PropertyRepository) ListProperties(ctx context.Context) ([]persistence.Property, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT id, name, address, price, type, latitude, longitude, created_at, updated_at
		FROM properties ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var properties []persistence.Property
	for rows.Next() {
		property, err := r.scanProperty(rows)
		if err != nil {
			return nil, err
		}
		properties = append(properties, property)
	}
	return properties, rows.Err()
}

func (r *PropertyRepository) scanProperty(row rowScanner) (persistence.Property, error) {
	var (
		property     persistence.Property
		price        sql.NullInt64
		propertyType sql.NullString
		createdAt    string
		updatedAt    string
	)
	if err := row.Scan(
		&property.ID,
		&property.Name,
		&property.Address,
		&price,
		&propertyType,
		&property.Coordinates.Latitude,
		&property.Coordinates.Longitude,
		&createdAt,
		&updatedAt,
	); err != nil {
		return persistence.Property{}, r.mapper.MapError(err)
	}
	if price.Valid {
		value := price.Int64
		property.Price = &value
	}
	if propertyType.Valid {
		value := propertyType.String
		property.Type = &value
	}

	var err error
	if property.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Property{}, err
	}
	if property.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Property{}, err
	}
	return property, nil
}
