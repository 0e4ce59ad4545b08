package postgres

import (
	"context"

	"github.com/yangonmaps/citymap/internal/core/domain"
	"github.com/yangonmaps/citymap/internal/core/ports"
)

const cityColumns = `id::text, COALESCE(user_id::text, ''), name,
	COALESCE(address, '{}'), COALESCE(description, '{}'), image_urls,
	ST_AsText(geom), ST_Y(geom::geometry), ST_X(geom::geometry),
	is_active, created_at, updated_at`

// CityRepo implements ports.CityRepository with pgx.
type CityRepo struct {
	db *DB
}

// NewCityRepo creates a new CityRepo.
func NewCityRepo(db *DB) *CityRepo {
	return &CityRepo{db: db}
}

// Create inserts a city and fills its generated ID and timestamps.
func (r *CityRepo) Create(ctx context.Context, c *domain.City) error {
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO cities (user_id, name, address, description, image_urls, geom, is_active)
		VALUES (NULLIF($1, '')::uuid, $2, $3, $4, COALESCE($5::text[], '{}'), ST_GeogFromText($6), $7)
		RETURNING id::text, created_at, updated_at
	`, c.UserID, c.Name, c.Address, c.Description, c.ImageURLs, c.Geometry, c.IsActive,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return translateErr(err)
}

// Update overwrites every mutable column of the city.
func (r *CityRepo) Update(ctx context.Context, c *domain.City) error {
	err := r.db.Pool.QueryRow(ctx, `
		UPDATE cities
		SET name = $2, address = $3, description = $4,
		    image_urls = COALESCE($5::text[], '{}'), geom = ST_GeogFromText($6),
		    is_active = $7, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, c.ID, c.Name, c.Address, c.Description, c.ImageURLs, c.Geometry, c.IsActive,
	).Scan(&c.UpdatedAt)
	return translateErr(err)
}

// Delete removes a city together with its details, locations and roads.
func (r *CityRepo) Delete(ctx context.Context, id string) error {
	return expectRow(r.db.Pool.Exec(ctx, `DELETE FROM cities WHERE id = $1`, id))
}

// GetByID returns a city by UUID.
func (r *CityRepo) GetByID(ctx context.Context, id string) (*domain.City, error) {
	c, err := scanCity(r.db.Pool.QueryRow(ctx, `SELECT `+cityColumns+` FROM cities WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns one page of cities, newest first.
func (r *CityRepo) List(ctx context.Context, filter ports.ListFilter) (ports.Page[domain.City], error) {
	return listPage(ctx, r.db, listQuery{table: "cities", columns: cityColumns}, filter, scanCity)
}

func scanCity(row scanner) (domain.City, error) {
	var c domain.City
	var lat, lon float64
	if err := row.Scan(
		&c.ID, &c.UserID, &c.Name,
		&c.Address, &c.Description, &c.ImageURLs,
		&c.Geometry, &lat, &lon,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return domain.City{}, translateErr(err)
	}
	c.Location = &domain.GeoPoint{Lat: lat, Lon: lon}
	return c, nil
}
