package postgres

import (
	"context"

	"github.com/yangonmaps/citymap/internal/core/domain"
	"github.com/yangonmaps/citymap/internal/core/ports"
	"github.com/yangonmaps/citymap/internal/pkg/geospatial"
)

const locationColumns = `id::text, city_id::text, COALESCE(user_id::text, ''), name,
	COALESCE(address, '{}'), COALESCE(description, '{}'), image_urls,
	COALESCE(location_type, ''), ST_AsText(geom),
	ST_Y(geom::geometry), ST_X(geom::geometry),
	is_active, created_at, updated_at`

// LocationRepo implements ports.LocationRepository with pgx.
type LocationRepo struct {
	db *DB
}

// NewLocationRepo creates a new LocationRepo.
func NewLocationRepo(db *DB) *LocationRepo {
	return &LocationRepo{db: db}
}

// Create inserts a location.
func (r *LocationRepo) Create(ctx context.Context, l *domain.Location) error {
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO locations (city_id, user_id, name, address, description, image_urls,
		                       location_type, geom, is_active)
		VALUES ($1, NULLIF($2, '')::uuid, $3, $4, $5, COALESCE($6::text[], '{}'),
		        NULLIF($7, ''), ST_GeogFromText($8), $9)
		RETURNING id::text, created_at, updated_at
	`, l.CityID, l.UserID, l.Name, l.Address, l.Description, l.ImageURLs,
		l.LocationType, l.Geometry, l.IsActive,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	return translateErr(err)
}

// Update overwrites every mutable column of the location.
func (r *LocationRepo) Update(ctx context.Context, l *domain.Location) error {
	err := r.db.Pool.QueryRow(ctx, `
		UPDATE locations
		SET city_id = $2, name = $3, address = $4, description = $5,
		    image_urls = COALESCE($6::text[], '{}'), location_type = NULLIF($7, ''),
		    geom = ST_GeogFromText($8), is_active = $9, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, l.ID, l.CityID, l.Name, l.Address, l.Description, l.ImageURLs,
		l.LocationType, l.Geometry, l.IsActive,
	).Scan(&l.UpdatedAt)
	return translateErr(err)
}

// Delete removes a location.
func (r *LocationRepo) Delete(ctx context.Context, id string) error {
	return expectRow(r.db.Pool.Exec(ctx, `DELETE FROM locations WHERE id = $1`, id))
}

// GetByID returns a location by UUID.
func (r *LocationRepo) GetByID(ctx context.Context, id string) (*domain.Location, error) {
	l, err := scanLocation(r.db.Pool.QueryRow(ctx, `SELECT `+locationColumns+` FROM locations WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// List returns one page of locations.
func (r *LocationRepo) List(ctx context.Context, filter ports.ListFilter) (ports.Page[domain.Location], error) {
	q := listQuery{table: "locations", columns: locationColumns, scoped: true}
	return listPage(ctx, r.db, q, filter, func(row scanner) (domain.Location, error) {
		return scanLocation(row)
	})
}

// FindNearby returns active locations within radiusMeters using PostGIS ST_DWithin.
func (r *LocationRepo) FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Location, error) {
	// The envelope lets the GIST index discard far rows before the exact check.
	minLat, minLon, maxLat, maxLon := geospatial.BoundingBox(lat, lon, radiusMeters)

	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+locationColumns+`,
		       ST_Distance(geom, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography) AS distance
		FROM locations
		WHERE is_active
		  AND geom::geometry && ST_MakeEnvelope($5, $6, $7, $8, 4326)
		  AND ST_DWithin(geom, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3)
		ORDER BY distance
		LIMIT $4
	`, lon, lat, radiusMeters, limit, minLon, minLat, maxLon, maxLat)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locs := []domain.Location{}
	for rows.Next() {
		var dist float64
		l, err := scanLocation(rows, &dist)
		if err != nil {
			return nil, err
		}
		l.Distance = &dist
		locs = append(locs, l)
	}
	return locs, rows.Err()
}

func scanLocation(row scanner, extra ...any) (domain.Location, error) {
	var l domain.Location
	var lat, lon float64
	dest := []any{
		&l.ID, &l.CityID, &l.UserID, &l.Name,
		&l.Address, &l.Description, &l.ImageURLs,
		&l.LocationType, &l.Geometry,
		&lat, &lon,
		&l.IsActive, &l.CreatedAt, &l.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return domain.Location{}, translateErr(err)
	}
	l.Location = &domain.GeoPoint{Lat: lat, Lon: lon}
	return l, nil
}
