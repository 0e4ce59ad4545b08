package postgres

import (
	"context"

	"github.com/yangonmaps/citymap/internal/core/domain"
	"github.com/yangonmaps/citymap/internal/core/ports"
)

const roadColumns = `id::text, city_id::text, COALESCE(user_id::text, ''), name,
	COALESCE(road_type, ''), is_oneway, length_m, ST_AsText(geom),
	is_active, created_at, updated_at`

// RoadRepo implements ports.RoadRepository with pgx.
type RoadRepo struct {
	db *DB
}

// NewRoadRepo creates a new RoadRepo.
func NewRoadRepo(db *DB) *RoadRepo {
	return &RoadRepo{db: db}
}

// Create inserts a road with its precomputed segment lengths.
func (r *RoadRepo) Create(ctx context.Context, road *domain.Road) error {
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO roads (city_id, user_id, name, road_type, is_oneway, length_m, geom, is_active)
		VALUES ($1, NULLIF($2, '')::uuid, $3, NULLIF($4, ''), $5,
		        COALESCE($6::float8[], '{}'), ST_GeogFromText($7), $8)
		RETURNING id::text, created_at, updated_at
	`, road.CityID, road.UserID, road.Name, road.RoadType, road.IsOneway,
		road.SegmentLengths, road.Geometry, road.IsActive,
	).Scan(&road.ID, &road.CreatedAt, &road.UpdatedAt)
	return translateErr(err)
}

// Update overwrites every mutable column of the road.
func (r *RoadRepo) Update(ctx context.Context, road *domain.Road) error {
	err := r.db.Pool.QueryRow(ctx, `
		UPDATE roads
		SET city_id = $2, name = $3, road_type = NULLIF($4, ''), is_oneway = $5,
		    length_m = COALESCE($6::float8[], '{}'), geom = ST_GeogFromText($7),
		    is_active = $8, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, road.ID, road.CityID, road.Name, road.RoadType, road.IsOneway,
		road.SegmentLengths, road.Geometry, road.IsActive,
	).Scan(&road.UpdatedAt)
	return translateErr(err)
}

// UpdateLengths replaces only the stored segment lengths.
func (r *RoadRepo) UpdateLengths(ctx context.Context, id string, lengths []float64) error {
	return expectRow(r.db.Pool.Exec(ctx, `
		UPDATE roads SET length_m = COALESCE($2::float8[], '{}'), updated_at = now()
		WHERE id = $1
	`, id, lengths))
}

// Delete removes a road.
func (r *RoadRepo) Delete(ctx context.Context, id string) error {
	return expectRow(r.db.Pool.Exec(ctx, `DELETE FROM roads WHERE id = $1`, id))
}

// GetByID returns a road by UUID.
func (r *RoadRepo) GetByID(ctx context.Context, id string) (*domain.Road, error) {
	road, err := scanRoad(r.db.Pool.QueryRow(ctx, `SELECT `+roadColumns+` FROM roads WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	return &road, nil
}

// List returns one page of roads.
func (r *RoadRepo) List(ctx context.Context, filter ports.ListFilter) (ports.Page[domain.Road], error) {
	q := listQuery{table: "roads", columns: roadColumns, scoped: true}
	return listPage(ctx, r.db, q, filter, scanRoad)
}

func scanRoad(row scanner) (domain.Road, error) {
	var road domain.Road
	if err := row.Scan(
		&road.ID, &road.CityID, &road.UserID, &road.Name,
		&road.RoadType, &road.IsOneway, &road.SegmentLengths, &road.Geometry,
		&road.IsActive, &road.CreatedAt, &road.UpdatedAt,
	); err != nil {
		return domain.Road{}, translateErr(err)
	}
	return road, nil
}
