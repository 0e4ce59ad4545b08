package postgres

import (
	"context"

	"github.com/yangonmaps/citymap/internal/core/domain"
)

// RouteGraphRepo implements ports.RouteGraphRepository.
type RouteGraphRepo struct {
	db *DB
}

func NewRouteGraphRepo(db *DB) *RouteGraphRepo {
	return &RouteGraphRepo{db: db}
}

// ListRoutable loads the active road network. Roads without a usable
// geometry are skipped by the caller, not here.
func (r *RouteGraphRepo) ListRoutable(ctx context.Context) ([]domain.Road, error) {
	rows, err := r.db.Pool.Query(ctx, `
        SELECT id::text, name, is_oneway, length_m, ST_AsText(geom)
        FROM roads
        WHERE is_active
        ORDER BY created_at, id
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roads []domain.Road
	for rows.Next() {
		var road domain.Road
		if err := rows.Scan(&road.ID, &road.Name, &road.IsOneway, &road.SegmentLengths, &road.Geometry); err != nil {
			return nil, err
		}
		roads = append(roads, road)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return roads, nil
}
