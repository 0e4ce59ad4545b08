package postgres

import (
	"context"

	"github.com/yangonmaps/citymap/internal/core/domain"
	"github.com/yangonmaps/citymap/internal/core/ports"
)

const cityDetailColumns = `id::text, city_id::text, COALESCE(user_id::text, ''),
	predefined_title, COALESCE(subtitle, '{}'), COALESCE(body, '{}'),
	image_urls, created_at, updated_at`

// CityDetailRepo implements ports.CityDetailRepository with pgx.
type CityDetailRepo struct {
	db *DB
}

// NewCityDetailRepo creates a new CityDetailRepo.
func NewCityDetailRepo(db *DB) *CityDetailRepo {
	return &CityDetailRepo{db: db}
}

// Create inserts a city detail.
func (r *CityDetailRepo) Create(ctx context.Context, d *domain.CityDetail) error {
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO city_details (city_id, user_id, predefined_title, subtitle, body, image_urls)
		VALUES ($1, NULLIF($2, '')::uuid, $3, $4, $5, COALESCE($6::text[], '{}'))
		RETURNING id::text, created_at, updated_at
	`, d.CityID, d.UserID, d.PredefinedTitle, d.Subtitle, d.Body, d.ImageURLs,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	return translateErr(err)
}

// Update overwrites every mutable column of the detail.
func (r *CityDetailRepo) Update(ctx context.Context, d *domain.CityDetail) error {
	err := r.db.Pool.QueryRow(ctx, `
		UPDATE city_details
		SET city_id = $2, predefined_title = $3, subtitle = $4, body = $5,
		    image_urls = COALESCE($6::text[], '{}'), updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, d.ID, d.CityID, d.PredefinedTitle, d.Subtitle, d.Body, d.ImageURLs,
	).Scan(&d.UpdatedAt)
	return translateErr(err)
}

// Delete removes a city detail.
func (r *CityDetailRepo) Delete(ctx context.Context, id string) error {
	return expectRow(r.db.Pool.Exec(ctx, `DELETE FROM city_details WHERE id = $1`, id))
}

// GetByID returns a city detail by UUID.
func (r *CityDetailRepo) GetByID(ctx context.Context, id string) (*domain.CityDetail, error) {
	d, err := scanCityDetail(r.db.Pool.QueryRow(ctx, `SELECT `+cityDetailColumns+` FROM city_details WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// List returns one page of city details.
func (r *CityDetailRepo) List(ctx context.Context, filter ports.ListFilter) (ports.Page[domain.CityDetail], error) {
	q := listQuery{table: "city_details", columns: cityDetailColumns, scoped: true}
	return listPage(ctx, r.db, q, filter, scanCityDetail)
}

func scanCityDetail(row scanner) (domain.CityDetail, error) {
	var d domain.CityDetail
	if err := row.Scan(
		&d.ID, &d.CityID, &d.UserID,
		&d.PredefinedTitle, &d.Subtitle, &d.Body,
		&d.ImageURLs, &d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		return domain.CityDetail{}, translateErr(err)
	}
	return d, nil
}
