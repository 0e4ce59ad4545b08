package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yangonmaps/citymap/internal/core/domain"
	"github.com/yangonmaps/citymap/internal/core/ports"
	"github.com/yangonmaps/citymap/internal/pkg/metrics"
)

// DB wraps pgxpool.Pool and provides a shared connection pool.
type DB struct {
	Pool *pgxpool.Pool
}

// New creates a new DB connection pool. maxConns <= 0 keeps the pgx default.
func New(ctx context.Context, dsn string, maxConns int32) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close releases pool resources.
func (db *DB) Close() {
	db.Pool.Close()
}

// ReportPoolStats publishes pool statistics to Prometheus every interval
// until ctx is done.
func (db *DB) ReportPoolStats(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.UpdateDBPoolMetrics(db.Pool.Stat())
		}
	}
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// translateErr maps driver errors onto domain errors.
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503": // foreign_key_violation
			return domain.ErrUnknownCity
		case "22P02": // invalid_text_representation, e.g. a malformed uuid
			return domain.ErrNotFound
		}
	}
	return err
}

// expectRow turns an update or delete that touched nothing into ErrNotFound.
func expectRow(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return translateErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// listQuery describes a paginated table read.
type listQuery struct {
	table   string
	columns string
	// scoped tables carry a city_id column.
	scoped bool
}

func (q listQuery) where(f ports.ListFilter) (string, []any) {
	var conds []string
	var args []any
	if q.scoped && f.CityID != "" {
		args = append(args, f.CityID)
		conds = append(conds, fmt.Sprintf("city_id = $%d", len(args)))
	}
	if f.ActiveOnly {
		conds = append(conds, "is_active")
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// listPage runs the count and the page query in one batch.
func listPage[T any](ctx context.Context, db *DB, q listQuery, f ports.ListFilter, scan func(scanner) (T, error)) (ports.Page[T], error) {
	where, args := q.where(f)
	pageArgs := append(append([]any{}, args...), f.Limit, f.Offset)

	batch := &pgx.Batch{}
	batch.Queue("SELECT count(*) FROM "+q.table+where, args...)
	batch.Queue(fmt.Sprintf(
		"SELECT %s FROM %s%s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d",
		q.columns, q.table, where, len(args)+1, len(args)+2,
	), pageArgs...)

	br := db.Pool.SendBatch(ctx, batch)
	defer br.Close()

	page := ports.Page[T]{Items: []T{}}
	if err := br.QueryRow().Scan(&page.Total); err != nil {
		return ports.Page[T]{}, translateErr(err)
	}

	rows, err := br.Query()
	if err != nil {
		return ports.Page[T]{}, translateErr(err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return ports.Page[T]{}, err
		}
		page.Items = append(page.Items, item)
	}
	return page, rows.Err()
}
