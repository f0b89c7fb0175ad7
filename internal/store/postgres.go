package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/poligraft/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// uniqueViolation is the Postgres SQLSTATE for a unique index collision.
const uniqueViolation = "23505"

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS results (
	id                 TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	source_url         TEXT NOT NULL DEFAULT '',
	source_title       TEXT NOT NULL,
	source_text        TEXT NOT NULL DEFAULT '',
	source_format      TEXT NOT NULL,
	source_hash        TEXT NOT NULL,
	slug               TEXT NOT NULL,
	status             TEXT NOT NULL,
	contribution_count INTEGER NOT NULL DEFAULT 0,
	processed          BOOLEAN NOT NULL DEFAULT false,
	suppress_text      BOOLEAN NOT NULL DEFAULT false,
	entities           JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_results_slug ON results(slug);
CREATE INDEX IF NOT EXISTS idx_results_source_url ON results(source_url);
CREATE INDEX IF NOT EXISTS idx_results_created_at ON results(created_at DESC);
`

const pgResultColumns = `id, source_url, source_title, source_text, source_format, source_hash, slug, status, contribution_count, processed, suppress_text, entities, created_at, updated_at`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateResult(ctx context.Context, r *model.Result) error {
	if err := prepareCreate(r, uuid.New().String(), now()); err != nil {
		return err
	}

	entitiesJSON, err := marshalEntities(r.Entities)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO results (`+pgResultColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		r.ID, r.SourceURL, r.SourceTitle, r.SourceText, string(r.SourceFormat), r.SourceHash,
		r.Slug, string(r.Status), r.ContributionCount, r.Processed, r.SuppressText,
		entitiesJSON, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return duplicateSlug()
		}
		return eris.Wrap(err, "postgres: insert result")
	}
	return nil
}

func (s *PostgresStore) SaveResult(ctx context.Context, r *model.Result) error {
	entitiesJSON, err := marshalEntities(r.Entities)
	if err != nil {
		return err
	}
	r.UpdatedAt = now()

	tag, err := s.pool.Exec(ctx,
		`UPDATE results SET source_url = $1, source_title = $2, source_text = $3, source_format = $4, source_hash = $5, slug = $6, status = $7, contribution_count = $8, processed = $9, suppress_text = $10, entities = $11, updated_at = $12 WHERE id = $13`,
		r.SourceURL, r.SourceTitle, r.SourceText, string(r.SourceFormat), r.SourceHash,
		r.Slug, string(r.Status), r.ContributionCount, r.Processed, r.SuppressText,
		entitiesJSON, r.UpdatedAt, r.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: save result %s", r.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "result %s", r.ID)
	}
	return nil
}

func (s *PostgresStore) GetResult(ctx context.Context, id string) (*model.Result, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+pgResultColumns+` FROM results WHERE id = $1`, id)
	r, err := scanPgResult(row)
	return r, eris.Wrapf(err, "postgres: get result %s", id)
}

func (s *PostgresStore) GetResultBySlug(ctx context.Context, slug string) (*model.Result, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+pgResultColumns+` FROM results WHERE slug = $1`, slug)
	r, err := scanPgResult(row)
	return r, eris.Wrapf(err, "postgres: get result by slug %s", slug)
}

func (s *PostgresStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM results WHERE slug = $1)`, slug).Scan(&exists)
	return exists, eris.Wrap(err, "postgres: slug exists")
}

func (s *PostgresStore) ListResults(ctx context.Context, filter ResultFilter) ([]model.Result, error) {
	query := `SELECT ` + pgResultColumns + ` FROM results WHERE 1=1`
	var args []any

	if filter.Processed != nil {
		args = append(args, *filter.Processed)
		query += ` AND processed = $` + strconv.Itoa(len(args))
	}
	if filter.SourceURL != "" {
		args = append(args, filter.SourceURL)
		query += ` AND source_url = $` + strconv.Itoa(len(args))
	}
	if !filter.CreatedAfter.IsZero() {
		args = append(args, filter.CreatedAfter.UTC())
		query += ` AND created_at >= $` + strconv.Itoa(len(args))
	}

	args = append(args, listLimit(filter))
	query += ` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list results")
	}
	defer rows.Close()

	var results []model.Result
	for rows.Next() {
		r, err := scanPgResult(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: list results scan")
		}
		results = append(results, *r)
	}
	return results, eris.Wrap(rows.Err(), "postgres: list results iterate")
}

func scanPgResult(row pgx.Row) (*model.Result, error) {
	var r model.Result
	var format, status string
	var entitiesJSON []byte

	err := row.Scan(
		&r.ID, &r.SourceURL, &r.SourceTitle, &r.SourceText, &format, &r.SourceHash,
		&r.Slug, &status, &r.ContributionCount, &r.Processed, &r.SuppressText,
		&entitiesJSON, &r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	r.SourceFormat = model.SourceFormat(format)
	r.Status = model.Status(status)

	if err := unmarshalEntities(entitiesJSON, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
