package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/poligraft/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS results (
	id                 TEXT PRIMARY KEY,
	source_url         TEXT NOT NULL DEFAULT '',
	source_title       TEXT NOT NULL,
	source_text        TEXT NOT NULL DEFAULT '',
	source_format      TEXT NOT NULL,
	source_hash        TEXT NOT NULL,
	slug               TEXT NOT NULL,
	status             TEXT NOT NULL,
	contribution_count INTEGER NOT NULL DEFAULT 0,
	processed          INTEGER NOT NULL DEFAULT 0,
	suppress_text      INTEGER NOT NULL DEFAULT 0,
	entities           TEXT NOT NULL DEFAULT '[]',
	created_at         DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at         DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_results_slug ON results(slug);
CREATE INDEX IF NOT EXISTS idx_results_source_url ON results(source_url);
CREATE INDEX IF NOT EXISTS idx_results_created_at ON results(created_at);
`

const sqliteResultColumns = `id, source_url, source_title, source_text, source_format, source_hash,
	slug, status, contribution_count, processed, suppress_text, entities, created_at, updated_at`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateResult(ctx context.Context, r *model.Result) error {
	if err := prepareCreate(r, uuid.New().String(), now()); err != nil {
		return err
	}

	entitiesJSON, err := marshalEntities(r.Entities)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO results (`+sqliteResultColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.SourceURL, r.SourceTitle, r.SourceText, string(r.SourceFormat), r.SourceHash,
		r.Slug, string(r.Status), r.ContributionCount, r.Processed, r.SuppressText,
		string(entitiesJSON), r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: results.slug") {
			return duplicateSlug()
		}
		return eris.Wrap(err, "sqlite: insert result")
	}
	return nil
}

func (s *SQLiteStore) SaveResult(ctx context.Context, r *model.Result) error {
	entitiesJSON, err := marshalEntities(r.Entities)
	if err != nil {
		return err
	}
	r.UpdatedAt = now()

	res, err := s.db.ExecContext(ctx,
		`UPDATE results SET source_url = ?, source_title = ?, source_text = ?, source_format = ?,
		 source_hash = ?, slug = ?, status = ?, contribution_count = ?, processed = ?,
		 suppress_text = ?, entities = ?, updated_at = ?
		 WHERE id = ?`,
		r.SourceURL, r.SourceTitle, r.SourceText, string(r.SourceFormat),
		r.SourceHash, r.Slug, string(r.Status), r.ContributionCount, r.Processed,
		r.SuppressText, string(entitiesJSON), r.UpdatedAt,
		r.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: save result %s", r.ID)
	}
	return checkRowsAffected(res, r.ID)
}

func (s *SQLiteStore) GetResult(ctx context.Context, id string) (*model.Result, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteResultColumns+` FROM results WHERE id = ?`, id,
	)
	return scanResult(row)
}

func (s *SQLiteStore) GetResultBySlug(ctx context.Context, slug string) (*model.Result, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteResultColumns+` FROM results WHERE slug = ?`, slug,
	)
	return scanResult(row)
}

func (s *SQLiteStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM results WHERE slug = ?)`, slug,
	).Scan(&exists)
	return exists, eris.Wrap(err, "sqlite: slug exists")
}

func (s *SQLiteStore) ListResults(ctx context.Context, filter ResultFilter) ([]model.Result, error) {
	query := `SELECT ` + sqliteResultColumns + ` FROM results WHERE 1=1`
	var args []any

	if filter.Processed != nil {
		query += ` AND processed = ?`
		args = append(args, *filter.Processed)
	}
	if filter.SourceURL != "" {
		query += ` AND source_url = ?`
		args = append(args, filter.SourceURL)
	}
	if !filter.CreatedAfter.IsZero() {
		query += ` AND created_at >= ?`
		args = append(args, filter.CreatedAfter.UTC())
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, listLimit(filter))

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list results")
	}
	defer func() { _ = rows.Close() }()

	var results []model.Result
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *r)
	}
	return results, eris.Wrap(rows.Err(), "sqlite: list results iterate")
}

// helpers

func checkRowsAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "result %s", id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanResult(row scannable) (*model.Result, error) {
	var r model.Result
	var format, status, entitiesJSON string

	err := row.Scan(
		&r.ID, &r.SourceURL, &r.SourceTitle, &r.SourceText, &format, &r.SourceHash,
		&r.Slug, &status, &r.ContributionCount, &r.Processed, &r.SuppressText,
		&entitiesJSON, &r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan result")
	}
	r.SourceFormat = model.SourceFormat(format)
	r.Status = model.Status(status)

	if err := unmarshalEntities([]byte(entitiesJSON), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func marshalEntities(entities []model.Entity) ([]byte, error) {
	if entities == nil {
		entities = []model.Entity{}
	}
	b, err := json.Marshal(entities)
	return b, eris.Wrap(err, "store: marshal entities")
}

func unmarshalEntities(b []byte, r *model.Result) error {
	if len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, &r.Entities); err != nil {
		return eris.Wrap(err, "store: unmarshal entities")
	}
	if len(r.Entities) == 0 {
		r.Entities = nil
	}
	return nil
}
