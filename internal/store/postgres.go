package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/dartwatch/dartwatch/internal/db"
)

// PostgresStore implements SeenStore using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	maxSeen int
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS seen_filings (
	seq       BIGSERIAL PRIMARY KEY,
	filing_id TEXT NOT NULL UNIQUE,
	added_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// OpenPostgres creates a PostgresStore with a connection pool and runs the
// migration.
func OpenPostgres(ctx context.Context, connString string, maxSeen int) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 4
	pgxCfg.MinConns = 1
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
	s := &PostgresStore{pool: pool, maxSeen: maxSeen}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgresWithPool wraps an existing pool. Tests inject pgxmock here. No
// migration is run.
func NewPostgresWithPool(pool db.Pool, maxSeen int) *PostgresStore {
	return &PostgresStore{pool: pool, maxSeen: maxSeen}
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Has(ctx context.Context, filingID string) (bool, error) {
	var one int
	err := s.pool.QueryRow(ctx,
		"SELECT 1 FROM seen_filings WHERE filing_id = $1", filingID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrap(err, "postgres: query seen")
	}
	return true, nil
}

func (s *PostgresStore) Add(ctx context.Context, filingID string) error {
	if filingID == "" {
		return eris.New("postgres: empty filing ID")
	}
	_, err := s.pool.Exec(ctx,
		"INSERT INTO seen_filings (filing_id) VALUES ($1) ON CONFLICT (filing_id) DO NOTHING",
		filingID)
	return eris.Wrap(err, "postgres: insert seen")
}

func (s *PostgresStore) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM seen_filings").Scan(&n); err != nil {
		return 0, eris.Wrap(err, "postgres: count seen")
	}
	return n, nil
}

func (s *PostgresStore) Compact(ctx context.Context) (int, error) {
	if s.maxSeen <= 0 {
		return 0, nil
	}
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM seen_filings WHERE seq NOT IN (
			SELECT seq FROM seen_filings ORDER BY seq DESC LIMIT $1
		)`, s.maxSeen)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: compact")
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) Save(ctx context.Context) error {
	_, err := s.Compact(ctx)
	return err
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
