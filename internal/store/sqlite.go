package store

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements SeenStore using modernc.org/sqlite. The seq column
// is the insertion counter that FIFO eviction orders by.
type SQLiteStore struct {
	db      *sql.DB
	maxSeen int
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS seen_filings (
	seq       INTEGER PRIMARY KEY AUTOINCREMENT,
	filing_id TEXT NOT NULL UNIQUE,
	added_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

// OpenSQLite opens a SQLite database at the given path, configures WAL mode
// and runs the migration.
func OpenSQLite(ctx context.Context, dsn string, maxSeen int) (*SQLiteStore, error) {
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
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	if _, err := db.ExecContext(ctx, sqliteMigration); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "sqlite: migrate")
	}
	return &SQLiteStore{db: db, maxSeen: maxSeen}, nil
}

func (s *SQLiteStore) Has(ctx context.Context, filingID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM seen_filings WHERE filing_id = ?", filingID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrap(err, "sqlite: query seen")
	}
	return true, nil
}

func (s *SQLiteStore) Add(ctx context.Context, filingID string) error {
	if filingID == "" {
		return eris.New("sqlite: empty filing ID")
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO seen_filings (filing_id) VALUES (?)", filingID)
	return eris.Wrap(err, "sqlite: insert seen")
}

func (s *SQLiteStore) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM seen_filings").Scan(&n); err != nil {
		return 0, eris.Wrap(err, "sqlite: count seen")
	}
	return n, nil
}

func (s *SQLiteStore) Compact(ctx context.Context) (int, error) {
	if s.maxSeen <= 0 {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM seen_filings WHERE seq NOT IN (
			SELECT seq FROM seen_filings ORDER BY seq DESC LIMIT ?
		)`, s.maxSeen)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: compact")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: compact rows affected")
	}
	return int(n), nil
}

func (s *SQLiteStore) Save(ctx context.Context) error {
	_, err := s.Compact(ctx)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
