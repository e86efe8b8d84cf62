package store

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockPostgresStore(t *testing.T, maxSeen int) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewPostgresWithPool(mock, maxSeen), mock
}

func TestPostgresStore_Has_NotSeen(t *testing.T) {
	s, mock := newMockPostgresStore(t, 5000)

	mock.ExpectQuery(`SELECT 1 FROM seen_filings WHERE filing_id = \$1`).
		WithArgs("20260101000001").
		WillReturnError(pgx.ErrNoRows)

	seen, err := s.Has(context.Background(), "20260101000001")
	require.NoError(t, err)
	assert.False(t, seen)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Has_Seen(t *testing.T) {
	s, mock := newMockPostgresStore(t, 5000)

	mock.ExpectQuery(`SELECT 1 FROM seen_filings WHERE filing_id = \$1`).
		WithArgs("20260101000001").
		WillReturnRows(pgxmock.NewRows([]string{"?column?"}).AddRow(1))

	seen, err := s.Has(context.Background(), "20260101000001")
	require.NoError(t, err)
	assert.True(t, seen)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Add(t *testing.T) {
	s, mock := newMockPostgresStore(t, 5000)

	mock.ExpectExec(`INSERT INTO seen_filings`).
		WithArgs("20260101000001").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.Add(context.Background(), "20260101000001"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Compact(t *testing.T) {
	s, mock := newMockPostgresStore(t, 3)

	mock.ExpectExec(`DELETE FROM seen_filings`).
		WithArgs(3).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	dropped, err := s.Compact(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, dropped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CompactDisabled(t *testing.T) {
	s, _ := newMockPostgresStore(t, 0)

	dropped, err := s.Compact(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, dropped)
}
