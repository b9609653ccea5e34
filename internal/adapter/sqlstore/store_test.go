package sqlstore_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clockwatch/internal/adapter/sqlstore"
	"clockwatch/internal/migrate"
)

func newStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := sqlstore.Open(ctx, "sqlite://:memory:", log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, migrate.Run(ctx, s.DB(), string(s.Dialect()), log))
	return s
}

func TestStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, ok, err := s.Get(ctx, "42", "currency")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, "42", "currency", "EUR"))
	require.NoError(t, s.Put(ctx, "42", "currency", "SEK"))
	require.NoError(t, s.Put(ctx, "7", "currency", "USD"))

	v, ok, err := s.Get(ctx, "42", "currency")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "SEK", v)

	require.NoError(t, s.Delete(ctx, "42", "currency"))
	require.NoError(t, s.Delete(ctx, "42", "currency"))
	_, ok, err = s.Get(ctx, "42", "currency")
	require.NoError(t, err)
	assert.False(t, ok)

	v, ok, err = s.Get(ctx, "7", "currency")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "USD", v)
}

func TestParseDSN(t *testing.T) {
	cases := []struct {
		dsn     string
		dialect sqlstore.Dialect
		driver  string
	}{
		{"sqlite://clockwatch.db", sqlstore.SQLite, "clockwatch.db"},
		{"sqlite://:memory:", sqlstore.SQLite, ":memory:"},
		{"postgres://u:p@db:5432/cw?sslmode=disable", sqlstore.Postgres, "postgres://u:p@db:5432/cw?sslmode=disable"},
		{"mysql://u:p@tcp(db:3306)/cw", sqlstore.MySQL, "u:p@tcp(db:3306)/cw?parseTime=true"},
	}
	for _, tc := range cases {
		t.Run(tc.dsn, func(t *testing.T) {
			dialect, driver, err := sqlstore.ParseDSN(tc.dsn)
			require.NoError(t, err)
			assert.Equal(t, tc.dialect, dialect)
			assert.Equal(t, tc.driver, driver)
		})
	}

	for _, bad := range []string{"", "clockwatch.db", "oracle://x", "sqlite://"} {
		_, _, err := sqlstore.ParseDSN(bad)
		assert.Error(t, err, bad)
	}
}
