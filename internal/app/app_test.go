package app

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clockwatch/internal/config"
)

func TestNew_SQLite(t *testing.T) {
	ctx := context.Background()
	cfg, _, err := config.Load("clockwatch", []string{
		"-store_dsn", "sqlite://:memory:",
		"-store_secret", "s3cret",
		"-discord_public_key", strings.Repeat("ab", 32),
	})
	require.NoError(t, err)

	a, err := New(ctx, slog.New(slog.NewTextHandler(io.Discard, nil)), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	require.NoError(t, a.Settings().Store.Put(ctx, "42", "currency", "EUR"))
	code, err := a.Settings().Currency(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "EUR", code)

	srv, err := a.HTTPServer()
	require.NoError(t, err)
	assert.Equal(t, ":8080", srv.Addr)
}
