//go:build e2e

package e2e

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"clockwatch/internal/adapter/sqlstore"
	"clockwatch/internal/migrate"
	"clockwatch/internal/secret"
	"clockwatch/internal/usecase"
)

func TestSettingsInMySQL_UpsertsAndSeals(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping in short mode")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8.0",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_DATABASE":      "testdb",
			"MYSQL_ROOT_PASSWORD": "secret",
			"MYSQL_USER":          "test",
			"MYSQL_PASSWORD":      "pass",
		},
		WaitingFor: wait.ForListeningPort("3306/tcp").WithStartupTimeout(90 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("failed to start mysql container: %v", err)
	}
	t.Cleanup(func() { _ = mysqlC.Terminate(context.Background()) })

	host, err := mysqlC.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := mysqlC.MappedPort(ctx, "3306/tcp")
	if err != nil {
		t.Fatalf("mapped port: %v", err)
	}
	dsn := fmt.Sprintf("mysql://%s:%s@tcp(%s:%s)/%s", "test", "pass", host, port.Port(), "testdb")

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	var store *sqlstore.Store
	// The port opens before MySQL accepts logins.
	for attempt := 0; attempt < 30; attempt++ {
		if store, err = sqlstore.Open(ctx, dsn, logger); err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if err := migrate.Run(ctx, store.DB(), string(store.Dialect()), logger); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := migrate.Run(ctx, store.DB(), string(store.Dialect()), logger); err != nil {
		t.Fatalf("migrate twice: %v", err)
	}

	uc := &usecase.SettingsUseCase{
		Log:             logger,
		Store:           store,
		Box:             secret.NewBox("e2e"),
		DefaultCurrency: "USD",
	}

	if err := uc.SetAPIKey(ctx, "42", "first"); err != nil {
		t.Fatalf("set api key: %v", err)
	}
	if err := uc.SetAPIKey(ctx, "42", "second"); err != nil {
		t.Fatalf("set api key again: %v", err)
	}
	key, err := uc.APIKey(ctx, "42")
	if err != nil {
		t.Fatalf("api key: %v", err)
	}
	if key != "second" {
		t.Fatalf("expected upserted key, got %q", key)
	}

	var count int
	if err := store.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM user_settings WHERE user_id = ?", "42").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 row after upsert, got %d", count)
	}

	var raw string
	if err := store.DB().QueryRowContext(ctx, "SELECT value FROM user_settings WHERE user_id = ? AND name = ?", "42", usecase.SettingAPIKey).Scan(&raw); err != nil {
		t.Fatalf("raw value: %v", err)
	}
	if raw == "second" {
		t.Fatalf("api key stored unsealed")
	}

	if _, err := uc.SetDefaultRate(ctx, "42", 80, "EUR"); err != nil {
		t.Fatalf("set rate: %v", err)
	}
	rate, err := uc.DefaultRateFor(ctx, "42")
	if err != nil {
		t.Fatalf("rate: %v", err)
	}
	if rate == nil || rate.Amount != 80 || rate.Currency != "EUR" {
		t.Fatalf("unexpected rate %+v", rate)
	}
}
