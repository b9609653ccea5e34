package app

import (
	"context"
	"log/slog"
	"time"

	"clockwatch/internal/adapter/clockify"
	"clockwatch/internal/adapter/exchangerate"
	"clockwatch/internal/adapter/sqlstore"
	"clockwatch/internal/config"
	"clockwatch/internal/discord"
	"clockwatch/internal/migrate"
	"clockwatch/internal/notify"
	"clockwatch/internal/ports"
	"clockwatch/internal/secret"
	"clockwatch/internal/usecase"
)

// App wires adapters and use cases.
type App struct {
	log      *slog.Logger
	cfg      config.Config
	store    *sqlstore.Store
	settings *usecase.SettingsUseCase
	reports  *usecase.ReportUseCase
	notifier notify.Notifier
}

// New opens the settings store, applies pending migrations and builds the
// use cases.
func New(ctx context.Context, log *slog.Logger, cfg config.Config) (*App, error) {
	store, err := sqlstore.Open(ctx, cfg.Store.DSN, log)
	if err != nil {
		return nil, err
	}
	if err := migrate.Run(ctx, store.DB(), string(store.Dialect()), log); err != nil {
		store.Close()
		return nil, err
	}

	settings := &usecase.SettingsUseCase{
		Log:             log,
		Store:           store,
		Box:             secret.NewBox(cfg.Store.Secret),
		ValidateKey:     clockify.ValidateAPIKey,
		DefaultCurrency: cfg.Currency.Default,
		DefaultRate:     cfg.DefaultRate(),
	}
	if settings.Box == nil {
		log.Warn("CLOCKWATCH_STORE_SECRET is not set, API keys are stored unsealed")
	}

	reports := &usecase.ReportUseCase{
		Log:   log,
		Rates: exchangerate.NewClient(cfg.Currency.BaseURL, cfg.Currency.AccessKey, log),
	}

	return &App{
		log:      log,
		cfg:      cfg,
		store:    store,
		settings: settings,
		reports:  reports,
		notifier: notify.New(cfg.Bugsnag.APIKey, cfg.Bugsnag.ReleaseStage),
	}, nil
}

// Settings exposes the settings use case to the CLI.
func (a *App) Settings() *usecase.SettingsUseCase { return a.settings }

// Bot builds the interaction dispatcher.
func (a *App) Bot() *discord.Bot {
	return &discord.Bot{
		Log:      a.log,
		Reports:  a.reports,
		Settings: a.settings,
		Notifier: a.notifier,
		NewTracker: func(apiKey string) ports.TimeTracker {
			return clockify.NewClient(a.cfg.Clockify.BaseURL, apiKey, a.log)
		},
		Location: a.cfg.Report.Location,
		Now:      time.Now,
	}
}

func (a *App) Close() error { return a.store.Close() }
