package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/namsral/flag"

	"clockwatch/internal/currency"
	"clockwatch/internal/domain"
)

// EnvPrefix prefixes every environment variable, e.g. CLOCKWATCH_DISCORD_PUBLIC_KEY.
const EnvPrefix = "CLOCKWATCH"

// Config holds flag and environment driven configuration.
type Config struct {
	Verbose bool

	Discord struct {
		AppID     string
		PublicKey string // hex encoded Ed25519 key from the developer portal
		BotToken  string
		GuildID   string // register commands in one guild instead of globally
	}
	Clockify struct {
		BaseURL string
	}
	Currency struct {
		BaseURL   string
		AccessKey string
		Default   string
	}
	Store struct {
		DSN    string // mysql://, postgres:// or sqlite://
		Secret string // seals stored API keys when set
	}
	Report struct {
		Timezone            string
		Location            *time.Location
		DefaultRate         float64
		DefaultRateCurrency string
	}
	HTTP struct {
		Addr               string
		InteractionTimeout time.Duration
	}
	Bugsnag struct {
		APIKey       string
		ReleaseStage string
	}
}

// Load parses args, falling back to CLOCKWATCH_* environment variables for
// unset flags. It returns the positional arguments left after the flags.
func Load(name string, args []string) (Config, []string, error) {
	var cfg Config
	fs := flag.NewFlagSetWithEnvPrefix(name, EnvPrefix, flag.ContinueOnError)

	fs.BoolVar(&cfg.Verbose, "v", false, "enable debug logging")

	fs.StringVar(&cfg.Discord.AppID, "discord_app_id", "", "Discord application ID")
	fs.StringVar(&cfg.Discord.PublicKey, "discord_public_key", "", "Discord application public key (hex)")
	fs.StringVar(&cfg.Discord.BotToken, "discord_bot_token", "", "Discord bot token, used to register commands")
	fs.StringVar(&cfg.Discord.GuildID, "discord_guild_id", "", "register commands in this guild only")

	fs.StringVar(&cfg.Clockify.BaseURL, "clockify_base_url", "https://api.clockify.me/api/v1", "Clockify API base URL")

	fs.StringVar(&cfg.Currency.BaseURL, "currency_base_url", "https://api.exchangerate.host", "exchange rate API base URL")
	fs.StringVar(&cfg.Currency.AccessKey, "currency_access_key", "", "exchange rate API access key")
	fs.StringVar(&cfg.Currency.Default, "currency_default", "USD", "reporting currency for users that have not chosen one")

	fs.StringVar(&cfg.Store.DSN, "store_dsn", "sqlite://clockwatch.db", "settings store DSN")
	fs.StringVar(&cfg.Store.Secret, "store_secret", "", "passphrase used to seal stored API keys")

	fs.StringVar(&cfg.Report.Timezone, "report_tz", "UTC", "time zone used to resolve time ranges")
	fs.Float64Var(&cfg.Report.DefaultRate, "report_default_rate", 0, "hourly rate used when nothing else is configured")
	fs.StringVar(&cfg.Report.DefaultRateCurrency, "report_default_rate_currency", "", "currency of the default rate (defaults to currency_default)")

	fs.StringVar(&cfg.HTTP.Addr, "http_addr", ":8080", "listen address")
	fs.DurationVar(&cfg.HTTP.InteractionTimeout, "http_interaction_timeout", 2500*time.Millisecond, "deadline for answering an interaction")

	fs.StringVar(&cfg.Bugsnag.APIKey, "bugsnag_key", "", "Bugsnag API key")
	fs.StringVar(&cfg.Bugsnag.ReleaseStage, "bugsnag_release_stage", "development", "Bugsnag release stage")

	if err := fs.Parse(args); err != nil {
		return cfg, nil, err
	}

	var ok bool
	if cfg.Currency.Default, ok = currency.Normalize(cfg.Currency.Default); !ok {
		return cfg, nil, errors.New("CLOCKWATCH_CURRENCY_DEFAULT is not an ISO 4217 code")
	}
	if cfg.Report.DefaultRateCurrency == "" {
		cfg.Report.DefaultRateCurrency = cfg.Currency.Default
	}
	if cfg.Report.DefaultRateCurrency, ok = currency.Normalize(cfg.Report.DefaultRateCurrency); !ok {
		return cfg, nil, errors.New("CLOCKWATCH_REPORT_DEFAULT_RATE_CURRENCY is not an ISO 4217 code")
	}
	if cfg.Report.DefaultRate < 0 {
		return cfg, nil, errors.New("CLOCKWATCH_REPORT_DEFAULT_RATE must not be negative")
	}
	loc, err := time.LoadLocation(cfg.Report.Timezone)
	if err != nil {
		return cfg, nil, fmt.Errorf("CLOCKWATCH_REPORT_TZ: %w", err)
	}
	cfg.Report.Location = loc
	if cfg.HTTP.InteractionTimeout <= 0 {
		return cfg, nil, errors.New("CLOCKWATCH_HTTP_INTERACTION_TIMEOUT must be positive")
	}

	return cfg, fs.Args(), nil
}

// DefaultRate is the configured fallback rate, nil when unset.
func (c Config) DefaultRate() *domain.CurrencyPair {
	if c.Report.DefaultRate == 0 {
		return nil
	}
	return &domain.CurrencyPair{Amount: c.Report.DefaultRate, Currency: c.Report.DefaultRateCurrency}
}

// RequireServe checks the settings needed to answer interactions.
func (c Config) RequireServe() error {
	if c.Discord.PublicKey == "" {
		return errors.New("CLOCKWATCH_DISCORD_PUBLIC_KEY is required")
	}
	if b, err := hex.DecodeString(c.Discord.PublicKey); err != nil || len(b) != 32 {
		return errors.New("CLOCKWATCH_DISCORD_PUBLIC_KEY must be a 64 character hex string")
	}
	return nil
}

// RequireRegister checks the settings needed to register slash commands.
func (c Config) RequireRegister() error {
	if c.Discord.AppID == "" {
		return errors.New("CLOCKWATCH_DISCORD_APP_ID is required")
	}
	if c.Discord.BotToken == "" {
		return errors.New("CLOCKWATCH_DISCORD_BOT_TOKEN is required")
	}
	return nil
}
