package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"clockwatch/internal/currency"
	"clockwatch/internal/domain"
	"clockwatch/internal/ports"
	"clockwatch/internal/secret"
)

// Setting names in the per-user store.
const (
	SettingAPIKey      = "clockify_api_key"
	SettingCurrency    = "currency"
	SettingDefaultRate = "default_rate"
)

// SettingsUseCase reads and writes typed per-user settings.
type SettingsUseCase struct {
	Log   *slog.Logger
	Store ports.SettingsStore
	Box   *secret.Box

	// ValidateKey rejects malformed API keys before they are stored.
	ValidateKey func(key string) error

	DefaultCurrency string
	DefaultRate     *domain.CurrencyPair
}

type storedRate struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

func (uc *SettingsUseCase) SetAPIKey(ctx context.Context, userID, key string) error {
	if uc.ValidateKey != nil {
		if err := uc.ValidateKey(key); err != nil {
			return err
		}
	}
	sealed, err := uc.Box.Seal(key)
	if err != nil {
		return fmt.Errorf("settings: sealing api key: %w", err)
	}
	if err := uc.Store.Put(ctx, userID, SettingAPIKey, sealed); err != nil {
		return err
	}
	uc.Log.Info("api key stored", slog.String("user", userID))
	return nil
}

// APIKey returns the user's API key, or a CredentialNotSet error.
func (uc *SettingsUseCase) APIKey(ctx context.Context, userID string) (string, error) {
	v, ok, err := uc.Store.Get(ctx, userID, SettingAPIKey)
	if err != nil {
		return "", err
	}
	if !ok || v == "" {
		return "", domain.NewError(domain.KindCredentialNotSet, "")
	}
	key, err := uc.Box.Open(v)
	if err != nil {
		return "", fmt.Errorf("settings: opening api key: %w", err)
	}
	return key, nil
}

// SetCurrency stores the user's reporting currency and returns its
// canonical code.
func (uc *SettingsUseCase) SetCurrency(ctx context.Context, userID, code string) (string, error) {
	normalized, ok := currency.Normalize(code)
	if !ok {
		return "", domain.NewError(domain.KindInvalidInput, fmt.Sprintf("%q is not a known currency code.", code))
	}
	if err := uc.Store.Put(ctx, userID, SettingCurrency, normalized); err != nil {
		return "", err
	}
	return normalized, nil
}

// Currency returns the user's reporting currency, falling back to the
// configured default.
func (uc *SettingsUseCase) Currency(ctx context.Context, userID string) (string, error) {
	v, ok, err := uc.Store.Get(ctx, userID, SettingCurrency)
	if err != nil {
		return "", err
	}
	if !ok || v == "" {
		return uc.DefaultCurrency, nil
	}
	return v, nil
}

// SetDefaultRate stores the rate used when neither project, member nor
// workspace has one. A zero amount clears it. An empty code means the
// user's reporting currency.
func (uc *SettingsUseCase) SetDefaultRate(ctx context.Context, userID string, amount float64, code string) (*domain.CurrencyPair, error) {
	if amount < 0 {
		return nil, domain.NewError(domain.KindInvalidInput, "The hourly rate cannot be negative.")
	}
	if amount == 0 {
		return nil, uc.Store.Delete(ctx, userID, SettingDefaultRate)
	}
	if code == "" {
		var err error
		if code, err = uc.Currency(ctx, userID); err != nil {
			return nil, err
		}
	}
	normalized, ok := currency.Normalize(code)
	if !ok {
		return nil, domain.NewError(domain.KindInvalidInput, fmt.Sprintf("%q is not a known currency code.", code))
	}
	b, err := json.Marshal(storedRate{Amount: amount, Currency: normalized})
	if err != nil {
		return nil, err
	}
	if err := uc.Store.Put(ctx, userID, SettingDefaultRate, string(b)); err != nil {
		return nil, err
	}
	return &domain.CurrencyPair{Amount: amount, Currency: normalized}, nil
}

// DefaultRateFor returns the user's stored default rate, falling back to the
// configured one. Nil means no default applies.
func (uc *SettingsUseCase) DefaultRateFor(ctx context.Context, userID string) (*domain.CurrencyPair, error) {
	v, ok, err := uc.Store.Get(ctx, userID, SettingDefaultRate)
	if err != nil {
		return nil, err
	}
	if !ok {
		return uc.DefaultRate, nil
	}
	var r storedRate
	if err := json.Unmarshal([]byte(v), &r); err != nil {
		uc.Log.Warn("discarding unreadable default rate", slog.String("user", userID), slog.String("err", err.Error()))
		return uc.DefaultRate, nil
	}
	return &domain.CurrencyPair{Amount: r.Amount, Currency: r.Currency}, nil
}
