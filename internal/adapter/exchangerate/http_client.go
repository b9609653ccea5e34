package exchangerate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"clockwatch/internal/domain"
)

const DefaultBaseURL = "https://api.exchangerate.host"

// Client implements ports.RateSource against an exchangerate.host style API.
type Client struct {
	baseURL   string
	accessKey string
	http      *http.Client
	log       *slog.Logger
}

func NewClient(baseURL, accessKey string, log *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		accessKey: accessKey,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// LatestRates fetches the latest daily rates with base as the quote currency.
// GET /latest?base=USD
func (c *Client) LatestRates(ctx context.Context, base string) (map[string]float64, error) {
	u, err := url.Parse(c.baseURL + "/latest")
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("base", base)
	if c.accessKey != "" {
		q.Set("access_key", c.accessKey)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, domain.WrapError(domain.KindUpstreamUnavailable, err, "currency service unreachable")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, domain.NewError(domain.KindInvalidCredential, "currency service rejected the access key")
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, domain.WrapError(domain.KindUpstreamUnavailable,
			fmt.Errorf("exchangerate: unexpected status %d: %s", resp.StatusCode, string(body)), "")
	}

	var raw latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, domain.WrapError(domain.KindUpstreamUnavailable, fmt.Errorf("exchangerate: decoding: %w", err), "")
	}
	if !raw.Success || raw.Rates == nil {
		return nil, domain.WrapError(domain.KindUpstreamUnavailable,
			fmt.Errorf("exchangerate: request for base %s was not successful", base), "")
	}
	c.log.Debug("exchange rates fetched", slog.String("base", base), slog.Int("count", len(raw.Rates)))
	return raw.Rates, nil
}

// latestResponse mirrors the JSON returned by /latest.
type latestResponse struct {
	Success bool               `json:"success"`
	Base    string             `json:"base"`
	Date    string             `json:"date"`
	Rates   map[string]float64 `json:"rates"`
}
