package clockify

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"clockwatch/internal/domain"
)

const (
	DefaultBaseURL = "https://api.clockify.me/api/v1"
	pageSize       = "5000"
)

// Client implements ports.TimeTracker using the Clockify REST API v1.
// A Client is bound to a single user's API key.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *slog.Logger

	// Now is the clock used to price running entries.
	Now func() time.Time
}

func NewClient(baseURL, apiKey string, log *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
		Now: time.Now,
	}
}

// ValidateAPIKey checks that key is base64 encoding of an RFC 4122 UUID (versions 1-5).
func ValidateAPIKey(key string) error {
	invalid := domain.NewError(domain.KindInvalidCredential, "api key is malformed")
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(key))
	if err != nil {
		return invalid
	}
	s := string(decoded)
	if len(s) != 36 {
		return invalid
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return invalid
	}
	if v := id.Version(); v < 1 || v > 5 || id.Variant() != uuid.RFC4122 {
		return invalid
	}
	return nil
}

// GetUser returns the owner of the API key.
func (c *Client) GetUser(ctx context.Context) (domain.User, error) {
	var raw rawUser
	if err := c.get(ctx, "/user", nil, &raw); err != nil {
		return domain.User{}, err
	}
	return domain.User{
		ID:           raw.ID,
		Name:         raw.Name,
		WorkspaceIDs: workspaceIDs(raw.Memberships),
	}, nil
}

// GetWorkspaces returns every workspace the key can access. Members carry
// their membership rate but no name; use GetUsers for names.
func (c *Client) GetWorkspaces(ctx context.Context) ([]domain.Workspace, error) {
	raw, err := c.workspaces(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Workspace, 0, len(raw))
	for _, w := range raw {
		out = append(out, mapWorkspace(w, nil))
	}
	return out, nil
}

// GetWorkspaceByID returns the workspace with its members fully populated.
func (c *Client) GetWorkspaceByID(ctx context.Context, id string) (domain.Workspace, error) {
	raw, err := c.workspace(ctx, id)
	if err != nil {
		return domain.Workspace{}, err
	}
	users, err := c.users(ctx, raw)
	if err != nil {
		return domain.Workspace{}, err
	}
	return mapWorkspace(raw, users), nil
}

// GetProjects lists the projects of a workspace. The endpoint is paged, but
// a page size of 5000 covers every workspace seen in practice.
func (c *Client) GetProjects(ctx context.Context, workspaceID string) ([]domain.Project, error) {
	q := url.Values{}
	q.Set("page-size", pageSize)
	var raw []rawProject
	if err := c.get(ctx, fmt.Sprintf("/workspaces/%s/projects", url.PathEscape(workspaceID)), q, &raw); err != nil {
		return nil, err
	}
	out := make([]domain.Project, 0, len(raw))
	for _, p := range raw {
		out = append(out, mapProject(p, workspaceID))
	}
	return out, nil
}

func (c *Client) GetProjectByID(ctx context.Context, workspaceID, projectID string) (domain.Project, error) {
	var raw rawProject
	path := fmt.Sprintf("/workspaces/%s/projects/%s", url.PathEscape(workspaceID), url.PathEscape(projectID))
	if err := c.get(ctx, path, nil, &raw); err != nil {
		return domain.Project{}, err
	}
	return mapProject(raw, workspaceID), nil
}

// GetUsers lists workspace members with their membership rates.
func (c *Client) GetUsers(ctx context.Context, workspaceID string) ([]domain.User, error) {
	raw, err := c.workspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	return c.users(ctx, raw)
}

func (c *Client) GetUserByID(ctx context.Context, workspaceID, userID string) (domain.User, error) {
	users, err := c.GetUsers(ctx, workspaceID)
	if err != nil {
		return domain.User{}, err
	}
	for _, u := range users {
		if u.ID == userID {
			return u, nil
		}
	}
	return domain.User{}, domain.NewError(domain.KindResourceNotFound, "User not found.")
}

// GetTimeEntries fetches a user's entries in [start, end].
// Durations of running entries are measured up to c.Now().
func (c *Client) GetTimeEntries(ctx context.Context, workspaceID, userID string, start, end time.Time) ([]domain.TimeEntry, error) {
	q := url.Values{}
	q.Set("page-size", pageSize)
	q.Set("start", formatTime(start))
	q.Set("end", formatTime(end))
	q.Set("project-required", "false")
	q.Set("task-required", "false")
	path := fmt.Sprintf("/workspaces/%s/user/%s/time-entries", url.PathEscape(workspaceID), url.PathEscape(userID))

	var raw []rawTimeEntry
	if err := c.get(ctx, path, q, &raw); err != nil {
		return nil, err
	}
	now := c.Now()
	out := make([]domain.TimeEntry, 0, len(raw))
	for _, t := range raw {
		out = append(out, domain.TimeEntry{
			WorkspaceID: workspaceID,
			ProjectID:   t.ProjectID,
			UserID:      userID,
			Description: t.Description,
			DurationMS:  domain.Duration(t.TimeInterval.Start, t.TimeInterval.End, now),
		})
	}
	c.log.Debug("clockify time entries fetched",
		slog.String("workspace", workspaceID),
		slog.String("user", userID),
		slog.Int("count", len(out)),
	)
	return out, nil
}

func (c *Client) workspaces(ctx context.Context) ([]rawWorkspace, error) {
	var raw []rawWorkspace
	if err := c.get(ctx, "/workspaces", nil, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, domain.NewError(domain.KindResourceNotFound, "No workspaces found.")
	}
	return raw, nil
}

func (c *Client) workspace(ctx context.Context, id string) (rawWorkspace, error) {
	all, err := c.workspaces(ctx)
	if err != nil {
		return rawWorkspace{}, err
	}
	for _, w := range all {
		if w.ID == id {
			return w, nil
		}
	}
	return rawWorkspace{}, domain.NewError(domain.KindResourceNotFound, "Workspace not found.")
}

func (c *Client) users(ctx context.Context, ws rawWorkspace) ([]domain.User, error) {
	q := url.Values{}
	q.Set("memberships", membershipWorkspace)
	q.Set("page-size", pageSize)
	var raw []rawUser
	if err := c.get(ctx, fmt.Sprintf("/workspaces/%s/users", url.PathEscape(ws.ID)), q, &raw); err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(raw))
	for _, u := range raw {
		out = append(out, domain.User{
			ID:           u.ID,
			Name:         u.Name,
			WorkspaceIDs: workspaceIDs(u.Memberships),
			HourlyRate:   memberRate(ws, u.ID),
		})
	}
	return out, nil
}

// get performs an authenticated GET and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if c.apiKey == "" {
		return domain.NewError(domain.KindCredentialNotSet, "")
	}
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return err
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return domain.WrapError(domain.KindUpstreamUnavailable, err, "clockify request failed")
	}
	defer resp.Body.Close()
	c.log.Debug("clockify request",
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("dur", time.Since(start)),
	)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return domain.NewError(domain.KindInvalidCredential, "")
	case resp.StatusCode == http.StatusNotFound:
		return domain.NewError(domain.KindResourceNotFound, "")
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.WrapError(domain.KindUpstreamUnavailable,
			fmt.Errorf("clockify: unexpected status %d: %s", resp.StatusCode, string(body)), "")
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.WrapError(domain.KindUpstreamUnavailable, fmt.Errorf("clockify: decoding %s: %w", path, err), "")
	}
	return nil
}

// normalizeRate converts an upstream rate to major units. Absent and zero
// rates both map to nil.
func normalizeRate(r *rawRate) *domain.CurrencyPair {
	if r == nil || r.Amount == 0 {
		return nil
	}
	return &domain.CurrencyPair{Amount: r.Amount / 100, Currency: r.Currency}
}

func memberRate(ws rawWorkspace, userID string) *domain.CurrencyPair {
	for _, m := range ws.Memberships {
		if m.UserID == userID && m.MembershipType == membershipWorkspace {
			return normalizeRate(m.HourlyRate)
		}
	}
	return nil
}

func mapWorkspace(w rawWorkspace, users []domain.User) domain.Workspace {
	if users == nil {
		for _, m := range w.Memberships {
			if m.MembershipType != membershipWorkspace {
				continue
			}
			users = append(users, domain.User{
				ID:           m.UserID,
				WorkspaceIDs: []string{w.ID},
				HourlyRate:   normalizeRate(m.HourlyRate),
			})
		}
	}
	return domain.Workspace{
		ID:         w.ID,
		Name:       w.Name,
		HourlyRate: normalizeRate(w.HourlyRate),
		Users:      users,
	}
}

func mapProject(p rawProject, workspaceID string) domain.Project {
	out := domain.Project{
		ID:          p.ID,
		Name:        p.Name,
		WorkspaceID: workspaceID,
		HourlyRate:  normalizeRate(p.HourlyRate),
	}
	if p.ClientID != "" {
		out.Client = &domain.Client{ID: p.ClientID, Name: p.ClientName}
	}
	return out
}

func workspaceIDs(ms []rawMembership) []string {
	var ids []string
	for _, m := range ms {
		if m.MembershipType == membershipWorkspace {
			ids = append(ids, m.TargetID)
		}
	}
	return ids
}

func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
