package ports

import (
	"context"
	"time"

	"clockwatch/internal/domain"
)

// TimeTracker defines the reads the bot performs against the time-tracking API.
// Implementations are scoped to a single user's credential.
type TimeTracker interface {
	GetUser(ctx context.Context) (domain.User, error)
	GetWorkspaces(ctx context.Context) ([]domain.Workspace, error)
	GetWorkspaceByID(ctx context.Context, id string) (domain.Workspace, error)
	GetProjects(ctx context.Context, workspaceID string) ([]domain.Project, error)
	GetProjectByID(ctx context.Context, workspaceID, projectID string) (domain.Project, error)
	GetUsers(ctx context.Context, workspaceID string) ([]domain.User, error)
	GetUserByID(ctx context.Context, workspaceID, userID string) (domain.User, error)
	GetTimeEntries(ctx context.Context, workspaceID, userID string, start, end time.Time) ([]domain.TimeEntry, error)
}

// RateSource returns the latest exchange rates quoted against base.
type RateSource interface {
	LatestRates(ctx context.Context, base string) (map[string]float64, error)
}

// SettingsStore is a per-user key/value store. Keys never cross users.
type SettingsStore interface {
	Get(ctx context.Context, userID, name string) (string, bool, error)
	Put(ctx context.Context, userID, name, value string) error
	Delete(ctx context.Context, userID, name string) error
}
