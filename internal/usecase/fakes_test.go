package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"clockwatch/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeTracker struct {
	self       domain.User
	workspaces []domain.Workspace
	projects   map[string][]domain.Project
	entries    map[string][]domain.TimeEntry // keyed by workspace/user

	mu     sync.Mutex
	ranges [][2]time.Time
}

func (f *fakeTracker) GetUser(context.Context) (domain.User, error) { return f.self, nil }

func (f *fakeTracker) GetWorkspaces(context.Context) ([]domain.Workspace, error) {
	if len(f.workspaces) == 0 {
		return nil, domain.NewError(domain.KindResourceNotFound, "No workspaces found.")
	}
	return f.workspaces, nil
}

func (f *fakeTracker) GetWorkspaceByID(_ context.Context, id string) (domain.Workspace, error) {
	for _, w := range f.workspaces {
		if w.ID == id {
			return w, nil
		}
	}
	return domain.Workspace{}, domain.NewError(domain.KindResourceNotFound, "Workspace not found.")
}

func (f *fakeTracker) GetProjects(_ context.Context, ws string) ([]domain.Project, error) {
	return f.projects[ws], nil
}

func (f *fakeTracker) GetProjectByID(_ context.Context, ws, id string) (domain.Project, error) {
	for _, p := range f.projects[ws] {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Project{}, domain.NewError(domain.KindResourceNotFound, "")
}

func (f *fakeTracker) GetUsers(ctx context.Context, ws string) ([]domain.User, error) {
	w, err := f.GetWorkspaceByID(ctx, ws)
	return w.Users, err
}

func (f *fakeTracker) GetUserByID(ctx context.Context, ws, id string) (domain.User, error) {
	w, err := f.GetWorkspaceByID(ctx, ws)
	if err != nil {
		return domain.User{}, err
	}
	u, ok := w.Member(id)
	if !ok {
		return domain.User{}, domain.NewError(domain.KindResourceNotFound, "User not found.")
	}
	return u, nil
}

func (f *fakeTracker) GetTimeEntries(_ context.Context, ws, user string, start, end time.Time) ([]domain.TimeEntry, error) {
	f.mu.Lock()
	f.ranges = append(f.ranges, [2]time.Time{start, end})
	f.mu.Unlock()
	return f.entries[ws+"/"+user], nil
}

type fakeRates struct {
	rates map[string]map[string]float64
	calls atomic.Int32
}

func (f *fakeRates) LatestRates(_ context.Context, base string) (map[string]float64, error) {
	f.calls.Add(1)
	r, ok := f.rates[base]
	if !ok {
		return nil, domain.NewError(domain.KindUpstreamUnavailable, "")
	}
	return r, nil
}

type memStore struct {
	mu sync.Mutex
	kv map[string]string
}

func newMemStore() *memStore { return &memStore{kv: map[string]string{}} }

func (m *memStore) Get(_ context.Context, user, name string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.kv[user+":"+name]
	return v, ok, nil
}

func (m *memStore) Put(_ context.Context, user, name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kv[user+":"+name] = value
	return nil
}

func (m *memStore) Delete(_ context.Context, user, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.kv, user+":"+name)
	return nil
}
