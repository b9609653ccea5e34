package usecase

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"clockwatch/internal/currency"
	"clockwatch/internal/domain"
	"clockwatch/internal/ports"
	"clockwatch/internal/report"
	"clockwatch/internal/timerange"
)

// maxParallelFetches bounds concurrent upstream requests within one report.
const maxParallelFetches = 4

// ReportRequest selects what to summarize. An empty UserID means the owner
// of the API key.
type ReportRequest struct {
	WorkspaceID string
	ProjectID   string
	UserID      string
	Range       timerange.Definition
	Currency    string
	DefaultRate *domain.CurrencyPair
	Now         time.Time
}

// Report is a priced summary ready for rendering.
type Report struct {
	Range     timerange.Definition
	Window    timerange.Range
	Currency  string
	Workspace domain.Workspace
	Project   *domain.Project
	User      domain.User

	Rows   []domain.ReportRow
	Groups []report.Group
	Totals report.Totals

	Estimate    float64
	HasEstimate bool
	Stats       *report.Stats
}

// ReportUseCase fetches time entries and prices them. A fresh currency
// converter is built per call, so rates are fetched at most once per base
// currency per report.
type ReportUseCase struct {
	Log   *slog.Logger
	Rates ports.RateSource
}

func (uc *ReportUseCase) converter() *currency.Converter {
	return currency.NewConverter(uc.Rates)
}

func (uc *ReportUseCase) userID(ctx context.Context, tracker ports.TimeTracker, req ReportRequest) (string, error) {
	if req.UserID != "" {
		return req.UserID, nil
	}
	self, err := tracker.GetUser(ctx)
	if err != nil {
		return "", err
	}
	return self.ID, nil
}

// ProjectSummary prices one user's entries on one project.
func (uc *ReportUseCase) ProjectSummary(ctx context.Context, tracker ports.TimeTracker, req ReportRequest) (Report, error) {
	userID, err := uc.userID(ctx, tracker, req)
	if err != nil {
		return Report{}, err
	}
	window := req.Range.Get(req.Now)

	var (
		ws      domain.Workspace
		project domain.Project
		entries []domain.TimeEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ws, err = tracker.GetWorkspaceByID(gctx, req.WorkspaceID)
		return err
	})
	g.Go(func() (err error) {
		project, err = tracker.GetProjectByID(gctx, req.WorkspaceID, req.ProjectID)
		return err
	})
	g.Go(func() (err error) {
		entries, err = tracker.GetTimeEntries(gctx, req.WorkspaceID, userID, window.Start, window.End)
		return err
	})
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	user, err := member(ws, userID)
	if err != nil {
		return Report{}, err
	}
	fallback := domain.FirstRate(ws.RateFor(userID), req.DefaultRate)
	rows, err := report.SummarizeProject(ctx, uc.converter(), entries, project, fallback, req.Currency)
	if err != nil {
		return Report{}, err
	}
	for i := range rows {
		rows[i].WorkspaceName = ws.Name
	}

	uc.Log.Info("project summary built",
		slog.String("workspace", ws.ID),
		slog.String("project", project.ID),
		slog.Int("entries", len(entries)),
		slog.Int("rows", len(rows)),
	)
	return finish(Report{Workspace: ws, Project: &project, User: user}, req, window, rows)
}

// WorkspaceSummary prices one user's entries across a workspace.
func (uc *ReportUseCase) WorkspaceSummary(ctx context.Context, tracker ports.TimeTracker, req ReportRequest) (Report, error) {
	userID, err := uc.userID(ctx, tracker, req)
	if err != nil {
		return Report{}, err
	}
	window := req.Range.Get(req.Now)

	var (
		ws       domain.Workspace
		projects []domain.Project
		entries  []domain.TimeEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ws, err = tracker.GetWorkspaceByID(gctx, req.WorkspaceID)
		return err
	})
	g.Go(func() (err error) {
		projects, err = tracker.GetProjects(gctx, req.WorkspaceID)
		return err
	})
	g.Go(func() (err error) {
		entries, err = tracker.GetTimeEntries(gctx, req.WorkspaceID, userID, window.Start, window.End)
		return err
	})
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	user, err := member(ws, userID)
	if err != nil {
		return Report{}, err
	}
	fallback := domain.FirstRate(ws.RateFor(userID), req.DefaultRate)
	rows, err := report.SummarizeWorkspace(ctx, uc.converter(), entries, projects, ws, fallback, req.Currency)
	if err != nil {
		return Report{}, err
	}

	uc.Log.Info("workspace summary built",
		slog.String("workspace", ws.ID),
		slog.Int("entries", len(entries)),
		slog.Int("rows", len(rows)),
	)
	return finish(Report{Workspace: ws, User: user}, req, window, rows)
}

// WorkspaceUsersSummary prices the entries of every member of a workspace.
// Rows are grouped by user, the busiest user first.
func (uc *ReportUseCase) WorkspaceUsersSummary(ctx context.Context, tracker ports.TimeTracker, req ReportRequest) (Report, error) {
	window := req.Range.Get(req.Now)

	var (
		ws       domain.Workspace
		projects []domain.Project
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ws, err = tracker.GetWorkspaceByID(gctx, req.WorkspaceID)
		return err
	})
	g.Go(func() (err error) {
		projects, err = tracker.GetProjects(gctx, req.WorkspaceID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	conv := uc.converter()
	perUser := make([][]domain.ReportRow, len(ws.Users))
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFetches)
	for i, u := range ws.Users {
		i, u := i, u
		g.Go(func() error {
			entries, err := tracker.GetTimeEntries(gctx, ws.ID, u.ID, window.Start, window.End)
			if err != nil {
				return err
			}
			fallback := domain.FirstRate(ws.RateFor(u.ID), req.DefaultRate)
			rows, err := report.SummarizeWorkspace(gctx, conv, entries, projects, ws, fallback, req.Currency)
			if err != nil {
				return err
			}
			for j := range rows {
				rows[j].UserName = u.Name
			}
			perUser[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	var rows []domain.ReportRow
	for _, r := range perUser {
		rows = append(rows, r...)
	}
	groups := report.GroupBy(rows, func(r domain.ReportRow) string { return r.UserName })
	report.SortGroupsByDuration(groups)

	uc.Log.Info("workspace users summary built",
		slog.String("workspace", ws.ID),
		slog.Int("users", len(ws.Users)),
		slog.Int("rows", len(rows)),
	)
	return finish(Report{Workspace: ws, Groups: groups}, req, window, rows)
}

// AllSummary prices the key owner's entries across every workspace. Only
// billable rows are kept, longest first.
func (uc *ReportUseCase) AllSummary(ctx context.Context, tracker ports.TimeTracker, req ReportRequest) (Report, error) {
	window := req.Range.Get(req.Now)

	var (
		self       domain.User
		workspaces []domain.Workspace
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		self, err = tracker.GetUser(gctx)
		return err
	})
	g.Go(func() (err error) {
		workspaces, err = tracker.GetWorkspaces(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	conv := uc.converter()
	perWorkspace := make([][]domain.ReportRow, len(workspaces))
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFetches)
	for i, ws := range workspaces {
		i, ws := i, ws
		g.Go(func() error {
			var (
				projects []domain.Project
				entries  []domain.TimeEntry
			)
			inner, ictx := errgroup.WithContext(gctx)
			inner.Go(func() (err error) {
				projects, err = tracker.GetProjects(ictx, ws.ID)
				return err
			})
			inner.Go(func() (err error) {
				entries, err = tracker.GetTimeEntries(ictx, ws.ID, self.ID, window.Start, window.End)
				return err
			})
			if err := inner.Wait(); err != nil {
				return err
			}
			fallback := domain.FirstRate(ws.RateFor(self.ID), req.DefaultRate)
			rows, err := report.SummarizeWorkspace(gctx, conv, entries, projects, ws, fallback, req.Currency)
			if err != nil {
				return err
			}
			perWorkspace[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	var rows []domain.ReportRow
	for _, ws := range perWorkspace {
		for _, r := range ws {
			if r.Price > 0 {
				rows = append(rows, r)
			}
		}
	}
	report.SortRowsByDuration(rows)

	out, err := finish(Report{User: self}, req, window, rows)
	if err != nil {
		return Report{}, err
	}
	stats := report.ComputeStats(out.Totals, req.Range, req.Now)
	out.Stats = &stats

	uc.Log.Info("all workspaces summary built",
		slog.Int("workspaces", len(workspaces)),
		slog.Int("rows", len(rows)),
	)
	return out, nil
}

func member(ws domain.Workspace, userID string) (domain.User, error) {
	u, ok := ws.Member(userID)
	if !ok {
		return domain.User{}, domain.NewError(domain.KindResourceNotFound, "User not found.")
	}
	return u, nil
}

func finish(r Report, req ReportRequest, window timerange.Range, rows []domain.ReportRow) (Report, error) {
	if len(rows) == 0 {
		return Report{}, domain.NewError(domain.KindEmptyResult, "")
	}
	r.Range = req.Range
	r.Window = window
	r.Currency = req.Currency
	r.Rows = rows
	r.Totals = report.Sum(rows)
	r.Estimate, r.HasEstimate = report.EstimateTotal(rows, req.Range, req.Now)
	return r, nil
}
