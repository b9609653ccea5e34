// Package report groups time entries into priced summary rows.
package report

import (
	"context"

	"clockwatch/internal/domain"
)

const msPerHour = 3_600_000

// Converter converts a rate into the reporting currency.
type Converter interface {
	Convert(ctx context.Context, pair domain.CurrencyPair, target string) (domain.CurrencyPair, error)
}

// group accumulates entries sharing a key, remembering first-seen order.
type group struct {
	key        string
	durationMS int64
}

func groupByDescription(entries []domain.TimeEntry) []*group {
	var order []*group
	byKey := make(map[string]*group)
	for _, e := range entries {
		g, ok := byKey[e.Description]
		if !ok {
			g = &group{key: e.Description}
			byKey[e.Description] = g
			order = append(order, g)
		}
		g.durationMS += e.DurationMS
	}
	return order
}

// hourlyRate returns rate converted to target. A nil rate prices at zero.
func hourlyRate(ctx context.Context, conv Converter, rate *domain.CurrencyPair, target string) (float64, error) {
	if !rate.IsSet() {
		return 0, nil
	}
	converted, err := conv.Convert(ctx, *rate, target)
	if err != nil {
		return 0, err
	}
	return converted.Amount, nil
}

// price bills durationMS at an hourly rate.
func price(durationMS int64, hourly float64) float64 {
	return float64(durationMS) * hourly / msPerHour
}

// SummarizeProject groups the entries of project by description. The
// project's own rate wins over fallback when it is set.
func SummarizeProject(ctx context.Context, conv Converter, entries []domain.TimeEntry, project domain.Project, fallback *domain.CurrencyPair, target string) ([]domain.ReportRow, error) {
	var matching []domain.TimeEntry
	for _, e := range entries {
		if e.ProjectID == project.ID {
			matching = append(matching, e)
		}
	}
	rows := make([]domain.ReportRow, 0)
	if len(matching) == 0 {
		return rows, nil
	}

	rate := fallback
	if project.HourlyRate.IsSet() {
		rate = project.HourlyRate
	}

	hourly, err := hourlyRate(ctx, conv, rate, target)
	if err != nil {
		return nil, err
	}
	for _, g := range groupByDescription(matching) {
		rows = append(rows, domain.ReportRow{
			ProjectName: project.Name,
			ClientName:  project.ClientName(),
			Description: g.key,
			Price:       price(g.durationMS, hourly),
			DurationMS:  g.durationMS,
		})
	}
	return rows, nil
}

// SummarizeWorkspace summarizes entries across projects. Entries without a
// known project are grouped by description and priced at the fallback rate,
// which defaults to the workspace rate when unset. Project rows come first,
// in the order their project was first seen, followed by the orphan rows.
func SummarizeWorkspace(ctx context.Context, conv Converter, entries []domain.TimeEntry, projects []domain.Project, workspace domain.Workspace, fallback *domain.CurrencyPair, target string) ([]domain.ReportRow, error) {
	known := make(map[string]struct{}, len(projects))
	for _, p := range projects {
		known[p.ID] = struct{}{}
	}

	var (
		partitionOrder []string
		partitions     = make(map[string][]domain.TimeEntry)
		orphans        []domain.TimeEntry
	)
	for _, e := range entries {
		if _, ok := known[e.ProjectID]; e.ProjectID == "" || !ok {
			orphans = append(orphans, e)
			continue
		}
		if _, seen := partitions[e.ProjectID]; !seen {
			partitionOrder = append(partitionOrder, e.ProjectID)
		}
		partitions[e.ProjectID] = append(partitions[e.ProjectID], e)
	}

	rate := domain.FirstRate(fallback, workspace.HourlyRate)

	rows := make([]domain.ReportRow, 0)
	for _, id := range partitionOrder {
		project, ok := findProject(projects, id)
		if !ok {
			return nil, domain.NewError(domain.KindResourceNotFound, "project not found")
		}
		projectRows, err := SummarizeProject(ctx, conv, partitions[id], project, rate, target)
		if err != nil {
			return nil, err
		}
		for _, r := range projectRows {
			r.WorkspaceName = workspace.Name
			rows = append(rows, r)
		}
	}

	if len(orphans) == 0 {
		return rows, nil
	}
	hourly, err := hourlyRate(ctx, conv, rate, target)
	if err != nil {
		return nil, err
	}
	for _, g := range groupByDescription(orphans) {
		rows = append(rows, domain.ReportRow{
			WorkspaceName: workspace.Name,
			Description:   g.key,
			Price:         price(g.durationMS, hourly),
			DurationMS:    g.durationMS,
		})
	}
	return rows, nil
}

func findProject(projects []domain.Project, id string) (domain.Project, bool) {
	for _, p := range projects {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Project{}, false
}
