package report

import (
	"sort"

	"clockwatch/internal/domain"
)

// Group is a labelled slice of rows, used by the renderer to build fields.
type Group struct {
	Key  string
	Rows []domain.ReportRow
}

// GroupBy partitions rows by key, keeping the order keys are first seen.
func GroupBy(rows []domain.ReportRow, key func(domain.ReportRow) string) []Group {
	var out []Group
	index := make(map[string]int)
	for _, r := range rows {
		k := key(r)
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, Group{Key: k})
		}
		out[i].Rows = append(out[i].Rows, r)
	}
	return out
}

// SortGroupsByDuration orders groups by total duration, longest first.
func SortGroupsByDuration(groups []Group) {
	sort.SliceStable(groups, func(i, j int) bool {
		return Sum(groups[i].Rows).ElapsedMS > Sum(groups[j].Rows).ElapsedMS
	})
}

// SortRowsByDuration orders rows by duration, longest first.
func SortRowsByDuration(rows []domain.ReportRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].DurationMS > rows[j].DurationMS
	})
}
