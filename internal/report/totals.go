package report

import (
	"math"
	"time"

	"clockwatch/internal/domain"
	"clockwatch/internal/timerange"
)

// Totals is the aggregate money and elapsed time of a summary.
type Totals struct {
	Money     float64
	ElapsedMS int64
}

// Sum adds up rows. An empty summary yields zero totals.
func Sum(rows []domain.ReportRow) Totals {
	var t Totals
	for _, r := range rows {
		t.Money += r.Price
		t.ElapsedMS += r.DurationMS
	}
	return t
}

// EstimateTotal projects the money earned over the whole range from the
// money earned so far, assuming a uniform rate. It reports false when the
// range has no progress function or has fully elapsed.
func EstimateTotal(rows []domain.ReportRow, def timerange.Definition, now time.Time) (float64, bool) {
	if def.Progress == nil {
		return 0, false
	}
	progress := def.Progress(def.Get(now), now)
	if progress == 1 || progress <= 0 {
		return 0, false
	}
	return Sum(rows).Money / progress, true
}

// Stats are the headline figures of the all-workspaces summary.
type Stats struct {
	AvgHoursPerDay float64
	AvgHourlyRate  float64
	PercentWorked  float64
}

// ComputeStats derives averages from totals over r. Days are counted from
// the start of r up to now, rounded up.
func ComputeStats(t Totals, def timerange.Definition, now time.Time) Stats {
	r := def.Get(now)

	var s Stats
	days := math.Ceil(float64(now.Sub(r.Start)) / float64(24*time.Hour))
	if days > 0 {
		s.AvgHoursPerDay = float64(t.ElapsedMS) / days / msPerHour
	}
	if t.ElapsedMS > 0 {
		s.AvgHourlyRate = t.Money / float64(t.ElapsedMS) * msPerHour
	}

	progress := 1.0
	if def.Progress != nil {
		progress = def.Progress(r, now)
	}
	window := float64(r.End.Sub(r.Start).Milliseconds()) * progress
	if window > 0 {
		s.PercentWorked = math.Min(100, float64(t.ElapsedMS)/window*100)
	}
	return s
}
