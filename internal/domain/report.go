package domain

// ReportRow is one grouped, priced line of a summary, keyed by project and description.
type ReportRow struct {
	WorkspaceName string
	ProjectName   string
	ClientName    string
	UserName      string
	Description   string // Empty means no description
	Price         float64
	DurationMS    int64
}
