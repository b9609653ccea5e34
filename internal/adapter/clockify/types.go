package clockify

import "time"

// rawRate mirrors Clockify's rate object. Amounts are scaled by 100.
type rawRate struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type rawMembership struct {
	UserID         string   `json:"userId"`
	HourlyRate     *rawRate `json:"hourlyRate"`
	CostRate       *rawRate `json:"costRate"`
	TargetID       string   `json:"targetId"`
	MembershipType string   `json:"membershipType"`
}

type rawUser struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Memberships []rawMembership `json:"memberships"`
}

type rawWorkspace struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	HourlyRate  *rawRate        `json:"hourlyRate"`
	Memberships []rawMembership `json:"memberships"`
}

type rawProject struct {
	ID          string   `json:"id"`
	WorkspaceID string   `json:"workspaceId"`
	Name        string   `json:"name"`
	HourlyRate  *rawRate `json:"hourlyRate"`
	Billable    bool     `json:"billable"`
	ClientID    string   `json:"clientId"`
	ClientName  string   `json:"clientName"`
}

type rawTimeEntry struct {
	ID           string          `json:"id"`
	Description  string          `json:"description"`
	ProjectID    string          `json:"projectId"`
	UserID       string          `json:"userId"`
	WorkspaceID  string          `json:"workspaceId"`
	Billable     bool            `json:"billable"`
	TimeInterval rawTimeInterval `json:"timeInterval"`
}

type rawTimeInterval struct {
	Start time.Time  `json:"start"`
	End   *time.Time `json:"end"`
}

const membershipWorkspace = "WORKSPACE"
