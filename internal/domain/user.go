package domain

// User is a tracker account, optionally scoped to the workspaces it belongs to.
type User struct {
	ID           string
	Name         string
	WorkspaceIDs []string
	HourlyRate   *CurrencyPair
}
