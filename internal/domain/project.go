package domain

// Project represents a tracker project in the domain layer.
type Project struct {
	ID          string
	Name        string
	WorkspaceID string
	Client      *Client
	HourlyRate  *CurrencyPair // nil when the project has no own rate
}

// Client is the customer a project is billed to.
type Client struct {
	ID   string
	Name string
}

// ClientName returns the client's name or an empty string.
func (p Project) ClientName() string {
	if p.Client == nil {
		return ""
	}
	return p.Client.Name
}
