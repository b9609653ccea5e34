// Package notify reports unexpected errors to an error tracker.
package notify

import (
	"github.com/bugsnag/bugsnag-go"
)

const (
	StageProduction  = "production"
	StageStaging     = "staging"
	StageDevelopment = "development"
)

// Notifier reports errors that have no user-facing classification.
type Notifier interface {
	NotifyError(err error)
	NotifyInteractionError(command, userID string, err error)
}

type BugsnagNotifier struct {
	apiKey string
	stage  string
}

func NewBugsnagNotifier(apiKey, stage string) *BugsnagNotifier {
	n := &BugsnagNotifier{apiKey: apiKey, stage: stage}

	bugsnag.Configure(bugsnag.Configuration{
		APIKey:       n.apiKey,
		ReleaseStage: n.stage,
		NotifyReleaseStages: []string{
			StageProduction,
			StageStaging,
		},
		PanicHandler: func() {},
	})

	return n
}

func (n *BugsnagNotifier) NotifyError(err error) {
	_ = bugsnag.Notify(err)
}

// NotifyInteractionError attaches the slash command and Discord user to the report.
func (n *BugsnagNotifier) NotifyInteractionError(command, userID string, err error) {
	_ = bugsnag.Notify(err, bugsnag.User{Id: userID}, bugsnag.MetaData{
		"interaction": {
			"command": command,
			"userID":  userID,
		},
	})
}

// NopNotifier drops every report. Used when no API key is configured and in tests.
type NopNotifier struct{}

func NewNopNotifier() *NopNotifier { return &NopNotifier{} }

func (NopNotifier) NotifyError(error)                            {}
func (NopNotifier) NotifyInteractionError(string, string, error) {}

// New returns a bugsnag notifier when apiKey is set and a no-op one otherwise.
func New(apiKey, stage string) Notifier {
	if apiKey == "" {
		return NewNopNotifier()
	}
	return NewBugsnagNotifier(apiKey, stage)
}
