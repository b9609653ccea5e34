// Package discord answers Discord slash-command interactions.
package discord

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"clockwatch/internal/currency"
	"clockwatch/internal/domain"
	"clockwatch/internal/notify"
	"clockwatch/internal/ports"
	"clockwatch/internal/report"
	"clockwatch/internal/timerange"
	"clockwatch/internal/usecase"
)

// Bot runs slash commands on behalf of the invoking Discord user.
type Bot struct {
	Log      *slog.Logger
	Reports  *usecase.ReportUseCase
	Settings *usecase.SettingsUseCase
	Notifier notify.Notifier

	// NewTracker builds a time tracker client bound to one user's API key.
	NewTracker func(apiKey string) ports.TimeTracker

	Location *time.Location
	Now      func() time.Time
}

type commandFunc func(b *Bot, ctx context.Context, i *discordgo.Interaction, userID string, opts options) (*discordgo.InteractionResponse, error)

var commandHandlers = map[string]commandFunc{
	"settings setapikey":     (*Bot).setAPIKey,
	"settings currency":      (*Bot).setCurrency,
	"settings rate":          (*Bot).setRate,
	"user":                   (*Bot).user,
	"workspace info":         (*Bot).workspaceInfo,
	"summary project":        (*Bot).summaryProject,
	"summary workspace":      (*Bot).summaryWorkspace,
	"summary workspaceusers": (*Bot).summaryWorkspaceUsers,
	"summary all":            (*Bot).summaryAll,
	"invite":                 (*Bot).invite,
}

// Command runs an APPLICATION_COMMAND interaction. Failures are rendered as
// error messages, never returned.
func (b *Bot) Command(ctx context.Context, i *discordgo.Interaction) *discordgo.InteractionResponse {
	opts := parseOptions(i.ApplicationCommandData())
	start := time.Now()

	resp, err := b.command(ctx, i, opts)
	if err != nil {
		resp = b.failure(i, opts.path, err)
	}
	b.Log.Info("command handled",
		slog.String("command", opts.path),
		slog.Bool("ok", err == nil),
		slog.Duration("dur", time.Since(start)),
	)
	return resp
}

func (b *Bot) command(ctx context.Context, i *discordgo.Interaction, opts options) (*discordgo.InteractionResponse, error) {
	h, ok := commandHandlers[opts.path]
	if !ok {
		return nil, domain.NewError(domain.KindInvalidInteraction, "unknown command "+opts.path)
	}
	userID, err := interactionUserID(i)
	if err != nil {
		return nil, err
	}
	return h(b, ctx, i, userID, opts)
}

func (b *Bot) failure(i *discordgo.Interaction, command string, err error) *discordgo.InteractionResponse {
	resp, unexpected := errorResponse(err)
	if unexpected {
		userID, _ := interactionUserID(i)
		b.Log.Error("command failed", slog.String("command", command), slog.String("err", err.Error()))
		b.Notifier.NotifyInteractionError(command, userID, err)
	} else {
		b.Log.Debug("command rejected",
			slog.String("command", command),
			slog.String("kind", domain.KindOf(err).String()),
			slog.String("err", err.Error()),
		)
	}
	return resp
}

func (b *Bot) tracker(ctx context.Context, userID string) (ports.TimeTracker, error) {
	key, err := b.Settings.APIKey(ctx, userID)
	if err != nil {
		return nil, err
	}
	return b.NewTracker(key), nil
}

func (b *Bot) now() time.Time {
	now := time.Now()
	if b.Now != nil {
		now = b.Now()
	}
	if b.Location != nil {
		now = now.In(b.Location)
	}
	return now
}

func (b *Bot) reportRequest(ctx context.Context, userID string, opts options) (usecase.ReportRequest, error) {
	code := opts.String("currency")
	if code == "" {
		var err error
		if code, err = b.Settings.Currency(ctx, userID); err != nil {
			return usecase.ReportRequest{}, err
		}
	} else {
		normalized, ok := currency.Normalize(code)
		if !ok {
			return usecase.ReportRequest{}, domain.NewError(domain.KindInvalidInput, fmt.Sprintf("%q is not a known currency code.", code))
		}
		code = normalized
	}
	rate, err := b.Settings.DefaultRateFor(ctx, userID)
	if err != nil {
		return usecase.ReportRequest{}, err
	}
	return usecase.ReportRequest{
		WorkspaceID: opts.String("workspace"),
		ProjectID:   opts.String("project"),
		UserID:      opts.String("user"),
		Range:       timerange.Lookup(opts.String("time")),
		Currency:    code,
		DefaultRate: rate,
		Now:         b.now(),
	}, nil
}

func (b *Bot) setAPIKey(ctx context.Context, _ *discordgo.Interaction, userID string, opts options) (*discordgo.InteractionResponse, error) {
	key, err := opts.Required("key")
	if err != nil {
		return nil, err
	}
	if err := b.Settings.SetAPIKey(ctx, userID, key); err != nil {
		return nil, err
	}
	return infoMessage("API key set.", true), nil
}

func (b *Bot) setCurrency(ctx context.Context, _ *discordgo.Interaction, userID string, opts options) (*discordgo.InteractionResponse, error) {
	code, err := opts.Required("code")
	if err != nil {
		return nil, err
	}
	normalized, err := b.Settings.SetCurrency(ctx, userID, code)
	if err != nil {
		return nil, err
	}
	return infoMessage(fmt.Sprintf("Summaries will now be shown in `%s`.", normalized), true), nil
}

func (b *Bot) setRate(ctx context.Context, _ *discordgo.Interaction, userID string, opts options) (*discordgo.InteractionResponse, error) {
	amount, ok := opts.Number("amount")
	if !ok {
		return nil, domain.NewError(domain.KindInvalidInteraction, "missing option amount")
	}
	rate, err := b.Settings.SetDefaultRate(ctx, userID, amount, opts.String("currency"))
	if err != nil {
		return nil, err
	}
	if rate == nil {
		return infoMessage("Default hourly rate cleared.", true), nil
	}
	return infoMessage(fmt.Sprintf("Default hourly rate set to %s/hr.", currency.Format(rate.Currency, rate.Amount)), true), nil
}

func (b *Bot) user(ctx context.Context, _ *discordgo.Interaction, userID string, _ options) (*discordgo.InteractionResponse, error) {
	tracker, err := b.tracker(ctx, userID)
	if err != nil {
		return nil, err
	}
	self, err := tracker.GetUser(ctx)
	if err != nil {
		return nil, err
	}
	workspaces, err := tracker.GetWorkspaces(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(workspaces))
	for _, w := range workspaces {
		names = append(names, w.Name)
	}

	e := embed(colorSuccess, "", fmt.Sprintf("You are signed in as `%s`.", self.Name))
	e.Title = "User"
	addField(e, "Workspaces", strings.Join(names, ", "))
	return successMessage(e), nil
}

func (b *Bot) workspaceInfo(ctx context.Context, _ *discordgo.Interaction, userID string, opts options) (*discordgo.InteractionResponse, error) {
	id, err := opts.Required("name")
	if err != nil {
		return nil, err
	}
	tracker, err := b.tracker(ctx, userID)
	if err != nil {
		return nil, err
	}
	ws, err := tracker.GetWorkspaceByID(ctx, id)
	if err != nil {
		return nil, err
	}
	projects, err := tracker.GetProjects(ctx, ws.ID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(projects))
	for _, p := range projects {
		names = append(names, p.Name)
	}

	e := embed(colorSuccess, "", fmt.Sprintf("The workspace `%s` has %d members.", ws.Name, len(ws.Users)))
	e.Title = "Workspace"
	if ws.HourlyRate.IsSet() {
		addField(e, "Hourly Rate", currency.Format(ws.HourlyRate.Currency, ws.HourlyRate.Amount))
	}
	addField(e, fmt.Sprintf("Projects (%d)", len(projects)), strings.Join(names, ", "))
	return successMessage(e), nil
}

func (b *Bot) invite(_ context.Context, i *discordgo.Interaction, _ string, _ options) (*discordgo.InteractionResponse, error) {
	link := fmt.Sprintf("https://discord.com/api/oauth2/authorize?client_id=%s&permissions=0&scope=bot%%20applications.commands", i.AppID)
	return infoMessage(fmt.Sprintf("You can invite the bot to your server by [clicking here](%s). 💖", link), false), nil
}

func (b *Bot) summaryProject(ctx context.Context, _ *discordgo.Interaction, userID string, opts options) (*discordgo.InteractionResponse, error) {
	r, err := b.runReport(ctx, userID, opts, b.Reports.ProjectSummary, "workspace", "project")
	if err != nil {
		return nil, err
	}
	code := r.Currency
	e := embed(colorSuccess, "Project Summary • "+r.Project.Name,
		fmt.Sprintf("Showing time entries for %s for `%s`.", r.Range.SentenceName, r.User.Name)+
			estimateSentence(r, " They are projected to earn %s %s on this project."))
	summaryField(e, code, r.Rows, func(t report.Totals) string {
		return fmt.Sprintf("Time Entries - %s • %s", currency.Format(code, t.Money), formatElapsed(t.ElapsedMS))
	})
	e.Footer = totalsFooter(code, r.Totals)
	return successMessage(e), nil
}

func (b *Bot) summaryWorkspace(ctx context.Context, _ *discordgo.Interaction, userID string, opts options) (*discordgo.InteractionResponse, error) {
	r, err := b.runReport(ctx, userID, opts, b.Reports.WorkspaceSummary, "workspace")
	if err != nil {
		return nil, err
	}
	code := r.Currency
	e := embed(colorSuccess, "Workspace Summary • "+r.Workspace.Name,
		fmt.Sprintf("Showing time entries for %s for `%s`.", r.Range.SentenceName, r.User.Name)+
			estimateSentence(r, " They are projected to earn %s %s."))
	for _, g := range report.GroupBy(r.Rows, projectLabel) {
		summaryField(e, code, g.Rows, func(t report.Totals) string {
			return fmt.Sprintf("%s - %s • %s", g.Key, formatElapsed(t.ElapsedMS), currency.Format(code, t.Money))
		})
	}
	e.Footer = totalsFooter(code, r.Totals)
	return successMessage(e), nil
}

func (b *Bot) summaryWorkspaceUsers(ctx context.Context, _ *discordgo.Interaction, userID string, opts options) (*discordgo.InteractionResponse, error) {
	r, err := b.runReport(ctx, userID, opts, b.Reports.WorkspaceUsersSummary, "workspace")
	if err != nil {
		return nil, err
	}
	code := r.Currency
	e := embed(colorSuccess, "Workspace User Summary • "+r.Workspace.Name,
		fmt.Sprintf("Showing time entries for %s across all workspace users.", r.Range.SentenceName)+
			estimateSentence(r, " The projected total is %s %s."))
	for _, g := range r.Groups {
		name := g.Key
		if name == "" {
			name = "User"
		}
		summaryField(e, code, g.Rows, func(t report.Totals) string {
			return fmt.Sprintf("%s - %s • %s", name, currency.Format(code, t.Money), formatElapsed(t.ElapsedMS))
		})
	}
	e.Footer = totalsFooter(code, r.Totals)
	return successMessage(e), nil
}

func (b *Bot) summaryAll(ctx context.Context, _ *discordgo.Interaction, userID string, opts options) (*discordgo.InteractionResponse, error) {
	r, err := b.runReport(ctx, userID, opts, b.Reports.AllSummary)
	if err != nil {
		return nil, err
	}
	code := r.Currency
	e := embed(colorSuccess, "Summary • "+r.User.Name,
		fmt.Sprintf("Showing time entries for %s.", r.Range.SentenceName))

	stats := []string{
		fmt.Sprintf(" **•** `Avg. Hours/Day`: %.2f hours", r.Stats.AvgHoursPerDay),
		fmt.Sprintf(" **•** `Avg. Hourly Rate`: %s/hr", currency.Format(code, r.Stats.AvgHourlyRate)),
		fmt.Sprintf(" **•** `%% Worked of %s`: %.2f%%", r.Range.SentenceName, r.Stats.PercentWorked),
	}
	if r.HasEstimate {
		stats = append(stats, fmt.Sprintf(" **•** `Projected Earnings`: %s %s", currency.Format(code, r.Estimate), r.Range.SentenceName))
	}
	addField(e, "Summary", strings.Join(stats, "\n"))

	for _, g := range report.GroupBy(r.Rows, func(row domain.ReportRow) string { return row.WorkspaceName }) {
		summaryField(e, code, g.Rows, func(t report.Totals) string {
			return fmt.Sprintf("%s - %s • %s", g.Key, currency.Format(code, t.Money), formatElapsed(t.ElapsedMS))
		})
	}
	e.Footer = totalsFooter(code, r.Totals)
	return successMessage(e), nil
}

type reportFunc func(ctx context.Context, tracker ports.TimeTracker, req usecase.ReportRequest) (usecase.Report, error)

func (b *Bot) runReport(ctx context.Context, userID string, opts options, run reportFunc, required ...string) (usecase.Report, error) {
	for _, name := range required {
		if _, err := opts.Required(name); err != nil {
			return usecase.Report{}, err
		}
	}
	tracker, err := b.tracker(ctx, userID)
	if err != nil {
		return usecase.Report{}, err
	}
	req, err := b.reportRequest(ctx, userID, opts)
	if err != nil {
		return usecase.Report{}, err
	}
	return run(ctx, tracker, req)
}

func estimateSentence(r usecase.Report, format string) string {
	if !r.HasEstimate {
		return ""
	}
	return fmt.Sprintf(format, currency.Format(r.Currency, r.Estimate), r.Range.SentenceName)
}
