package discord

import (
	"context"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"

	"clockwatch/internal/currency"
	"clockwatch/internal/domain"
	"clockwatch/internal/ports"
	"clockwatch/internal/timerange"
)

const maxChoices = 25

type choice struct{ name, value string }

// Autocomplete answers an APPLICATION_COMMAND_AUTOCOMPLETE interaction.
// Lookup failures yield an empty list.
func (b *Bot) Autocomplete(ctx context.Context, i *discordgo.Interaction) *discordgo.InteractionResponse {
	opts := parseOptions(i.ApplicationCommandData())
	choices, err := b.choices(ctx, i, opts)
	if err != nil {
		b.Log.Debug("autocomplete failed", slog.String("command", opts.path), slog.String("err", err.Error()))
		choices = nil
	}

	out := make([]*discordgo.ApplicationCommandOptionChoice, 0, min(len(choices), maxChoices))
	for _, c := range choices {
		if len(out) == maxChoices {
			break
		}
		out = append(out, &discordgo.ApplicationCommandOptionChoice{Name: truncate(c.name, 100), Value: c.value})
	}
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: out},
	}
}

func (b *Bot) choices(ctx context.Context, i *discordgo.Interaction, opts options) ([]choice, error) {
	focused, query, ok := opts.Focused()
	if !ok {
		return nil, nil
	}

	switch focused {
	case "time":
		var out []choice
		for _, n := range timerange.Names(query) {
			out = append(out, choice{n, n})
		}
		return out, nil
	case "currency", "code":
		var out []choice
		for _, c := range currency.Popular {
			if contains(c, query) {
				out = append(out, choice{c, c})
			}
		}
		return out, nil
	}

	userID, err := interactionUserID(i)
	if err != nil {
		return nil, err
	}
	tracker, err := b.tracker(ctx, userID)
	if err != nil {
		return nil, err
	}
	workspaceID := opts.String("workspace")

	switch focused {
	case "workspace", "name":
		return workspaceChoices(ctx, tracker, query)
	case "project":
		return projectChoices(ctx, tracker, workspaceID, query)
	case "user":
		return userChoices(ctx, tracker, workspaceID, query)
	}
	return nil, nil
}

func workspaceChoices(ctx context.Context, tracker ports.TimeTracker, query string) ([]choice, error) {
	workspaces, err := tracker.GetWorkspaces(ctx)
	if err != nil {
		return nil, err
	}
	var out []choice
	for _, w := range workspaces {
		if contains(w.Name, query) {
			out = append(out, choice{w.Name, w.ID})
		}
	}
	return out, nil
}

// projectChoices lists projects of one workspace, or of every workspace
// prefixed with the workspace name when none is selected yet.
func projectChoices(ctx context.Context, tracker ports.TimeTracker, workspaceID, query string) ([]choice, error) {
	var workspaces []domain.Workspace
	if workspaceID != "" {
		workspaces = []domain.Workspace{{ID: workspaceID}}
	} else {
		var err error
		if workspaces, err = tracker.GetWorkspaces(ctx); err != nil {
			return nil, err
		}
	}

	var out []choice
	for _, w := range workspaces {
		projects, err := tracker.GetProjects(ctx, w.ID)
		if err != nil {
			return nil, err
		}
		for _, p := range projects {
			if !contains(p.Name, query) {
				continue
			}
			prefix := p.ClientName()
			if workspaceID == "" {
				prefix = w.Name
			}
			name := p.Name
			if prefix != "" {
				name = prefix + " - " + p.Name
			}
			out = append(out, choice{name, p.ID})
		}
		if len(out) >= maxChoices {
			break
		}
	}
	return out, nil
}

func userChoices(ctx context.Context, tracker ports.TimeTracker, workspaceID, query string) ([]choice, error) {
	var workspaces []domain.Workspace
	if workspaceID != "" {
		workspaces = []domain.Workspace{{ID: workspaceID}}
	} else {
		var err error
		if workspaces, err = tracker.GetWorkspaces(ctx); err != nil {
			return nil, err
		}
	}

	var out []choice
	for _, w := range workspaces {
		users, err := tracker.GetUsers(ctx, w.ID)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			if !contains(u.Name, query) {
				continue
			}
			name := u.Name
			if workspaceID == "" {
				name = w.Name + " - " + u.Name
			}
			out = append(out, choice{name, u.ID})
		}
		if len(out) >= maxChoices {
			break
		}
	}
	return out, nil
}

func contains(s, query string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(query))
}
