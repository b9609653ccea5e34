package discord

import (
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

func stringOption(name, description string, required, autocomplete bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionString,
		Name:         name,
		Description:  description,
		Required:     required,
		Autocomplete: autocomplete,
	}
}

func subcommand(name, description string, opts ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        name,
		Description: description,
		Options:     opts,
	}
}

var (
	optWorkspace = stringOption("workspace", "The workspace to fetch.", true, true)
	optProject   = stringOption("project", "The project to fetch.", true, true)
	optUser      = stringOption("user", "The user to fetch.", false, true)
	optTime      = stringOption("time", "The time range to fetch.", false, true)
	optCurrency  = stringOption("currency", "The currency to use.", false, true)

	minRate = 0.0
)

// Commands are the slash commands registered with Discord.
var Commands = []*discordgo.ApplicationCommand{
	{
		Name:        "settings",
		Description: "Manage your settings.",
		Options: []*discordgo.ApplicationCommandOption{
			subcommand("setapikey", "Sets your Clockify API key.",
				stringOption("key", "Your Clockify API key", true, false)),
			subcommand("currency", "Sets the currency your summaries are shown in.",
				stringOption("code", "ISO 4217 currency code, e.g. EUR.", true, true)),
			subcommand("rate", "Sets the hourly rate used when Clockify has none. Zero clears it.",
				&discordgo.ApplicationCommandOption{
					Type:        discordgo.ApplicationCommandOptionNumber,
					Name:        "amount",
					Description: "Hourly rate in major units.",
					Required:    true,
					MinValue:    &minRate,
				},
				optCurrency),
		},
	},
	{
		Name:        "user",
		Description: "Fetch your user information.",
	},
	{
		Name:        "workspace",
		Description: "Workspace information.",
		Options: []*discordgo.ApplicationCommandOption{
			subcommand("info", "Fetch information on a specific workspace.",
				stringOption("name", "The workspace to fetch.", true, true)),
		},
	},
	{
		Name:        "summary",
		Description: "Summaries of clocked time.",
		Options: []*discordgo.ApplicationCommandOption{
			subcommand("project", "Fetch clocked time summary for a specific project.",
				optWorkspace, optProject, optUser, optTime, optCurrency),
			subcommand("workspace", "Fetch clocked time summary for a specific workspace.",
				optWorkspace, optUser, optTime, optCurrency),
			subcommand("workspaceusers", "Fetch clocked time summary across all users.",
				optWorkspace, optTime, optCurrency),
			subcommand("all", "Fetch clocked time summary for all workspaces.",
				optTime, optCurrency),
		},
	},
	{
		Name:        "invite",
		Description: "Invite the bot to your server.",
	},
}

// Register overwrites the application's commands with Commands. An empty
// guildID registers them globally.
func Register(s *discordgo.Session, appID, guildID string, log *slog.Logger) error {
	created, err := s.ApplicationCommandBulkOverwrite(appID, guildID, Commands)
	if err != nil {
		return fmt.Errorf("discord: registering commands: %w", err)
	}
	for _, c := range created {
		log.Info("command registered", slog.String("name", c.Name), slog.String("id", c.ID))
	}
	return nil
}
