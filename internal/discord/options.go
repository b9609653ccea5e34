package discord

import (
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"clockwatch/internal/domain"
)

// options is the flattened view of a command invocation: the command path
// ("summary project") and its leaf options.
type options struct {
	path   string
	values map[string]*discordgo.ApplicationCommandInteractionDataOption
}

func parseOptions(data discordgo.ApplicationCommandInteractionData) options {
	path := []string{data.Name}
	leaves := data.Options
	for len(leaves) == 1 && isSubcommand(leaves[0].Type) {
		path = append(path, leaves[0].Name)
		leaves = leaves[0].Options
	}
	values := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(leaves))
	for _, o := range leaves {
		values[o.Name] = o
	}
	return options{path: strings.Join(path, " "), values: values}
}

func isSubcommand(t discordgo.ApplicationCommandOptionType) bool {
	return t == discordgo.ApplicationCommandOptionSubCommand || t == discordgo.ApplicationCommandOptionSubCommandGroup
}

// String returns the named option as text. Discord sends string options as
// JSON strings; anything else is formatted.
func (o options) String(name string) string {
	opt, ok := o.values[name]
	if !ok || opt.Value == nil {
		return ""
	}
	switch v := opt.Value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// Required returns the named option or an InvalidInteraction error.
func (o options) Required(name string) (string, error) {
	v := o.String(name)
	if v == "" {
		return "", domain.NewError(domain.KindInvalidInteraction, "missing option "+name)
	}
	return v, nil
}

// Number returns a numeric option and whether it was supplied.
func (o options) Number(name string) (float64, bool) {
	opt, ok := o.values[name]
	if !ok {
		return 0, false
	}
	switch v := opt.Value.(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Focused returns the option being autocompleted.
func (o options) Focused() (name, value string, ok bool) {
	for n, opt := range o.values {
		if opt.Focused {
			return n, o.String(n), true
		}
	}
	return "", "", false
}

// interactionUserID returns the invoking user, from the member in guilds and
// from the user in DMs.
func interactionUserID(i *discordgo.Interaction) (string, error) {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID, nil
	}
	if i.User != nil {
		return i.User.ID, nil
	}
	return "", domain.NewError(domain.KindInvalidInteraction, "interaction has no user")
}
