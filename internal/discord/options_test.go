package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestParseOptions(t *testing.T) {
	i := command("42", "summary", "project", strOpt("workspace", " ws1 "), strOpt("project", "p1"),
		&discordgo.ApplicationCommandInteractionDataOption{Name: "amount", Type: discordgo.ApplicationCommandOptionNumber, Value: 12.5})
	opts := parseOptions(i.ApplicationCommandData())

	assert.Equal(t, "summary project", opts.path)
	assert.Equal(t, "ws1", opts.String("workspace"))
	assert.Equal(t, "", opts.String("missing"))
	n, ok := opts.Number("amount")
	assert.True(t, ok)
	assert.Equal(t, 12.5, n)

	_, err := opts.Required("user")
	assert.Error(t, err)

	_, _, ok = opts.Focused()
	assert.False(t, ok)
}

func TestParseOptions_TopLevel(t *testing.T) {
	opts := parseOptions(command("42", "user", "").ApplicationCommandData())
	assert.Equal(t, "user", opts.path)
}
