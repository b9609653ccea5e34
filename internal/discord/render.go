package discord

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"clockwatch/internal/currency"
	"clockwatch/internal/domain"
	"clockwatch/internal/report"
)

const (
	colorError   = 0xef5350
	colorSuccess = 0x66bb6a
	colorInfo    = 0x42a5f5

	authorIcon = "https://cdn.discordapp.com/avatars/1017030181078183966/b94814966373747feac0f6fe29167402.png?size=64"

	// Discord embed limits.
	maxFields      = 25
	maxFieldName   = 256
	maxFieldValue  = 1024
	maxDescription = 4096

	headerSize = 3
)

func message(embed *discordgo.MessageEmbed, ephemeral bool) *discordgo.InteractionResponse {
	data := &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}
}

func embed(color int, author, description string) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Color:       color,
		Description: truncate(description, maxDescription),
	}
	if author != "" {
		e.Author = &discordgo.MessageEmbedAuthor{Name: author, IconURL: authorIcon}
	}
	return e
}

func successMessage(e *discordgo.MessageEmbed) *discordgo.InteractionResponse {
	e.Color = colorSuccess
	return message(e, false)
}

func infoMessage(text string, ephemeral bool) *discordgo.InteractionResponse {
	return message(embed(colorInfo, "", text), ephemeral)
}

func errorMessage(text string) *discordgo.InteractionResponse {
	return message(embed(colorError, "Error", text), true)
}

func addField(e *discordgo.MessageEmbed, name, value string) {
	if len(e.Fields) >= maxFields {
		return
	}
	e.Fields = append(e.Fields, &discordgo.MessageEmbedField{
		Name:  truncate(name, maxFieldName),
		Value: truncateLines(value, maxFieldValue),
	})
}

// formatElapsed renders milliseconds as "1d 2h 3m". Units below the largest
// non-zero one are always shown.
func formatElapsed(ms int64) string {
	minutes := ms / 60_000
	hours := minutes / 60
	days := hours / 24

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours%24))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes%60))
	}
	if len(parts) == 0 {
		return "0m"
	}
	return strings.Join(parts, " ")
}

func projectLabel(r domain.ReportRow) string {
	name := r.ProjectName
	if name == "" {
		name = "No Project"
	}
	if r.ClientName != "" {
		return r.ClientName + ": " + name
	}
	return name
}

func descriptionLabel(description string) string {
	if description == "" {
		return "Other"
	}
	return description
}

func rowLine(code string, r domain.ReportRow) string {
	return fmt.Sprintf(" **•** `%s` %s (%s): %s",
		projectLabel(r), descriptionLabel(r.Description), formatElapsed(r.DurationMS), currency.Format(code, r.Price))
}

// summaryField lists the longest rows of a group and folds the rest into a
// single "... and N more" line. title receives the group totals.
func summaryField(e *discordgo.MessageEmbed, code string, rows []domain.ReportRow, title func(report.Totals) string) {
	sorted := append([]domain.ReportRow(nil), rows...)
	report.SortRowsByDuration(sorted)

	header := sorted
	var footer []domain.ReportRow
	if len(sorted) > headerSize {
		header, footer = sorted[:headerSize], sorted[headerSize:]
	}

	lines := make([]string, 0, len(header)+1)
	for _, r := range header {
		lines = append(lines, rowLine(code, r))
	}
	if len(footer) > 0 {
		rest := report.Sum(footer)
		lines = append(lines, fmt.Sprintf("*... and %d more for %s (%s)...*",
			len(footer), currency.Format(code, rest.Money), formatElapsed(rest.ElapsedMS)))
	}
	addField(e, title(report.Sum(rows)), strings.Join(lines, "\n"))
}

func totalsFooter(code string, t report.Totals) *discordgo.MessageEmbedFooter {
	return &discordgo.MessageEmbedFooter{
		Text: fmt.Sprintf("Total: %s • %s", currency.Format(code, t.Money), formatElapsed(t.ElapsedMS)),
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n - len("…")
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}

// truncateLines cuts s at the last full line that fits in n bytes.
func truncateLines(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if i := strings.LastIndexByte(s[:n-len("\n…")], '\n'); i > 0 {
		return s[:i] + "\n…"
	}
	return truncate(s, n)
}
