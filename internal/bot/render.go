package bot

import (
	"fmt"
	"strings"
	"time"

	"remindbot/internal/conversation"
	"remindbot/internal/dates"
	"remindbot/internal/db/models"

	"github.com/bwmarrin/discordgo"
)

const (
	// Discord message and component limits
	maxContentLength  = 2000
	maxButtonsPerRow  = 5
	maxRows           = 5
	maxCustomIDLength = 100
	maxListedTasks    = 20
	descriptionWidth  = 30

	selectPrefix  = "sel:"
	commandPrefix = "cmd:"
)

func encodeCustomID(kind conversation.EventKind, value string) string {
	prefix := selectPrefix
	if kind == conversation.EventCommand {
		prefix = commandPrefix
	}
	id := prefix + value
	if len(id) > maxCustomIDLength {
		id = id[:maxCustomIDLength]
	}
	return id
}

func decodeCustomID(id string) (conversation.EventKind, string, bool) {
	switch {
	case strings.HasPrefix(id, selectPrefix):
		return conversation.EventSelect, strings.TrimPrefix(id, selectPrefix), true
	case strings.HasPrefix(id, commandPrefix):
		return conversation.EventCommand, strings.TrimPrefix(id, commandPrefix), true
	}
	return 0, "", false
}

// renderMessage turns a conversation reply into a Discord message.
func renderMessage(reply conversation.Reply, now time.Time) *discordgo.MessageSend {
	var content strings.Builder
	if reply.Title != "" {
		content.WriteString("**" + reply.Title + "**\n")
	}
	if len(reply.Tasks) > 0 {
		content.WriteString(formatTasks(reply.Tasks, now))
		content.WriteString("\n")
	}
	content.WriteString(reply.Text)

	var rows []discordgo.MessageComponent
	rows = appendButtonRows(rows, reply.Choices, conversation.EventSelect, discordgo.PrimaryButton)
	if reply.ShowMenu {
		rows = appendButtonRows(rows, conversation.MenuChoices, conversation.EventCommand, discordgo.SecondaryButton)
	}

	return &discordgo.MessageSend{
		Content:    limitContent(content.String()),
		Components: rows,
	}
}

func appendButtonRows(rows []discordgo.MessageComponent, choices []conversation.Choice, kind conversation.EventKind, style discordgo.ButtonStyle) []discordgo.MessageComponent {
	for start := 0; start < len(choices) && len(rows) < maxRows; start += maxButtonsPerRow {
		end := start + maxButtonsPerRow
		if end > len(choices) {
			end = len(choices)
		}

		buttons := make([]discordgo.MessageComponent, 0, end-start)
		for _, choice := range choices[start:end] {
			buttons = append(buttons, discordgo.Button{
				Label:    choice.Label,
				Style:    style,
				CustomID: encodeCustomID(kind, choice.Value),
			})
		}
		rows = append(rows, discordgo.ActionsRow{Components: buttons})
	}
	return rows
}

// formatTasks renders a task listing as a fixed-width table.
func formatTasks(tasks []models.Task, now time.Time) string {
	headers := []string{"Task", "Due", "Category", "Pri", "Days"}

	listed := tasks
	if len(listed) > maxListedTasks {
		listed = listed[:maxListedTasks]
	}

	rows := make([][]string, 0, len(listed))
	for _, t := range listed {
		rows = append(rows, []string{
			truncateString(strings.ReplaceAll(t.Description, "`", "'"), descriptionWidth),
			dates.Format(t.DueAt),
			t.Category.Display(),
			fmt.Sprintf("P%d", t.Priority.Rank()),
			fmt.Sprintf("%d", daysRemaining(t.DueAt, now)),
		})
	}

	table := formatTable(headers, rows)
	if extra := len(tasks) - len(listed); extra > 0 {
		table += fmt.Sprintf("\n...and %d more", extra)
	}
	return table
}

// daysRemaining counts whole days until due, negative once overdue.
func daysRemaining(due, now time.Time) int {
	d := due.Sub(now)
	days := int(d / (24 * time.Hour))
	if d < 0 && d%(24*time.Hour) != 0 {
		days--
	}
	return days
}

func limitContent(s string) string {
	if len(s) <= maxContentLength {
		return s
	}
	cut := maxContentLength - 3
	// Don't split a multi-byte character
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
