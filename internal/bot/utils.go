package bot

import (
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
)

// respondWithError sends an error response to the user
func respondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, errMsg string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "Error: " + errMsg,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Println(formatLogMessage(i.ChannelID, "Error sending error response: "+err.Error(), "", ""))
	}
}

// userFromInteraction extracts the acting user for both DM and server contexts
func userFromInteraction(i *discordgo.InteractionCreate) (userID, username string, ok bool) {
	if i.Member != nil && i.Member.User != nil {
		// Server interaction
		return i.Member.User.ID, i.Member.User.Username, true
	}
	if i.User != nil {
		// DM interaction
		return i.User.ID, i.User.Username, true
	}
	return "", "", false
}

// formatLogMessage builds a console log line tagged with channel, context and user
func formatLogMessage(channelID, message, context, username string) string {
	var parts []string
	if context != "" {
		parts = append(parts, "["+context+"]")
	}
	if channelID != "" {
		parts = append(parts, "channel="+channelID)
	}
	if username != "" {
		parts = append(parts, "user="+username)
	}
	parts = append(parts, message)
	return strings.Join(parts, " ")
}

// logCommand logs command execution to console
func logCommand(i *discordgo.InteractionCreate, commandName string) {
	_, username, ok := userFromInteraction(i)
	if !ok {
		username = "unknown"
	}
	log.Println(formatLogMessage(i.ChannelID, fmt.Sprintf("%s executed /%s", username, commandName), "COMMAND", ""))
}

// logError logs errors to console
func logError(channelID string, errContext, errMsg string) {
	log.Println(formatLogMessage(channelID, fmt.Sprintf("ERROR - %s: %s", errContext, errMsg), "BOT", ""))
}

// formatTable creates a Discord-friendly table with fixed-width columns
func formatTable(headers []string, rows [][]string) string {
	// Find the maximum width for each column
	widths := make([]int, len(headers))
	for i, header := range headers {
		widths[i] = utf8.RuneCountInString(header)
	}

	for _, row := range rows {
		for i, cell := range row {
			if n := utf8.RuneCountInString(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}

	var result strings.Builder

	// Write headers
	result.WriteString("```\n")
	writeRow(&result, headers, widths)

	// Write separator
	for _, width := range widths {
		result.WriteString(strings.Repeat("-", width+2))
	}
	result.WriteString("\n")

	// Write rows
	for _, row := range rows {
		writeRow(&result, row, widths)
	}
	result.WriteString("```")

	return result.String()
}

func writeRow(b *strings.Builder, cells []string, widths []int) {
	for i, cell := range cells {
		b.WriteString(cell)
		b.WriteString(strings.Repeat(" ", widths[i]+2-utf8.RuneCountInString(cell)))
	}
	b.WriteString("\n")
}

// Helper function to truncate strings that are too long
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
