package bot

import (
	"context"
	"fmt"
	"log"
	"runtime"

	"remindbot/internal/conversation"

	"github.com/bwmarrin/discordgo"
)

var (
	commands = []*discordgo.ApplicationCommand{
		{
			Name:        "start",
			Description: "Show the main menu",
		},
		{
			Name:        "task",
			Description: "Create a new task",
		},
		{
			Name:        "tasks",
			Description: "List all your tasks",
		},
		{
			Name:        "today",
			Description: "Show tasks due today",
		},
		{
			Name:        "upcoming",
			Description: "Show upcoming tasks",
		},
		{
			Name:        "important",
			Description: "Show high priority tasks",
		},
		{
			Name:        "settings",
			Description: "Change your preferences or manage your data",
		},
		{
			Name:        "cancel",
			Description: "Cancel the current operation",
		},
	}

	// slash command name -> conversation command
	commandNames = map[string]string{
		"start":     conversation.CommandStart,
		"task":      conversation.CommandCreateTask,
		"tasks":     conversation.CommandListTasks,
		"today":     conversation.CommandToday,
		"upcoming":  conversation.CommandUpcoming,
		"important": conversation.CommandImportant,
		"settings":  conversation.CommandSettings,
		"cancel":    conversation.CommandCancel,
	}
)

func (b *Bot) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	defer b.recoverInteraction(s, i, "command")

	commandName := i.ApplicationCommandData().Name

	// Conversations are private, so only direct messages are served
	if i.GuildID != "" {
		respondWithError(s, i, fmt.Sprintf("The `/%s` command can only be used in a direct message with me", commandName))
		return
	}

	command, ok := commandNames[commandName]
	if !ok {
		log.Println(formatLogMessage(i.ChannelID, "Unknown command: "+commandName, "", ""))
		respondWithError(s, i, "Unknown command")
		return
	}

	logCommand(i, commandName)
	b.dispatch(s, i, conversation.Event{Kind: conversation.EventCommand, Payload: command}, false)
}

func (b *Bot) handleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	defer b.recoverInteraction(s, i, "component")

	kind, value, ok := decodeCustomID(i.MessageComponentData().CustomID)
	if !ok {
		log.Println(formatLogMessage(i.ChannelID, "Unknown component: "+i.MessageComponentData().CustomID, "", ""))
		respondWithError(s, i, "This button is no longer supported")
		return
	}

	// Selections edit the prompt they answer, menu buttons open a new message
	b.dispatch(s, i, conversation.Event{Kind: kind, Payload: value}, kind == conversation.EventSelect)
}

func (b *Bot) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID != "" {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			log.Printf("Panic in message handler for user %s:\nError: %v\nStack Trace:\n%s",
				m.Author.Username, r, string(buf[:n]))
		}
	}()

	if !b.limiter.Allow(m.Author.ID) {
		log.Println(formatLogMessage(m.ChannelID, "Rate limited message", "", m.Author.Username))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	reply, err := b.machine.Handle(ctx, conversation.Event{
		UserID:  m.Author.ID,
		Name:    m.Author.Username,
		Kind:    conversation.EventText,
		Payload: m.Content,
	})
	if err != nil {
		logError(m.ChannelID, "message", err.Error())
	}

	if _, err := s.ChannelMessageSendComplex(m.ChannelID, renderMessage(reply, b.now())); err != nil {
		logError(m.ChannelID, "Error sending reply", err.Error())
	}
}

// dispatch feeds one interaction into the conversation machine and answers
// it with the rendered reply.
func (b *Bot) dispatch(s *discordgo.Session, i *discordgo.InteractionCreate, ev conversation.Event, update bool) {
	userID, username, ok := userFromInteraction(i)
	if !ok {
		respondWithError(s, i, "could not get user information from interaction")
		return
	}
	if !b.limiter.Allow(userID) {
		respondWithError(s, i, "You're going too fast. Please wait a moment and try again")
		return
	}
	ev.UserID = userID
	ev.Name = username

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	reply, err := b.machine.Handle(ctx, ev)
	if err != nil {
		logError(i.ChannelID, "interaction", err.Error())
	}

	msg := renderMessage(reply, b.now())
	responseType := discordgo.InteractionResponseChannelMessageWithSource
	if update {
		responseType = discordgo.InteractionResponseUpdateMessage
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: responseType,
		Data: &discordgo.InteractionResponseData{
			Content:    msg.Content,
			Components: msg.Components,
		},
	})
	if err != nil {
		// The interaction token may have expired, post into the channel instead
		log.Println(formatLogMessage(i.ChannelID, "Error responding to interaction: "+err.Error(), "", username))
		if _, err := s.ChannelMessageSendComplex(i.ChannelID, msg); err != nil {
			logError(i.ChannelID, "Error sending reply", err.Error())
		}
	}
}

func (b *Bot) recoverInteraction(s *discordgo.Session, i *discordgo.InteractionCreate, kind string) {
	if r := recover(); r != nil {
		_, username, _ := userFromInteraction(i)
		if username == "" {
			username = "unknown"
		}

		buf := make([]byte, 4096)
		n := runtime.Stack(buf, false)
		log.Printf("Panic in %s handler for user %s:\nError: %v\nStack Trace:\n%s",
			kind, username, r, string(buf[:n]))

		respondWithError(s, i, "An internal error occurred")
	}
}
