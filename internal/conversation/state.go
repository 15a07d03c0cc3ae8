package conversation

import (
	"context"
	"fmt"
	"time"

	"remindbot/internal/db/models"
)

// State is the step a user's conversation is waiting on.
type State int

const (
	StateIdle State = iota
	StateAwaitingDescription
	StateAwaitingDate
	StateAwaitingCategory
	StateAwaitingPriority
	StateAwaitingSettingChoice
	StateAwaitingSettingValue

	stateCount
)

var stateNames = [stateCount]string{
	StateIdle:                  "idle",
	StateAwaitingDescription:   "awaiting_description",
	StateAwaitingDate:          "awaiting_date",
	StateAwaitingCategory:      "awaiting_category",
	StateAwaitingPriority:      "awaiting_priority",
	StateAwaitingSettingChoice: "awaiting_setting_choice",
	StateAwaitingSettingValue:  "awaiting_setting_value",
}

func (s State) String() string {
	if s < 0 || s >= stateCount {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

type EventKind int

const (
	// EventText is a free-text message.
	EventText EventKind = iota
	// EventSelect is a press on one of the choices of a previous reply.
	EventSelect
	// EventCommand is a top-level menu trigger or slash command.
	EventCommand
)

func (k EventKind) String() string {
	switch k {
	case EventText:
		return "text"
	case EventSelect:
		return "select"
	case EventCommand:
		return "command"
	default:
		return "unknown"
	}
}

// Top-level commands.
const (
	CommandStart      = "start"
	CommandCreateTask = "create_task"
	CommandListTasks  = "tasks"
	CommandToday      = "today"
	CommandUpcoming   = "upcoming"
	CommandImportant  = "important"
	CommandSettings   = "settings"
	CommandCancel     = "cancel"
)

// Event is one inbound interaction from the transport.
type Event struct {
	UserID string
	// Name is the display name used in greetings.
	Name    string
	Kind    EventKind
	Payload string
}

// Choice is one selectable option attached to a reply.
type Choice struct {
	Label string
	Value string
}

// Reply is what the transport should show the user.
type Reply struct {
	Text    string
	Choices []Choice
	// Title and Tasks carry a task listing; Text follows the listing.
	Title string
	Tasks []models.Task
	// ShowMenu asks the transport to attach the main menu.
	ShowMenu bool
}

// Draft holds the task fields collected so far.
type Draft struct {
	Description string
	DueAt       time.Time
	Category    models.Category
}

type settingKind int

const (
	settingNone settingKind = iota
	settingTimezone
	settingLanguage
	settingDelete
)

// Session is the ephemeral per-user conversation.
type Session struct {
	State     State
	Draft     Draft
	StartedAt time.Time

	setting settingKind
}

type handler func(m *Machine, ctx context.Context, ev Event, s *Session) (Reply, error)

// transitions maps every state to its handler. init verifies it is total.
var transitions [stateCount]handler

func init() {
	transitions = [stateCount]handler{
		StateIdle:                  (*Machine).handleIdle,
		StateAwaitingDescription:   (*Machine).handleDescription,
		StateAwaitingDate:          (*Machine).handleDate,
		StateAwaitingCategory:      (*Machine).handleCategory,
		StateAwaitingPriority:      (*Machine).handlePriority,
		StateAwaitingSettingChoice: (*Machine).handleSettingChoice,
		StateAwaitingSettingValue:  (*Machine).handleSettingValue,
	}
	for s, h := range transitions {
		if h == nil {
			panic(fmt.Sprintf("conversation: no handler for state %s", State(s)))
		}
	}
}
