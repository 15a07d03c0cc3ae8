package conversation

import (
	"fmt"

	"remindbot/internal/dates"
	"remindbot/internal/db/models"
	"remindbot/internal/settings"
)

const (
	textSelectOption     = "Please select an option:"
	textExpired          = "That selection is no longer active. Please select an option:"
	textUnknownCommand   = "Unknown command."
	textFinishFirst      = "Please finish the current step or use /cancel first."
	textCancelled        = "Operation cancelled."
	textDescribe         = "Please describe your task:"
	textEnterCustomDate  = "Please enter date and time (DD.MM.YYYY HH:MM)"
	textSelectCategory   = "Select category:"
	textSelectPriority   = "Select priority (1=highest, 4=lowest):"
	textNoTasks          = "No tasks found. Enjoy your free time! ☕️"
	textNextAction       = "Select your next action:"
	textTaskAdded        = "Task successfully added. How can I assist you next?"
	textFailure          = "Sorry, something went wrong. Nothing was saved, please try again."
	textSchedulingFailed = "Your task was saved, but the reminder could not be scheduled. You will not be notified when it is due."
	textSettingsUpdated  = "Settings updated. How can I assist you next?"
	textDeleted          = "All your data has been permanently deleted."
	textDeleteCancelled  = "Data deletion cancelled."

	textSettings = "**Privacy & Settings**\n\n" +
		"We comply with GDPR regulations. Your data is stored securely and never shared.\n\n" +
		"Configure your preferences:"

	textDeleteConfirm = "**⚠️ Data Deletion Request**\n\n" +
		"This will permanently delete ALL your tasks and personal data from our systems.\n\n" +
		"This action is irreversible. Are you sure?"
)

var textInvalidDate = "⚠️ Invalid format. Please use DD.MM.YYYY HH:MM format.\nExample: " + dates.Example

// MenuChoices are the top-level menu entries as commands.
var MenuChoices = []Choice{
	{Label: "➕ Create Task", Value: CommandCreateTask},
	{Label: "📋 My Tasks", Value: CommandListTasks},
	{Label: "📅 Today", Value: CommandToday},
	{Label: "⚠️ Important", Value: CommandImportant},
	{Label: "⏱ Upcoming", Value: CommandUpcoming},
	{Label: "⚙️ Settings", Value: CommandSettings},
}

func welcomeText(name string) string {
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf("Guten Tag %s! 🇪🇺\n\n"+
		"Welcome to your European Task Planner.\n"+
		"Efficient • Private • Organized\n\n"+
		"Please select an option:", name)
}

func descriptionPrompt() Reply {
	return Reply{Text: textDescribe}
}

func datePrompt() Reply {
	return Reply{
		Text: "📅 Due date (DD.MM.YYYY HH:MM format):\n" +
			"Examples:\n" +
			"• 25.12.2023 15:30\n" +
			"• 01.01.2024 09:00",
		Choices: []Choice{
			{Label: "Today", Value: dates.ChoiceToday},
			{Label: "Tomorrow", Value: dates.ChoiceTomorrow},
			{Label: "Next Week", Value: dates.ChoiceNextWeek},
			{Label: "Custom...", Value: dates.ChoiceCustom},
		},
	}
}

func categoryPrompt() Reply {
	choices := make([]Choice, 0, len(models.Categories))
	for _, c := range models.Categories {
		choices = append(choices, Choice{Label: c.Display(), Value: string(c)})
	}
	return Reply{Text: textSelectCategory, Choices: choices}
}

func priorityPrompt() Reply {
	choices := make([]Choice, 0, len(models.Priorities))
	for _, p := range models.Priorities {
		choices = append(choices, Choice{
			Label: fmt.Sprintf("%d - %s", p.Rank(), p.Name()),
			Value: p.WireValue(),
		})
	}
	return Reply{Text: textSelectPriority, Choices: choices}
}

func settingValuePrompt(kind settingKind) Reply {
	switch kind {
	case settingTimezone:
		return Reply{Text: "Select your timezone:", Choices: optionChoices(settings.Timezones)}
	case settingLanguage:
		return Reply{Text: "Select your language:", Choices: optionChoices(settings.Languages)}
	case settingDelete:
		return Reply{
			Text: textDeleteConfirm,
			Choices: []Choice{
				{Label: "Confirm Delete", Value: ConfirmDelete},
				{Label: "Cancel", Value: CancelDelete},
			},
		}
	default:
		return Reply{Text: textSelectOption, ShowMenu: true}
	}
}

func optionChoices(opts []settings.Option) []Choice {
	choices := make([]Choice, 0, len(opts))
	for _, o := range opts {
		choices = append(choices, Choice{Label: o.Label, Value: o.Value})
	}
	return choices
}

func confirmation(task *models.Task) Reply {
	return Reply{
		Text: fmt.Sprintf("✓ Task Created\n\n"+
			"• %s\n"+
			"• Due: %s\n"+
			"• Category: %s\n"+
			"• Priority: %s\n\n%s",
			task.Description,
			task.DueAt.UTC().Format("02.01.2006 at 15:04"),
			task.Category.Display(),
			task.Priority.Label(),
			textTaskAdded,
		),
		ShowMenu: true,
	}
}
