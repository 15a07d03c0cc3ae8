package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"remindbot/internal/settings"
)

// Settings menu and value selections.
const (
	SettingTimezone = "timezone"
	SettingLanguage = "language"
	SettingExport   = "export_data"
	SettingDelete   = "delete_data"

	ConfirmDelete = "confirm_delete"
	CancelDelete  = "cancel_delete"
)

func (m *Machine) settingsMenu(ctx context.Context, userID string, s *Session) (Reply, error) {
	prefs, err := m.settings.Preferences(ctx, userID)
	if err != nil {
		s.State = StateIdle
		return failureReply(), fmt.Errorf("%w: read preferences: %w", ErrStore, err)
	}

	return Reply{
		Text: textSettings,
		Choices: []Choice{
			{Label: "🌍 Timezone: " + prefs.Timezone, Value: SettingTimezone},
			{Label: "🗣 Language: " + strings.ToUpper(prefs.Language), Value: SettingLanguage},
			{Label: "📤 Export My Data", Value: SettingExport},
			{Label: "❌ Delete All Data", Value: SettingDelete},
		},
	}, nil
}

func (m *Machine) handleSettingChoice(ctx context.Context, ev Event, s *Session) (Reply, error) {
	if ev.Kind != EventSelect {
		return m.settingsMenu(ctx, ev.UserID, s)
	}

	switch ev.Payload {
	case SettingTimezone:
		s.setting = settingTimezone
	case SettingLanguage:
		s.setting = settingLanguage
	case SettingDelete:
		s.setting = settingDelete
	case SettingExport:
		s.State = StateIdle
		return Reply{Text: m.settings.Export(ctx, ev.UserID), ShowMenu: true}, nil
	default:
		return m.settingsMenu(ctx, ev.UserID, s)
	}

	s.State = StateAwaitingSettingValue
	return settingValuePrompt(s.setting), nil
}

func (m *Machine) handleSettingValue(ctx context.Context, ev Event, s *Session) (Reply, error) {
	if ev.Kind != EventSelect {
		return settingValuePrompt(s.setting), nil
	}

	var (
		done string
		err  error
	)
	switch s.setting {
	case settingTimezone:
		err = m.settings.SetTimezone(ctx, ev.UserID, ev.Payload)
		done = "Timezone updated to " + ev.Payload
	case settingLanguage:
		err = m.settings.SetLanguage(ctx, ev.UserID, ev.Payload)
		done = "Language updated to " + strings.ToUpper(ev.Payload)
	case settingDelete:
		switch ev.Payload {
		case ConfirmDelete:
			err = m.settings.DeleteAll(ctx, ev.UserID)
			if err == nil {
				m.forget(ev.UserID)
			}
			done = textDeleted
		case CancelDelete:
			done = textDeleteCancelled
		default:
			return settingValuePrompt(s.setting), nil
		}
	default:
		s.State = StateIdle
		return Reply{Text: textSelectOption, ShowMenu: true}, nil
	}

	if errors.Is(err, settings.ErrInvalidOption) {
		return settingValuePrompt(s.setting), nil
	}

	s.State = StateIdle
	if err != nil {
		return failureReply(), fmt.Errorf("%w: %w", ErrStore, err)
	}
	return Reply{Text: done + "\n\n" + textSettingsUpdated, ShowMenu: true}, nil
}
