package conversation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"remindbot/internal/dates"
	"remindbot/internal/db/models"
	"remindbot/internal/reminder"
)

func (m *Machine) handleIdle(ctx context.Context, ev Event, s *Session) (Reply, error) {
	if ev.Kind == EventSelect {
		return Reply{Text: textExpired, ShowMenu: true}, nil
	}
	return Reply{Text: textSelectOption, ShowMenu: true}, nil
}

func (m *Machine) handleDescription(ctx context.Context, ev Event, s *Session) (Reply, error) {
	if ev.Kind != EventText || isBlank(ev.Payload) {
		return descriptionPrompt(), nil
	}

	s.Draft.Description = strings.TrimSpace(ev.Payload)
	s.State = StateAwaitingDate
	return datePrompt(), nil
}

func (m *Machine) handleDate(ctx context.Context, ev Event, s *Session) (Reply, error) {
	var (
		due time.Time
		err error
	)
	switch ev.Kind {
	case EventSelect:
		if ev.Payload == dates.ChoiceCustom {
			return Reply{Text: textEnterCustomDate}, nil
		}
		if !dates.IsQuickChoice(ev.Payload) {
			return datePrompt(), nil
		}
		due, err = dates.Resolve(ev.Payload, m.now())
	case EventText:
		// Typed input is always a custom date, shortcuts are buttons only
		due, err = dates.Parse(ev.Payload)
	default:
		return datePrompt(), nil
	}
	if err != nil {
		var pe *dates.ParseError
		if errors.As(err, &pe) {
			return Reply{Text: textInvalidDate}, nil
		}
		return Reply{Text: textInvalidDate}, err
	}

	s.Draft.DueAt = due
	s.State = StateAwaitingCategory
	return categoryPrompt(), nil
}

func (m *Machine) handleCategory(ctx context.Context, ev Event, s *Session) (Reply, error) {
	if ev.Kind != EventSelect {
		return categoryPrompt(), nil
	}
	category, err := models.ParseCategory(ev.Payload)
	if err != nil {
		log.Printf("[CONVERSATION] user %s: %v", ev.UserID, err)
		return categoryPrompt(), nil
	}

	s.Draft.Category = category
	s.State = StateAwaitingPriority
	return priorityPrompt(), nil
}

func (m *Machine) handlePriority(ctx context.Context, ev Event, s *Session) (Reply, error) {
	if ev.Kind != EventSelect {
		return priorityPrompt(), nil
	}
	priority, err := models.ParsePriority(ev.Payload)
	if err != nil {
		log.Printf("[CONVERSATION] user %s: %v", ev.UserID, err)
		return priorityPrompt(), nil
	}
	return m.commit(ctx, ev.UserID, s, priority)
}

// commit persists the draft and registers its reminder. The session ends
// whatever the outcome; a reminder is only registered for a stored task.
func (m *Machine) commit(ctx context.Context, userID string, s *Session, priority models.Priority) (Reply, error) {
	draft := s.Draft
	s.State = StateIdle

	task := &models.Task{
		UserID:      userID,
		Description: draft.Description,
		DueAt:       draft.DueAt.UTC(),
		Category:    draft.Category,
		Priority:    priority,
		Status:      models.StatusPending,
	}
	if err := m.tasks.CreateTask(ctx, task); err != nil {
		return failureReply(), fmt.Errorf("%w: create task: %w", ErrStore, err)
	}

	id, err := m.scheduler.Schedule(task.DueAt, reminder.Reminder{
		UserID:      userID,
		Description: task.Description,
		Priority:    task.Priority,
	})
	if err != nil {
		return Reply{Text: textSchedulingFailed, ShowMenu: true},
			fmt.Errorf("%w: task %s: %w", ErrScheduling, task.ID, err)
	}

	log.Printf("[CONVERSATION] user %s: task %s committed, reminder %d at %s",
		userID, task.ID, id, task.DueAt.Format("2006-01-02T15:04:05Z07:00"))
	return confirmation(task), nil
}
