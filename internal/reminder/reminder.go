package reminder

import (
	"context"
	"fmt"
	"time"

	"remindbot/internal/db/models"
)

// Reminder is the frozen snapshot delivered when a task falls due.
type Reminder struct {
	UserID      string
	Description string
	Priority    models.Priority
}

// Message is the notification text sent to the user.
func (r Reminder) Message() string {
	return fmt.Sprintf("🔔 TASK REMINDER\n\n%s\nPriority: %s\n\nThis task is due now.",
		r.Description, r.Priority.Label())
}

// Notifier delivers a fired reminder.
type Notifier interface {
	Notify(ctx context.Context, r Reminder) error
}

type NotifierFunc func(ctx context.Context, r Reminder) error

func (f NotifierFunc) Notify(ctx context.Context, r Reminder) error {
	return f(ctx, r)
}

// ID identifies one registration.
type ID uint64

// Entry describes a pending registration.
type Entry struct {
	ID       ID
	At       time.Time
	Reminder Reminder
}
