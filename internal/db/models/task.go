package models

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusCompleted TaskStatus = "completed"
	StatusCancelled TaskStatus = "cancelled"
)

// Task is a committed reminder task. Only Status may change after creation.
type Task struct {
	ID          uuid.UUID  `db:"id"`
	UserID      string     `db:"user_id"`
	Description string     `db:"description"`
	DueAt       time.Time  `db:"due_at"`
	Category    Category   `db:"category"`
	Priority    Priority   `db:"priority"`
	Status      TaskStatus `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
}

// TaskFilter selects one of the canned task listings.
type TaskFilter int

const (
	FilterAll TaskFilter = iota
	FilterToday
	FilterUpcoming
	FilterImportant
)

func (f TaskFilter) String() string {
	switch f {
	case FilterAll:
		return "all"
	case FilterToday:
		return "today"
	case FilterUpcoming:
		return "upcoming"
	case FilterImportant:
		return "important"
	default:
		return "unknown"
	}
}

// Title is the heading shown above a listing.
func (f TaskFilter) Title() string {
	switch f {
	case FilterToday:
		return "Today's Tasks"
	case FilterUpcoming:
		return "Upcoming Tasks"
	case FilterImportant:
		return "Important Tasks"
	default:
		return "Your Tasks"
	}
}

// Match reports whether t belongs to the listing at instant now.
// "Today" is the UTC calendar date of now.
func (f TaskFilter) Match(t Task, now time.Time) bool {
	switch f {
	case FilterAll:
		return true
	case FilterToday:
		due := t.DueAt.UTC()
		ref := now.UTC()
		return due.Year() == ref.Year() && due.YearDay() == ref.YearDay()
	case FilterUpcoming:
		return t.DueAt.After(now)
	case FilterImportant:
		return t.Priority >= PriorityHigh
	default:
		return false
	}
}
