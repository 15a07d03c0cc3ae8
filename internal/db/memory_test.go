package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"remindbot/internal/db/models"

	"github.com/google/uuid"
)

func TestMemoryStoreEnsureUserIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	if err := m.EnsureUser(ctx, *models.DefaultPreferences("u1")); err != nil {
		t.Fatal(err)
	}
	if err := m.UpdateTimezone(ctx, models.UserPreferences{UserID: "u1", Timezone: "Europe/Paris", Language: "de"}); err != nil {
		t.Fatal(err)
	}
	if err := m.EnsureUser(ctx, *models.DefaultPreferences("u1")); err != nil {
		t.Fatal(err)
	}

	prefs, err := m.GetPreferences(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if prefs.Timezone != "Europe/Paris" {
		t.Errorf("EnsureUser overwrote timezone: %q", prefs.Timezone)
	}
	if prefs.Language != models.DefaultLanguage {
		t.Errorf("language = %q, want default", prefs.Language)
	}
}

func TestMemoryStoreUpdateInsertsMissingRow(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	row := models.UserPreferences{UserID: "u1", Timezone: "Europe/London", Language: "fr"}
	if err := m.UpdateLanguage(ctx, row); err != nil {
		t.Fatal(err)
	}

	prefs, err := m.GetPreferences(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if prefs.Timezone != "Europe/London" || prefs.Language != "fr" {
		t.Errorf("prefs = %+v", prefs)
	}
}

func TestMemoryStoreGetPreferencesNotFound(t *testing.T) {
	_, err := NewMemoryStore().GetPreferences(context.Background(), "nobody")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreCreateTaskAssignsID(t *testing.T) {
	m := NewMemoryStore()
	task := &models.Task{UserID: "u1", Description: "x", DueAt: time.Now()}

	if err := m.CreateTask(context.Background(), task); err != nil {
		t.Fatal(err)
	}
	if task.ID == uuid.Nil {
		t.Error("ID not assigned")
	}
	if task.Status != models.StatusPending {
		t.Errorf("status = %q, want pending", task.Status)
	}
	if task.DueAt.Location() != time.UTC {
		t.Error("due date not normalized to UTC")
	}
}

func TestMemoryStoreListTasks(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	add := func(user, desc string, due time.Time, p models.Priority) {
		t.Helper()
		if err := m.CreateTask(ctx, &models.Task{UserID: user, Description: desc, DueAt: due, Category: models.CategoryWork, Priority: p}); err != nil {
			t.Fatal(err)
		}
	}
	add("u1", "next week", now.AddDate(0, 0, 7), models.PriorityLow)
	add("u1", "this morning", now.Add(-3*time.Hour), models.PriorityCritical)
	add("u1", "tonight", now.Add(5*time.Hour), models.PriorityMedium)
	add("u2", "someone else", now.Add(time.Hour), models.PriorityCritical)

	tests := []struct {
		filter models.TaskFilter
		want   []string
	}{
		{models.FilterAll, []string{"this morning", "tonight", "next week"}},
		{models.FilterToday, []string{"this morning", "tonight"}},
		{models.FilterUpcoming, []string{"tonight", "next week"}},
		{models.FilterImportant, []string{"this morning"}},
	}

	for _, tt := range tests {
		t.Run(tt.filter.String(), func(t *testing.T) {
			tasks, err := m.ListTasks(ctx, "u1", tt.filter, now)
			if err != nil {
				t.Fatal(err)
			}
			if len(tasks) != len(tt.want) {
				t.Fatalf("got %d tasks, want %d", len(tasks), len(tt.want))
			}
			for i, task := range tasks {
				if task.Description != tt.want[i] {
					t.Errorf("tasks[%d] = %q, want %q", i, task.Description, tt.want[i])
				}
			}
		})
	}
}

func TestMemoryStoreListEmptyIsNotError(t *testing.T) {
	tasks, err := NewMemoryStore().ListTasks(context.Background(), "u1", models.FilterToday, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Errorf("want empty non-nil slice, got %#v", tasks)
	}
}

func TestMemoryStoreDeleteUserData(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	m.EnsureUser(ctx, *models.DefaultPreferences("u1"))
	m.EnsureUser(ctx, *models.DefaultPreferences("u2"))
	m.CreateTask(ctx, &models.Task{UserID: "u1", DueAt: time.Now()})
	m.CreateTask(ctx, &models.Task{UserID: "u2", DueAt: time.Now()})

	if err := m.DeleteUserData(ctx, "u1"); err != nil {
		t.Fatal(err)
	}

	if tasks, _ := m.ListTasks(ctx, "u1", models.FilterAll, time.Now()); len(tasks) != 0 {
		t.Errorf("u1 still has %d tasks", len(tasks))
	}
	if _, err := m.GetPreferences(ctx, "u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("u1 preferences still present: %v", err)
	}
	if tasks, _ := m.ListTasks(ctx, "u2", models.FilterAll, time.Now()); len(tasks) != 1 {
		t.Errorf("u2 tasks affected: %d", len(tasks))
	}

	// Deleting a user with no data is a no-op.
	if err := m.DeleteUserData(ctx, "ghost"); err != nil {
		t.Errorf("delete of unknown user: %v", err)
	}
}
