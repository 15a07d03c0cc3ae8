package settings

import (
	"context"
	"errors"
	"testing"
	"time"

	"remindbot/internal/db"
	"remindbot/internal/db/models"
)

func TestPreferencesDefaultsWhenMissing(t *testing.T) {
	m := NewManager(db.NewMemoryStore(), "", "")

	prefs, err := m.Preferences(context.Background(), "new-user")
	if err != nil {
		t.Fatal(err)
	}
	if prefs.Timezone != "Europe/Berlin" || prefs.Language != "en" {
		t.Errorf("prefs = %+v, want defaults", prefs)
	}
	if prefs.UserID != "new-user" {
		t.Errorf("user id = %q", prefs.UserID)
	}
}

func TestPreferencesUsesConfiguredDefaults(t *testing.T) {
	m := NewManager(db.NewMemoryStore(), "Europe/London", "de")

	prefs, err := m.Preferences(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if prefs.Timezone != "Europe/London" || prefs.Language != "de" {
		t.Errorf("prefs = %+v", prefs)
	}
}

func TestEnsureUserStoresConfiguredDefaults(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore()
	m := NewManager(store, "Europe/London", "de")

	if err := m.EnsureUser(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	prefs, err := store.GetPreferences(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if prefs.Timezone != "Europe/London" || prefs.Language != "de" {
		t.Errorf("stored prefs = %+v, want configured defaults", prefs)
	}
}

func TestSetWithoutRowKeepsConfiguredDefaults(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore()
	m := NewManager(store, "Europe/Paris", "es")

	if err := m.SetLanguage(ctx, "u1", "it"); err != nil {
		t.Fatal(err)
	}
	if err := m.SetTimezone(ctx, "u2", "Europe/Madrid"); err != nil {
		t.Fatal(err)
	}

	if p, _ := store.GetPreferences(ctx, "u1"); p == nil || p.Timezone != "Europe/Paris" || p.Language != "it" {
		t.Errorf("u1 prefs = %+v", p)
	}
	if p, _ := store.GetPreferences(ctx, "u2"); p == nil || p.Timezone != "Europe/Madrid" || p.Language != "es" {
		t.Errorf("u2 prefs = %+v", p)
	}
}

func TestSetTimezoneAndLanguage(t *testing.T) {
	ctx := context.Background()
	m := NewManager(db.NewMemoryStore(), "", "")
	m.EnsureUser(ctx, "u1")

	if err := m.SetTimezone(ctx, "u1", "Europe/Madrid"); err != nil {
		t.Fatal(err)
	}
	if err := m.SetLanguage(ctx, "u1", "it"); err != nil {
		t.Fatal(err)
	}

	prefs, err := m.Preferences(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if prefs.Timezone != "Europe/Madrid" || prefs.Language != "it" {
		t.Errorf("prefs = %+v", prefs)
	}
}

func TestSetRejectsValuesOutsideSet(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore()
	m := NewManager(store, "", "")
	m.EnsureUser(ctx, "u1")

	if err := m.SetTimezone(ctx, "u1", "America/New_York"); !errors.Is(err, ErrInvalidOption) {
		t.Errorf("timezone err = %v, want ErrInvalidOption", err)
	}
	if err := m.SetLanguage(ctx, "u1", "pt"); !errors.Is(err, ErrInvalidOption) {
		t.Errorf("language err = %v, want ErrInvalidOption", err)
	}

	prefs, _ := store.GetPreferences(ctx, "u1")
	if prefs.Timezone != models.DefaultTimezone || prefs.Language != models.DefaultLanguage {
		t.Errorf("rejected value was persisted: %+v", prefs)
	}
}

func TestDeleteAll(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore()
	m := NewManager(store, "", "")
	m.EnsureUser(ctx, "u1")
	store.CreateTask(ctx, &models.Task{UserID: "u1", DueAt: time.Now()})

	if err := m.DeleteAll(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.GetPreferences(ctx, "u1"); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("preferences survived: %v", err)
	}
	if tasks, _ := store.ListTasks(ctx, "u1", models.FilterAll, time.Now()); len(tasks) != 0 {
		t.Errorf("%d tasks survived", len(tasks))
	}
	if err := m.DeleteAll(ctx, "u1"); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

type failingStore struct {
	db.Store
}

func (failingStore) GetPreferences(ctx context.Context, userID string) (*models.UserPreferences, error) {
	return nil, errors.New("connection refused")
}

func TestPreferencesSurfacesStoreErrors(t *testing.T) {
	m := NewManager(failingStore{}, "", "")
	if _, err := m.Preferences(context.Background(), "u1"); err == nil {
		t.Error("expected store error")
	}
}

func TestExportIsAcknowledgmentOnly(t *testing.T) {
	m := NewManager(db.NewMemoryStore(), "", "")
	if got := m.Export(context.Background(), "u1"); got != ExportNotice {
		t.Errorf("Export = %q", got)
	}
}
