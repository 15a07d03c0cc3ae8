// Package settings manages user preferences and the user's data lifecycle.
package settings

import (
	"context"
	"errors"
	"fmt"

	"remindbot/internal/db"
	"remindbot/internal/db/models"
)

// ErrInvalidOption is returned for values the selector never offers.
var ErrInvalidOption = errors.New("invalid option")

// Option is one selectable value with its button label.
type Option struct {
	Value string
	Label string
}

var Timezones = []Option{
	{"Europe/Berlin", "Berlin (CET)"},
	{"Europe/London", "London (GMT)"},
	{"Europe/Paris", "Paris (CET)"},
	{"Europe/Madrid", "Madrid (CET)"},
	{"Europe/Stockholm", "Stockholm (CET)"},
}

var Languages = []Option{
	{"en", "English"},
	{"de", "Deutsch"},
	{"fr", "Français"},
	{"es", "Español"},
	{"it", "Italiano"},
}

// ExportNotice is the acknowledgment shown for a data export request.
const ExportNotice = "Your data export is being prepared...\n\n" +
	"We take your privacy seriously. According to GDPR regulations, " +
	"you have the right to access all personal data we store about you."

// PreferenceStore is the persistence the manager needs.
type PreferenceStore interface {
	EnsureUser(ctx context.Context, row models.UserPreferences) error
	GetPreferences(ctx context.Context, userID string) (*models.UserPreferences, error)
	UpdateTimezone(ctx context.Context, row models.UserPreferences) error
	UpdateLanguage(ctx context.Context, row models.UserPreferences) error
	DeleteUserData(ctx context.Context, userID string) error
}

type Manager struct {
	store    PreferenceStore
	defaults models.UserPreferences
}

// NewManager uses timezone and language as the documented defaults for users
// without a row; empty values fall back to Europe/Berlin and en.
func NewManager(store PreferenceStore, timezone, language string) *Manager {
	if timezone == "" {
		timezone = models.DefaultTimezone
	}
	if language == "" {
		language = models.DefaultLanguage
	}
	return &Manager{
		store:    store,
		defaults: models.UserPreferences{Timezone: timezone, Language: language},
	}
}

// EnsureUser creates the user's row with the configured defaults.
func (m *Manager) EnsureUser(ctx context.Context, userID string) error {
	return m.store.EnsureUser(ctx, m.defaultsFor(userID))
}

func (m *Manager) defaultsFor(userID string) models.UserPreferences {
	p := m.defaults
	p.UserID = userID
	return p
}

// Preferences returns the stored preferences, or the defaults when the user
// has no row yet.
func (m *Manager) Preferences(ctx context.Context, userID string) (*models.UserPreferences, error) {
	prefs, err := m.store.GetPreferences(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		p := m.defaultsFor(userID)
		return &p, nil
	}
	if err != nil {
		return nil, err
	}
	return prefs, nil
}

func (m *Manager) SetTimezone(ctx context.Context, userID, timezone string) error {
	if !Contains(Timezones, timezone) {
		return fmt.Errorf("timezone %q: %w", timezone, ErrInvalidOption)
	}
	row := m.defaultsFor(userID)
	row.Timezone = timezone
	return m.store.UpdateTimezone(ctx, row)
}

func (m *Manager) SetLanguage(ctx context.Context, userID, language string) error {
	if !Contains(Languages, language) {
		return fmt.Errorf("language %q: %w", language, ErrInvalidOption)
	}
	row := m.defaultsFor(userID)
	row.Language = language
	return m.store.UpdateLanguage(ctx, row)
}

// DeleteAll irreversibly removes every task and the preferences of a user.
// Callers must have obtained explicit confirmation first.
func (m *Manager) DeleteAll(ctx context.Context, userID string) error {
	return m.store.DeleteUserData(ctx, userID)
}

// Export acknowledges an export request. No file is produced.
func (m *Manager) Export(ctx context.Context, userID string) string {
	return ExportNotice
}

func Contains(opts []Option, value string) bool {
	for _, o := range opts {
		if o.Value == value {
			return true
		}
	}
	return false
}
