package db

import (
	"context"
	"fmt"
	"time"

	"remindbot/internal/config"
	"remindbot/internal/db/models"
)

// Store is the persistence surface shared by DB and MemoryStore.
type Store interface {
	EnsureUser(ctx context.Context, row models.UserPreferences) error
	GetPreferences(ctx context.Context, userID string) (*models.UserPreferences, error)
	UpdateTimezone(ctx context.Context, row models.UserPreferences) error
	UpdateLanguage(ctx context.Context, row models.UserPreferences) error
	DeleteUserData(ctx context.Context, userID string) error
	CreateTask(ctx context.Context, task *models.Task) error
	ListTasks(ctx context.Context, userID string, filter models.TaskFilter, now time.Time) ([]models.Task, error)
	Ping(ctx context.Context) error
	Close()
}

var (
	_ Store = (*DB)(nil)
	_ Store = (*MemoryStore)(nil)
)

// Open returns the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.Database) (Store, error) {
	switch cfg.Driver {
	case "", config.DriverPostgres:
		return New(ctx, cfg)
	case config.DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
