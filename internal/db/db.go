package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"remindbot/internal/config"
	"remindbot/internal/db/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

type DB struct {
	*pgxpool.Pool
}

func New(ctx context.Context, dbCfg config.Database) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dbCfg.URL())
	if err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	// Configure connection pool and statement cache
	cfg.MaxConns = dbCfg.MaxConns
	cfg.MinConns = dbCfg.MinConns
	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	return &DB{pool}, nil
}

// EnsureUser inserts row unless the user already has preferences.
func (db *DB) EnsureUser(ctx context.Context, row models.UserPreferences) error {
	query := `
		INSERT INTO user_preferences (user_id, timezone, language, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO NOTHING`

	_, err := db.Exec(ctx, query, row.UserID, row.Timezone, row.Language, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("error creating user preferences: %w", err)
	}
	return nil
}

// GetPreferences returns ErrNotFound when the user has no row.
func (db *DB) GetPreferences(ctx context.Context, userID string) (*models.UserPreferences, error) {
	query := `
		SELECT user_id, timezone, language, created_at
		FROM user_preferences
		WHERE user_id = $1`

	prefs := &models.UserPreferences{}
	err := db.QueryRow(ctx, query, userID).Scan(
		&prefs.UserID,
		&prefs.Timezone,
		&prefs.Language,
		&prefs.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error getting user preferences: %w", err)
	}
	return prefs, nil
}

// UpdateTimezone stores row.Timezone, inserting row when the user has none.
func (db *DB) UpdateTimezone(ctx context.Context, row models.UserPreferences) error {
	query := `
		INSERT INTO user_preferences (user_id, timezone, language, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET timezone = EXCLUDED.timezone`

	_, err := db.Exec(ctx, query, row.UserID, row.Timezone, row.Language, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("error updating timezone: %w", err)
	}
	return nil
}

// UpdateLanguage stores row.Language, inserting row when the user has none.
func (db *DB) UpdateLanguage(ctx context.Context, row models.UserPreferences) error {
	query := `
		INSERT INTO user_preferences (user_id, timezone, language, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET language = EXCLUDED.language`

	_, err := db.Exec(ctx, query, row.UserID, row.Timezone, row.Language, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("error updating language: %w", err)
	}
	return nil
}

// DeleteUserData removes every task and the preferences row of a user.
func (db *DB) DeleteUserData(ctx context.Context, userID string) error {
	err := pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM tasks WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("error deleting tasks: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM user_preferences WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("error deleting user preferences: %w", err)
		}
		return nil
	})
	return err
}

// CreateTask inserts task, assigning its ID and creation time.
func (db *DB) CreateTask(ctx context.Context, task *models.Task) error {
	prepareTask(task)

	query := `
		INSERT INTO tasks (id, user_id, description, due_at, category, priority, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := db.Exec(ctx, query,
		task.ID.String(),
		task.UserID,
		task.Description,
		task.DueAt,
		string(task.Category),
		int(task.Priority),
		string(task.Status),
		task.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error creating task: %w", err)
	}
	return nil
}

// ListTasks returns the user's tasks matching filter, ordered by due date.
func (db *DB) ListTasks(ctx context.Context, userID string, filter models.TaskFilter, now time.Time) ([]models.Task, error) {
	query := `
		SELECT id, user_id, description, due_at, category, priority, status, created_at
		FROM tasks
		WHERE user_id = $1`
	args := []interface{}{userID}

	switch filter {
	case models.FilterAll:
	case models.FilterToday:
		start := startOfDay(now)
		query += ` AND due_at >= $2 AND due_at < $3`
		args = append(args, start, start.AddDate(0, 0, 1))
	case models.FilterUpcoming:
		query += ` AND due_at > $2`
		args = append(args, now.UTC())
	case models.FilterImportant:
		query += ` AND priority >= $2`
		args = append(args, int(models.PriorityHigh))
	default:
		return nil, fmt.Errorf("unknown task filter %d", filter)
	}
	query += ` ORDER BY due_at, created_at`

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing %s tasks: %w", filter, err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var (
			task     models.Task
			category string
			priority int16
			status   string
		)
		err := rows.Scan(
			&task.ID,
			&task.UserID,
			&task.Description,
			&task.DueAt,
			&category,
			&priority,
			&status,
			&task.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning task: %w", err)
		}
		task.Category = models.Category(category)
		task.Priority = models.Priority(priority)
		task.Status = models.TaskStatus(status)
		task.DueAt = task.DueAt.UTC()
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func prepareTask(task *models.Task) {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	if task.Status == "" {
		task.Status = models.StatusPending
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}
	task.DueAt = task.DueAt.UTC()
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
