package db

import (
	"context"
	"sort"
	"sync"
	"time"

	"remindbot/internal/db/models"
)

// MemoryStore keeps tasks and preferences in process memory. It is used in
// "memory" database mode and by tests.
type MemoryStore struct {
	mu    sync.RWMutex
	tasks []models.Task
	prefs map[string]models.UserPreferences
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{prefs: make(map[string]models.UserPreferences)}
}

func (m *MemoryStore) EnsureUser(ctx context.Context, row models.UserPreferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.prefs[row.UserID]; !ok {
		row.CreatedAt = time.Now().UTC()
		m.prefs[row.UserID] = row
	}
	return nil
}

func (m *MemoryStore) GetPreferences(ctx context.Context, userID string) (*models.UserPreferences, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.prefs[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *MemoryStore) UpdateTimezone(ctx context.Context, row models.UserPreferences) error {
	m.update(row, func(p *models.UserPreferences) { p.Timezone = row.Timezone })
	return nil
}

func (m *MemoryStore) UpdateLanguage(ctx context.Context, row models.UserPreferences) error {
	m.update(row, func(p *models.UserPreferences) { p.Language = row.Language })
	return nil
}

// update applies fn to the stored row, or stores row when there is none.
func (m *MemoryStore) update(row models.UserPreferences, fn func(*models.UserPreferences)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.prefs[row.UserID]
	if !ok {
		p = row
		p.CreatedAt = time.Now().UTC()
	}
	fn(&p)
	m.prefs[row.UserID] = p
}

func (m *MemoryStore) DeleteUserData(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.tasks[:0]
	for _, t := range m.tasks {
		if t.UserID != userID {
			kept = append(kept, t)
		}
	}
	m.tasks = kept
	delete(m.prefs, userID)
	return nil
}

func (m *MemoryStore) CreateTask(ctx context.Context, task *models.Task) error {
	prepareTask(task)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.tasks = append(m.tasks, *task)
	return nil
}

func (m *MemoryStore) ListTasks(ctx context.Context, userID string, filter models.TaskFilter, now time.Time) ([]models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tasks := []models.Task{}
	for _, t := range m.tasks {
		if t.UserID == userID && filter.Match(t, now) {
			tasks = append(tasks, t)
		}
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].DueAt.Before(tasks[j].DueAt)
	})
	return tasks, nil
}

// Ping always succeeds.
func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func (m *MemoryStore) Close() {}
