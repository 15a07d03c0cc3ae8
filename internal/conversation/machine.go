// Package conversation drives the per-user menu flows: creating a task step
// by step and changing settings.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"strings"
	"sync"
	"time"

	"remindbot/internal/db/models"
	"remindbot/internal/reminder"
)

var (
	// ErrStore marks a persistence failure.
	ErrStore = errors.New("store failure")
	// ErrScheduling marks a failure to register a reminder.
	ErrScheduling = errors.New("scheduling failure")
)

type TaskStore interface {
	CreateTask(ctx context.Context, task *models.Task) error
	ListTasks(ctx context.Context, userID string, filter models.TaskFilter, now time.Time) ([]models.Task, error)
}

type Scheduler interface {
	Schedule(at time.Time, r reminder.Reminder) (reminder.ID, error)
}

// Settings is satisfied by *settings.Manager.
type Settings interface {
	EnsureUser(ctx context.Context, userID string) error
	Preferences(ctx context.Context, userID string) (*models.UserPreferences, error)
	SetTimezone(ctx context.Context, userID, timezone string) error
	SetLanguage(ctx context.Context, userID, language string) error
	DeleteAll(ctx context.Context, userID string) error
	Export(ctx context.Context, userID string) string
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

// Machine holds every user's session. Events of one user are handled one at
// a time; different users proceed in parallel.
type Machine struct {
	tasks     TaskStore
	settings  Settings
	scheduler Scheduler
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	locks    map[string]*userLock
	known    map[string]bool
}

type Option func(*Machine)

// WithClock overrides the clock used for date shortcuts and listings.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

func New(tasks TaskStore, settings Settings, scheduler Scheduler, opts ...Option) *Machine {
	m := &Machine{
		tasks:     tasks,
		settings:  settings,
		scheduler: scheduler,
		now:       time.Now,
		sessions:  make(map[string]*Session),
		locks:     make(map[string]*userLock),
		known:     make(map[string]bool),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Handle applies ev to its user's session. The reply is always safe to show;
// a non-nil error is for logging and never means the machine is unusable.
func (m *Machine) Handle(ctx context.Context, ev Event) (reply Reply, err error) {
	unlock := m.lockUser(ev.UserID)
	defer unlock()

	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			log.Printf("[CONVERSATION] panic for user %s on %s %q: %v\n%s",
				ev.UserID, ev.Kind, ev.Payload, r, string(buf[:n]))
			m.endSession(ev.UserID)
			reply = failureReply()
			err = fmt.Errorf("panic handling event: %v", r)
		}
	}()

	m.ensureUser(ctx, ev.UserID)

	s := m.session(ev.UserID)
	before := s.State

	if ev.Kind == EventCommand {
		reply, err = m.handleCommand(ctx, ev, s)
	} else {
		reply, err = transitions[s.State](m, ctx, ev, s)
	}

	if s.State == StateIdle {
		m.endSession(ev.UserID)
	}
	if before != s.State {
		log.Printf("[CONVERSATION] user %s: %s -> %s", ev.UserID, before, s.State)
	}
	return reply, err
}

// State reports the current state of userID. It waits for any event of
// userID that is being handled.
func (m *Machine) State(userID string) State {
	unlock := m.lockUser(userID)
	defer unlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[userID]; ok {
		return s.State
	}
	return StateIdle
}

// Draft returns a copy of the in-progress draft of userID, if any.
func (m *Machine) Draft(userID string) (Draft, bool) {
	unlock := m.lockUser(userID)
	defer unlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok {
		return Draft{}, false
	}
	return s.Draft, true
}

// ActiveSessions is the number of users in the middle of a flow.
func (m *Machine) ActiveSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Machine) lockUser(userID string) func() {
	m.mu.Lock()
	l, ok := m.locks[userID]
	if !ok {
		l = &userLock{}
		m.locks[userID] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, userID)
		}
		m.mu.Unlock()
	}
}

// session returns the user's session, or a fresh idle one that is not yet
// registered.
func (m *Machine) session(userID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[userID]; ok {
		return s
	}
	return &Session{State: StateIdle}
}

// beginSession replaces any existing session of userID with a new one in
// state st.
func (m *Machine) beginSession(userID string, s *Session, st State) {
	*s = Session{State: st, StartedAt: m.now()}

	m.mu.Lock()
	m.sessions[userID] = s
	m.mu.Unlock()
}

func (m *Machine) endSession(userID string) {
	m.mu.Lock()
	delete(m.sessions, userID)
	m.mu.Unlock()
}

func (m *Machine) ensureUser(ctx context.Context, userID string) {
	m.mu.Lock()
	known := m.known[userID]
	m.mu.Unlock()
	if known {
		return
	}

	if err := m.settings.EnsureUser(ctx, userID); err != nil {
		log.Printf("[CONVERSATION] ensure user %s: %v", userID, err)
		return
	}

	m.mu.Lock()
	m.known[userID] = true
	m.mu.Unlock()
}

func (m *Machine) forget(userID string) {
	m.mu.Lock()
	delete(m.known, userID)
	m.mu.Unlock()
}

func (m *Machine) handleCommand(ctx context.Context, ev Event, s *Session) (Reply, error) {
	switch ev.Payload {
	case CommandCancel:
		s.State = StateIdle
		return Reply{Text: textCancelled, ShowMenu: true}, nil

	case CommandStart:
		s.State = StateIdle
		return Reply{Text: welcomeText(ev.Name), ShowMenu: true}, nil

	case CommandCreateTask:
		m.beginSession(ev.UserID, s, StateAwaitingDescription)
		return descriptionPrompt(), nil

	case CommandSettings:
		m.beginSession(ev.UserID, s, StateAwaitingSettingChoice)
		return m.settingsMenu(ctx, ev.UserID, s)
	}

	filter, ok := queryFilters[ev.Payload]
	if !ok {
		log.Printf("[CONVERSATION] unknown command %q from user %s", ev.Payload, ev.UserID)
		return m.reprompt(ctx, ev.UserID, s, textUnknownCommand)
	}
	if s.State != StateIdle {
		return m.reprompt(ctx, ev.UserID, s, textFinishFirst)
	}
	return m.listTasks(ctx, ev.UserID, filter)
}

var queryFilters = map[string]models.TaskFilter{
	CommandListTasks: models.FilterAll,
	CommandToday:     models.FilterToday,
	CommandUpcoming:  models.FilterUpcoming,
	CommandImportant: models.FilterImportant,
}

func (m *Machine) listTasks(ctx context.Context, userID string, filter models.TaskFilter) (Reply, error) {
	tasks, err := m.tasks.ListTasks(ctx, userID, filter, m.now())
	if err != nil {
		return failureReply(), fmt.Errorf("%w: list %s tasks: %w", ErrStore, filter, err)
	}
	if len(tasks) == 0 {
		return Reply{Text: textNoTasks, ShowMenu: true}, nil
	}
	return Reply{
		Title:    filter.Title(),
		Tasks:    tasks,
		Text:     textNextAction,
		ShowMenu: true,
	}, nil
}

// reprompt repeats the prompt of the current state, prefixed with notice.
func (m *Machine) reprompt(ctx context.Context, userID string, s *Session, notice string) (Reply, error) {
	var r Reply
	switch s.State {
	case StateIdle:
		r = Reply{Text: textSelectOption, ShowMenu: true}
	case StateAwaitingDescription:
		r = descriptionPrompt()
	case StateAwaitingDate:
		r = datePrompt()
	case StateAwaitingCategory:
		r = categoryPrompt()
	case StateAwaitingPriority:
		r = priorityPrompt()
	case StateAwaitingSettingChoice:
		menu, err := m.settingsMenu(ctx, userID, s)
		if err != nil {
			return menu, err
		}
		r = menu
	case StateAwaitingSettingValue:
		r = settingValuePrompt(s.setting)
	}
	if notice != "" {
		r.Text = notice + "\n\n" + r.Text
	}
	return r, nil
}

func failureReply() Reply {
	return Reply{Text: textFailure, ShowMenu: true}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
