// Package reminder schedules one-shot task reminders in memory.
//
// Pending reminders are not persisted; a restart drops them.
package reminder

import (
	"container/heap"
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// ErrStopped is returned when scheduling on a stopped scheduler.
var ErrStopped = errors.New("reminder scheduler stopped")

// Scheduler fires each registered reminder exactly once, at or after its
// deadline. Deliveries run on their own goroutines so a slow notifier never
// holds up scheduling.
type Scheduler struct {
	notifier Notifier
	now      func() time.Time
	timeout  time.Duration

	mu      sync.Mutex
	queue   deadlineQueue
	byID    map[ID]*item
	nextID  ID
	seq     uint64
	stopped bool
	running bool

	wake   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	loopWG sync.WaitGroup
	fireWG sync.WaitGroup

	fired  int64
	failed int64
}

type Option func(*Scheduler)

// WithClock overrides the wall clock used to compute delays.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithDeliveryTimeout bounds a single notifier call.
func WithDeliveryTimeout(d time.Duration) Option {
	return func(s *Scheduler) { s.timeout = d }
}

func NewScheduler(notifier Notifier, opts ...Option) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		notifier: notifier,
		now:      time.Now,
		timeout:  30 * time.Second,
		byID:     make(map[ID]*item),
		wake:     make(chan struct{}, 1),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the dispatch loop. Reminders scheduled before Start are
// held until it runs.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running || s.stopped {
		return
	}
	s.running = true

	s.loopWG.Add(1)
	go s.loop()

	log.Printf("[SCHEDULER] started with %d pending reminders", len(s.queue))
}

// Stop halts the loop, drops pending reminders and waits for in-flight
// deliveries to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	dropped := len(s.queue)
	s.queue = nil
	s.byID = make(map[ID]*item)
	s.mu.Unlock()

	s.cancel()
	s.loopWG.Wait()
	s.fireWG.Wait()

	log.Printf("[SCHEDULER] stopped, %d pending reminders dropped", dropped)
}

// Schedule registers r to fire at at. A deadline already in the past fires
// as soon as the loop runs.
func (s *Scheduler) Schedule(at time.Time, r Reminder) (ID, error) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return 0, ErrStopped
	}

	s.nextID++
	s.seq++
	it := &item{
		entry: Entry{ID: s.nextID, At: at.UTC(), Reminder: r},
		seq:   s.seq,
	}
	heap.Push(&s.queue, it)
	s.byID[it.entry.ID] = it
	s.mu.Unlock()

	s.poke()
	return it.entry.ID, nil
}

// Cancel removes a pending reminder. It reports false if the reminder has
// already fired or never existed.
func (s *Scheduler) Cancel(id ID) bool {
	s.mu.Lock()
	it, ok := s.byID[id]
	if ok {
		delete(s.byID, id)
		s.queue.remove(it)
	}
	s.mu.Unlock()

	if ok {
		s.poke()
	}
	return ok
}

// Lookup returns the pending registration for id.
func (s *Scheduler) Lookup(id ID) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.byID[id]
	if !ok {
		return Entry{}, false
	}
	return it.entry, true
}

// Pending is the number of reminders waiting to fire.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

func (s *Scheduler) GetStats() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := map[string]interface{}{
		"running": s.running && !s.stopped,
		"pending": len(s.queue),
		"fired":   s.fired,
		"failed":  s.failed,
	}
	if next := s.queue.peek(); next != nil {
		stats["next_fire"] = next.entry.At.Format(time.RFC3339)
	}
	return stats
}

func (s *Scheduler) poke() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) loop() {
	defer s.loopWG.Done()

	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		delay, ok := s.dispatchDue()
		if !ok {
			delay = time.Hour
		}

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(delay)

		select {
		case <-s.ctx.Done():
			return
		case <-s.wake:
		case <-timer.C:
		}
	}
}

// dispatchDue fires everything whose deadline has passed and returns the
// delay until the next one.
func (s *Scheduler) dispatchDue() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for {
		next := s.queue.peek()
		if next == nil {
			return 0, false
		}
		if next.entry.At.After(now) {
			return next.entry.At.Sub(now), true
		}

		heap.Pop(&s.queue)
		delete(s.byID, next.entry.ID)

		s.fireWG.Add(1)
		go s.fire(next.entry)
	}
}

func (s *Scheduler) fire(e Entry) {
	defer s.fireWG.Done()

	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	err := s.notifier.Notify(ctx, e.Reminder)

	s.mu.Lock()
	if err != nil {
		s.failed++
	} else {
		s.fired++
	}
	s.mu.Unlock()

	if err != nil {
		log.Printf("[SCHEDULER] reminder %d for user %s failed: %v", e.ID, e.Reminder.UserID, err)
		return
	}
	log.Printf("[SCHEDULER] reminder %d delivered to user %s", e.ID, e.Reminder.UserID)
}
