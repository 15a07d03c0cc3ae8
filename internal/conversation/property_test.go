package conversation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"remindbot/internal/dates"
	"remindbot/internal/db"
	"remindbot/internal/db/models"
	"remindbot/internal/settings"

	"pgregory.net/rapid"
)

func newManager(store settings.PreferenceStore) *settings.Manager {
	return settings.NewManager(store, "", "")
}

// Every commit yields exactly one reminder whose deadline and payload match
// the committed task.
func TestCommitSchedulesMatchingReminder(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		store := db.NewMemoryStore()
		sched := &fakeScheduler{}
		m := New(store, newManager(store), sched, WithClock(func() time.Time { return fixedNow }))

		desc := rapid.StringMatching(`[A-Za-z][A-Za-z0-9 ]{0,30}`).Draw(rt, "description")
		category := rapid.SampledFrom(models.Categories).Draw(rt, "category")
		priority := rapid.SampledFrom(models.Priorities).Draw(rt, "priority")
		day := rapid.IntRange(1, 28).Draw(rt, "day")
		month := rapid.IntRange(1, 12).Draw(rt, "month")
		hour := rapid.IntRange(0, 23).Draw(rt, "hour")
		minute := rapid.IntRange(0, 59).Draw(rt, "minute")
		dateText := fmt.Sprintf("%02d.%02d.2025 %02d:%02d", day, month, hour, minute)

		events := []Event{
			{Kind: EventCommand, Payload: CommandCreateTask},
			{Kind: EventText, Payload: desc},
			{Kind: EventText, Payload: dateText},
			{Kind: EventSelect, Payload: string(category)},
			{Kind: EventSelect, Payload: priority.WireValue()},
		}
		for _, ev := range events {
			ev.UserID = "prop-user"
			if _, err := m.Handle(context.Background(), ev); err != nil {
				rt.Fatalf("Handle(%+v): %v", ev, err)
			}
		}

		tasks, _ := store.ListTasks(context.Background(), "prop-user", models.FilterAll, fixedNow)
		regs := sched.registrations()
		if len(tasks) != 1 || len(regs) != 1 {
			rt.Fatalf("tasks=%d reminders=%d, want 1/1", len(tasks), len(regs))
		}

		task, reg := tasks[0], regs[0]
		want := time.Date(2025, time.Month(month), day, hour, minute, 0, 0, time.UTC)
		if !task.DueAt.Equal(want) || !reg.at.Equal(task.DueAt) {
			rt.Errorf("due=%v reminder=%v want=%v", task.DueAt, reg.at, want)
		}
		if reg.r.UserID != task.UserID || reg.r.Description != task.Description || reg.r.Priority != task.Priority {
			rt.Errorf("payload %+v does not match task %+v", reg.r, task)
		}
		if task.Category != category || task.Priority != priority {
			rt.Errorf("task = %+v", task)
		}
	})
}

// Malformed dates never advance the flow or touch the draft.
func TestMalformedDatesNeverAdvance(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		store := db.NewMemoryStore()
		m := New(store, newManager(store), &fakeScheduler{}, WithClock(func() time.Time { return fixedNow }))
		ctx := context.Background()

		m.Handle(ctx, Event{UserID: "u", Kind: EventCommand, Payload: CommandCreateTask})
		m.Handle(ctx, Event{UserID: "u", Kind: EventText, Payload: "desc"})
		before, _ := m.Draft("u")

		junk := rapid.OneOf(
			rapid.StringMatching(`[a-z:./ -]{0,20}`),
			rapid.SampledFrom([]string{dates.ChoiceToday, dates.ChoiceTomorrow, dates.ChoiceNextWeek, dates.ChoiceCustom}),
		).Draw(rt, "junk")
		m.Handle(ctx, Event{UserID: "u", Kind: EventText, Payload: junk})

		if m.State("u") != StateAwaitingDate {
			rt.Fatalf("input %q advanced state to %s", junk, m.State("u"))
		}
		after, _ := m.Draft("u")
		if after != before {
			rt.Errorf("input %q changed draft", junk)
		}
	})
}
