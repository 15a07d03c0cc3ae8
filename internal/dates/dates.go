// Package dates turns quick date choices and typed "DD.MM.YYYY HH:MM" strings
// into absolute UTC instants.
package dates

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Quick choices offered by the date selector.
const (
	ChoiceToday    = "today"
	ChoiceTomorrow = "tomorrow"
	ChoiceNextWeek = "next_week"
	ChoiceCustom   = "custom"
)

// Layout is the textual form users type and the form dates are displayed in.
const Layout = "02.01.2006 15:04"

// Example is shown to users next to format errors.
const Example = "25.12.2023 15:30"

// ParseError describes a custom date string that could not be understood.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid date %q: %s (expected DD.MM.YYYY HH:MM)", e.Input, e.Reason)
}

// IsQuickChoice reports whether s is one of today, tomorrow or next_week.
func IsQuickChoice(s string) bool {
	switch s {
	case ChoiceToday, ChoiceTomorrow, ChoiceNextWeek:
		return true
	}
	return false
}

// Resolve maps a quick choice or a custom date string to a UTC instant,
// relative to ref. Custom text carries no zone and is read as UTC.
func Resolve(input string, ref time.Time) (time.Time, error) {
	ref = ref.UTC()
	switch input {
	case ChoiceToday:
		return atClock(ref, 17, 0), nil
	case ChoiceTomorrow:
		return atClock(ref.AddDate(0, 0, 1), 9, 0), nil
	case ChoiceNextWeek:
		return atClock(ref.AddDate(0, 0, 7), 9, 0), nil
	}
	return Parse(input)
}

func atClock(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.UTC)
}

// Parse reads "day.month.year hour:minute" as a UTC instant.
func Parse(input string) (time.Time, error) {
	text := strings.TrimSpace(input)
	fail := func(reason string) (time.Time, error) {
		return time.Time{}, &ParseError{Input: input, Reason: reason}
	}

	datePart, clockPart, ok := strings.Cut(text, " ")
	if !ok {
		return fail("missing time")
	}
	clockPart = strings.TrimSpace(clockPart)

	dateFields := strings.Split(datePart, ".")
	if len(dateFields) != 3 {
		return fail("date must be day.month.year")
	}
	clockFields := strings.Split(clockPart, ":")
	if len(clockFields) != 2 {
		return fail("time must be hour:minute")
	}

	var n [5]int
	fields := append(dateFields, clockFields...)
	for i, f := range fields {
		v, err := number(f)
		if err != nil {
			return fail(err.Error())
		}
		n[i] = v
	}
	day, month, year, hour, minute := n[0], n[1], n[2], n[3], n[4]

	switch {
	case year < 1 || year > 9999:
		return fail("year out of range")
	case month < 1 || month > 12:
		return fail("month out of range")
	case day < 1 || day > daysIn(time.Month(month), year):
		return fail("day out of range")
	case hour > 23:
		return fail("hour out of range")
	case minute > 59:
		return fail("minute out of range")
	}

	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC), nil
}

func number(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty field")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%q is not a number", s)
		}
	}
	if len(s) > 4 {
		return 0, fmt.Errorf("%q is too long", s)
	}
	return strconv.Atoi(s)
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Format renders t in the user-facing layout, in UTC.
func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}
