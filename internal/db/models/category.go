package models

import (
	"fmt"
	"strconv"
)

type Category string

const (
	CategoryWork      Category = "Work"
	CategoryPersonal  Category = "Personal"
	CategoryShopping  Category = "Shopping"
	CategoryHealth    Category = "Health"
	CategoryEducation Category = "Education"
	CategoryFinance   Category = "Finance"
	CategoryTravel    Category = "Travel"
)

// Categories lists every category in selector order.
var Categories = []Category{
	CategoryWork,
	CategoryPersonal,
	CategoryShopping,
	CategoryHealth,
	CategoryEducation,
	CategoryFinance,
	CategoryTravel,
}

var categoryEmoji = map[Category]string{
	CategoryWork:      "💼",
	CategoryPersonal:  "👤",
	CategoryShopping:  "🛍",
	CategoryHealth:    "⚕️",
	CategoryEducation: "🎓",
	CategoryFinance:   "💶",
	CategoryTravel:    "✈️",
}

func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if _, ok := categoryEmoji[c]; !ok {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

func (c Category) Emoji() string {
	return categoryEmoji[c]
}

// Display renders the category with its emoji, e.g. "🛍 Shopping".
func (c Category) Display() string {
	if e := c.Emoji(); e != "" {
		return e + " " + string(c)
	}
	return string(c)
}

// Priority is the wire value sent by the selector. The display rank is
// inverted: wire 4 is rank 1 (Critical), wire 1 is rank 4 (Low).
type Priority int

const (
	PriorityLow      Priority = 1
	PriorityMedium   Priority = 2
	PriorityHigh     Priority = 3
	PriorityCritical Priority = 4
)

// Priorities lists the wire values in selector order, highest rank first.
var Priorities = []Priority{
	PriorityCritical,
	PriorityHigh,
	PriorityMedium,
	PriorityLow,
}

var priorityNames = map[Priority]string{
	PriorityCritical: "Critical",
	PriorityHigh:     "High",
	PriorityMedium:   "Medium",
	PriorityLow:      "Low",
}

// ParsePriority accepts a wire value "1".."4".
func ParsePriority(s string) (Priority, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid priority %q: %w", s, err)
	}
	p := Priority(n)
	if !p.Valid() {
		return 0, fmt.Errorf("priority %d out of range", n)
	}
	return p, nil
}

func (p Priority) Valid() bool {
	_, ok := priorityNames[p]
	return ok
}

// Rank is the display rank, 1 being the most urgent.
func (p Priority) Rank() int {
	return 5 - int(p)
}

func (p Priority) Name() string {
	return priorityNames[p]
}

// Label is the exact display label, e.g. "Critical (1)".
func (p Priority) Label() string {
	if !p.Valid() {
		return fmt.Sprintf("Unknown (%d)", int(p))
	}
	return fmt.Sprintf("%s (%d)", p.Name(), p.Rank())
}

// WireValue is the selector value for p.
func (p Priority) WireValue() string {
	return strconv.Itoa(int(p))
}
