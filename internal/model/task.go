package model

import (
	"strings"
	"time"
)

// Priority is the three-level task priority. Lower number = hotter.
type Priority int

const (
	PriorityGhostPepper Priority = 0
	PriorityJalapeno    Priority = 1
	PriorityMinnesotan  Priority = 2
)

// DefaultPriority is assigned to tasks created or loaded without one.
const DefaultPriority = PriorityJalapeno

// Priorities lists every priority level, hottest first.
var Priorities = []Priority{PriorityGhostPepper, PriorityJalapeno, PriorityMinnesotan}

// Valid reports whether p is one of the known levels.
func (p Priority) Valid() bool {
	return p >= PriorityGhostPepper && p <= PriorityMinnesotan
}

// Compare returns -1 if p is hotter than o, +1 if colder, 0 if equal.
func (p Priority) Compare(o Priority) int {
	switch {
	case p < o:
		return -1
	case p > o:
		return 1
	default:
		return 0
	}
}

// String returns the display name of the priority level.
func (p Priority) String() string {
	switch p {
	case PriorityGhostPepper:
		return "Ghost Pepper"
	case PriorityJalapeno:
		return "Jalapeño"
	case PriorityMinnesotan:
		return "Minnesotan"
	default:
		return "Unknown"
	}
}

// ParsePriority maps the legacy string form ("ghost-pepper", "jalapeño",
// "minnesotan") onto a Priority. Anything else yields DefaultPriority.
func ParsePriority(s string) Priority {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ghost-pepper", "ghost pepper":
		return PriorityGhostPepper
	case "jalapeño", "jalapeno":
		return PriorityJalapeno
	case "minnesotan":
		return PriorityMinnesotan
	default:
		return DefaultPriority
	}
}

// Task is a single to-do item owned by one user.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Completed   bool       `json:"completed"`
	Priority    Priority   `json:"priority"`
	UserID      string     `json:"userId"`
	DueDate     *time.Time `json:"dueDate"`
	Description *string    `json:"description"`

	// TagIDs references tags by id. Order is irrelevant; ids of deleted
	// tags are stripped by the store and skipped by ResolveTags.
	TagIDs []string `json:"tagIds"`

	// Order is the manual sort position.
	Order int `json:"order"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewTask is the creation payload for a task. A nil Priority means
// DefaultPriority; an empty UserID means the logged-in user.
type NewTask struct {
	Title       string
	Priority    *Priority
	UserID      string
	DueDate     *time.Time
	Description *string
	TagIDs      []string
}

// HasTag reports whether the task references tagID.
func (t Task) HasTag(tagID string) bool {
	for _, id := range t.TagIDs {
		if id == tagID {
			return true
		}
	}
	return false
}

// ResolveTags returns the tags referenced by t, in TagIDs order.
// Ids with no matching tag in all are skipped.
func (t Task) ResolveTags(all []Tag) []Tag {
	if len(t.TagIDs) == 0 {
		return nil
	}
	byID := make(map[string]Tag, len(all))
	for _, tag := range all {
		byID[tag.ID] = tag
	}
	var tags []Tag
	for _, id := range t.TagIDs {
		if tag, ok := byID[id]; ok {
			tags = append(tags, tag)
		}
	}
	return tags
}

// IsOverdue reports whether the task is open and its due date is before
// the start of now's day.
func (t Task) IsOverdue(now time.Time) bool {
	return !t.Completed && DateUrgency(t.DueDate, now) == UrgencyOverdue
}

// Clone returns a deep copy of t.
func (t Task) Clone() Task {
	c := t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if t.Description != nil {
		s := *t.Description
		c.Description = &s
	}
	if t.TagIDs != nil {
		c.TagIDs = append([]string{}, t.TagIDs...)
	}
	return c
}
