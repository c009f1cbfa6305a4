package model

import "time"

// Urgency buckets a due date relative to today.
type Urgency string

const (
	UrgencyNone     Urgency = "none"
	UrgencyOverdue  Urgency = "overdue"
	UrgencyToday    Urgency = "today"
	UrgencyTomorrow Urgency = "tomorrow"
	UrgencyUpcoming Urgency = "upcoming"
)

// Label returns the short human label for the bucket.
func (u Urgency) Label() string {
	switch u {
	case UrgencyOverdue:
		return "Overdue"
	case UrgencyToday:
		return "Due today"
	case UrgencyTomorrow:
		return "Due tomorrow"
	case UrgencyUpcoming:
		return "Due"
	default:
		return ""
	}
}

// DateUrgency compares due against now at day granularity in now's
// location. A nil due date has no urgency.
func DateUrgency(due *time.Time, now time.Time) Urgency {
	if due == nil {
		return UrgencyNone
	}
	today := StartOfDay(now)
	day := StartOfDay(due.In(now.Location()))
	switch {
	case day.Before(today):
		return UrgencyOverdue
	case day.Equal(today):
		return UrgencyToday
	case day.Equal(today.AddDate(0, 0, 1)):
		return UrgencyTomorrow
	default:
		return UrgencyUpcoming
	}
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// FormatDueDate renders a due date for list rows, e.g. "Due today" or
// "Due Mar 4".
func FormatDueDate(due *time.Time, now time.Time) string {
	u := DateUrgency(due, now)
	switch u {
	case UrgencyNone:
		return ""
	case UrgencyUpcoming, UrgencyOverdue:
		return u.Label() + " " + due.In(now.Location()).Format("Jan 2")
	default:
		return u.Label()
	}
}
