package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nhle/tasktracker/internal/model"
)

// Older snapshots may lack sections, store priorities as strings, omit
// task order or tag colors, or write null tag lists. The raw types below
// accept all of those shapes; backfill turns them into current entities.

type rawSnapshot struct {
	User     *model.UserState `json:"user"`
	Tasks    *rawCollection   `json:"tasks"`
	Tags     *rawCollection   `json:"tags"`
	Comments *rawCollection   `json:"comments"`
}

type rawCollection struct {
	Items []json.RawMessage `json:"items"`
}

type rawTask struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Completed   bool            `json:"completed"`
	Priority    json.RawMessage `json:"priority"`
	UserID      string          `json:"userId"`
	DueDate     *string         `json:"dueDate"`
	Description *string         `json:"description"`
	TagIDs      []string        `json:"tagIds"`
	Order       *int            `json:"order"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type rawTag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var errNotObject = errors.New("snapshot is not a JSON object")

// decode parses a stored document and backfills fields missing from older
// formats.
func decode(data []byte) (model.Snapshot, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return model.Snapshot{}, errNotObject
	}

	var raw rawSnapshot
	if err := json.Unmarshal(data, &raw); err != nil {
		return model.Snapshot{}, fmt.Errorf("decoding snapshot: %w", err)
	}

	snap := model.EmptySnapshot()
	if raw.User != nil {
		snap.User = *raw.User
		if snap.User.CurrentUser == nil {
			snap.User.IsAuthenticated = false
		}
	}

	if raw.Tasks != nil {
		tasks, err := decodeTasks(raw.Tasks.Items)
		if err != nil {
			return model.Snapshot{}, err
		}
		snap.Tasks.Items = tasks
	}

	if raw.Tags != nil {
		for i, item := range raw.Tags.Items {
			var rt rawTag
			if err := json.Unmarshal(item, &rt); err != nil {
				return model.Snapshot{}, fmt.Errorf("decoding tag %d: %w", i, err)
			}
			snap.Tags.Items = append(snap.Tags.Items, model.Tag{
				ID:        rt.ID,
				Name:      rt.Name,
				Color:     model.ParseTagColor(rt.Color),
				CreatedAt: rt.CreatedAt,
				UpdatedAt: rt.UpdatedAt,
			})
		}
	}

	if raw.Comments != nil {
		for i, item := range raw.Comments.Items {
			var c model.Comment
			if err := json.Unmarshal(item, &c); err != nil {
				return model.Snapshot{}, fmt.Errorf("decoding comment %d: %w", i, err)
			}
			snap.Comments.Items = append(snap.Comments.Items, c)
		}
	}

	return snap, nil
}

func decodeTasks(items []json.RawMessage) ([]model.Task, error) {
	tasks := make([]model.Task, 0, len(items))
	missingOrder := false

	for i, item := range items {
		var rt rawTask
		if err := json.Unmarshal(item, &rt); err != nil {
			return nil, fmt.Errorf("decoding task %d: %w", i, err)
		}
		due, err := parseDueDate(rt.DueDate)
		if err != nil {
			return nil, fmt.Errorf("decoding task %d: %w", i, err)
		}

		t := model.Task{
			ID:          rt.ID,
			Title:       rt.Title,
			Completed:   rt.Completed,
			Priority:    parsePriority(rt.Priority),
			UserID:      rt.UserID,
			DueDate:     due,
			Description: rt.Description,
			TagIDs:      rt.TagIDs,
			CreatedAt:   rt.CreatedAt,
			UpdatedAt:   rt.UpdatedAt,
		}
		if t.TagIDs == nil {
			t.TagIDs = []string{}
		}
		if rt.Order == nil {
			missingOrder = true
		} else {
			t.Order = *rt.Order
		}
		tasks = append(tasks, t)
	}

	// One task without an order means the whole list predates manual
	// ordering; renumber everything by stored position.
	if missingOrder {
		for i := range tasks {
			tasks[i].Order = i
		}
	}
	return tasks, nil
}

// parsePriority accepts the numeric form, the legacy string form, or
// nothing at all.
func parsePriority(raw json.RawMessage) model.Priority {
	if len(raw) == 0 || string(raw) == "null" {
		return model.DefaultPriority
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		if p := model.Priority(n); p.Valid() {
			return p
		}
		return model.DefaultPriority
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return model.ParsePriority(s)
	}
	return model.DefaultPriority
}

// parseDueDate accepts RFC 3339 timestamps and bare YYYY-MM-DD dates.
func parseDueDate(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	v := strings.TrimSpace(*s)
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		t = t.UTC()
		return &t, nil
	}
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		return &t, nil
	}
	return nil, fmt.Errorf("invalid due date %q", v)
}
