package model

import "time"

// TaskPatch is a partial update to a Task. Nil fields are left untouched.
// DueDate and Description are nullable on the task, so clearing them is
// requested with ClearDueDate / ClearDescription.
type TaskPatch struct {
	Title            *string
	Completed        *bool
	Priority         *Priority
	DueDate          *time.Time
	ClearDueDate     bool
	Description      *string
	ClearDescription bool

	// TagIDs replaces the whole tag set when non-nil. An empty, non-nil
	// slice removes every tag.
	TagIDs []string

	Order *int
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Completed == nil && p.Priority == nil &&
		p.DueDate == nil && !p.ClearDueDate &&
		p.Description == nil && !p.ClearDescription &&
		p.TagIDs == nil && p.Order == nil
}

// Apply returns t with the patch merged in. UpdatedAt is not touched.
func (p TaskPatch) Apply(t Task) Task {
	t = t.Clone()
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	switch {
	case p.ClearDueDate:
		t.DueDate = nil
	case p.DueDate != nil:
		d := p.DueDate.UTC()
		t.DueDate = &d
	}
	switch {
	case p.ClearDescription:
		t.Description = nil
	case p.Description != nil:
		s := *p.Description
		t.Description = &s
	}
	if p.TagIDs != nil {
		t.TagIDs = append([]string{}, p.TagIDs...)
	}
	if p.Order != nil {
		t.Order = *p.Order
	}
	return t
}

// TagPatch is a partial update to a Tag.
type TagPatch struct {
	Name  *string
	Color *TagColor
}

// Apply returns t with the patch merged in.
func (p TagPatch) Apply(t Tag) Tag {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Color != nil {
		t.Color = *p.Color
	}
	return t
}

// CommentPatch is a partial update to a Comment.
type CommentPatch struct {
	Comment *string
}

// Apply returns c with the patch merged in.
func (p CommentPatch) Apply(c Comment) Comment {
	if p.Comment != nil {
		c.Comment = *p.Comment
	}
	return c
}

// UserPatch is a partial update to the current user's profile.
type UserPatch struct {
	Name  *string
	Email *string
}

// Apply returns u with the patch merged in.
func (p UserPatch) Apply(u User) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	return u
}

// Ptr returns a pointer to v. Handy for building patches.
func Ptr[T any](v T) *T {
	return &v
}
