package model

import "time"

// User is the local identity created on login. There are no credentials.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewUser is the login payload.
type NewUser struct {
	Name  string
	Email string
}

// Comment is a single entry in a task's comment thread.
type Comment struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"taskId"`
	Comment   string    `json:"comment"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewComment is the creation payload for a comment.
type NewComment struct {
	TaskID  string
	Comment string
	UserID  string
}
