package model

// UserState is the persisted session section.
type UserState struct {
	CurrentUser     *User `json:"currentUser"`
	IsAuthenticated bool  `json:"isAuthenticated"`
}

// Collection is the persisted shape of one entity collection. Loading and
// Error are transient and always written as false/null.
type Collection[T any] struct {
	Items   []T     `json:"items"`
	Loading bool    `json:"loading"`
	Error   *string `json:"error"`
}

// Snapshot is the full persisted application state.
type Snapshot struct {
	User     UserState           `json:"user"`
	Tasks    Collection[Task]    `json:"tasks"`
	Tags     Collection[Tag]     `json:"tags"`
	Comments Collection[Comment] `json:"comments"`
}

// EmptySnapshot returns the logged-out state with empty collections.
func EmptySnapshot() Snapshot {
	return Snapshot{
		Tasks:    Collection[Task]{Items: []Task{}},
		Tags:     Collection[Tag]{Items: []Tag{}},
		Comments: Collection[Comment]{Items: []Comment{}},
	}
}
