package store

import (
	"sort"

	"github.com/nhle/tasktracker/internal/model"
)

// Comments returns every comment in collection order.
func (s *Store) Comments() []model.Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Comment{}, s.comments...)
}

// CommentsForTask returns the task's thread, oldest first.
func (s *Store) CommentsForTask(taskID string) []model.Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	thread := []model.Comment{}
	for _, c := range s.comments {
		if c.TaskID == taskID {
			thread = append(thread, c)
		}
	}
	sort.SliceStable(thread, func(i, j int) bool {
		return thread[i].CreatedAt.Before(thread[j].CreatedAt)
	})
	return thread
}

// Comment returns the comment with the given id.
func (s *Store) Comment(id string) (model.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.commentIndex(id)
	if i < 0 {
		return model.Comment{}, notFound("comment", id)
	}
	return s.comments[i], nil
}

// AddComment appends c as given.
func (s *Store) AddComment(c model.Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments = append(s.comments, c)
}

// UpdateComment merges patch into the comment and stamps updatedAt.
func (s *Store) UpdateComment(id string, patch model.CommentPatch) (model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.commentIndex(id)
	if i < 0 {
		return model.Comment{}, notFound("comment", id)
	}
	c := patch.Apply(s.comments[i])
	c.UpdatedAt = s.stamp(s.comments[i].UpdatedAt)
	s.comments[i] = c
	return c, nil
}

// RemoveComment deletes one comment.
func (s *Store) RemoveComment(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.commentIndex(id)
	if i < 0 {
		return notFound("comment", id)
	}
	s.comments = append(s.comments[:i:i], s.comments[i+1:]...)
	return nil
}

// SetComments replaces the whole comment collection.
func (s *Store) SetComments(comments []model.Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments = append([]model.Comment{}, comments...)
}

// ClearComments empties the comment collection.
func (s *Store) ClearComments() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments = []model.Comment{}
}

func (s *Store) commentIndex(id string) int {
	for i := range s.comments {
		if s.comments[i].ID == id {
			return i
		}
	}
	return -1
}
