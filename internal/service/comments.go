package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/nhle/tasktracker/internal/model"
	"github.com/nhle/tasktracker/internal/store"
)

func commentsKey(taskID string) string {
	return "comments/" + taskID
}

// FetchTaskComments returns the task's comments, oldest first.
func (s *Service) FetchTaskComments(ctx context.Context, taskID string) ([]model.Comment, error) {
	return fetch(ctx, s, commentsKey(taskID), []Family{FamilyComment},
		func() []model.Comment { return s.store.CommentsForTask(taskID) },
		cloneSlice[model.Comment],
	)
}

// AddComment appends a comment to an existing task. An empty UserID means
// the logged-in user.
func (s *Service) AddComment(ctx context.Context, nc model.NewComment) (model.Comment, error) {
	text := strings.TrimSpace(nc.Comment)
	if text == "" {
		return model.Comment{}, invalid("comment must not be empty")
	}
	userID := nc.UserID
	if userID == "" {
		id, ok := s.currentUserID()
		if !ok {
			return model.Comment{}, ErrNotLoggedIn
		}
		userID = id
	}

	var created model.Comment
	err := s.mutate(ctx, "add comment", []Family{FamilyComment}, func() (bool, error) {
		if _, err := s.store.Task(nc.TaskID); err != nil {
			return false, err
		}
		now := s.stamp()
		created = model.Comment{
			ID:        uuid.New().String(),
			TaskID:    nc.TaskID,
			Comment:   text,
			UserID:    userID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		s.store.AddComment(created)
		return true, nil
	})
	return created, err
}

// UpdateComment edits a comment's text.
func (s *Service) UpdateComment(ctx context.Context, id string, patch model.CommentPatch) (model.Comment, error) {
	if patch.Comment != nil {
		text := strings.TrimSpace(*patch.Comment)
		if text == "" {
			return model.Comment{}, invalid("comment must not be empty")
		}
		patch.Comment = &text
	}

	var updated model.Comment
	err := s.mutate(ctx, "update comment", []Family{FamilyComment}, func() (bool, error) {
		c, err := s.store.UpdateComment(id, patch)
		if err != nil {
			return false, err
		}
		updated = c
		return true, nil
	})
	return updated, err
}

// DeleteComment removes a comment. Deleting a missing id reports false.
func (s *Service) DeleteComment(ctx context.Context, id string) (bool, error) {
	deleted := false
	err := s.mutate(ctx, "delete comment", []Family{FamilyComment}, func() (bool, error) {
		err := s.store.RemoveComment(id)
		if store.IsNotFound(err) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		deleted = true
		return true, nil
	})
	return deleted, err
}
