package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/nhle/tasktracker/internal/model"
	"github.com/nhle/tasktracker/internal/store"
)

const keyTags = "tags"

// FetchTags returns every tag.
func (s *Service) FetchTags(ctx context.Context) ([]model.Tag, error) {
	return fetch(ctx, s, keyTags, []Family{FamilyTag}, s.store.Tags, cloneSlice[model.Tag])
}

// CreateTag adds a tag. An empty color means the default; an unknown one
// is resolved onto the palette.
func (s *Service) CreateTag(ctx context.Context, nt model.NewTag) (model.Tag, error) {
	name := strings.TrimSpace(nt.Name)
	if name == "" {
		return model.Tag{}, invalid("tag name must not be empty")
	}
	color := model.ParseTagColor(string(nt.Color))

	var created model.Tag
	err := s.mutate(ctx, "create tag", []Family{FamilyTag}, func() (bool, error) {
		now := s.stamp()
		created = model.Tag{
			ID:        uuid.New().String(),
			Name:      name,
			Color:     color,
			CreatedAt: now,
			UpdatedAt: now,
		}
		s.store.AddTag(created)
		return true, nil
	})
	return created, err
}

// UpdateTag merges patch into the tag.
func (s *Service) UpdateTag(ctx context.Context, id string, patch model.TagPatch) (model.Tag, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return model.Tag{}, invalid("tag name must not be empty")
		}
		patch.Name = &name
	}
	if patch.Color != nil {
		c := model.ParseTagColor(string(*patch.Color))
		patch.Color = &c
	}

	var updated model.Tag
	err := s.mutate(ctx, "update tag", []Family{FamilyTag}, func() (bool, error) {
		t, err := s.store.UpdateTag(id, patch)
		if err != nil {
			return false, err
		}
		updated = t
		return true, nil
	})
	return updated, err
}

// DeleteTag strips the tag from every task and removes it. Task queries
// are invalidated too since their tag lists change.
func (s *Service) DeleteTag(ctx context.Context, id string) (bool, error) {
	deleted := false
	err := s.mutate(ctx, "delete tag", []Family{FamilyTag, FamilyTask}, func() (bool, error) {
		err := s.store.RemoveTag(id)
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

func cloneSlice[T any](items []T) []T {
	return append([]T{}, items...)
}
