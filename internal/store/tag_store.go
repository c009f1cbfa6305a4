package store

import (
	"slices"

	"github.com/nhle/tasktracker/internal/model"
)

// Tags returns every tag in collection order.
func (s *Store) Tags() []model.Tag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Tag{}, s.tags...)
}

// Tag returns the tag with the given id.
func (s *Store) Tag(id string) (model.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.tagIndex(id)
	if i < 0 {
		return model.Tag{}, notFound("tag", id)
	}
	return s.tags[i], nil
}

// AddTag appends t as given.
func (s *Store) AddTag(t model.Tag) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags = append(s.tags, t)
}

// UpdateTag merges patch into the tag and stamps updatedAt.
func (s *Store) UpdateTag(id string, patch model.TagPatch) (model.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.tagIndex(id)
	if i < 0 {
		return model.Tag{}, notFound("tag", id)
	}
	t := patch.Apply(s.tags[i])
	t.UpdatedAt = s.stamp(s.tags[i].UpdatedAt)
	s.tags[i] = t
	return t, nil
}

// RemoveTag strips id from every task that references it, stamping those
// tasks, and then deletes the tag.
func (s *Store) RemoveTag(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.tagIndex(id)
	if i < 0 {
		return notFound("tag", id)
	}

	for j := range s.tasks {
		t := &s.tasks[j]
		if !slices.Contains(t.TagIDs, id) {
			continue
		}
		t.TagIDs = slices.DeleteFunc(slices.Clone(t.TagIDs), func(tagID string) bool {
			return tagID == id
		})
		t.UpdatedAt = s.stamp(t.UpdatedAt)
	}

	s.tags = append(s.tags[:i:i], s.tags[i+1:]...)
	return nil
}

// SetTags replaces the whole tag collection.
func (s *Store) SetTags(tags []model.Tag) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags = append([]model.Tag{}, tags...)
}

// ClearTags empties the tag collection.
func (s *Store) ClearTags() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags = []model.Tag{}
}

func (s *Store) tagIndex(id string) int {
	for i := range s.tags {
		if s.tags[i].ID == id {
			return i
		}
	}
	return -1
}
