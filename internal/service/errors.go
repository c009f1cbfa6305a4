package service

import (
	"errors"
	"fmt"

	"github.com/nhle/tasktracker/internal/store"
)

var (
	// ErrValidation is returned for input rejected before it reaches the store.
	ErrValidation = errors.New("invalid input")

	// ErrNotLoggedIn is returned by operations that need a current user.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrNotFound is returned when an update targets a missing id.
	ErrNotFound = store.ErrNotFound
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
