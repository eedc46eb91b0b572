package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned for malformed questions, definitions or keys.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrOutOfRange indicates a question or answer index outside its bounds.
	ErrOutOfRange = errors.New("index out of range")
	// ErrAlreadyExists is returned when a quiz id is registered twice.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotFound is the generic lookup failure.
	ErrNotFound = errors.New("not found")

	// ErrQuizNotFound indicates the quiz is not registered or its content could not be loaded.
	ErrQuizNotFound = fmt.Errorf("quiz %w", ErrNotFound)
	// ErrResultsNotFound indicates no results snapshot was stored for a quiz.
	ErrResultsNotFound = fmt.Errorf("results %w", ErrNotFound)
	// ErrInvalidKey is returned when a provided access key does not match.
	ErrInvalidKey = errors.New("invalid quiz key")
)
