package project

import "errors"

var (
	// ErrInvalidProject indicates a project record failed boundary validation.
	ErrInvalidProject = errors.New("invalid project record")
	// ErrInvalidCutoff indicates a non-positive recency cutoff.
	ErrInvalidCutoff = errors.New("recency cutoff must be positive")
)
