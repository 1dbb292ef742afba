package project

import (
	"fmt"
	"strings"
)

// Validate checks the fields the report pipeline depends on. A state the
// tracker added after this code was written is not an error; the scope filter
// drops it unless it is configured.
func Validate(p Project) error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidProject)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: project %s has no name", ErrInvalidProject, p.ID)
	}
	if strings.TrimSpace(string(p.State)) == "" {
		return fmt.Errorf("%w: project %s has no state", ErrInvalidProject, p.ID)
	}
	if p.Lead != nil && strings.TrimSpace(p.Lead.ID) == "" {
		return fmt.Errorf("%w: project %s has a lead without id", ErrInvalidProject, p.ID)
	}
	for i, u := range p.Updates {
		if u.CreatedAt.IsZero() {
			return fmt.Errorf("%w: project %s update %d has no timestamp", ErrInvalidProject, p.ID, i)
		}
	}
	return nil
}
