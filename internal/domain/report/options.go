package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/pmbot/internal/domain/project"
)

// Config controls one roadmap's report runs.
type Config struct {
	RoadmapID string
	// AdminEmail leads projects that must never be picked as best update.
	AdminEmail     string
	Scope          project.Scope
	Cutoff         time.Duration
	Concurrency    int
	HighlightWords int
}

// RunOptions controls what happens to a generated report.
type RunOptions struct {
	Publish bool
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the time source used for partitioning and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithIDGenerator overrides how run ids are generated.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		s.newID = newID
	}
}

func defaultID() string {
	return uuid.NewString()
}
