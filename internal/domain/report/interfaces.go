package report

import (
	"context"

	"github.com/rpggio/pmbot/internal/domain/project"
	"github.com/rpggio/pmbot/internal/oracle"
	"github.com/rpggio/pmbot/internal/repository"
)

// ProjectSource loads fully hydrated, validated projects for a roadmap.
type ProjectSource interface {
	ListProjects(ctx context.Context, roadmapID string) ([]project.Project, error)
}

// Oracle is the subset of oracle capabilities the pipeline uses.
type Oracle interface {
	Rank(ctx context.Context, req oracle.RankRequest) (oracle.Ranking, error)
	Extract(ctx context.Context, req oracle.ExtractRequest, out any) error
	Summarize(ctx context.Context, req oracle.SummarizeRequest) (string, error)
}

// Sink renders and delivers reports and reminders.
type Sink interface {
	PublishReport(ctx context.Context, r Report) error
	SendReminders(ctx context.Context, groups []ReminderGroup) error
}

// Cache stores the serialized latest report per roadmap.
type Cache = repository.ReportCache
