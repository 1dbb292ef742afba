package mocks

import (
	"context"
	"encoding/json"

	"github.com/rpggio/pmbot/internal/domain/project"
	"github.com/rpggio/pmbot/internal/domain/report"
	"github.com/rpggio/pmbot/internal/oracle"
	"github.com/stretchr/testify/mock"
)

// ProjectSource is a mock for report.ProjectSource.
type ProjectSource struct {
	mock.Mock
}

func (m *ProjectSource) ListProjects(ctx context.Context, roadmapID string) ([]project.Project, error) {
	args := m.Called(ctx, roadmapID)
	if list, ok := args.Get(0).([]project.Project); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// Oracle is a mock for report.Oracle.
type Oracle struct {
	mock.Mock
}

func (m *Oracle) Rank(ctx context.Context, req oracle.RankRequest) (oracle.Ranking, error) {
	args := m.Called(ctx, req)
	if r, ok := args.Get(0).(oracle.Ranking); ok {
		return r, args.Error(1)
	}
	return oracle.Ranking{}, args.Error(1)
}

// Extract decodes the first return value, a JSON string, into out.
func (m *Oracle) Extract(ctx context.Context, req oracle.ExtractRequest, out any) error {
	args := m.Called(ctx, req)
	if raw, ok := args.Get(0).(string); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), out); err != nil {
			return err
		}
	}
	return args.Error(1)
}

func (m *Oracle) Summarize(ctx context.Context, req oracle.SummarizeRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// Sink is a mock for report.Sink.
type Sink struct {
	mock.Mock
}

func (m *Sink) PublishReport(ctx context.Context, r report.Report) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *Sink) SendReminders(ctx context.Context, groups []report.ReminderGroup) error {
	args := m.Called(ctx, groups)
	return args.Error(0)
}

// ReportCache is a mock for repository.ReportCache.
type ReportCache struct {
	mock.Mock
}

func (m *ReportCache) Put(ctx context.Context, roadmapID string, data []byte) error {
	args := m.Called(ctx, roadmapID, data)
	return args.Error(0)
}

func (m *ReportCache) Get(ctx context.Context, roadmapID string) ([]byte, error) {
	args := m.Called(ctx, roadmapID)
	if data, ok := args.Get(0).([]byte); ok {
		return data, args.Error(1)
	}
	return nil, args.Error(1)
}
