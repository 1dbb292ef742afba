package mcp

import (
	"context"
	"errors"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/pmbot/internal/domain/report"
)

type GenerateReportInput struct {
	Publish bool `json:"publish,omitempty" jsonschema:"post the report to the configured sink after generating it"`
}

type ReportOutput struct {
	RunID        string `json:"run_id"`
	RoadmapID    string `json:"roadmap_id"`
	GeneratedAt  string `json:"generated_at"`
	Published    bool   `json:"published"`
	PublishError string `json:"publish_error,omitempty"`
	Summary      string `json:"summary,omitempty"`
	Report       any    `json:"report"`
}

type SendRemindersInput struct{}

type ReminderOutput struct {
	OwnerID  string   `json:"owner_id,omitempty"`
	Owner    string   `json:"owner"`
	Email    string   `json:"email,omitempty"`
	Projects []string `json:"projects"`
}

type SendRemindersOutput struct {
	Groups []ReminderOutput `json:"groups"`
	Error  string           `json:"error,omitempty"`
}

type GetCachedReportInput struct{}

type tools struct {
	service ReportService
	render  func(report.Report) string
}

func registerTools(server *sdkmcp.Server, cfg Config) {
	t := &tools{service: cfg.Service, render: cfg.Render}

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "generate_report",
		Description: "Generate the roadmap status report: best update, status labels, risks, and projects waiting for an update. Set publish to post it.",
	}, t.generateReport)

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "send_reminders",
		Description: "Message each project lead whose projects have no recent update",
	}, t.sendReminders)

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_cached_report",
		Description: "Return the last generated report for the roadmap without calling the tracker or the model",
	}, t.getCachedReport)
}

func (t *tools) generateReport(ctx context.Context, _ *sdkmcp.CallToolRequest, in GenerateReportInput) (*sdkmcp.CallToolResult, ReportOutput, error) {
	rep, err := t.service.Run(ctx, report.RunOptions{Publish: in.Publish})
	// A failed publish still carries the generated report.
	if err != nil && !errors.Is(err, report.ErrPublishFailed) {
		return nil, ReportOutput{}, toolError(err)
	}
	out := t.reportOutput(rep)
	if in.Publish {
		out.Published = err == nil
		if err != nil {
			out.PublishError = err.Error()
		}
	}
	return nil, out, nil
}

func (t *tools) sendReminders(ctx context.Context, _ *sdkmcp.CallToolRequest, _ SendRemindersInput) (*sdkmcp.CallToolResult, SendRemindersOutput, error) {
	groups, err := t.service.SendReminders(ctx)
	if err != nil && len(groups) == 0 {
		return nil, SendRemindersOutput{}, toolError(err)
	}
	out := SendRemindersOutput{Groups: make([]ReminderOutput, 0, len(groups))}
	for _, g := range groups {
		owner := g.Owner.Name
		if owner == "" {
			owner = "unassigned"
		}
		names := make([]string, 0, len(g.Projects))
		for _, p := range g.Projects {
			names = append(names, p.Name)
		}
		out.Groups = append(out.Groups, ReminderOutput{
			OwnerID:  g.Owner.ID,
			Owner:    owner,
			Email:    g.Owner.Email,
			Projects: names,
		})
	}
	if err != nil {
		out.Error = err.Error()
	}
	return nil, out, nil
}

func (t *tools) getCachedReport(ctx context.Context, _ *sdkmcp.CallToolRequest, _ GetCachedReportInput) (*sdkmcp.CallToolResult, ReportOutput, error) {
	rep, err := t.service.Cached(ctx)
	if err != nil {
		return nil, ReportOutput{}, toolError(err)
	}
	return nil, t.reportOutput(rep), nil
}

func (t *tools) reportOutput(rep report.Report) ReportOutput {
	out := ReportOutput{
		RunID:       rep.RunID(),
		RoadmapID:   rep.RoadmapID(),
		GeneratedAt: rep.GeneratedAt().UTC().Format(time.RFC3339),
		Report:      rep,
	}
	if t.render != nil {
		out.Summary = t.render(rep)
	}
	return out
}
