// Package console prints reports and reminders to a terminal.
package console

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rpggio/pmbot/internal/domain/project"
	"github.com/rpggio/pmbot/internal/domain/report"
)

// Sink writes styled output to w. Colors are dropped when w is not a terminal.
type Sink struct {
	w       io.Writer
	heading lipgloss.Style
	section lipgloss.Style
	muted   lipgloss.Style
	box     lipgloss.Style
	labels  map[project.StatusLabel]lipgloss.Style
}

// NewSink creates a console sink.
func NewSink(w io.Writer) *Sink {
	r := lipgloss.NewRenderer(w)
	return &Sink{
		w: w,
		heading: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF")),
		section: r.NewStyle().
			Bold(true).
			MarginTop(1),
		muted: r.NewStyle().
			Foreground(lipgloss.Color("#888888")),
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1),
		labels: map[project.StatusLabel]lipgloss.Style{
			project.StatusOnTrack:  r.NewStyle().Foreground(lipgloss.Color("#3FB950")),
			project.StatusAtRisk:   r.NewStyle().Foreground(lipgloss.Color("#D29922")),
			project.StatusOffTrack: r.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
		},
	}
}

// PublishReport prints the report.
func (s *Sink) PublishReport(_ context.Context, r report.Report) error {
	_, err := fmt.Fprintln(s.w, s.Render(r))
	return err
}

// SendReminders prints the reminder each lead would receive.
func (s *Sink) SendReminders(_ context.Context, groups []report.ReminderGroup) error {
	for _, g := range groups {
		owner := g.Owner.Name
		if owner == "" {
			owner = "Unassigned"
		}
		var lines []string
		for _, p := range g.Projects {
			lines = append(lines, "• "+p.Name)
		}
		body := s.heading.Render("Reminder for "+owner) + "\n" + strings.Join(lines, "\n")
		if _, err := fmt.Fprintln(s.w, s.box.Render(body)); err != nil {
			return err
		}
	}
	return nil
}

// Render formats the report as a terminal block.
func (s *Sink) Render(r report.Report) string {
	sections := []string{
		s.heading.Render("PROJECT REPORT · " + r.GeneratedAt().Format("2006-01-02")),
		s.muted.Render("roadmap " + r.RoadmapID() + " · run " + r.RunID()),
	}

	if best, ok := r.BestUpdate(); ok {
		lines := []string{s.section.Render("Update of the week"), best.Project.Name}
		if best.Highlight != "" {
			lines = append(lines, s.muted.Render(best.Highlight))
		}
		if best.Rationale != "" {
			lines = append(lines, s.muted.Render("Why: "+best.Rationale))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	if risks := r.Risks(); len(risks) > 0 {
		lines := []string{s.section.Render("Risks")}
		for _, risk := range risks {
			name := risk.ProjectName
			if risk.Milestone != nil {
				name += " / " + *risk.Milestone
			}
			lines = append(lines, fmt.Sprintf("• %s: %s", name, risk.Why))
			if risk.WhatNext != "" {
				lines = append(lines, s.muted.Render("  next: "+risk.WhatNext))
			}
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	if updated := r.Updated(); len(updated) > 0 {
		lines := []string{s.section.Render("Updated")}
		for _, p := range updated {
			lines = append(lines, fmt.Sprintf("• %-12s %s", s.labels[p.Status].Render(string(p.Status)), p.Name))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	if stale := r.Stale(); len(stale) > 0 {
		lines := []string{s.section.Render("Waiting for an update")}
		for _, p := range stale {
			owner := "unassigned"
			if p.Lead != nil {
				owner = p.Lead.Name
			}
			lines = append(lines, fmt.Sprintf("• %s %s", p.Name, s.muted.Render("("+owner+")")))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	if failures := r.Failures(); len(failures) > 0 {
		lines := []string{s.section.Render("Failures")}
		for _, f := range failures {
			name := f.ProjectName
			if name == "" {
				name = string(f.Operation)
			}
			lines = append(lines, fmt.Sprintf("• %s [%s]: %s", name, f.Stage, f.Error))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	return s.box.Render(strings.Join(sections, "\n"))
}
