package slack

import (
	"fmt"
	"strings"

	"github.com/rpggio/pmbot/internal/domain/project"
	"github.com/rpggio/pmbot/internal/domain/report"
)

// RenderReport formats a report as Slack mrkdwn.
func RenderReport(r report.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Weekly project report* (%s)\n", r.GeneratedAt().Format("Jan 2, 2006"))

	if best, ok := r.BestUpdate(); ok {
		b.WriteString("\n:star: *Update of the week*\n")
		fmt.Fprintf(&b, "%s", link(best.Project.Name, best.Project.URL))
		if best.Project.Lead != nil {
			fmt.Fprintf(&b, " by %s", escape(best.Project.Lead.Name))
		}
		b.WriteString("\n")
		if best.Highlight != "" {
			fmt.Fprintf(&b, "> %s\n", escape(best.Highlight))
		}
	}

	if risks := r.Risks(); len(risks) > 0 {
		b.WriteString("\n:warning: *Risks*\n")
		for _, risk := range risks {
			name := escape(risk.ProjectName)
			if risk.Milestone != nil {
				name = fmt.Sprintf("%s / %s", name, escape(*risk.Milestone))
			}
			fmt.Fprintf(&b, "• *%s*: %s", name, escape(risk.Why))
			if risk.WhatNext != "" {
				fmt.Fprintf(&b, " _Next:_ %s", escape(risk.WhatNext))
			}
			b.WriteString("\n")
		}
	}

	if updated := r.Updated(); len(updated) > 0 {
		b.WriteString("\n:white_check_mark: *Updated this week*\n")
		for _, p := range updated {
			fmt.Fprintf(&b, "• %s %s\n", statusEmoji(p.Status), link(p.Name, p.URL))
		}
	}

	if stale := r.Stale(); len(stale) > 0 {
		b.WriteString("\n:hourglass: *Waiting for an update*\n")
		for _, p := range stale {
			owner := "unassigned"
			if p.Lead != nil {
				owner = escape(p.Lead.Name)
			}
			fmt.Fprintf(&b, "• %s (%s)\n", link(p.Name, p.URL), owner)
		}
	}

	if r.IsEmpty() {
		b.WriteString("\nNo projects in scope this week.\n")
	}
	return b.String()
}

// RenderReminder formats the direct message sent to one lead.
func RenderReminder(g report.ReminderGroup) string {
	var b strings.Builder
	greeting := "Hi"
	if first, _, _ := strings.Cut(g.Owner.Name, " "); first != "" {
		greeting = "Hi " + escape(first)
	}
	fmt.Fprintf(&b, "%s, these projects are waiting for a status update:\n", greeting)
	for _, p := range g.Projects {
		fmt.Fprintf(&b, "• %s\n", link(p.Name, p.URL))
	}
	return b.String()
}

// mrkdwnEscaper escapes the characters Slack treats as control sequences.
var mrkdwnEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escape(s string) string {
	return mrkdwnEscaper.Replace(s)
}

func link(name, url string) string {
	name = escape(name)
	if url == "" {
		return name
	}
	return fmt.Sprintf("<%s|%s>", url, name)
}

func statusEmoji(label project.StatusLabel) string {
	switch label {
	case project.StatusAtRisk:
		return ":large_yellow_circle:"
	case project.StatusOffTrack:
		return ":red_circle:"
	default:
		return ":large_green_circle:"
	}
}
