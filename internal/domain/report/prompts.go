package report

import (
	"fmt"
	"strings"

	"github.com/rpggio/pmbot/internal/domain/project"
)

const bestUpdateContext = `You are reviewing this week's project updates written by project leads.
Pick the single update that other leads should learn from.`

var bestUpdateCriteria = []string{
	"Communicates progress clearly, with concrete outcomes rather than activity",
	"Lays out a clear path forward with next steps and owners",
	"Acknowledges missed targets honestly and explains how they are being handled",
}

const classifyContext = `You are a program manager assessing project health from the project
details and the lead's most recent update. Choose the status that best describes the project.`

var classifyCriteria = []string{
	"An explicit statement by the lead about the project's health or timeline",
	"Signals in the update such as slipped dates, blockers or missing dependencies",
	"The overall tone of the update when nothing more specific is available",
}

const riskContext = `A project has been flagged as at risk. Surface why it is at risk and what
the lead says happens next. Keep both answers very brief. Name the milestone that is at
risk when the update mentions one, otherwise use null.`

const highlightContext = `Summarize this project update as a short highlight for a weekly
status report. Keep the lead's own wording where possible.`

// bestUpdateOption renders one selector option.
func bestUpdateOption(p project.Project) string {
	update, _ := p.LatestUpdate()
	return fmt.Sprintf("%s: %s", p.Name, strings.TrimSpace(update.Body))
}

// projectDetails renders the project fields offered to the classifier and
// the extractor.
func projectDetails(p project.Project) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Project: %s\n", p.Name)
	fmt.Fprintf(&b, "State: %s\n", p.State)
	if p.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", p.Description)
	}
	if p.TargetDate != nil {
		fmt.Fprintf(&b, "Target date: %s\n", p.TargetDate.Format("2006-01-02"))
	}
	fmt.Fprintf(&b, "Progress: %.0f%%\n", p.Progress*100)
	if len(p.Milestones) > 0 {
		b.WriteString("Milestones:\n")
		for _, m := range p.Milestones {
			if m.TargetDate != nil {
				fmt.Fprintf(&b, "- %s (target %s)\n", m.Name, m.TargetDate.Format("2006-01-02"))
			} else {
				fmt.Fprintf(&b, "- %s\n", m.Name)
			}
		}
	}
	if update, ok := p.LatestUpdate(); ok {
		fmt.Fprintf(&b, "Latest update (%s):\n%s\n", update.CreatedAt.Format("2006-01-02"), strings.TrimSpace(update.Body))
	}
	return b.String()
}

func labelOptions() []string {
	out := make([]string, len(project.StatusLabels))
	for i, l := range project.StatusLabels {
		out[i] = string(l)
	}
	return out
}
