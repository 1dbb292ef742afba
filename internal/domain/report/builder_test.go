package report_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rpggio/pmbot/internal/domain/project"
	"github.com/rpggio/pmbot/internal/domain/report"
	"github.com/stretchr/testify/require"
)

type builderParts struct {
	partition project.Partition
	labeled   []project.Project
	best      *report.BestUpdate
	risks     []report.RiskSummary
	reminders []report.ReminderGroup
}

func validParts() builderParts {
	a := proj("A", "Atlas", lead("u-1", "Ann"), days(1))
	d := proj("D", "Delta", lead("u-2", "Dana"), days(2))
	b := proj("B", "Beacon", lead("u-3", "Ben"), days(9))
	return builderParts{
		partition: project.Partition{Updated: []project.Project{a, d}, Stale: []project.Project{b}},
		labeled:   []project.Project{a.WithStatus(project.StatusOnTrack), d.WithStatus(project.StatusOffTrack)},
		best:      &report.BestUpdate{Project: a, Rationale: "clear"},
		risks:     []report.RiskSummary{{ProjectID: "D", ProjectName: "Delta", Why: "late", WhatNext: "replan"}},
		reminders: report.GroupReminders([]project.Project{b}),
	}
}

func (p builderParts) build() (report.Report, error) {
	return report.NewBuilder("run-1", roadmapID, now, p.partition).
		WithClassified(p.labeled).
		WithBestUpdate(p.best).
		WithRisks(p.risks).
		WithReminders(p.reminders).
		Build()
}

func TestBuilder_BuildIsIdempotent(t *testing.T) {
	parts := validParts()
	b := report.NewBuilder("run-1", roadmapID, now, parts.partition).
		WithClassified(parts.labeled).
		WithBestUpdate(parts.best).
		WithRisks(parts.risks).
		WithReminders(parts.reminders)

	first, err := b.Build()
	require.NoError(t, err)
	second, err := b.Build()
	require.NoError(t, err)
	if diff := cmp.Diff(first, second, cmp.AllowUnexported(report.Report{})); diff != "" {
		t.Fatalf("rebuilt report differs (-first +second):\n%s", diff)
	}

	third, err := validParts().build()
	require.NoError(t, err)
	if diff := cmp.Diff(first, third, cmp.AllowUnexported(report.Report{})); diff != "" {
		t.Fatalf("report from equal parts differs (-first +third):\n%s", diff)
	}
}

func TestBuilder_ReportIsNotAliased(t *testing.T) {
	parts := validParts()
	rep, err := parts.build()
	require.NoError(t, err)

	parts.risks[0].Why = "changed"
	parts.best.Rationale = "changed"
	risks := rep.Risks()
	risks[0].WhatNext = "changed"

	require.Equal(t, "late", rep.Risks()[0].Why)
	require.Equal(t, "replan", rep.Risks()[0].WhatNext)
	best, _ := rep.BestUpdate()
	require.Equal(t, "clear", best.Rationale)
}

func TestBuilder_RejectsInvalidCombinations(t *testing.T) {
	cases := map[string]func(*builderParts){
		"risk for unknown project": func(p *builderParts) {
			p.risks = append(p.risks, report.RiskSummary{ProjectID: "Z", ProjectName: "Zed"})
		},
		"risk with renamed project": func(p *builderParts) {
			p.risks[0].ProjectName = "Delta Prime"
		},
		"risk for on-track project": func(p *builderParts) {
			p.risks = append(p.risks, report.RiskSummary{ProjectID: "A", ProjectName: "Atlas"})
		},
		"reminder for updated project": func(p *builderParts) {
			p.reminders = append(p.reminders, report.ReminderGroup{Owner: *lead("u-1", "Ann"), Projects: p.partition.Updated[:1]})
		},
		"duplicate owner": func(p *builderParts) {
			p.reminders = append(p.reminders, p.reminders[0])
		},
		"unlabeled classified project": func(p *builderParts) {
			p.labeled[0].Status = ""
		},
		"unknown label": func(p *builderParts) {
			p.labeled[0].Status = "Sideways"
		},
		"classified stale project": func(p *builderParts) {
			p.labeled = append(p.labeled, p.partition.Stale[0].WithStatus(project.StatusOnTrack))
		},
		"best update from stale project": func(p *builderParts) {
			p.best = &report.BestUpdate{Project: p.partition.Stale[0]}
		},
		"overlapping partition": func(p *builderParts) {
			p.partition.Stale = append(p.partition.Stale, p.partition.Updated[0])
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			parts := validParts()
			mutate(&parts)
			_, err := parts.build()
			require.ErrorIs(t, err, report.ErrInvalidReport)
		})
	}
}

func TestBuilder_EmptyRunIsValid(t *testing.T) {
	rep, err := report.NewBuilder("run-1", roadmapID, now, project.Partition{}).Build()
	require.NoError(t, err)
	require.True(t, rep.IsEmpty())
	_, ok := rep.BestUpdate()
	require.False(t, ok)
}

func TestBuilder_RequiresIdentity(t *testing.T) {
	_, err := report.NewBuilder("", roadmapID, now, project.Partition{}).Build()
	require.ErrorIs(t, err, report.ErrInvalidReport)
	_, err = report.NewBuilder("run-1", "", now, project.Partition{}).Build()
	require.ErrorIs(t, err, report.ErrInvalidReport)
}
