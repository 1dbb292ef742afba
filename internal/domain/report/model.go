package report

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/rpggio/pmbot/internal/domain/project"
)

// Stage is a step of the report pipeline. Stages only move forward.
type Stage string

const (
	StageStart         Stage = "start"
	StageFetched       Stage = "fetched"
	StagePartitioned   Stage = "partitioned"
	StageClassified    Stage = "classified"
	StageRiskExtracted Stage = "risk_extracted"
	StageAssembled     Stage = "assembled"
	StageDone          Stage = "done"
)

var stageOrder = []Stage{
	StageStart,
	StageFetched,
	StagePartitioned,
	StageClassified,
	StageRiskExtracted,
	StageAssembled,
	StageDone,
}

func (s Stage) index() int {
	return slices.Index(stageOrder, s)
}

// Operation names the oracle-backed step a failure came from.
type Operation string

const (
	OpSelectBest Operation = "select_best"
	OpHighlight  Operation = "summarize_highlight"
	OpClassify   Operation = "classify"
	OpExtract    Operation = "extract_risk"
)

// RiskSummary explains why a project is not on track.
type RiskSummary struct {
	ProjectID   string  `json:"project_id"`
	ProjectName string  `json:"project_name"`
	Milestone   *string `json:"project_milestone,omitempty"`
	Why         string  `json:"why"`
	WhatNext    string  `json:"what_next"`
}

// ReminderGroup lists one owner's stale projects.
type ReminderGroup struct {
	Owner    project.User      `json:"owner"`
	Projects []project.Project `json:"projects"`
}

// BestUpdate is the most exemplary recent update of the run.
type BestUpdate struct {
	Project   project.Project `json:"project"`
	Rationale string          `json:"rationale,omitempty"`
	Highlight string          `json:"highlight,omitempty"`
}

// Failure records a per-project error that did not abort the run.
type Failure struct {
	ProjectID   string    `json:"project_id"`
	ProjectName string    `json:"project_name"`
	Stage       Stage     `json:"stage"`
	Operation   Operation `json:"operation"`
	Error       string    `json:"error"`
	Raw         string    `json:"raw,omitempty"`
}

// Report is the result of one pipeline run. It is built once by Builder and
// never modified afterwards; accessors return copies.
type Report struct {
	runID       string
	roadmapID   string
	generatedAt time.Time
	best        *BestUpdate
	risks       []RiskSummary
	reminders   []ReminderGroup
	updated     []project.Project
	stale       []project.Project
	failures    []Failure
}

// RunID identifies the pipeline run that produced the report.
func (r Report) RunID() string { return r.runID }

// RoadmapID is the roadmap the report covers.
func (r Report) RoadmapID() string { return r.roadmapID }

// GeneratedAt is when the run started.
func (r Report) GeneratedAt() time.Time { return r.generatedAt }

// BestUpdate returns the selected update, if one was selected.
func (r Report) BestUpdate() (BestUpdate, bool) {
	if r.best == nil {
		return BestUpdate{}, false
	}
	return *r.best, true
}

// Risks returns the risk summaries in updated-list order.
func (r Report) Risks() []RiskSummary {
	return slices.Clone(r.risks)
}

// Reminders returns one group per stale-project owner.
func (r Report) Reminders() []ReminderGroup {
	return cloneGroups(r.reminders)
}

// Updated returns the recently updated projects that received a status label.
func (r Report) Updated() []project.Project {
	return slices.Clone(r.updated)
}

// Stale returns the projects without a recent update.
func (r Report) Stale() []project.Project {
	return slices.Clone(r.stale)
}

// Failures returns the per-project errors recorded during the run.
func (r Report) Failures() []Failure {
	return slices.Clone(r.failures)
}

// IsEmpty reports whether the run found nothing to report on.
func (r Report) IsEmpty() bool {
	return len(r.updated) == 0 && len(r.stale) == 0 && len(r.failures) == 0
}

type reportJSON struct {
	RunID       string            `json:"run_id"`
	RoadmapID   string            `json:"roadmap_id"`
	GeneratedAt time.Time         `json:"generated_at"`
	BestUpdate  *BestUpdate       `json:"best_update,omitempty"`
	Risks       []RiskSummary     `json:"risks"`
	Reminders   []ReminderGroup   `json:"reminders"`
	Updated     []project.Project `json:"projects_with_updates"`
	Stale       []project.Project `json:"projects_without_updates"`
	Failures    []Failure         `json:"failures,omitempty"`
}

// MarshalJSON encodes the report for caching and tool output.
func (r Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(reportJSON{
		RunID:       r.runID,
		RoadmapID:   r.roadmapID,
		GeneratedAt: r.generatedAt,
		BestUpdate:  r.best,
		Risks:       nonNil(r.risks),
		Reminders:   nonNil(r.reminders),
		Updated:     nonNil(r.updated),
		Stale:       nonNil(r.stale),
		Failures:    r.failures,
	})
}

// Decode rebuilds a cached report, re-checking its invariants.
func Decode(data []byte) (Report, error) {
	var raw reportJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return Report{}, fmt.Errorf("%w: %v", ErrInvalidReport, err)
	}
	// The best update may come from a project whose classification failed, so
	// it is part of the updated partition without being labeled.
	updated := slices.Clone(raw.Updated)
	if raw.BestUpdate != nil && !containsID(updated, raw.BestUpdate.Project.ID) {
		updated = append(updated, raw.BestUpdate.Project)
	}
	return NewBuilder(raw.RunID, raw.RoadmapID, raw.GeneratedAt, project.Partition{Updated: updated, Stale: raw.Stale}).
		WithClassified(raw.Updated).
		WithBestUpdate(raw.BestUpdate).
		WithRisks(raw.Risks).
		WithReminders(raw.Reminders).
		WithFailures(raw.Failures...).
		Build()
}

// cloneSlice copies s, mapping empty to nil so equal reports compare equal
// regardless of how they were built.
func cloneSlice[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return slices.Clone(s)
}

func cloneGroups(groups []ReminderGroup) []ReminderGroup {
	if len(groups) == 0 {
		return nil
	}
	out := make([]ReminderGroup, len(groups))
	for i, g := range groups {
		out[i] = ReminderGroup{Owner: g.Owner, Projects: cloneSlice(g.Projects)}
	}
	return out
}

func containsID(projects []project.Project, id string) bool {
	return slices.ContainsFunc(projects, func(p project.Project) bool { return p.ID == id })
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
