package report

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rpggio/pmbot/internal/domain/project"
)

// Builder collects component outputs and assembles a Report in one step.
// Build makes no decisions; it only checks that the parts fit together.
type Builder struct {
	runID       string
	roadmapID   string
	generatedAt time.Time
	partition   project.Partition
	classified  []project.Project
	best        *BestUpdate
	risks       []RiskSummary
	reminders   []ReminderGroup
	failures    []Failure
}

// NewBuilder starts a report for one run over the given partition.
func NewBuilder(runID, roadmapID string, generatedAt time.Time, partition project.Partition) *Builder {
	return &Builder{
		runID:       runID,
		roadmapID:   roadmapID,
		generatedAt: generatedAt,
		partition:   partition,
	}
}

// WithClassified sets the labeled subset of the updated partition.
func (b *Builder) WithClassified(labeled []project.Project) *Builder {
	b.classified = labeled
	return b
}

// WithBestUpdate sets the selected update; nil means none was selected.
func (b *Builder) WithBestUpdate(best *BestUpdate) *Builder {
	b.best = best
	return b
}

// WithRisks sets the risk summaries for non-on-track classified projects.
func (b *Builder) WithRisks(risks []RiskSummary) *Builder {
	b.risks = risks
	return b
}

// WithReminders sets the per-owner stale-project groups.
func (b *Builder) WithReminders(groups []ReminderGroup) *Builder {
	b.reminders = groups
	return b
}

// WithFailures appends per-project failures; repeated calls accumulate.
func (b *Builder) WithFailures(failures ...Failure) *Builder {
	b.failures = append(b.failures, failures...)
	return b
}

// Build validates the collected parts and returns an immutable Report.
// Calling Build again with the same parts yields an equal Report.
func (b *Builder) Build() (Report, error) {
	if err := b.validate(); err != nil {
		return Report{}, fmt.Errorf("%w: %w", ErrInvalidReport, err)
	}

	r := Report{
		runID:       b.runID,
		roadmapID:   b.roadmapID,
		generatedAt: b.generatedAt,
		risks:       cloneSlice(b.risks),
		reminders:   cloneGroups(b.reminders),
		updated:     cloneSlice(b.classified),
		stale:       cloneSlice(b.partition.Stale),
		failures:    cloneSlice(b.failures),
	}
	if b.best != nil {
		best := *b.best
		r.best = &best
	}
	return r, nil
}

func (b *Builder) validate() error {
	if b.runID == "" {
		return errors.New("run id is required")
	}
	if b.roadmapID == "" {
		return errors.New("roadmap id is required")
	}

	updated := indexByID(b.partition.Updated)
	stale := indexByID(b.partition.Stale)
	if len(updated) != len(b.partition.Updated) || len(stale) != len(b.partition.Stale) {
		return errors.New("partition contains duplicate projects")
	}
	for id := range updated {
		if _, ok := stale[id]; ok {
			return fmt.Errorf("project %s is both updated and stale", id)
		}
	}

	classified := make(map[string]project.Project, len(b.classified))
	for _, p := range b.classified {
		if _, ok := updated[p.ID]; !ok {
			return fmt.Errorf("classified project %s is not in the updated set", p.ID)
		}
		if _, dup := classified[p.ID]; dup {
			return fmt.Errorf("project %s classified twice", p.ID)
		}
		label, ok := p.Label()
		if !ok || !slices.Contains(project.StatusLabels, label) {
			return fmt.Errorf("classified project %s has invalid label %q", p.ID, label)
		}
		classified[p.ID] = p
	}

	if b.best != nil {
		if _, ok := updated[b.best.Project.ID]; !ok {
			return fmt.Errorf("best update project %s is not in the updated set", b.best.Project.ID)
		}
	}

	seenRisk := make(map[string]bool, len(b.risks))
	for _, risk := range b.risks {
		p, ok := classified[risk.ProjectID]
		if !ok {
			return fmt.Errorf("risk for %s has no classified project", risk.ProjectID)
		}
		if p.Name != risk.ProjectName {
			return fmt.Errorf("risk names %q but project %s is %q", risk.ProjectName, p.ID, p.Name)
		}
		if p.Status == project.StatusOnTrack {
			return fmt.Errorf("risk for on-track project %s", p.ID)
		}
		if seenRisk[p.ID] {
			return fmt.Errorf("duplicate risk for %s", p.ID)
		}
		seenRisk[p.ID] = true
	}

	owners := make(map[string]bool, len(b.reminders))
	for _, g := range b.reminders {
		if owners[g.Owner.ID] {
			return fmt.Errorf("owner %q has more than one reminder group", g.Owner.ID)
		}
		owners[g.Owner.ID] = true
		if len(g.Projects) == 0 {
			return fmt.Errorf("reminder group for %q is empty", g.Owner.ID)
		}
		for _, p := range g.Projects {
			if _, ok := stale[p.ID]; !ok {
				return fmt.Errorf("reminder project %s is not stale", p.ID)
			}
			if p.Owner().ID != g.Owner.ID {
				return fmt.Errorf("reminder project %s is not led by %q", p.ID, g.Owner.ID)
			}
		}
	}
	return nil
}

func indexByID(projects []project.Project) map[string]project.Project {
	out := make(map[string]project.Project, len(projects))
	for _, p := range projects {
		out[p.ID] = p
	}
	return out
}
