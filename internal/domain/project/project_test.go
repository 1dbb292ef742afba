package project_test

import (
	"testing"
	"time"

	"github.com/rpggio/pmbot/internal/domain/project"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func withUpdate(id string, state project.State, age time.Duration, lead string) project.Project {
	return project.Project{
		ID:    id,
		Name:  "Project " + id,
		State: state,
		Lead:  &project.User{ID: lead, Name: "Lead " + lead, Email: lead + "@example.com"},
		Teams: []project.Team{{ID: "t1", Name: "Engineering"}},
		Updates: []project.Update{
			{ID: id + "-u1", CreatedAt: now.Add(-age), Body: "update for " + id},
			{ID: id + "-u0", CreatedAt: now.Add(-age - 48*time.Hour), Body: "older"},
		},
	}
}

func TestPartitionByRecency_Scenario(t *testing.T) {
	a := withUpdate("A", project.StateStarted, 24*time.Hour, "X")
	b := withUpdate("B", project.StateStarted, 10*24*time.Hour, "Y")
	c := withUpdate("C", project.StateBacklog, 24*time.Hour, "Z")

	inScope := project.DefaultScope().Filter([]project.Project{a, b, c})
	require.Len(t, inScope, 2)

	part, err := project.PartitionByRecency(inScope, 4*24*time.Hour, now)
	require.NoError(t, err)
	require.Equal(t, []string{"A"}, ids(part.Updated))
	require.Equal(t, []string{"B"}, ids(part.Stale))
}

func TestPartitionByRecency_NoUpdatesIsStale(t *testing.T) {
	p := project.Project{ID: "p1", Name: "Quiet", State: project.StateStarted}
	part, err := project.PartitionByRecency([]project.Project{p}, time.Hour, now)
	require.NoError(t, err)
	require.Empty(t, part.Updated)
	require.Equal(t, []string{"p1"}, ids(part.Stale))
}

func TestPartitionByRecency_CutoffBoundaryIsInclusive(t *testing.T) {
	p := withUpdate("edge", project.StateStarted, 4*24*time.Hour, "X")
	part, err := project.PartitionByRecency([]project.Project{p}, 4*24*time.Hour, now)
	require.NoError(t, err)
	require.Len(t, part.Updated, 1)
}

func TestPartitionByRecency_UsesFirstUpdateOnly(t *testing.T) {
	p := withUpdate("p", project.StateStarted, 10*24*time.Hour, "X")
	// A recent update further down the list must not count: order is server-provided.
	p.Updates = append(p.Updates, project.Update{ID: "late", CreatedAt: now})
	part, err := project.PartitionByRecency([]project.Project{p}, 4*24*time.Hour, now)
	require.NoError(t, err)
	require.Len(t, part.Stale, 1)
}

func TestPartitionByRecency_TotalAndDisjoint(t *testing.T) {
	var projects []project.Project
	for i := 0; i < 30; i++ {
		age := time.Duration(i) * 12 * time.Hour
		p := withUpdate(string(rune('a'+i)), project.StateStarted, age, "X")
		if i%7 == 0 {
			p.Updates = nil
		}
		projects = append(projects, p)
	}

	part, err := project.PartitionByRecency(projects, 3*24*time.Hour, now)
	require.NoError(t, err)
	require.Equal(t, len(projects), part.Len())

	seen := map[string]bool{}
	for _, p := range append(append([]project.Project{}, part.Updated...), part.Stale...) {
		require.False(t, seen[p.ID], "project %s in both sides", p.ID)
		seen[p.ID] = true
	}

	again, err := project.PartitionByRecency(projects, 3*24*time.Hour, now)
	require.NoError(t, err)
	require.Equal(t, part, again)
}

func TestPartitionByRecency_RejectsNonPositiveCutoff(t *testing.T) {
	_, err := project.PartitionByRecency(nil, 0, now)
	require.ErrorIs(t, err, project.ErrInvalidCutoff)
}

func TestScope_TeamAnyMatch(t *testing.T) {
	p := withUpdate("p", project.StatePlanned, time.Hour, "X")
	p.Teams = []project.Team{{Name: "Marketing"}, {Name: "design"}}
	require.True(t, project.DefaultScope().Includes(p))

	p.Teams = []project.Team{{Name: "Marketing"}}
	require.False(t, project.DefaultScope().Includes(p))

	open := project.Scope{States: []project.State{project.StatePlanned}}
	require.True(t, open.Includes(p))
}

func TestScope_StateCheckedFirst(t *testing.T) {
	p := withUpdate("p", project.StateCompleted, time.Hour, "X")
	require.False(t, project.DefaultScope().Includes(p))
}

func TestProject_LabelUnsetUntilAssigned(t *testing.T) {
	p := withUpdate("p", project.StateStarted, time.Hour, "X")
	_, ok := p.Label()
	require.False(t, ok)

	labeled := p.WithStatus(project.StatusAtRisk)
	label, ok := labeled.Label()
	require.True(t, ok)
	require.Equal(t, project.StatusAtRisk, label)

	_, ok = p.Label()
	require.False(t, ok, "WithStatus must not mutate the receiver")
}

func TestProject_LedBy(t *testing.T) {
	p := withUpdate("p", project.StateStarted, time.Hour, "admin")
	require.True(t, p.LedBy("ADMIN@example.com"))
	require.False(t, p.LedBy(""))
	p.Lead = nil
	require.False(t, p.LedBy("admin@example.com"))
}

func TestValidate(t *testing.T) {
	p := withUpdate("p", project.StateStarted, time.Hour, "X")
	require.NoError(t, project.Validate(p))

	bad := p
	bad.State = ""
	require.ErrorIs(t, project.Validate(bad), project.ErrInvalidProject)

	paused := p
	paused.State = "paused"
	require.NoError(t, project.Validate(paused))
	require.False(t, project.DefaultScope().Includes(paused))

	bad = p
	bad.Name = " "
	require.ErrorIs(t, project.Validate(bad), project.ErrInvalidProject)

	bad = p
	bad.Updates = []project.Update{{ID: "u"}}
	require.ErrorIs(t, project.Validate(bad), project.ErrInvalidProject)
}

func ids(projects []project.Project) []string {
	out := make([]string, 0, len(projects))
	for _, p := range projects {
		out = append(out, p.ID)
	}
	return out
}
