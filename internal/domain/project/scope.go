package project

import "strings"

// DefaultStates are the lifecycle states reported on.
var DefaultStates = []State{StatePlanned, StateStarted}

// DefaultTeams is the team allow-list used when none is configured.
var DefaultTeams = []string{"Engineering", "Product", "Design"}

// Scope selects the projects a report covers.
type Scope struct {
	States []State
	Teams  []string
}

// DefaultScope returns the planned/started, engineering-product-design scope.
func DefaultScope() Scope {
	return Scope{States: DefaultStates, Teams: DefaultTeams}
}

// Includes applies the lifecycle test first, then the team test. A project
// qualifies when any of its teams is in the allow-list. An empty allow-list
// admits every team.
func (s Scope) Includes(p Project) bool {
	if !s.hasState(p.State) {
		return false
	}
	if len(s.Teams) == 0 {
		return true
	}
	for _, team := range p.Teams {
		if s.hasTeam(team.Name) {
			return true
		}
	}
	return false
}

// Filter returns the in-scope projects in input order.
func (s Scope) Filter(projects []Project) []Project {
	out := make([]Project, 0, len(projects))
	for _, p := range projects {
		if s.Includes(p) {
			out = append(out, p)
		}
	}
	return out
}

func (s Scope) hasState(state State) bool {
	states := s.States
	if len(states) == 0 {
		states = DefaultStates
	}
	for _, st := range states {
		if st == state {
			return true
		}
	}
	return false
}

func (s Scope) hasTeam(name string) bool {
	for _, t := range s.Teams {
		if strings.EqualFold(strings.TrimSpace(t), strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}
