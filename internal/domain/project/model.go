package project

import (
	"strings"
	"time"
)

// State is the lifecycle state of a tracked project.
type State string

const (
	StatePlanned   State = "planned"
	StateStarted   State = "started"
	StateCompleted State = "completed"
	StateCanceled  State = "canceled"
	StateBacklog   State = "backlog"
)

// Valid reports whether s is a known lifecycle state.
func (s State) Valid() bool {
	switch s {
	case StatePlanned, StateStarted, StateCompleted, StateCanceled, StateBacklog:
		return true
	}
	return false
}

// StatusLabel is the inferred health of a project with a recent update.
type StatusLabel string

const (
	StatusOnTrack  StatusLabel = "On Track"
	StatusAtRisk   StatusLabel = "At Risk"
	StatusOffTrack StatusLabel = "Off Track"
)

// StatusLabels lists every label in the order offered to the classifier.
// StatusOnTrack is the no-risk sentinel.
var StatusLabels = []StatusLabel{StatusOnTrack, StatusAtRisk, StatusOffTrack}

// User is a tracker account.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Team is a tracker team a project belongs to.
type Team struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Milestone is a dated checkpoint within a project.
type Milestone struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	TargetDate  *time.Time `json:"target_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Update is a lead-authored status update.
type Update struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Body      string    `json:"body"`
	URL       string    `json:"url"`
	Author    User      `json:"author"`
	Health    string    `json:"health,omitempty"`
}

// Project is a tracked initiative as returned by the project source.
// Updates are ordered most recent first, as provided by the tracker.
type Project struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	State       State       `json:"state"`
	URL         string      `json:"url,omitempty"`
	TargetDate  *time.Time  `json:"target_date,omitempty"`
	Progress    float64     `json:"progress"`
	Lead        *User       `json:"lead,omitempty"`
	Teams       []Team      `json:"teams,omitempty"`
	Milestones  []Milestone `json:"milestones,omitempty"`
	Updates     []Update    `json:"updates,omitempty"`
	Status      StatusLabel `json:"status,omitempty"`
}

// LatestUpdate returns the most recent update, if any.
func (p Project) LatestUpdate() (Update, bool) {
	if len(p.Updates) == 0 {
		return Update{}, false
	}
	return p.Updates[0], true
}

// Label returns the assigned status label and whether one has been assigned.
func (p Project) Label() (StatusLabel, bool) {
	return p.Status, p.Status != ""
}

// WithStatus returns a copy of p carrying the given label.
func (p Project) WithStatus(label StatusLabel) Project {
	p.Status = label
	return p
}

// LedBy reports whether the project lead's email matches email, ignoring case.
func (p Project) LedBy(email string) bool {
	if p.Lead == nil || email == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(p.Lead.Email), strings.TrimSpace(email))
}

// Owner returns the lead, or an empty user for unassigned projects.
func (p Project) Owner() User {
	if p.Lead == nil {
		return User{}
	}
	return *p.Lead
}
