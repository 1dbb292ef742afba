package report_test

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rpggio/pmbot/internal/domain/project"
	"github.com/rpggio/pmbot/internal/oracle"
	"github.com/stretchr/testify/mock"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func lead(id, name string) *project.User {
	return &project.User{ID: id, Name: name, Email: strings.ToLower(name) + "@example.com"}
}

// proj builds an in-scope project. Each age adds an update that old, most
// recent first.
func proj(id, name string, owner *project.User, ages ...time.Duration) project.Project {
	p := project.Project{
		ID:    id,
		Name:  name,
		State: project.StateStarted,
		Lead:  owner,
		Teams: []project.Team{{ID: "t1", Name: "Engineering"}},
	}
	for i, age := range ages {
		p.Updates = append(p.Updates, project.Update{
			ID:        fmt.Sprintf("%s-u%d", id, i),
			CreatedAt: now.Add(-age),
			Body:      name + " update",
			Author:    p.Owner(),
		})
	}
	return p
}

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}

func labelOptions() []string {
	out := make([]string, len(project.StatusLabels))
	for i, l := range project.StatusLabels {
		out[i] = string(l)
	}
	return out
}

// classifying matches the classification request for the named project.
func classifying(name string) any {
	return mock.MatchedBy(func(req oracle.RankRequest) bool {
		return slices.Equal(req.Options, labelOptions()) && strings.Contains(req.Context, "Project: "+name+"\n")
	})
}

// selecting matches a best-update request.
func selecting() any {
	return mock.MatchedBy(func(req oracle.RankRequest) bool {
		return !slices.Equal(req.Options, labelOptions())
	})
}

func labelIndex(label project.StatusLabel) int {
	return slices.Index(project.StatusLabels, label)
}
