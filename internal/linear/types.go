package linear

import (
	"fmt"
	"time"

	"github.com/rpggio/pmbot/internal/domain/project"
)

const roadmapProjectsQuery = `
query RoadmapProjects($id: String!, $first: Int, $after: String) {
  roadmap(id: $id) {
    projects(first: $first, after: $after) {
      nodes {
        id
        name
        description
        state
        targetDate
        progress
        url
        teams { nodes { id name } }
        lead { id name email }
        projectUpdates { nodes { id createdAt body url health user { id name email } } }
        projectMilestones { nodes { id name description targetDate createdAt } }
      }
      pageInfo { hasNextPage endCursor }
    }
  }
}`

type roadmapData struct {
	Roadmap *struct {
		Projects *projectConnection `json:"projects"`
	} `json:"roadmap"`
}

type projectConnection struct {
	Nodes    []projectNode `json:"nodes"`
	PageInfo struct {
		HasNextPage bool    `json:"hasNextPage"`
		EndCursor   *string `json:"endCursor"`
	} `json:"pageInfo"`
}

type userNode struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type projectNode struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	State       string   `json:"state"`
	TargetDate  *string  `json:"targetDate"`
	Progress    *float64 `json:"progress"`
	URL         *string  `json:"url"`
	Teams       struct {
		Nodes []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"nodes"`
	} `json:"teams"`
	Lead           *userNode `json:"lead"`
	ProjectUpdates struct {
		Nodes []struct {
			ID        string    `json:"id"`
			CreatedAt time.Time `json:"createdAt"`
			Body      string    `json:"body"`
			URL       string    `json:"url"`
			Health    *string   `json:"health"`
			User      *userNode `json:"user"`
		} `json:"nodes"`
	} `json:"projectUpdates"`
	ProjectMilestones struct {
		Nodes []struct {
			ID          string    `json:"id"`
			Name        string    `json:"name"`
			Description *string   `json:"description"`
			TargetDate  *string   `json:"targetDate"`
			CreatedAt   time.Time `json:"createdAt"`
		} `json:"nodes"`
	} `json:"projectMilestones"`
}

// toDomain converts a wire node. Update order is kept as the API returns it.
func (n projectNode) toDomain() (project.Project, error) {
	p := project.Project{
		ID:          n.ID,
		Name:        n.Name,
		Description: deref(n.Description),
		State:       project.State(n.State),
		URL:         deref(n.URL),
	}
	if n.Progress != nil {
		p.Progress = *n.Progress
	}
	target, err := parseDate(n.TargetDate)
	if err != nil {
		return project.Project{}, fmt.Errorf("project %s target date: %w", n.ID, err)
	}
	p.TargetDate = target

	if n.Lead != nil {
		lead := project.User(*n.Lead)
		p.Lead = &lead
	}
	for _, t := range n.Teams.Nodes {
		p.Teams = append(p.Teams, project.Team{ID: t.ID, Name: t.Name})
	}
	for _, u := range n.ProjectUpdates.Nodes {
		update := project.Update{
			ID:        u.ID,
			CreatedAt: u.CreatedAt,
			Body:      u.Body,
			URL:       u.URL,
			Health:    deref(u.Health),
		}
		if u.User != nil {
			update.Author = project.User(*u.User)
		}
		p.Updates = append(p.Updates, update)
	}
	for _, m := range n.ProjectMilestones.Nodes {
		mt, err := parseDate(m.TargetDate)
		if err != nil {
			return project.Project{}, fmt.Errorf("milestone %s target date: %w", m.ID, err)
		}
		p.Milestones = append(p.Milestones, project.Milestone{
			ID:          m.ID,
			Name:        m.Name,
			Description: deref(m.Description),
			TargetDate:  mt,
			CreatedAt:   m.CreatedAt,
		})
	}
	return p, nil
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
