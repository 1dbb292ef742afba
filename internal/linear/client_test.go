package linear_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rpggio/pmbot/internal/domain/project"
	"github.com/rpggio/pmbot/internal/linear"
	"github.com/stretchr/testify/require"
)

const pageOne = `{"data":{"roadmap":{"projects":{
  "nodes":[{
    "id":"p1","name":"Atlas","description":"Search rewrite","state":"started",
    "targetDate":"2026-04-01","progress":0.4,"url":"https://linear.app/p1",
    "teams":{"nodes":[{"id":"t1","name":"Engineering"}]},
    "lead":{"id":"u1","name":"Ann","email":"ann@example.com"},
    "projectUpdates":{"nodes":[
      {"id":"up2","createdAt":"2026-03-09T10:00:00.000Z","body":"newest","url":"https://linear.app/up2","health":"onTrack","user":{"id":"u1","name":"Ann","email":"ann@example.com"}},
      {"id":"up1","createdAt":"2026-03-12T10:00:00.000Z","body":"older but later timestamp","url":"https://linear.app/up1","health":null,"user":{"id":"u1","name":"Ann","email":"ann@example.com"}}
    ]},
    "projectMilestones":{"nodes":[{"id":"m1","name":"Beta","description":null,"targetDate":"2026-03-20","createdAt":"2026-01-01T00:00:00Z"}]}
  }],
  "pageInfo":{"hasNextPage":true,"endCursor":"cursor-1"}
}}}}`

const pageTwo = `{"data":{"roadmap":{"projects":{
  "nodes":[{
    "id":"p2","name":"Beacon","description":null,"state":"planned","targetDate":null,"progress":null,"url":null,
    "teams":{"nodes":[]},"lead":null,
    "projectUpdates":{"nodes":[]},"projectMilestones":{"nodes":[]}
  }],
  "pageInfo":{"hasNextPage":false,"endCursor":null}
}}}}`

type capturedRequest struct {
	auth string
	body map[string]any
}

func newServer(t *testing.T, responses ...string) (*httptest.Server, *[]capturedRequest) {
	t.Helper()
	var (
		mu       sync.Mutex
		requests []capturedRequest
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		n := len(requests)
		requests = append(requests, capturedRequest{auth: r.Header.Get("Authorization"), body: body})
		mu.Unlock()
		if n >= len(responses) {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(responses[n]))
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

func TestClient_ListProjects_Paginates(t *testing.T) {
	server, requests := newServer(t, pageOne, pageTwo)
	client := linear.NewClient(linear.Config{APIURL: server.URL, APIKey: "lin_key", PageSize: 1}, nil)

	projects, err := client.ListProjects(context.Background(), "roadmap-1")
	require.NoError(t, err)
	require.Len(t, projects, 2)

	atlas := projects[0]
	require.Equal(t, "p1", atlas.ID)
	require.Equal(t, project.StateStarted, atlas.State)
	require.Equal(t, 0.4, atlas.Progress)
	require.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), *atlas.TargetDate)
	require.Equal(t, "ann@example.com", atlas.Lead.Email)
	require.Equal(t, []project.Team{{ID: "t1", Name: "Engineering"}}, atlas.Teams)
	require.Len(t, atlas.Milestones, 1)
	require.Equal(t, "Beta", atlas.Milestones[0].Name)

	// Server order is kept even when timestamps disagree.
	require.Equal(t, "up2", atlas.Updates[0].ID)
	require.Equal(t, "onTrack", atlas.Updates[0].Health)
	require.Equal(t, "up1", atlas.Updates[1].ID)

	beacon := projects[1]
	require.Nil(t, beacon.Lead)
	require.Nil(t, beacon.TargetDate)
	require.Empty(t, beacon.Updates)

	require.Len(t, *requests, 2)
	first := (*requests)[0]
	require.Equal(t, "lin_key", first.auth)
	vars := first.body["variables"].(map[string]any)
	require.Equal(t, "roadmap-1", vars["id"])
	require.Equal(t, float64(1), vars["first"])
	require.Nil(t, vars["after"])
	require.Equal(t, "cursor-1", (*requests)[1].body["variables"].(map[string]any)["after"])
}

func TestClient_ListProjects_RejectsInvalidProjects(t *testing.T) {
	cases := map[string]string{
		"missing state": `{"data":{"roadmap":{"projects":{"nodes":[{"id":"p1","name":"A","state":"","teams":{"nodes":[]},"projectUpdates":{"nodes":[]},"projectMilestones":{"nodes":[]}}],"pageInfo":{"hasNextPage":false}}}}}`,
		"missing name":  `{"data":{"roadmap":{"projects":{"nodes":[{"id":"p1","name":"","state":"started","teams":{"nodes":[]},"projectUpdates":{"nodes":[]},"projectMilestones":{"nodes":[]}}],"pageInfo":{"hasNextPage":false}}}}}`,
		"bad date":      `{"data":{"roadmap":{"projects":{"nodes":[{"id":"p1","name":"A","state":"started","targetDate":"soon","teams":{"nodes":[]},"projectUpdates":{"nodes":[]},"projectMilestones":{"nodes":[]}}],"pageInfo":{"hasNextPage":false}}}}}`,
		"wrong shape":   `{"data":{"roadmap":{"projects":{"nodes":{"id":"p1"}}}}}`,
		"no roadmap":    `{"data":{"roadmap":null}}`,
		"no data":       `{"data":null}`,
		"not json":      `<html>`,
		"no cursor":     `{"data":{"roadmap":{"projects":{"nodes":[],"pageInfo":{"hasNextPage":true,"endCursor":null}}}}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			server, _ := newServer(t, body)
			client := linear.NewClient(linear.Config{APIURL: server.URL, APIKey: "k"}, nil)
			_, err := client.ListProjects(context.Background(), "roadmap-1")
			require.ErrorIs(t, err, linear.ErrInvalidResponse)
		})
	}
}

func TestClient_ListProjects_RequestFailures(t *testing.T) {
	server, _ := newServer(t, `{"errors":[{"message":"Authentication required"}]}`)
	client := linear.NewClient(linear.Config{APIURL: server.URL, APIKey: "k"}, nil)
	_, err := client.ListProjects(context.Background(), "roadmap-1")
	require.ErrorIs(t, err, linear.ErrRequestFailed)
	require.Contains(t, err.Error(), "Authentication required")

	server, _ = newServer(t)
	client = linear.NewClient(linear.Config{APIURL: server.URL, APIKey: "k"}, nil)
	_, err = client.ListProjects(context.Background(), "roadmap-1")
	require.ErrorIs(t, err, linear.ErrRequestFailed)

	client = linear.NewClient(linear.Config{APIURL: server.URL}, nil)
	_, err = client.ListProjects(context.Background(), "roadmap-1")
	require.ErrorIs(t, err, linear.ErrRequestFailed)
}
