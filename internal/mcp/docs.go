package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `pmbot turns a roadmap's projects into a weekly status report.

Tools:
- generate_report: fetches projects, labels every recently updated project On Track / At Risk / Off Track,
  picks the best update, and summarises risks. Pass publish=true to post it to the configured sink.
  Slow: it makes one model call per updated project.
- get_cached_report: returns the last generated report instantly. Prefer it when a fresh run is not needed.
- send_reminders: messages each lead whose projects have no recent update.

Per-project model failures do not fail a run; they are listed under "failures" in the report.

Docs:
- pmbot://docs/report (report fields and what they mean)
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "pmbot://docs/report",
		Name:        "report_format",
		Title:       "pmbot report format",
		Description: "Fields of the report returned by generate_report and get_cached_report.",
		Content: `# Report format

- run_id, roadmap_id, generated_at: identify the run.
- projects_with_updates: in-scope projects with an update inside the recency window, each with
  its status label (On Track, At Risk, Off Track). Projects whose classification failed appear
  under failures instead.
- projects_without_updates: in-scope projects with no recent update.
- best_update: the most informative recent update, with the model's rationale and a short highlight.
  Missing when no candidate exists or the selection failed. A failed highlight leaves the
  selection in place and is listed under failures.
- risks: one entry per At Risk or Off Track project: project_name, project_milestone (omitted when
  unknown), why, what_next.
- reminders: projects without updates grouped by lead. An empty owner groups unassigned projects.
- failures: per-project or per-run model failures with the stage, operation, error and raw response.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
