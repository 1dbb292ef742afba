package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/rpggio/pmbot/internal/domain/project"
	"github.com/rpggio/pmbot/internal/oracle"
)

// riskFields is the record the oracle fills in for an at-risk project.
type riskFields struct {
	ProjectName string  `json:"project_name" jsonschema:"name of the project"`
	Milestone   *string `json:"project_milestone" jsonschema:"the milestone that is at risk, or null"`
	Why         string  `json:"why" jsonschema:"a very brief reason why the project is at risk"`
	WhatNext    string  `json:"what_next" jsonschema:"a very brief summary of the next steps the lead shared"`
}

var riskSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.For[riskFields](nil)
})

// Extractor produces risk summaries for projects that are not on track.
type Extractor struct {
	oracle Oracle
	limit  int
	logger *slog.Logger
}

// NewExtractor creates an Extractor running at most limit oracle calls at once.
func NewExtractor(o Oracle, limit int, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Extractor{oracle: o, limit: limit, logger: logger}
}

// AtRisk returns the labeled projects whose label is not on track.
func AtRisk(labeled []project.Project) []project.Project {
	var out []project.Project
	for _, p := range labeled {
		if label, ok := p.Label(); ok && label != project.StatusOnTrack {
			out = append(out, p)
		}
	}
	return out
}

// Extract returns one summary per at-risk project, in labeled order.
func (e *Extractor) Extract(ctx context.Context, labeled []project.Project) ([]RiskSummary, []Failure) {
	atRisk := AtRisk(labeled)
	results := fanOut(ctx, e.limit, atRisk, e.extract)

	var (
		risks    []RiskSummary
		failures []Failure
	)
	for i, res := range results {
		p := atRisk[i]
		if res.err != nil {
			e.logger.Warn("risk extraction failed",
				"project_id", p.ID,
				"project", p.Name,
				"error", res.err,
				"raw", oracle.RawResponse(res.err))
			failures = append(failures, newFailure(p, StageRiskExtracted, OpExtract, res.err))
			continue
		}
		risks = append(risks, res.value)
	}
	return risks, failures
}

func (e *Extractor) extract(ctx context.Context, p project.Project) (RiskSummary, error) {
	schema, err := riskSchema()
	if err != nil {
		return RiskSummary{}, fmt.Errorf("building risk schema: %w", err)
	}

	var fields riskFields
	err = e.oracle.Extract(ctx, oracle.ExtractRequest{
		Context: riskContext,
		Input:   projectDetails(p),
		Schema:  schema,
	}, &fields)
	if err != nil {
		return RiskSummary{}, fmt.Errorf("extracting risk for %s: %w", p.ID, err)
	}

	summary := RiskSummary{
		ProjectID:   p.ID,
		ProjectName: p.Name,
		Why:         strings.TrimSpace(fields.Why),
		WhatNext:    strings.TrimSpace(fields.WhatNext),
	}
	if fields.Milestone != nil {
		if m := strings.TrimSpace(*fields.Milestone); m != "" {
			summary.Milestone = &m
		}
	}
	return summary, nil
}
