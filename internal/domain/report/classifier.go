package report

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rpggio/pmbot/internal/domain/project"
	"github.com/rpggio/pmbot/internal/oracle"
)

// Classifier assigns a status label to each recently updated project.
type Classifier struct {
	oracle Oracle
	limit  int
	logger *slog.Logger
}

// NewClassifier creates a Classifier running at most limit oracle calls at once.
func NewClassifier(o Oracle, limit int, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Classifier{oracle: o, limit: limit, logger: logger}
}

// Classify labels every project independently. Labeled copies are returned in
// input order; projects whose classification failed are left out and reported
// as failures instead.
func (c *Classifier) Classify(ctx context.Context, updated []project.Project) ([]project.Project, []Failure) {
	results := fanOut(ctx, c.limit, updated, c.classify)

	var (
		labeled  []project.Project
		failures []Failure
	)
	for i, res := range results {
		p := updated[i]
		if res.err != nil {
			c.logger.Warn("classification failed",
				"project_id", p.ID,
				"project", p.Name,
				"error", res.err,
				"raw", oracle.RawResponse(res.err))
			failures = append(failures, newFailure(p, StageClassified, OpClassify, res.err))
			continue
		}
		labeled = append(labeled, p.WithStatus(res.value))
	}
	return labeled, failures
}

func (c *Classifier) classify(ctx context.Context, p project.Project) (project.StatusLabel, error) {
	options := labelOptions()
	ranking, err := c.oracle.Rank(ctx, oracle.RankRequest{
		Context:  classifyContext + "\n\n" + projectDetails(p),
		Options:  options,
		Criteria: classifyCriteria,
	})
	if err != nil {
		return "", fmt.Errorf("classifying %s: %w", p.ID, err)
	}
	if err := checkIndex(ranking, len(options)); err != nil {
		return "", err
	}
	return project.StatusLabels[ranking.Index], nil
}

func newFailure(p project.Project, stage Stage, op Operation, err error) Failure {
	return Failure{
		ProjectID:   p.ID,
		ProjectName: p.Name,
		Stage:       stage,
		Operation:   op,
		Error:       err.Error(),
		Raw:         oracle.RawResponse(err),
	}
}
