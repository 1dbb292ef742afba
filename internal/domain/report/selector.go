package report

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rpggio/pmbot/internal/domain/project"
	"github.com/rpggio/pmbot/internal/oracle"
)

// Selector picks the most exemplary recent update.
type Selector struct {
	oracle     Oracle
	adminEmail string
	logger     *slog.Logger
}

// NewSelector creates a Selector. Projects led by adminEmail are never chosen.
func NewSelector(o Oracle, adminEmail string, logger *slog.Logger) *Selector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Selector{oracle: o, adminEmail: adminEmail, logger: logger}
}

// Candidates returns the projects eligible for selection, in input order.
func (s *Selector) Candidates(updated []project.Project) []project.Project {
	var out []project.Project
	for _, p := range updated {
		if _, ok := p.LatestUpdate(); !ok || p.LedBy(s.adminEmail) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Select ranks the eligible projects and returns the chosen one. It returns
// nil without calling the oracle when there is nothing to choose from.
func (s *Selector) Select(ctx context.Context, updated []project.Project) (*BestUpdate, error) {
	candidates := s.Candidates(updated)
	if len(candidates) == 0 {
		s.logger.Debug("no candidates for best update")
		return nil, nil
	}

	options := make([]string, len(candidates))
	for i, p := range candidates {
		options[i] = bestUpdateOption(p)
	}

	ranking, err := s.oracle.Rank(ctx, oracle.RankRequest{
		Context:  bestUpdateContext,
		Options:  options,
		Criteria: bestUpdateCriteria,
	})
	if err != nil {
		return nil, fmt.Errorf("ranking updates: %w", err)
	}
	if err := checkIndex(ranking, len(options)); err != nil {
		return nil, err
	}
	return &BestUpdate{Project: candidates[ranking.Index], Rationale: ranking.Rationale}, nil
}

// checkIndex rejects a ranking outside [0, n).
func checkIndex(r oracle.Ranking, n int) error {
	if r.Index >= 0 && r.Index < n {
		return nil
	}
	return &oracle.ResponseError{
		Op:  "rank",
		Raw: r.Raw,
		Err: fmt.Errorf("%w: %w: %d not in [0, %d)", oracle.ErrMalformedResponse, ErrIndexOutOfRange, r.Index, n),
	}
}
