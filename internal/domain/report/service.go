package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rpggio/pmbot/internal/domain/project"
	"github.com/rpggio/pmbot/internal/oracle"
	"github.com/rpggio/pmbot/internal/repository"
)

// Service runs the report pipeline for one roadmap.
type Service struct {
	source     ProjectSource
	oracle     Oracle
	sink       Sink
	cache      Cache
	cfg        Config
	selector   *Selector
	classifier *Classifier
	extractor  *Extractor
	logger     *slog.Logger
	now        func() time.Time
	newID      func() string
}

// NewService creates a report service. sink and cache may be nil.
func NewService(
	source ProjectSource,
	o Oracle,
	sink Sink,
	cache Cache,
	cfg Config,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{
		source:     source,
		oracle:     o,
		sink:       sink,
		cache:      cache,
		cfg:        cfg,
		selector:   NewSelector(o, cfg.AdminEmail, logger),
		classifier: NewClassifier(o, cfg.Concurrency, logger),
		extractor:  NewExtractor(o, cfg.Concurrency, logger),
		logger:     logger,
		now:        time.Now,
		newID:      defaultID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// run tracks one pipeline execution.
type run struct {
	id     string
	stage  Stage
	logger *slog.Logger
}

func (s *Service) begin(ctx context.Context, kind string) (*run, error) {
	id := s.newID()
	r := &run{
		id:     id,
		stage:  StageStart,
		logger: s.logger.With("run_id", id, "roadmap_id", s.cfg.RoadmapID, "run", kind),
	}
	if err := s.checkConfig(); err != nil {
		return nil, &StageError{Stage: StageStart, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &StageError{Stage: StageStart, Err: err}
	}
	r.logger.Info("run started")
	return r, nil
}

// advance moves the run forward and stops it if the caller cancelled.
func (r *run) advance(ctx context.Context, next Stage) error {
	if next.index() <= r.stage.index() {
		return fmt.Errorf("%w: %s to %s", ErrStageOrder, r.stage, next)
	}
	r.stage = next
	r.logger.Debug("stage complete", "stage", next)
	if next == StageDone {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return &StageError{Stage: next, Err: err}
	}
	return nil
}

func (s *Service) checkConfig() error {
	switch {
	case s.cfg.RoadmapID == "":
		return fmt.Errorf("%w: roadmap id is required", ErrInvalidConfig)
	case s.cfg.Cutoff <= 0:
		return fmt.Errorf("%w: cutoff must be positive", ErrInvalidConfig)
	case s.source == nil:
		return fmt.Errorf("%w: project source is required", ErrInvalidConfig)
	}
	return nil
}

// fetch loads, validates and scopes the roadmap's projects, then splits them
// by recency. Failures here are fatal.
func (s *Service) fetch(ctx context.Context, r *run) (project.Partition, error) {
	projects, err := s.source.ListProjects(ctx, s.cfg.RoadmapID)
	if err != nil {
		return project.Partition{}, &StageError{Stage: StageFetched, Err: fmt.Errorf("listing projects: %w", err)}
	}
	for _, p := range projects {
		if err := project.Validate(p); err != nil {
			return project.Partition{}, &StageError{Stage: StageFetched, Err: err}
		}
		if !p.State.Valid() {
			r.logger.Debug("project in unrecognized state", "project_id", p.ID, "state", p.State)
		}
	}
	inScope := s.cfg.Scope.Filter(projects)
	r.logger.Info("projects fetched", "total", len(projects), "in_scope", len(inScope))
	if err := r.advance(ctx, StageFetched); err != nil {
		return project.Partition{}, err
	}

	part, err := project.PartitionByRecency(inScope, s.cfg.Cutoff, s.now())
	if err != nil {
		return project.Partition{}, &StageError{Stage: StagePartitioned, Err: err}
	}
	r.logger.Info("projects partitioned", "updated", len(part.Updated), "stale", len(part.Stale))
	if err := r.advance(ctx, StagePartitioned); err != nil {
		return project.Partition{}, err
	}
	return part, nil
}

// Generate runs the pipeline and returns the assembled report. The report is
// cached when a cache is configured; cache errors are logged and ignored.
func (s *Service) Generate(ctx context.Context) (Report, error) {
	r, err := s.begin(ctx, "report")
	if err != nil {
		return Report{}, err
	}
	generatedAt := s.now()

	part, err := s.fetch(ctx, r)
	if err != nil {
		r.logger.Error("run aborted", "error", err)
		return Report{}, err
	}

	var failures []Failure
	labeled, classifyFailures := s.classifier.Classify(ctx, part.Updated)
	failures = append(failures, classifyFailures...)
	best, bestFailure := s.selectBest(ctx, r, part.Updated, labeled)
	if bestFailure != nil {
		failures = append(failures, *bestFailure)
	}
	if err := r.advance(ctx, StageClassified); err != nil {
		return Report{}, err
	}

	risks, extractFailures := s.extractor.Extract(ctx, labeled)
	failures = append(failures, extractFailures...)
	if err := r.advance(ctx, StageRiskExtracted); err != nil {
		return Report{}, err
	}

	rep, err := NewBuilder(r.id, s.cfg.RoadmapID, generatedAt, part).
		WithClassified(labeled).
		WithBestUpdate(best).
		WithRisks(risks).
		WithReminders(GroupReminders(part.Stale)).
		WithFailures(failures...).
		Build()
	if err != nil {
		return Report{}, &StageError{Stage: StageAssembled, Err: err}
	}
	if err := r.advance(ctx, StageAssembled); err != nil {
		return Report{}, err
	}

	s.store(ctx, r, rep)
	if err := r.advance(ctx, StageDone); err != nil {
		return Report{}, err
	}
	r.logger.Info("report generated",
		"updated", len(rep.updated),
		"stale", len(rep.stale),
		"risks", len(rep.risks),
		"reminders", len(rep.reminders),
		"failures", len(rep.failures))
	return rep, nil
}

// selectBest picks the best update and, when configured, a short highlight.
// A highlight failure keeps the selection and is returned as the failure.
func (s *Service) selectBest(ctx context.Context, r *run, updated, labeled []project.Project) (*BestUpdate, *Failure) {
	best, err := s.selector.Select(ctx, updated)
	if err != nil {
		r.logger.Warn("best update selection failed", "error", err, "raw", oracle.RawResponse(err))
		return nil, &Failure{Stage: StageClassified, Operation: OpSelectBest, Error: err.Error(), Raw: oracle.RawResponse(err)}
	}
	if best == nil {
		return nil, nil
	}
	for _, p := range labeled {
		if p.ID == best.Project.ID {
			best.Project = p
			break
		}
	}

	if s.cfg.HighlightWords > 0 {
		update, _ := best.Project.LatestUpdate()
		highlight, err := s.oracle.Summarize(ctx, oracle.SummarizeRequest{
			Context:   highlightContext,
			WordLimit: s.cfg.HighlightWords,
			Input:     update.Body,
		})
		if err != nil {
			r.logger.Warn("highlight failed", "project_id", best.Project.ID, "error", err)
			return best, &Failure{
				ProjectID:   best.Project.ID,
				ProjectName: best.Project.Name,
				Stage:       StageClassified,
				Operation:   OpHighlight,
				Error:       err.Error(),
				Raw:         oracle.RawResponse(err),
			}
		}
		best.Highlight = highlight
	}
	r.logger.Info("best update selected", "project_id", best.Project.ID, "project", best.Project.Name)
	return best, nil
}

func (s *Service) store(ctx context.Context, r *run, rep Report) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(rep)
	if err != nil {
		r.logger.Warn("encoding report for cache failed", "error", err)
		return
	}
	if err := s.cache.Put(ctx, s.cfg.RoadmapID, data); err != nil {
		r.logger.Warn("caching report failed", "error", err)
	}
}

// Run generates a report and optionally publishes it. A publish failure
// still returns the generated report alongside the error.
func (s *Service) Run(ctx context.Context, opts RunOptions) (Report, error) {
	rep, err := s.Generate(ctx)
	if err != nil {
		return Report{}, err
	}
	if !opts.Publish {
		return rep, nil
	}
	if err := s.publish(ctx, rep); err != nil {
		s.logger.Error("publishing report failed", "run_id", rep.RunID(), "error", err)
		return rep, err
	}
	s.logger.Info("report published", "run_id", rep.RunID())
	return rep, nil
}

func (s *Service) publish(ctx context.Context, rep Report) error {
	if s.sink == nil {
		return fmt.Errorf("%w: no sink configured", ErrPublishFailed)
	}
	if err := s.sink.PublishReport(ctx, rep); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// SendReminders groups the stale projects by lead and asks the sink to
// remind each lead.
func (s *Service) SendReminders(ctx context.Context) ([]ReminderGroup, error) {
	r, err := s.begin(ctx, "reminders")
	if err != nil {
		return nil, err
	}
	if s.sink == nil {
		return nil, fmt.Errorf("%w: no sink configured", ErrPublishFailed)
	}

	part, err := s.fetch(ctx, r)
	if err != nil {
		r.logger.Error("run aborted", "error", err)
		return nil, err
	}
	groups := GroupReminders(part.Stale)
	if len(groups) == 0 {
		r.logger.Info("no reminders to send")
		return nil, nil
	}
	if err := s.sink.SendReminders(ctx, groups); err != nil {
		return groups, fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	r.logger.Info("reminders sent", "owners", len(groups), "projects", len(part.Stale))
	return groups, nil
}

// Cached returns the last report generated for the roadmap.
func (s *Service) Cached(ctx context.Context) (Report, error) {
	if s.cache == nil {
		return Report{}, ErrNoCachedReport
	}
	data, err := s.cache.Get(ctx, s.cfg.RoadmapID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Report{}, ErrNoCachedReport
		}
		return Report{}, fmt.Errorf("loading cached report: %w", err)
	}
	return Decode(data)
}
