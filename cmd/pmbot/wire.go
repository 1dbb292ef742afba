package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/rpggio/pmbot/internal/config"
	"github.com/rpggio/pmbot/internal/console"
	"github.com/rpggio/pmbot/internal/domain/project"
	"github.com/rpggio/pmbot/internal/domain/report"
	"github.com/rpggio/pmbot/internal/linear"
	"github.com/rpggio/pmbot/internal/oracle"
	"github.com/rpggio/pmbot/internal/postgres"
	"github.com/rpggio/pmbot/internal/slack"
	"github.com/rpggio/pmbot/internal/sqlite"
)

// app holds the wired collaborators for one command invocation.
type app struct {
	service *report.Service
	render  func(report.Report) string
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// wireOptions lets a command swap the sink or skip the tracker and oracle.
type wireOptions struct {
	forceConsole bool
	cacheOnly    bool
	stdout       io.Writer
}

func wire(ctx context.Context, cfg config.Config, logger *slog.Logger, opts wireOptions) (*app, error) {
	if opts.cacheOnly {
		if err := cfg.ValidateCache(); err != nil {
			return nil, err
		}
	} else {
		if opts.forceConsole {
			cfg.Sink = config.SinkConsole
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	a := &app{}
	cache, closeCache, err := openCache(ctx, cfg.Cache, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeCache)

	consoleSink := console.NewSink(opts.stdout)
	a.render = consoleSink.Render

	var (
		source report.ProjectSource
		o      report.Oracle
		sink   report.Sink
	)
	if !opts.cacheOnly {
		source = linear.NewClient(linear.Config{
			APIURL:   cfg.Tracker.APIURL,
			APIKey:   cfg.Tracker.APIKey,
			PageSize: cfg.Tracker.PageSize,
		}, logger.With("component", "linear"))

		completer, err := oracle.NewCompleter(ctx, oracle.Settings{
			Provider:   oracle.Provider(cfg.Oracle.Provider),
			Model:      cfg.Oracle.Model,
			APIKey:     cfg.Oracle.APIKey,
			BaseURL:    cfg.Oracle.BaseURL,
			Timeout:    time.Duration(cfg.Oracle.Timeout),
			MaxRetries: cfg.Oracle.MaxRetries,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("creating oracle: %w", err)
		}
		o = oracle.New(completer, logger.With("component", "oracle"))

		switch cfg.Sink {
		case config.SinkSlack:
			client := slack.NewClient(cfg.Slack.Token, cfg.Slack.APIURL, logger.With("component", "slack"))
			sink = slack.NewSink(client, cfg.Slack.Channel, logger.With("component", "slack"))
		default:
			sink = consoleSink
		}
	}

	states := make([]project.State, 0, len(cfg.Roadmap.States))
	for _, s := range cfg.Roadmap.States {
		states = append(states, project.State(s))
	}

	a.service = report.NewService(source, o, sink, cache, report.Config{
		RoadmapID:      cfg.Roadmap.ID,
		AdminEmail:     cfg.Roadmap.AdminEmail,
		Scope:          project.Scope{States: states, Teams: cfg.Roadmap.Teams},
		Cutoff:         time.Duration(cfg.Report.Cutoff),
		Concurrency:    cfg.Report.Concurrency,
		HighlightWords: cfg.Report.HighlightWords,
	}, logger)
	return a, nil
}

// openCache returns a nil cache for the "none" driver.
func openCache(ctx context.Context, cfg config.CacheConfig, logger *slog.Logger) (report.Cache, func(), error) {
	switch cfg.Driver {
	case config.CacheSQLite:
		db, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite cache: %w", err)
		}
		logger.Debug("report cache ready", "driver", cfg.Driver, "path", cfg.Path)
		return sqlite.NewReportCache(db), func() { _ = db.Close() }, nil
	case config.CachePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("opening postgres cache: %w", err)
		}
		cache, err := postgres.NewReportCache(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("opening postgres cache: %w", err)
		}
		logger.Debug("report cache ready", "driver", cfg.Driver)
		return cache, pool.Close, nil
	default:
		return nil, func() {}, nil
	}
}
