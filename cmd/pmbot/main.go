package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rpggio/pmbot/internal/config"
	"github.com/spf13/cobra"
)

var version = "dev"

// cli carries state shared by all subcommands.
type cli struct {
	configPath string
	logLevel   string

	cfg      config.Config
	logger   *slog.Logger
	closeLog func()

	stdout io.Writer
	stderr io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr, closeLog: func() {}}

	root := &cobra.Command{
		Use:   "pmbot",
		Short: "Weekly roadmap status reports from project updates",
		Long: `pmbot reads a roadmap's projects, labels each recently updated project
On Track, At Risk or Off Track, picks the best update of the week, explains
the risks, and reminds leads whose projects have gone quiet.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			if c.logLevel != "" {
				cfg.Log.Level = c.logLevel
			}
			c.cfg = cfg
			c.logger, c.closeLog = newLogger(cfg.Log.Level, c.stderr)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			c.closeLog()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "YAML config file (or set PMBOT_CONFIG_PATH)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	root.AddCommand(
		c.generateReportCmd(),
		c.sendReminderCmd(),
		c.showReportCmd(),
		c.serveCmd(),
	)
	return root
}
