package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/rpggio/pmbot/internal/domain/report"
	"github.com/spf13/cobra"
)

func (c *cli) generateReportCmd() *cobra.Command {
	var dryRun, asJSON bool
	cmd := &cobra.Command{
		Use:   "generate-report",
		Short: "Generate the roadmap report and publish it",
		Long: `Fetch the roadmap's projects, classify recent updates, pick the best update,
summarise risks and publish the report to the configured sink.

With --dry-run the report is printed to stdout instead of being published.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := wire(cmd.Context(), c.cfg, c.logger, wireOptions{forceConsole: dryRun, stdout: c.stdout})
			if err != nil {
				return err
			}
			defer a.Close()

			rep, err := a.service.Run(cmd.Context(), report.RunOptions{Publish: !asJSON})
			if err != nil && !errors.Is(err, report.ErrPublishFailed) {
				return err
			}
			if asJSON {
				return writeJSON(c.stdout, rep)
			}
			if n := len(rep.Failures()); n > 0 {
				c.logger.Warn("report has failures", "run_id", rep.RunID(), "failures", n)
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the report instead of publishing it")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON without publishing")
	return cmd
}

func (c *cli) sendReminderCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "send-reminder",
		Short: "Remind leads whose projects have no recent update",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := wire(cmd.Context(), c.cfg, c.logger, wireOptions{forceConsole: dryRun, stdout: c.stdout})
			if err != nil {
				return err
			}
			defer a.Close()

			groups, err := a.service.SendReminders(cmd.Context())
			if err != nil {
				return err
			}
			if len(groups) == 0 {
				fmt.Fprintln(c.stdout, "Every project in scope has a recent update.")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the reminders instead of sending them")
	return cmd
}

func (c *cli) showReportCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show-report",
		Short: "Print the last generated report from the cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := wire(cmd.Context(), c.cfg, c.logger, wireOptions{cacheOnly: true, stdout: c.stdout})
			if err != nil {
				return err
			}
			defer a.Close()

			rep, err := a.service.Cached(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(c.stdout, rep)
			}
			_, err = fmt.Fprintln(c.stdout, a.render(rep))
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}

func writeJSON(w io.Writer, rep report.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
