package slack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rpggio/pmbot/internal/domain/report"
)

// ErrNoRecipient indicates a reminder group whose owner cannot be messaged.
var ErrNoRecipient = errors.New("reminder owner has no email")

// Sink posts reports to a channel and reminders as direct messages.
type Sink struct {
	client  *Client
	channel string
	logger  *slog.Logger
}

// NewSink creates a Sink posting reports to channel.
func NewSink(client *Client, channel string, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Sink{client: client, channel: channel, logger: logger}
}

// PublishReport posts the rendered report to the configured channel.
func (s *Sink) PublishReport(ctx context.Context, r report.Report) error {
	ts, err := s.client.PostMessage(ctx, s.channel, RenderReport(r))
	if err != nil {
		return fmt.Errorf("posting report: %w", err)
	}
	s.logger.Info("report posted", "channel", s.channel, "ts", ts, "run_id", r.RunID())
	return nil
}

// SendReminders messages every owner. A failure for one owner does not stop
// the others; all failures are returned together.
func (s *Sink) SendReminders(ctx context.Context, groups []report.ReminderGroup) error {
	var errs []error
	for _, g := range groups {
		if err := s.remind(ctx, g); err != nil {
			s.logger.Warn("reminder not sent", "owner_id", g.Owner.ID, "owner", g.Owner.Name, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Sink) remind(ctx context.Context, g report.ReminderGroup) error {
	email := strings.TrimSpace(g.Owner.Email)
	if email == "" {
		return fmt.Errorf("%w: %d unassigned projects", ErrNoRecipient, len(g.Projects))
	}
	userID, err := s.client.LookupUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("looking up %s: %w", email, err)
	}
	if _, err := s.client.PostMessage(ctx, userID, RenderReminder(g)); err != nil {
		return fmt.Errorf("messaging %s: %w", email, err)
	}
	s.logger.Info("reminder sent", "owner_id", g.Owner.ID, "projects", len(g.Projects))
	return nil
}
