package mailer

import (
	"context"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/models"
)

// LogMailer writes notifications to the log instead of sending them.
// Only meant for local development (MAIL_DRIVER=log).
type LogMailer struct{}

func (LogMailer) DeliverOTP(_ context.Context, email, code string) error {
	slog.Info("otp issued", "action", "mail_otp", "email", email, "code", code)
	return nil
}

func (LogMailer) DeliverStatusChange(_ context.Context, r *models.Report, from, to models.ReportStatus) error {
	slog.Info("status change notification", "action", "mail_status", "public_id", r.PublicID,
		"from", from.Label(), "to", to.Label())
	return nil
}

func (LogMailer) DeliverComment(_ context.Context, r *models.Report, c *models.ReportComment) error {
	slog.Info("comment notification", "action", "mail_comment", "public_id", r.PublicID, "comment_id", c.ID)
	return nil
}
