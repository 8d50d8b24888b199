package services

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/models"
)

// Notifier delivers messages to citizens. Implementations must return an
// error when a message could not be handed to the transport.
type Notifier interface {
	DeliverOTP(ctx context.Context, email, code string) error
	DeliverStatusChange(ctx context.Context, report *models.Report, from, to models.ReportStatus) error
	DeliverComment(ctx context.Context, report *models.Report, comment *models.ReportComment) error
}
