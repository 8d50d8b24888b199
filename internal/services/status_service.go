package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/clock"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/models"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/store"
)

// CanTransition reports whether moving from one status to another
// changes anything. Every distinct pair is allowed.
func CanTransition(from, to models.ReportStatus) bool {
	return from.Valid() && to.Valid() && from != to
}

// StatusChangeMessage is the audit comment recorded on a transition.
func StatusChangeMessage(from, to models.ReportStatus) string {
	return fmt.Sprintf("Status changed from '%s' to '%s'", from.Label(), to.Label())
}

type TransitionResult struct {
	Report  *models.Report
	Changed bool
	From    models.ReportStatus
}

type StatusService struct {
	store    store.Store
	clock    clock.Clock
	reports  *ReportService
	notifier Notifier
}

func NewStatusService(st store.Store, clk clock.Clock, reports *ReportService, notifier Notifier) *StatusService {
	return &StatusService{store: st, clock: clk, reports: reports, notifier: notifier}
}

// Transition moves the report to the new status and records an audit
// comment by the actor in the same unit of work. Requesting the current
// status is a no-op. A failed citizen notification does not undo the
// transition; the result is returned with ErrNotificationFailed.
func (s *StatusService) Transition(ctx context.Context, publicID string, to models.ReportStatus, actor *Identity) (*TransitionResult, error) {
	if !to.Valid() {
		return nil, validationError("unknown status %q", to)
	}

	var from models.ReportStatus
	changed := false
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx store.Store) error {
		report, err := s.reports.lock(ctx, tx, publicID)
		if err != nil {
			return err
		}
		from = report.Status
		if !CanTransition(from, to) {
			return nil
		}

		now := s.clock.Now()
		report.Status = to
		report.UpdatedAt = now
		if err := tx.Reports().UpdateFields(ctx, report); err != nil {
			return err
		}
		var author *string
		if actor != nil {
			name := actor.Username
			author = &name
		}
		changed = true
		return tx.Reports().AddComment(ctx, &models.ReportComment{
			ReportID:  report.ID,
			Author:    author,
			Content:   StatusChangeMessage(from, to),
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	report, err := s.reports.Get(ctx, publicID)
	if err != nil {
		return nil, err
	}
	result := &TransitionResult{Report: report, Changed: changed, From: from}

	if changed && report.CitizenEmail != nil {
		if err := s.notifier.DeliverStatusChange(ctx, report, from, to); err != nil {
			slog.Error("status notification failed", "action", "transition", "public_id", publicID, "error", err)
			return result, fmt.Errorf("%w: %v", ErrNotificationFailed, err)
		}
	}
	return result, nil
}
