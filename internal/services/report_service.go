package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/clock"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/models"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/store"
	"github.com/google/uuid"
)

// MediaInput references a file already written to media storage.
type MediaInput struct {
	StorageKey string
	Kind       models.MediaKind
}

type CreateReportInput struct {
	Latitude     float64
	Longitude    float64
	Description  string
	CitizenEmail string
	Media        []MediaInput
}

// UpdateReportInput edits a report. A nil Description leaves it unchanged;
// Media is appended.
type UpdateReportInput struct {
	Description *string
	Media       []MediaInput
}

type ReportService struct {
	store    store.Store
	clock    clock.Clock
	notifier Notifier
	newID    func() string
}

func NewReportService(st store.Store, clk clock.Clock, notifier Notifier) *ReportService {
	return &ReportService{
		store:    st,
		clock:    clk,
		notifier: notifier,
		newID:    func() string { return strings.ReplaceAll(uuid.NewString(), "-", "") },
	}
}

func validateCoordinates(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || lat < -90 || lat > 90 {
		return validationError("latitude must be between -90 and 90")
	}
	if math.IsNaN(lng) || math.IsInf(lng, 0) || lng < -180 || lng > 180 {
		return validationError("longitude must be between -180 and 180")
	}
	return nil
}

func validateMedia(items []MediaInput) error {
	for i, m := range items {
		if strings.TrimSpace(m.StorageKey) == "" {
			return validationError("media %d has no storage key", i+1)
		}
		if !m.Kind.Valid() {
			return validationError("media %d has unsupported kind %q", i+1, m.Kind)
		}
	}
	return nil
}

// requireContent rejects an item left with neither text nor media.
func requireContent(description string, media int64) error {
	if strings.TrimSpace(description) == "" && media == 0 {
		return validationError("a description or at least one photo or video is required")
	}
	return nil
}

func (in CreateReportInput) validate() error {
	if err := validateCoordinates(in.Latitude, in.Longitude); err != nil {
		return err
	}
	if err := requireContent(in.Description, int64(len(in.Media))); err != nil {
		return err
	}
	return validateMedia(in.Media)
}

// Create registers a report in status NEW. It does not check any
// verification code; see SubmissionService for the citizen flow.
func (s *ReportService) Create(ctx context.Context, in CreateReportInput) (*models.Report, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var report *models.Report
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx store.Store) error {
		var err error
		report, err = s.create(ctx, tx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (s *ReportService) create(ctx context.Context, tx store.Store, in CreateReportInput) (*models.Report, error) {
	now := s.clock.Now()
	report := &models.Report{
		PublicID:    s.newID(),
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		Description: strings.TrimSpace(in.Description),
		Status:      models.StatusNew,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if email := NormalizeEmail(in.CitizenEmail); email != "" {
		report.CitizenEmail = &email
	}
	for i, m := range in.Media {
		report.Media = append(report.Media, models.ReportMedia{
			StorageKey: m.StorageKey,
			Kind:       m.Kind,
			Order:      i + 1,
		})
	}
	if err := tx.Reports().Create(ctx, report); err != nil {
		return nil, err
	}
	if report.Comments == nil {
		report.Comments = []models.ReportComment{}
	}
	return report, nil
}

func (s *ReportService) lock(ctx context.Context, tx store.Store, publicID string) (*models.Report, error) {
	report, err := tx.Reports().LockByPublicID(ctx, publicID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrReportNotFound
	}
	return report, err
}

func (s *ReportService) appendMedia(ctx context.Context, tx store.Store, report *models.Report, items []MediaInput) error {
	if len(items) == 0 {
		return nil
	}
	next, err := tx.Reports().MaxMediaOrder(ctx, report.ID)
	if err != nil {
		return err
	}
	media := make([]models.ReportMedia, len(items))
	for i, m := range items {
		media[i] = models.ReportMedia{
			ReportID:   report.ID,
			StorageKey: m.StorageKey,
			Kind:       m.Kind,
			Order:      next + i + 1,
		}
	}
	return tx.Reports().AddMedia(ctx, media)
}

// AddMedia attaches files after the report's existing media.
func (s *ReportService) AddMedia(ctx context.Context, publicID string, items []MediaInput) (*models.Report, error) {
	if len(items) == 0 {
		return nil, validationError("at least one file is required")
	}
	if err := validateMedia(items); err != nil {
		return nil, err
	}
	return s.Update(ctx, publicID, UpdateReportInput{Media: items})
}

// Update edits the description and/or appends media. The report must
// still have a description or media afterwards.
func (s *ReportService) Update(ctx context.Context, publicID string, in UpdateReportInput) (*models.Report, error) {
	if err := validateMedia(in.Media); err != nil {
		return nil, err
	}
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx store.Store) error {
		report, err := s.lock(ctx, tx, publicID)
		if err != nil {
			return err
		}
		if in.Description != nil {
			report.Description = strings.TrimSpace(*in.Description)
		}
		if report.Description == "" {
			count, err := tx.Reports().CountMedia(ctx, report.ID)
			if err != nil {
				return err
			}
			if err := requireContent("", count+int64(len(in.Media))); err != nil {
				return err
			}
		}
		if err := s.appendMedia(ctx, tx, report, in.Media); err != nil {
			return err
		}
		report.UpdatedAt = s.clock.Now()
		return tx.Reports().UpdateFields(ctx, report)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, publicID)
}

func (s *ReportService) Get(ctx context.Context, publicID string) (*models.Report, error) {
	report, err := s.store.Reports().GetByPublicID(ctx, publicID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}
	return report, nil
}

// List returns reports newest first, optionally restricted to one status.
func (s *ReportService) List(ctx context.Context, status *models.ReportStatus) ([]models.Report, error) {
	if status != nil && !status.Valid() {
		return nil, validationError("unknown status %q", *status)
	}
	return s.store.Reports().List(ctx, store.ReportFilter{Status: status})
}

// AddComment appends a staff comment with optional evidence and notifies
// the citizen. When only the notification fails, the comment is returned
// together with an error matching ErrNotificationFailed.
func (s *ReportService) AddComment(ctx context.Context, publicID string, author *string, content string, evidence []MediaInput) (*models.ReportComment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, validationError("comment content is required")
	}
	if err := validateMedia(evidence); err != nil {
		return nil, err
	}

	var comment *models.ReportComment
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx store.Store) error {
		report, err := s.lock(ctx, tx, publicID)
		if err != nil {
			return err
		}
		now := s.clock.Now()
		comment = &models.ReportComment{
			ReportID:  report.ID,
			Author:    author,
			Content:   content,
			CreatedAt: now,
			Media:     make([]models.ReportCommentMedia, 0, len(evidence)),
		}
		for i, m := range evidence {
			comment.Media = append(comment.Media, models.ReportCommentMedia{
				StorageKey: m.StorageKey,
				Kind:       m.Kind,
				Order:      i + 1,
			})
		}
		if err := tx.Reports().AddComment(ctx, comment); err != nil {
			return err
		}
		report.UpdatedAt = now
		return tx.Reports().UpdateFields(ctx, report)
	})
	if err != nil {
		return nil, err
	}

	if err := s.notifyComment(ctx, publicID, comment); err != nil {
		return comment, err
	}
	return comment, nil
}

func (s *ReportService) notifyComment(ctx context.Context, publicID string, comment *models.ReportComment) error {
	report, err := s.Get(ctx, publicID)
	if err != nil {
		// The comment is committed; a report deleted meanwhile has nobody to notify.
		slog.Warn("comment notification skipped", "action", "add_comment", "public_id", publicID, "error", err)
		return nil
	}
	if report.CitizenEmail == nil {
		return nil
	}
	if err := s.notifier.DeliverComment(ctx, report, comment); err != nil {
		slog.Error("comment notification failed", "action", "add_comment", "public_id", publicID, "error", err)
		return fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}
	return nil
}

// Delete removes the report with its media and comments. It returns the
// removed report so the caller can discard stored files.
func (s *ReportService) Delete(ctx context.Context, publicID string) (*models.Report, error) {
	var removed *models.Report
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx store.Store) error {
		if _, err := s.lock(ctx, tx, publicID); err != nil {
			return err
		}
		report, err := tx.Reports().GetByPublicID(ctx, publicID)
		if err != nil {
			return err
		}
		removed = report
		return tx.Reports().Delete(ctx, report.ID)
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}
