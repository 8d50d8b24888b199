package services

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/models"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/store"
)

// SubmissionService is the citizen entry point: it consumes the email
// verification code and creates the report in one unit of work, so a
// rejected report never burns the code and a code is never spent twice.
type SubmissionService struct {
	store   store.Store
	otp     *OTPService
	reports *ReportService
}

func NewSubmissionService(st store.Store, otp *OTPService, reports *ReportService) *SubmissionService {
	return &SubmissionService{store: st, otp: otp, reports: reports}
}

func (s *SubmissionService) Submit(ctx context.Context, code string, in CreateReportInput) (*models.Report, error) {
	email, err := parseEmail(in.CitizenEmail)
	if err != nil {
		return nil, err
	}
	in.CitizenEmail = email
	if err := in.validate(); err != nil {
		return nil, err
	}

	var report *models.Report
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx store.Store) error {
		if err := s.otp.consume(ctx, tx, in.CitizenEmail, code); err != nil {
			return err
		}
		var err error
		report, err = s.reports.create(ctx, tx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}
