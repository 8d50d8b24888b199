package services

import (
	"context"
	"strings"

	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/clock"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/store"
)

// VisitService counts distinct devices that opened the public site.
type VisitService struct {
	store store.Store
	clock clock.Clock
}

func NewVisitService(st store.Store, clk clock.Clock) *VisitService {
	return &VisitService{store: st, clock: clk}
}

// Register records a visit and reports whether the device is new.
func (s *VisitService) Register(ctx context.Context, deviceToken string) (bool, error) {
	token := strings.TrimSpace(deviceToken)
	if token == "" {
		return false, validationError("device_token is required")
	}
	if len(token) > 255 {
		return false, validationError("device_token must be at most 255 characters")
	}
	return s.store.Visitors().Touch(ctx, token, s.clock.Now())
}

func (s *VisitService) Count(ctx context.Context) (int64, error) {
	return s.store.Visitors().Count(ctx)
}
