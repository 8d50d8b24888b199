package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/clock"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/config"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/models"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/store/memstore"
)

var epoch = time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{
		SessionSecret:     "test-secret",
		SessionTTL:        8 * time.Hour,
		OTPTTL:            3 * time.Minute,
		NearbyMaxRadiusKm: 50,
	}
}

type recordingNotifier struct {
	mu       sync.Mutex
	fail     error
	otps     map[string]string
	statuses []string
	comments []string
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{otps: make(map[string]string)}
}

func (n *recordingNotifier) DeliverOTP(_ context.Context, email, code string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail != nil {
		return n.fail
	}
	n.otps[email] = code
	return nil
}

func (n *recordingNotifier) DeliverStatusChange(_ context.Context, r *models.Report, from, to models.ReportStatus) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail != nil {
		return n.fail
	}
	n.statuses = append(n.statuses, r.PublicID+":"+string(from)+"->"+string(to))
	return nil
}

func (n *recordingNotifier) DeliverComment(_ context.Context, r *models.Report, c *models.ReportComment) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail != nil {
		return n.fail
	}
	n.comments = append(n.comments, c.Content)
	return nil
}

var errSMTPDown = errors.New("smtp: connection refused")

type fixture struct {
	store      *memstore.Store
	clock      *clock.FakeClock
	notifier   *recordingNotifier
	cfg        *config.Config
	otp        *OTPService
	sessions   *SessionService
	reports    *ReportService
	statuses   *StatusService
	proximity  *ProximityService
	submission *SubmissionService
	news       *NewsService
	visits     *VisitService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    memstore.New(),
		clock:    clock.Fake(epoch),
		notifier: newRecordingNotifier(),
		cfg:      testConfig(),
	}
	f.otp = NewOTPService(f.store, f.clock, f.notifier, f.cfg)
	f.sessions = NewSessionService(f.store, f.clock, BcryptVerifier{}, f.cfg)
	f.reports = NewReportService(f.store, f.clock, f.notifier)
	f.statuses = NewStatusService(f.store, f.clock, f.reports, f.notifier)
	f.proximity = NewProximityService(f.store, f.cfg.NearbyMaxRadiusKm)
	f.submission = NewSubmissionService(f.store, f.otp, f.reports)
	f.news = NewNewsService(f.store, f.clock)
	f.visits = NewVisitService(f.store, f.clock)
	return f
}

func image(key string) MediaInput { return MediaInput{StorageKey: key, Kind: models.MediaImage} }

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }
