package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/mail"
	"strings"

	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/clock"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/config"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/models"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/store"
)

var codeSpace = big.NewInt(1_000_000)

// randomCode draws uniformly from [0, 999999].
func randomCode() (int64, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return 0, err
	}
	return n.Int64(), nil
}

// NormalizeEmail is the canonical form under which codes are stored.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// parseEmail normalizes a bare address. Display names, angle brackets
// and anything else that is not exactly one address are rejected.
func parseEmail(raw string) (string, error) {
	email := NormalizeEmail(raw)
	if email == "" {
		return "", validationError("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Name != "" || addr.Address != email {
		return "", validationError("invalid email address")
	}
	return addr.Address, nil
}

type OTPService struct {
	store    store.Store
	clock    clock.Clock
	notifier Notifier
	cfg      *config.Config
	draw     func() (int64, error)
}

func NewOTPService(st store.Store, clk clock.Clock, notifier Notifier, cfg *config.Config) *OTPService {
	return &OTPService{store: st, clock: clk, notifier: notifier, cfg: cfg, draw: randomCode}
}

// Issue stores a fresh code for the email, replacing any previous one.
func (s *OTPService) Issue(ctx context.Context, email string) (string, error) {
	email, err := parseEmail(email)
	if err != nil {
		return "", err
	}

	n, err := s.draw()
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	now := s.clock.Now()
	otp := &models.OneTimeCode{
		Email:     email,
		Code:      fmt.Sprintf("%06d", n),
		ExpiresAt: now.Add(s.cfg.OTPTTL),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.OTPs().Upsert(ctx, otp); err != nil {
		return "", err
	}
	return otp.Code, nil
}

// RequestCode issues a code and mails it. A delivery failure leaves the
// stored code in place and is reported as ErrNotificationFailed.
func (s *OTPService) RequestCode(ctx context.Context, email string) error {
	code, err := s.Issue(ctx, email)
	if err != nil {
		return err
	}
	if err := s.notifier.DeliverOTP(ctx, NormalizeEmail(email), code); err != nil {
		slog.Error("otp delivery failed", "action", "request_code", "error", err)
		return fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}
	return nil
}

// Validate consumes the code on success. A code can be validated once.
func (s *OTPService) Validate(ctx context.Context, email, code string) error {
	return s.store.WithinTx(ctx, func(ctx context.Context, tx store.Store) error {
		return s.consume(ctx, tx, email, code)
	})
}

func (s *OTPService) consume(ctx context.Context, tx store.Store, email, code string) error {
	email = NormalizeEmail(email)
	otp, err := tx.OTPs().GetForUpdate(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return ErrCodeNotFound
	}
	if err != nil {
		return err
	}
	if s.clock.Now().After(otp.ExpiresAt) {
		return ErrCodeExpired
	}
	if otp.Code != code {
		return ErrCodeMismatch
	}
	if err := tx.OTPs().Delete(ctx, email); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrCodeNotFound
		}
		return err
	}
	return nil
}
