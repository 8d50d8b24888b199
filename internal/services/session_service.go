package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/clock"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/config"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/models"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/store"
)

// Identity is the authenticated staff user behind a request.
type Identity struct {
	UserID   uint
	Username string
	Name     string
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.StaffUser
}

type SessionService struct {
	store    store.Store
	clock    clock.Clock
	verifier PasswordVerifier
	tokens   sessionTokens
	cfg      *config.Config
}

func NewSessionService(st store.Store, clk clock.Clock, verifier PasswordVerifier, cfg *config.Config) *SessionService {
	return &SessionService{
		store:    st,
		clock:    clk,
		verifier: verifier,
		tokens:   sessionTokens{secret: []byte(cfg.SessionSecret)},
		cfg:      cfg,
	}
}

// Login starts a session, replacing whatever session the user had.
func (s *SessionService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var result *LoginResult
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx store.Store) error {
		user, err := tx.Users().GetByUsername(ctx, strings.TrimSpace(username))
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidCredentials
		}
		if err != nil {
			return err
		}
		if !s.verifier.Verify(password, user.PasswordHash) {
			return ErrInvalidCredentials
		}

		now := s.clock.Now()
		token, err := s.tokens.mint(user.ID, now)
		if err != nil {
			return err
		}
		session := &models.StaffSession{
			UserID:    user.ID,
			TokenHash: hashToken(token),
			ExpiresAt: now.Add(s.cfg.SessionTTL),
			CreatedAt: now,
		}
		if err := tx.Sessions().Replace(ctx, session); err != nil {
			return err
		}
		if err := tx.Users().TouchLastLogin(ctx, user.ID, now); err != nil {
			return fmt.Errorf("failed to record login: %w", err)
		}
		user.LastLoginAt = &now
		result = &LoginResult{Token: token, ExpiresAt: session.ExpiresAt, User: user}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrMissingHeader
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" || strings.ContainsAny(token, " \t") {
		return "", ErrMalformedHeader
	}
	return token, nil
}

// Authenticate resolves the Authorization header to a staff identity.
// Expiry is absolute: using a session never extends it.
func (s *SessionService) Authenticate(ctx context.Context, header string) (*Identity, error) {
	token, err := BearerToken(header)
	if err != nil {
		return nil, err
	}
	if !s.tokens.verify(token) {
		return nil, ErrInvalidSession
	}

	session, err := s.store.Sessions().GetByTokenHash(ctx, hashToken(token))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidSession
	}
	if err != nil {
		return nil, err
	}
	if s.clock.Now().After(session.ExpiresAt) {
		return nil, ErrExpiredSession
	}

	user, err := s.store.Users().GetByID(ctx, session.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidSession
	}
	if err != nil {
		return nil, err
	}
	return &Identity{UserID: user.ID, Username: user.Username, Name: user.Name}, nil
}

// Logout ends the user's session. It is idempotent.
func (s *SessionService) Logout(ctx context.Context, id *Identity) error {
	return s.store.Sessions().DeleteByUserID(ctx, id.UserID)
}

// CreateStaffUser registers an operator account.
func (s *SessionService) CreateStaffUser(ctx context.Context, name, username, password string) (*models.StaffUser, error) {
	name, username = strings.TrimSpace(name), strings.TrimSpace(username)
	if name == "" || username == "" {
		return nil, validationError("name and username are required")
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	user := &models.StaffUser{
		Name:         name,
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx store.Store) error {
		if _, err := tx.Users().GetByUsername(ctx, username); err == nil {
			return validationError("username %q is already taken", username)
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		return tx.Users().Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
