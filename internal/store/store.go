// Package store defines the persistence contracts used by the services.
// Two implementations exist: gormstore (PostgreSQL) and memstore
// (in-process, used by tests and the memory driver).
package store

import (
	"context"
	"errors"
	"time"

	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/models"
)

// ErrNotFound is returned by every repository when the requested row does
// not exist.
var ErrNotFound = errors.New("record not found")

// Store vends repositories bound to one database handle. Inside WithinTx
// the handle is the transaction, so every repository obtained from tx
// participates in it.
type Store interface {
	OTPs() OTPRepository
	Users() UserRepository
	Sessions() SessionRepository
	Reports() ReportRepository
	News() NewsRepository
	Visitors() VisitorRepository

	// WithinTx runs fn in a unit of work. A non-nil error from fn rolls
	// back every write made through tx.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
	Ping(ctx context.Context) error
}

type OTPRepository interface {
	// Upsert inserts the code or replaces the existing one for its email.
	Upsert(ctx context.Context, code *models.OneTimeCode) error
	// GetForUpdate loads the code and locks it until the unit of work ends.
	GetForUpdate(ctx context.Context, email string) (*models.OneTimeCode, error)
	Delete(ctx context.Context, email string) error
}

type UserRepository interface {
	Create(ctx context.Context, user *models.StaffUser) error
	GetByID(ctx context.Context, id uint) (*models.StaffUser, error)
	GetByUsername(ctx context.Context, username string) (*models.StaffUser, error)
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
}

type SessionRepository interface {
	// Replace stores the session, overwriting any previous one of the user.
	Replace(ctx context.Context, session *models.StaffSession) error
	GetByTokenHash(ctx context.Context, hash string) (*models.StaffSession, error)
	DeleteByUserID(ctx context.Context, userID uint) error
}

// Bounds is an inclusive latitude/longitude rectangle.
type Bounds struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// ReportFilter narrows List. The zero value lists everything newest first.
type ReportFilter struct {
	Status *models.ReportStatus
	Bounds *Bounds
	// ByID orders by ascending id instead of newest first.
	ByID bool
}

type ReportRepository interface {
	// Create inserts the report together with its media.
	Create(ctx context.Context, report *models.Report) error
	// GetByPublicID loads the report with media and comments, ordered.
	GetByPublicID(ctx context.Context, publicID string) (*models.Report, error)
	// LockByPublicID loads the bare report row and locks it until the unit
	// of work ends.
	LockByPublicID(ctx context.Context, publicID string) (*models.Report, error)
	List(ctx context.Context, filter ReportFilter) ([]models.Report, error)
	// UpdateFields persists description, status and updated_at.
	UpdateFields(ctx context.Context, report *models.Report) error
	MaxMediaOrder(ctx context.Context, reportID uint) (int, error)
	CountMedia(ctx context.Context, reportID uint) (int64, error)
	AddMedia(ctx context.Context, media []models.ReportMedia) error
	// AddComment inserts the comment together with its media.
	AddComment(ctx context.Context, comment *models.ReportComment) error
	// Delete removes the report and everything attached to it.
	Delete(ctx context.Context, reportID uint) error
}

type NewsRepository interface {
	// Create inserts the item together with its media.
	Create(ctx context.Context, item *models.News) error
	// Get loads the item with its media in order.
	Get(ctx context.Context, id uint) (*models.News, error)
	// Lock loads the item with its media and locks the row until the unit
	// of work ends.
	Lock(ctx context.Context, id uint) (*models.News, error)
	// List returns every item with its media, newest first.
	List(ctx context.Context) ([]models.News, error)
	// UpdateFields persists title, description, window and updated_at.
	UpdateFields(ctx context.Context, item *models.News) error
	AddMedia(ctx context.Context, media []models.NewsMedia) error
	Delete(ctx context.Context, id uint) error
}

type VisitorRepository interface {
	// Touch records a visit by the device. It reports whether the device
	// had never been seen before.
	Touch(ctx context.Context, token string, at time.Time) (bool, error)
	Count(ctx context.Context) (int64, error)
}
