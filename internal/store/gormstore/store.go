// Package gormstore implements store.Store on top of gorm and PostgreSQL.
package gormstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/store"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) OTPs() store.OTPRepository         { return &otpRepository{db: s.db} }
func (s *Store) Users() store.UserRepository       { return &userRepository{db: s.db} }
func (s *Store) Sessions() store.SessionRepository { return &sessionRepository{db: s.db} }
func (s *Store) Reports() store.ReportRepository   { return &reportRepository{db: s.db} }
func (s *Store) News() store.NewsRepository        { return &newsRepository{db: s.db} }
func (s *Store) Visitors() store.VisitorRepository { return &visitorRepository{db: s.db} }

// WithinTx opens a transaction, or a savepoint when s is already bound
// to one.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &Store{db: tx})
	})
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

var forUpdate = clause.Locking{Strength: "UPDATE"}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	return fmt.Errorf("%s: %w", what, err)
}
