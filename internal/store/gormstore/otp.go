package gormstore

import (
	"context"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/models"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/store"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type otpRepository struct {
	db *gorm.DB
}

func (r *otpRepository) Upsert(ctx context.Context, code *models.OneTimeCode) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "expires_at", "updated_at"}),
	}).Create(code).Error
	if err != nil {
		return fmt.Errorf("upsert otp: %w", err)
	}
	return nil
}

func (r *otpRepository) GetForUpdate(ctx context.Context, email string) (*models.OneTimeCode, error) {
	var code models.OneTimeCode
	if err := r.db.WithContext(ctx).Clauses(forUpdate).
		Where("email = ?", email).First(&code).Error; err != nil {
		return nil, notFound(err, "get otp")
	}
	return &code, nil
}

func (r *otpRepository) Delete(ctx context.Context, email string) error {
	res := r.db.WithContext(ctx).Where("email = ?", email).Delete(&models.OneTimeCode{})
	if res.Error != nil {
		return fmt.Errorf("delete otp: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
