package gormstore

import (
	"context"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type visitorRepository struct {
	db *gorm.DB
}

// Touch inserts the device and falls back to bumping last_seen_at when the
// token already exists, so concurrent first visits cannot both count.
func (r *visitorRepository) Touch(ctx context.Context, token string, at time.Time) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		v := models.Visitor{DeviceToken: token, FirstSeenAt: at, LastSeenAt: at}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "device_token"}},
			DoNothing: true,
		}).Create(&v)
		if res.Error != nil {
			return fmt.Errorf("insert visitor: %w", res.Error)
		}
		if res.RowsAffected == 1 {
			created = true
			return nil
		}
		if err := tx.Model(&models.Visitor{}).Where("device_token = ?", token).
			UpdateColumn("last_seen_at", at).Error; err != nil {
			return fmt.Errorf("touch visitor: %w", err)
		}
		return nil
	})
	return created, err
}

func (r *visitorRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Visitor{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count visitors: %w", err)
	}
	return n, nil
}
