package gormstore

import (
	"context"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/models"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/store"
	"gorm.io/gorm"
)

type reportRepository struct {
	db *gorm.DB
}

func byOrder(db *gorm.DB) *gorm.DB   { return db.Order("sort_order ASC, id ASC") }
func byCreated(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }

func (r *reportRepository) withChildren(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Media", byOrder).
		Preload("Comments", byCreated).
		Preload("Comments.Media", byOrder)
}

func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	return nil
}

func (r *reportRepository) GetByPublicID(ctx context.Context, publicID string) (*models.Report, error) {
	var report models.Report
	if err := r.withChildren(ctx).Where("public_id = ?", publicID).First(&report).Error; err != nil {
		return nil, notFound(err, "get report")
	}
	return &report, nil
}

func (r *reportRepository) LockByPublicID(ctx context.Context, publicID string) (*models.Report, error) {
	var report models.Report
	if err := r.db.WithContext(ctx).Clauses(forUpdate).
		Where("public_id = ?", publicID).First(&report).Error; err != nil {
		return nil, notFound(err, "lock report")
	}
	return &report, nil
}

func (r *reportRepository) List(ctx context.Context, filter store.ReportFilter) ([]models.Report, error) {
	q := r.withChildren(ctx)
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if b := filter.Bounds; b != nil {
		q = q.Where("latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?",
			b.MinLat, b.MaxLat, b.MinLng, b.MaxLng)
	}
	if filter.ByID {
		q = q.Order("id ASC")
	} else {
		q = q.Order("created_at DESC, id DESC")
	}

	var reports []models.Report
	if err := q.Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

func (r *reportRepository) UpdateFields(ctx context.Context, report *models.Report) error {
	res := r.db.WithContext(ctx).Model(&models.Report{}).Where("id = ?", report.ID).
		UpdateColumns(map[string]interface{}{
			"description": report.Description,
			"status":      report.Status,
			"updated_at":  report.UpdatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("update report: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *reportRepository) MaxMediaOrder(ctx context.Context, reportID uint) (int, error) {
	var highest int
	err := r.db.WithContext(ctx).Model(&models.ReportMedia{}).
		Where("report_id = ?", reportID).
		Select("COALESCE(MAX(sort_order), 0)").
		Scan(&highest).Error
	if err != nil {
		return 0, fmt.Errorf("max media order: %w", err)
	}
	return highest, nil
}

func (r *reportRepository) CountMedia(ctx context.Context, reportID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.ReportMedia{}).
		Where("report_id = ?", reportID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count media: %w", err)
	}
	return n, nil
}

func (r *reportRepository) AddMedia(ctx context.Context, media []models.ReportMedia) error {
	if len(media) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&media).Error; err != nil {
		return fmt.Errorf("add media: %w", err)
	}
	return nil
}

func (r *reportRepository) AddComment(ctx context.Context, comment *models.ReportComment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return fmt.Errorf("add comment: %w", err)
	}
	return nil
}

// Delete removes children explicitly so the result does not depend on the
// schema having ON DELETE CASCADE.
func (r *reportRepository) Delete(ctx context.Context, reportID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		comments := tx.Model(&models.ReportComment{}).Select("id").Where("report_id = ?", reportID)
		if err := tx.Where("comment_id IN (?)", comments).Delete(&models.ReportCommentMedia{}).Error; err != nil {
			return fmt.Errorf("delete comment media: %w", err)
		}
		if err := tx.Where("report_id = ?", reportID).Delete(&models.ReportComment{}).Error; err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}
		if err := tx.Where("report_id = ?", reportID).Delete(&models.ReportMedia{}).Error; err != nil {
			return fmt.Errorf("delete media: %w", err)
		}
		res := tx.Delete(&models.Report{}, reportID)
		if res.Error != nil {
			return fmt.Errorf("delete report: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}
