package gormstore

import (
	"context"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/models"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/store"
	"gorm.io/gorm"
)

type newsRepository struct {
	db *gorm.DB
}

func (r *newsRepository) withMedia(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Media", byOrder)
}

func (r *newsRepository) Create(ctx context.Context, item *models.News) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("create news: %w", err)
	}
	return nil
}

func (r *newsRepository) Get(ctx context.Context, id uint) (*models.News, error) {
	var item models.News
	if err := r.withMedia(ctx).First(&item, id).Error; err != nil {
		return nil, notFound(err, "get news")
	}
	return &item, nil
}

func (r *newsRepository) Lock(ctx context.Context, id uint) (*models.News, error) {
	var item models.News
	if err := r.withMedia(ctx).Clauses(forUpdate).First(&item, id).Error; err != nil {
		return nil, notFound(err, "lock news")
	}
	return &item, nil
}

func (r *newsRepository) List(ctx context.Context) ([]models.News, error) {
	var items []models.News
	if err := r.withMedia(ctx).Order("created_at DESC, id DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}
	return items, nil
}

func (r *newsRepository) UpdateFields(ctx context.Context, item *models.News) error {
	res := r.db.WithContext(ctx).Model(&models.News{}).Where("id = ?", item.ID).
		UpdateColumns(map[string]interface{}{
			"title":       item.Title,
			"description": item.Description,
			"starts_at":   item.StartsAt,
			"ends_at":     item.EndsAt,
			"updated_at":  item.UpdatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("update news: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *newsRepository) AddMedia(ctx context.Context, media []models.NewsMedia) error {
	if len(media) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&media).Error; err != nil {
		return fmt.Errorf("add news media: %w", err)
	}
	return nil
}

func (r *newsRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("news_id = ?", id).Delete(&models.NewsMedia{}).Error; err != nil {
			return fmt.Errorf("delete news media: %w", err)
		}
		res := tx.Delete(&models.News{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete news: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}
