package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/clock"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/models"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/store"
)

// NewsInput carries the fields of a news item. On update a nil
// Description keeps the current one, while StartsAt and EndsAt always
// replace the window. Media is appended.
type NewsInput struct {
	Title       string
	Description *string
	StartsAt    *time.Time
	EndsAt      *time.Time
	Media       []MediaInput
}

func (in NewsInput) validate() (string, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return "", validationError("title is required")
	}
	if in.StartsAt != nil && in.EndsAt != nil && in.EndsAt.Before(*in.StartsAt) {
		return "", validationError("end_date must not be before start_date")
	}
	return title, validateMedia(in.Media)
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func descriptionText(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

type NewsService struct {
	store store.Store
	clock clock.Clock
}

func NewNewsService(st store.Store, clk clock.Clock) *NewsService {
	return &NewsService{store: st, clock: clk}
}

func (s *NewsService) Create(ctx context.Context, in NewsInput) (*models.News, error) {
	title, err := in.validate()
	if err != nil {
		return nil, err
	}
	description := trimmedOrNil(in.Description)
	if err := requireContent(descriptionText(description), int64(len(in.Media))); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	item := &models.News{
		Title:       title,
		Description: description,
		StartsAt:    in.StartsAt,
		EndsAt:      in.EndsAt,
		CreatedAt:   now,
		UpdatedAt:   now,
		Media:       make([]models.NewsMedia, 0, len(in.Media)),
	}
	for i, m := range in.Media {
		item.Media = append(item.Media, models.NewsMedia{
			StorageKey: m.StorageKey,
			Kind:       m.Kind,
			Order:      i + 1,
		})
	}
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx store.Store) error {
		return tx.News().Create(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *NewsService) Update(ctx context.Context, id uint, in NewsInput) (*models.News, error) {
	title, err := in.validate()
	if err != nil {
		return nil, err
	}
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx store.Store) error {
		item, err := tx.News().Lock(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return ErrNewsNotFound
		}
		if err != nil {
			return err
		}
		item.Title = title
		if in.Description != nil {
			item.Description = trimmedOrNil(in.Description)
		}
		item.StartsAt, item.EndsAt = in.StartsAt, in.EndsAt
		if err := requireContent(descriptionText(item.Description), int64(len(item.Media)+len(in.Media))); err != nil {
			return err
		}

		next := item.MaxMediaOrder()
		media := make([]models.NewsMedia, len(in.Media))
		for i, m := range in.Media {
			media[i] = models.NewsMedia{
				NewsID:     item.ID,
				StorageKey: m.StorageKey,
				Kind:       m.Kind,
				Order:      next + i + 1,
			}
		}
		if err := tx.News().AddMedia(ctx, media); err != nil {
			return err
		}
		item.UpdatedAt = s.clock.Now()
		return tx.News().UpdateFields(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id, false)
}

// Get loads one item. With onlyActive set, an item outside its window is
// reported as missing.
func (s *NewsService) Get(ctx context.Context, id uint, onlyActive bool) (*models.News, error) {
	item, err := s.store.News().Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNewsNotFound
	}
	if err != nil {
		return nil, err
	}
	if onlyActive && !item.ActiveAt(s.clock.Now()) {
		return nil, ErrNewsNotFound
	}
	return item, nil
}

// List returns items newest first, optionally only those currently active.
func (s *NewsService) List(ctx context.Context, onlyActive bool) ([]models.News, error) {
	items, err := s.store.News().List(ctx)
	if err != nil {
		return nil, err
	}
	if !onlyActive {
		return items, nil
	}
	now := s.clock.Now()
	active := items[:0]
	for _, n := range items {
		if n.ActiveAt(now) {
			active = append(active, n)
		}
	}
	return active, nil
}

// Delete removes the item and returns it so stored files can be discarded.
func (s *NewsService) Delete(ctx context.Context, id uint) (*models.News, error) {
	var removed *models.News
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx store.Store) error {
		item, err := tx.News().Lock(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return ErrNewsNotFound
		}
		if err != nil {
			return err
		}
		removed = item
		return tx.News().Delete(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}
