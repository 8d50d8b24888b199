package handlers

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/dto"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/models"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/storage"
)

type presenter struct {
	storage storage.Storage
}

func (p presenter) url(ctx context.Context, key string) string {
	u, err := p.storage.URL(ctx, key)
	if err != nil {
		return ""
	}
	return u
}

func (p presenter) comment(ctx context.Context, c *models.ReportComment) dto.CommentResponse {
	out := dto.CommentResponse{
		ID:        c.ID,
		Author:    c.Author,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		Media:     make([]dto.MediaResponse, 0, len(c.Media)),
	}
	for _, m := range c.Media {
		out.Media = append(out.Media, dto.MediaResponse{
			ID: m.ID, URL: p.url(ctx, m.StorageKey), Kind: string(m.Kind), Order: m.Order,
		})
	}
	return out
}

// report renders a report. The citizen email is only shown to staff.
func (p presenter) report(ctx context.Context, r *models.Report, staff bool) dto.ReportResponse {
	out := dto.ReportResponse{
		ID:          r.ID,
		PublicID:    r.PublicID,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		Description: r.Description,
		Status:      r.Status.Label(),
		StatusCode:  string(r.Status),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		Media:       make([]dto.MediaResponse, 0, len(r.Media)),
		Comments:    make([]dto.CommentResponse, 0, len(r.Comments)),
	}
	if staff {
		out.CitizenEmail = r.CitizenEmail
	}
	for _, m := range r.Media {
		out.Media = append(out.Media, dto.MediaResponse{
			ID: m.ID, URL: p.url(ctx, m.StorageKey), Kind: string(m.Kind), Order: m.Order,
		})
	}
	for i := range r.Comments {
		out.Comments = append(out.Comments, p.comment(ctx, &r.Comments[i]))
	}
	return out
}

func (p presenter) news(ctx context.Context, n *models.News) dto.NewsResponse {
	out := dto.NewsResponse{
		ID:          n.ID,
		Title:       n.Title,
		Description: n.Description,
		StartDate:   n.StartsAt,
		EndDate:     n.EndsAt,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
		Media:       make([]dto.MediaResponse, 0, len(n.Media)),
	}
	for _, m := range n.Media {
		out.Media = append(out.Media, dto.MediaResponse{
			ID: m.ID, URL: p.url(ctx, m.StorageKey), Kind: string(m.Kind), Order: m.Order,
		})
	}
	return out
}
