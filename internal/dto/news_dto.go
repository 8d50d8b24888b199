package dto

import "time"

type NewsResponse struct {
	ID          uint            `json:"id"`
	Title       string          `json:"title"`
	Description *string         `json:"description"`
	StartDate   *time.Time      `json:"start_date"`
	EndDate     *time.Time      `json:"end_date"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Media       []MediaResponse `json:"media"`
}

type VisitRequest struct {
	DeviceToken string `json:"device_token"`
}

type VisitResponse struct {
	IsNew bool `json:"is_new"`
}

type VisitCountResponse struct {
	Total int64 `json:"total"`
}
