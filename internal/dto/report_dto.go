package dto

import "time"

type StatusUpdateRequest struct {
	Status string `json:"status"`
}

type UpdateReportRequest struct {
	Description *string `json:"description"`
}

type MediaResponse struct {
	ID    uint   `json:"id"`
	URL   string `json:"url"`
	Kind  string `json:"media_type"`
	Order int    `json:"order"`
}

type CommentResponse struct {
	ID        uint            `json:"id"`
	Author    *string         `json:"author"`
	Content   string          `json:"content"`
	CreatedAt time.Time       `json:"created_at"`
	Media     []MediaResponse `json:"media"`
}

type ReportResponse struct {
	ID           uint              `json:"id"`
	PublicID     string            `json:"public_id"`
	CitizenEmail *string           `json:"citizen_email,omitempty"`
	Latitude     float64           `json:"latitude"`
	Longitude    float64           `json:"longitude"`
	Description  string            `json:"description"`
	Status       string            `json:"status"`
	StatusCode   string            `json:"status_code"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	Media        []MediaResponse   `json:"media"`
	Comments     []CommentResponse `json:"comments"`
	DistanceKm   *float64          `json:"distance_km,omitempty"`

	// Set when the change was saved but the citizen could not be emailed.
	NotificationFailed bool `json:"notification_failed,omitempty"`
}

type CommentCreatedResponse struct {
	CommentResponse
	NotificationFailed bool `json:"notification_failed,omitempty"`
}
