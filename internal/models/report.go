package models

import "time"

// MediaKind classifies an attached file.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

func (k MediaKind) Valid() bool { return k == MediaImage || k == MediaVideo }

// Report is a geolocated incident submitted by a citizen.
type Report struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	PublicID     string          `gorm:"size:32;not null;uniqueIndex" json:"public_id"`
	CitizenEmail *string         `gorm:"size:255;index" json:"citizen_email"`
	Latitude     float64         `gorm:"not null;index:idx_reports_coords,priority:1" json:"latitude"`
	Longitude    float64         `gorm:"not null;index:idx_reports_coords,priority:2" json:"longitude"`
	Description  string          `gorm:"type:text;not null;default:''" json:"description"`
	Status       ReportStatus    `gorm:"size:20;not null;index" json:"status"`
	CreatedAt    time.Time       `gorm:"autoCreateTime:false;index" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime:false" json:"updated_at"`
	Media        []ReportMedia   `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE" json:"media"`
	Comments     []ReportComment `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE" json:"comments"`
}

// ReportMedia is a file attached by the citizen when reporting.
type ReportMedia struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ReportID   uint      `gorm:"not null;index" json:"-"`
	StorageKey string    `gorm:"size:255;not null" json:"storage_key"`
	Kind       MediaKind `gorm:"size:10;not null" json:"kind"`
	Order      int       `gorm:"column:sort_order;not null" json:"order"`
}

// ReportComment is a staff note on a report. Status transitions append
// one automatically.
type ReportComment struct {
	ID        uint                 `gorm:"primaryKey" json:"id"`
	ReportID  uint                 `gorm:"not null;index" json:"-"`
	Author    *string              `gorm:"size:120" json:"author"`
	Content   string               `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time            `gorm:"autoCreateTime:false" json:"created_at"`
	Media     []ReportCommentMedia `gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE" json:"media"`
}

// ReportCommentMedia is evidence attached to a comment.
type ReportCommentMedia struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CommentID  uint      `gorm:"not null;index" json:"-"`
	StorageKey string    `gorm:"size:255;not null" json:"storage_key"`
	Kind       MediaKind `gorm:"size:10;not null" json:"kind"`
	Order      int       `gorm:"column:sort_order;not null" json:"order"`
}

// MaxMediaOrder returns the highest order among the report's media, or 0.
func (r *Report) MaxMediaOrder() int {
	highest := 0
	for _, m := range r.Media {
		if m.Order > highest {
			highest = m.Order
		}
	}
	return highest
}
