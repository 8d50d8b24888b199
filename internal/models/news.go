package models

import "time"

// News is an announcement published by staff. StartsAt and EndsAt bound
// the window in which it is shown; either may be open.
type News struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Title       string      `gorm:"size:200;not null" json:"title"`
	Description *string     `gorm:"type:text" json:"description"`
	StartsAt    *time.Time  `gorm:"index" json:"starts_at"`
	EndsAt      *time.Time  `gorm:"index" json:"ends_at"`
	CreatedAt   time.Time   `gorm:"autoCreateTime:false;index" json:"created_at"`
	UpdatedAt   time.Time   `gorm:"autoUpdateTime:false" json:"updated_at"`
	Media       []NewsMedia `gorm:"foreignKey:NewsID;constraint:OnDelete:CASCADE" json:"media"`
}

func (News) TableName() string { return "news" }

type NewsMedia struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	NewsID     uint      `gorm:"not null;index" json:"-"`
	StorageKey string    `gorm:"size:255;not null" json:"storage_key"`
	Kind       MediaKind `gorm:"size:10;not null" json:"kind"`
	Order      int       `gorm:"column:sort_order;not null" json:"order"`
}

// ActiveAt reports whether t falls inside the publication window. Both
// bounds are inclusive.
func (n *News) ActiveAt(t time.Time) bool {
	if n.StartsAt != nil && t.Before(*n.StartsAt) {
		return false
	}
	if n.EndsAt != nil && t.After(*n.EndsAt) {
		return false
	}
	return true
}

func (n *News) MaxMediaOrder() int {
	highest := 0
	for _, m := range n.Media {
		if m.Order > highest {
			highest = m.Order
		}
	}
	return highest
}
