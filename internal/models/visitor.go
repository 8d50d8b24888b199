package models

import "time"

// Visitor is a device that opened the public site, identified by a token
// the client generates and keeps.
type Visitor struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	DeviceToken string    `gorm:"size:255;not null;uniqueIndex" json:"device_token"`
	FirstSeenAt time.Time `gorm:"not null" json:"first_seen_at"`
	LastSeenAt  time.Time `gorm:"not null" json:"last_seen_at"`
}
