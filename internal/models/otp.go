package models

import "time"

// OneTimeCode is the single live verification code for a normalized
// email address. Issuing a new code overwrites the row.
type OneTimeCode struct {
	Email     string    `gorm:"primaryKey;size:255" json:"email"`
	Code      string    `gorm:"size:6;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime:false" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}

func (OneTimeCode) TableName() string { return "email_otps" }
