package models

import "time"

// StaffUser is an operator allowed to triage reports.
type StaffUser struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"size:120;not null" json:"name"`
	Username     string     `gorm:"size:80;not null;uniqueIndex" json:"username"`
	PasswordHash string     `gorm:"not null" json:"-"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime:false" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime:false" json:"updated_at"`
}

func (StaffUser) TableName() string { return "system_users" }

// StaffSession holds the one active bearer token of a staff user. Only
// the sha256 of the token is stored.
type StaffSession struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	TokenHash string    `gorm:"size:64;not null;uniqueIndex" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime:false" json:"created_at"`
	User      StaffUser `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (StaffSession) TableName() string { return "staff_sessions" }
