package models

import "time"

// SessionModel represents the database persistence model for sessions.
type SessionModel struct {
	ID                 string    `gorm:"primarykey;size:64"`
	UserID             string    `gorm:"not null;index;size:64"`
	DeviceID           string    `gorm:"index;size:64"`
	IPAddress          string    `gorm:"size:45"`
	UserAgent          string    `gorm:"size:512"`
	Browser            string    `gorm:"size:50"`
	OS                 string    `gorm:"size:50"`
	DeviceClass        string    `gorm:"size:20"`
	IsMobile           bool      `gorm:"not null;default:false"`
	LocationCity       string    `gorm:"size:100"`
	LocationRegion     string    `gorm:"size:100"`
	LocationCountry    string    `gorm:"size:100"`
	IsSecure           bool      `gorm:"not null;default:false"`
	IsTrusted          bool      `gorm:"not null;default:false"`
	RequiresReauth     bool      `gorm:"not null;default:false"`
	SuspiciousActivity bool      `gorm:"not null;default:false"`
	IsActive           bool      `gorm:"not null;default:true;index"`
	ExpiresAt          time.Time `gorm:"not null;index"`
	LastActivityAt     time.Time `gorm:"not null"`
	CreatedAt          time.Time
}

// TableName specifies the table name for GORM
func (SessionModel) TableName() string {
	return "sessions"
}
