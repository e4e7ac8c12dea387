package models

import "time"

// SecurityEventModel represents the database persistence model for security events.
type SecurityEventModel struct {
	ID        uint      `gorm:"primarykey"`
	UserID    string    `gorm:"not null;index;size:64"`
	EventType string    `gorm:"not null;size:50;index"`
	Metadata  string    `gorm:"type:text"` // JSON-encoded key/value pairs
	CreatedAt time.Time `gorm:"not null;index"`
}

// TableName specifies the table name for GORM
func (SecurityEventModel) TableName() string {
	return "security_events"
}

// DeviceFingerprintModel represents the database persistence model for device fingerprints.
type DeviceFingerprintModel struct {
	DeviceID  string `gorm:"primarykey;size:64"`
	UserID    string `gorm:"not null;index;size:64"`
	Screen    string `gorm:"size:20"`
	Timezone  string `gorm:"size:64"`
	Language  string `gorm:"size:16"`
	Platform  string `gorm:"size:50"`
	FirstSeen time.Time
	LastSeen  time.Time
}

// TableName specifies the table name for GORM
func (DeviceFingerprintModel) TableName() string {
	return "device_fingerprints"
}
