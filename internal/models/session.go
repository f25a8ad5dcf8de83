package models

import "time"

// SessionModel is a minted check-in credential. Sessions are immutable and
// never deleted: historical check-ins reference them.
type SessionModel struct {
	Base
	Token     string    `json:"token"      gorm:"uniqueIndex;not null"`
	CreatedBy string    `json:"created_by" gorm:"index;not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index;not null"`
}

func (SessionModel) TableName() string { return "attendance_sessions" }
