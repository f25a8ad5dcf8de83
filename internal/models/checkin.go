package models

import "time"

// CheckinModel is an immutable attendance event. Day is the local calendar
// date (YYYY-MM-DD) of CheckedInAt; the composite unique index on
// (user_id, day) makes recording a one-per-day conditional insert:
// concurrent attempts for the same user and day collapse to a single row
// at the storage layer.
type CheckinModel struct {
	Base
	UserID      string    `json:"user_id"       gorm:"not null;uniqueIndex:idx_checkins_user_day"`
	Day         string    `json:"-"             gorm:"type:char(10);not null;uniqueIndex:idx_checkins_user_day"`
	SessionID   string    `json:"session_id"    gorm:"index;not null"`
	CheckedInAt time.Time `json:"checked_in_at" gorm:"index;not null"`
}

func (CheckinModel) TableName() string { return "attendance_checkins" }
