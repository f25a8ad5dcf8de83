package checkin

import "time"

// CheckinRequest is the body of POST /checkins.
type CheckinRequest struct {
	Token string `json:"token" binding:"required"`
}

// CheckinDTO is the wire shape of a recorded attendance event.
type CheckinDTO struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	SessionID   string    `json:"session_id"`
	CheckedInAt time.Time `json:"checked_in_at"`
}

// RecordResult reports the outcome of a check-in attempt. Both a fresh
// insert and a same-day repeat are successes; AlreadyCheckedIn tells the
// caller which one happened.
type RecordResult struct {
	Success          bool       `json:"success"`
	Checkin          CheckinDTO `json:"checkin"`
	AlreadyCheckedIn bool       `json:"already_checked_in"`
}

// AdminCheckinDTO is the admin listing row, enriched with profile fields.
type AdminCheckinDTO struct {
	CheckinDTO
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}
