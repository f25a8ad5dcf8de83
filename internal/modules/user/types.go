package user

import "time"

// UpdateProfileRequest is the body of POST /users/me.
type UpdateProfileRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email"`
}

// ProfileDTO is the wire shape of an attendance profile.
type ProfileDTO struct {
	UserID    string    `json:"user_id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NameChangeDTO is an audit row in the admin name-change listing.
type NameChangeDTO struct {
	UserID       string    `json:"user_id"`
	PreviousName *string   `json:"previous_name"`
	NewName      string    `json:"new_name"`
	IPAddress    string    `json:"ip_address"`
	UserAgent    string    `json:"user_agent"`
	CreatedAt    time.Time `json:"created_at"`
}
