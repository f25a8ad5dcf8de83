package models

// Roles understood by the role gate. Unknown principals default to attendee.
const (
	RoleAdmin    = "admin"
	RoleAttendee = "attendee"
)

// UserModel is an attendance profile. UserID is the stable principal id
// issued by the identity provider; it is distinct from the row ID.
// Email is nullable because lazily created profiles may not carry one;
// when present it is unique, and the index is what makes registration's
// duplicate check race-free.
type UserModel struct {
	Base
	UserID   string  `json:"user_id"   gorm:"uniqueIndex;not null"`
	FullName string  `json:"full_name" gorm:"not null"`
	Email    *string `json:"email"     gorm:"uniqueIndex"`
	Role     string  `json:"role"      gorm:"not null;default:attendee"`
	Password string  `json:"-"`
}

func (UserModel) TableName() string { return "attendance_users" }

// NameChangeLog records every display-name change for audit purposes.
type NameChangeLog struct {
	Base
	UserID       string  `json:"user_id"       gorm:"index;not null"`
	PreviousName *string `json:"previous_name"`
	NewName      string  `json:"new_name"      gorm:"not null"`
	IPAddress    string  `json:"ip_address"`
	UserAgent    string  `json:"user_agent"    gorm:"type:text"`
}

func (NameChangeLog) TableName() string { return "attendance_name_change_logs" }
