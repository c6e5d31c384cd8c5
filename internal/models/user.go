package models

import "time"

// Role tags drive capability checks: admins run the OCR-confirm cycle and all
// privileged operations, leaders see their own group only.
const (
	RoleAdmin  = "ADMIN"
	RoleLeader = "LEADER"
)

// User represents an application login.
type User struct {
	ID           uint    `gorm:"primaryKey"`
	Username     string  `gorm:"size:64;uniqueIndex;not null"`
	PasswordHash string  `gorm:"size:255;not null"`
	Role         string  `gorm:"size:16;not null;default:LEADER"`
	LeaderID     *string `gorm:"size:36;index"` // linked leader profile when Role == LEADER
	CreatedAt    time.Time
	UpdatedAt    time.Time

	FailedLoginAttempts int        `gorm:"default:0"`
	LockedUntil         *time.Time `gorm:"index"`
	LastLoginAt         *time.Time
	LastLoginIP         string `gorm:"size:64"`
}

// IsAdmin reports whether the user carries the admin capability.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
