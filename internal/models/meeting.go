package models

import "time"

// Meeting lifecycle. DRAFT exists for parity with the client type system but
// is never persisted: meetings are written already CONFIRMED.
const (
	MeetingDraft     = "DRAFT"
	MeetingConfirmed = "CONFIRMED"
	MeetingRevised   = "REVISED"
)

// FineAmounts is the allowed per-meeting fine enumeration (rupees).
var FineAmounts = []int64{20, 50}

// Meeting is one edition of a tracked meeting. Reopening bumps Version and
// Status on the same row; ParentMeetingID records the superseded edition, so
// "get by id" always returns the latest edition and history is reachable only
// by walking the parent chain.
type Meeting struct {
	ID              string    `gorm:"primaryKey;size:36"`
	Name            string    `gorm:"size:128;not null"`
	Timestamp       time.Time `gorm:"index;not null"` // date+time of the meeting
	FineAmount      int64     `gorm:"not null"`
	Status          string    `gorm:"size:16;index;not null"`
	Version         int       `gorm:"not null;default:1"`
	ParentMeetingID *string   `gorm:"size:36"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
