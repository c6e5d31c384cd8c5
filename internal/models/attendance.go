package models

// Attendance verdict statuses.
const (
	StatusPresent     = "PRESENT"
	StatusAbsent      = "ABSENT"
	StatusNeedsReview = "NEEDS_REVIEW"
)

// Attendance is the verdict for one (meeting, participant) pair. A confirm or
// recompute replaces the whole batch for a meeting id, so at most one row per
// pair is ever authoritative.
type Attendance struct {
	ID               string `gorm:"primaryKey;size:36"`
	MeetingID        string `gorm:"size:36;index;not null"`
	ParticipantID    string `gorm:"size:36;index;not null"`
	Status           string `gorm:"size:16;not null"`
	ConfidenceScore  int    `gorm:"not null"` // 0-100
	IsManualOverride bool   `gorm:"not null;default:false"`
}
