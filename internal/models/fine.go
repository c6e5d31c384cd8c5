package models

// Fine is owed by a participant absent from a meeting. Amount is copied from
// the meeting's configured fine at confirmation time; IsPaid is mutable
// afterwards, independent of meeting revision state.
type Fine struct {
	ID            string `gorm:"primaryKey;size:36"`
	MeetingID     string `gorm:"size:36;index;not null"`
	ParticipantID string `gorm:"size:36;index;not null"`
	Amount        int64  `gorm:"not null"`
	IsPaid        bool   `gorm:"not null;default:false"`
}
