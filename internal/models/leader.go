package models

import "time"

// Leader owns a group of participants. Identity is the generated id assigned
// at creation; the display name is mutable and never used for lookups.
type Leader struct {
	ID        string `gorm:"primaryKey;size:36"`
	Name      string `gorm:"size:128;not null"`
	Phone     string `gorm:"size:32"`
	Email     string `gorm:"size:128"`
	GroupName string `gorm:"size:128;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
