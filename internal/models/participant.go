package models

import "time"

// Participant is a tracked community member with up to two alternate
// spellings used as OCR match candidates.
type Participant struct {
	ID              string `gorm:"primaryKey;size:36"`
	FullName        string `gorm:"size:128;not null"`
	AltName1        string `gorm:"size:128"`
	AltName2        string `gorm:"size:128"`
	Phone           string `gorm:"size:32"`
	CurrentLeaderID string `gorm:"size:36;index"` // soft reference; dangling -> "unassigned"
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Aliases returns the match candidate set: full name plus non-empty alternates.
func (p *Participant) Aliases() []string {
	out := make([]string, 0, 3)
	for _, n := range []string{p.FullName, p.AltName1, p.AltName2} {
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}
