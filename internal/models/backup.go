package models

import "time"

// Backup is the metadata row for one encrypted full-data snapshot on disk.
type Backup struct {
	ID        uint   `gorm:"primaryKey"`
	FileName  string `gorm:"size:255;not null"`
	FilePath  string `gorm:"size:512;not null"`
	Size      int64
	CreatedBy string `gorm:"size:64"`
	CreatedAt time.Time
}
