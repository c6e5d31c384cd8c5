package models

import "time"

// AuditLog is an append-only record of operator actions. Rows are never
// mutated or deleted; listing is timestamp-ordered and actor-filterable.
type AuditLog struct {
	ID        uint   `gorm:"primaryKey"`
	Actor     string `gorm:"size:64;index;not null"`
	Action    string `gorm:"size:128;not null"`
	Details   string `gorm:"size:1024"`
	IP        string `gorm:"size:64"`
	CreatedAt time.Time
}
