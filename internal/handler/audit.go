package handler

import (
	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/models"

	"gorm.io/gorm"
)

// writeAudit appends a named domain action to the audit trail. Audit failure
// never fails the operation being audited.
func writeAudit(db *gorm.DB, actor, action, details string) {
	log := models.AuditLog{
		Actor:   actor,
		Action:  action,
		Details: details,
	}
	_ = db.Create(&log).Error
}
