package database

import (
	"fmt"

	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Leader{},
		&models.Participant{},
		&models.Meeting{},
		&models.Attendance{},
		&models.Fine{},
		&models.AuditLog{},
		&models.Backup{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
