package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/models"
	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/util"
)

func backupTestRouter(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	db, err := gorm.Open(sqlite.Open(filepath.Join(dir, "backup_test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Leader{}, &models.Participant{},
		&models.Meeting{}, &models.Attendance{}, &models.Fine{},
		&models.AuditLog{}, &models.Backup{},
	))

	digest, err := util.HashSecret("open-sesame")
	require.NoError(t, err)
	h := NewBackupHandler(db, "test-backup-key", filepath.Join(dir, "backups"), digest)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("currentUser", &models.User{ID: 1, Username: "admin", Role: models.RoleAdmin})
	})
	r.POST("/backups", h.Create)
	r.POST("/backups/:id/restore", h.Restore)

	return db, r
}

func restoreBody(password string) *strings.Reader {
	return strings.NewReader(fmt.Sprintf(`{"master_password":%q}`, password))
}

func TestRestore_ReplacesNamespacesKeepsAuditTrail(t *testing.T) {
	db, r := backupTestRouter(t)

	require.NoError(t, db.Create(&models.Leader{ID: "l1", Name: "Ravi Kumar", GroupName: "South"}).Error)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/backups", nil))
	require.Equal(t, http.StatusOK, w.Code)

	// state drifts after the snapshot
	require.NoError(t, db.Create(&models.Leader{ID: "l2", Name: "Sita Sharma", GroupName: "North"}).Error)
	require.NoError(t, db.Create(&models.AuditLog{Actor: "admin", Action: "Leader Added", Details: "added Sita Sharma"}).Error)

	var before int64
	require.NoError(t, db.Model(&models.AuditLog{}).Count(&before).Error)

	var backup models.Backup
	require.NoError(t, db.First(&backup).Error)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/backups/%d/restore", backup.ID), restoreBody("open-sesame"))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// entity namespaces roll back to snapshot state
	var leaders []models.Leader
	require.NoError(t, db.Find(&leaders).Error)
	require.Len(t, leaders, 1)
	require.Equal(t, "l1", leaders[0].ID)

	// the live trail is untouched by the rollback; restore appends its own row
	var after int64
	require.NoError(t, db.Model(&models.AuditLog{}).Count(&after).Error)
	require.Equal(t, before+1, after)
}

func TestRestore_RejectsWrongMasterPassword(t *testing.T) {
	db, r := backupTestRouter(t)

	require.NoError(t, db.Create(&models.Leader{ID: "l1", Name: "Ravi Kumar", GroupName: "South"}).Error)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/backups", nil))
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, db.Create(&models.Leader{ID: "l2", Name: "Sita Sharma", GroupName: "North"}).Error)

	var backup models.Backup
	require.NoError(t, db.First(&backup).Error)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/backups/%d/restore", backup.ID), restoreBody("wrong"))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.Leader{}).Count(&count).Error)
	require.Equal(t, int64(2), count)
}
