package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/middleware"
	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/models"
	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BackupHandler writes and restores encrypted full-data snapshots. This is
// the stand-in for the drive-sync feature: one file carries every namespace,
// restore replaces them wholesale.
type BackupHandler struct {
	DB             *gorm.DB
	EncryptKey     string
	BackupDir      string
	MasterPassword string
}

func NewBackupHandler(db *gorm.DB, encryptKey, backupDir, masterPassword string) *BackupHandler {
	return &BackupHandler{
		DB:             db,
		EncryptKey:     encryptKey,
		BackupDir:      backupDir,
		MasterPassword: masterPassword,
	}
}

// backupData is the snapshot file content: every entity namespace in full.
type backupData struct {
	Created      time.Time            `json:"created"`
	Leaders      []models.Leader      `json:"leaders"`
	Participants []models.Participant `json:"participants"`
	Meetings     []models.Meeting     `json:"meetings"`
	Attendance   []models.Attendance  `json:"attendance"`
	Fines        []models.Fine        `json:"fines"`
	AuditLogs    []models.AuditLog    `json:"audit_logs"`
}

func (h *BackupHandler) snapshot() (*backupData, error) {
	data := &backupData{Created: time.Now()}

	if err := h.DB.Find(&data.Leaders).Error; err != nil {
		return nil, fmt.Errorf("snapshot leaders: %w", err)
	}
	if err := h.DB.Find(&data.Participants).Error; err != nil {
		return nil, fmt.Errorf("snapshot participants: %w", err)
	}
	if err := h.DB.Find(&data.Meetings).Error; err != nil {
		return nil, fmt.Errorf("snapshot meetings: %w", err)
	}
	if err := h.DB.Find(&data.Attendance).Error; err != nil {
		return nil, fmt.Errorf("snapshot attendance: %w", err)
	}
	if err := h.DB.Find(&data.Fines).Error; err != nil {
		return nil, fmt.Errorf("snapshot fines: %w", err)
	}
	if err := h.DB.Find(&data.AuditLogs).Error; err != nil {
		return nil, fmt.Errorf("snapshot audit logs: %w", err)
	}
	return data, nil
}

// Create writes a new encrypted snapshot file and records its metadata.
func (h *BackupHandler) Create(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	data, err := h.snapshot()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "snapshot failed")
		return
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "serialize failed")
		return
	}

	enc, err := util.EncryptAES(h.EncryptKey, raw)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "encrypt failed")
		return
	}

	if err := os.MkdirAll(h.BackupDir, 0o755); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "create backup dir failed")
		return
	}

	fileName := fmt.Sprintf("ady-backup-%s.bin", uuid.New().String())
	filePath := filepath.Join(h.BackupDir, fileName)

	if err := os.WriteFile(filePath, enc, 0o600); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "write backup file failed")
		return
	}

	info, _ := os.Stat(filePath)

	backup := models.Backup{
		FileName:  fileName,
		FilePath:  filePath,
		Size:      info.Size(),
		CreatedBy: actor.Username,
	}
	if err := h.DB.Create(&backup).Error; err != nil {
		_ = os.Remove(filePath)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "save backup record failed")
		return
	}

	writeAudit(h.DB, actor.Username, "Manual Sync", "wrote encrypted snapshot "+fileName)

	util.Success(c, util.Response{
		"backup": gin.H{
			"id":         backup.ID,
			"file_name":  backup.FileName,
			"size":       backup.Size,
			"created_at": backup.CreatedAt,
		},
	})
}

// List returns backup metadata, newest first.
func (h *BackupHandler) List(c *gin.Context) {
	var backups []models.Backup
	if err := h.DB.Order("created_at DESC").Find(&backups).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "list backups failed")
		return
	}
	util.Success(c, util.Response{"backups": backups})
}

// Download streams the raw encrypted snapshot file.
func (h *BackupHandler) Download(c *gin.Context) {
	id := c.Param("id")

	var backup models.Backup
	if err := h.DB.First(&backup, "id = ?", id).Error; err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "backup not found")
		return
	}

	c.FileAttachment(backup.FilePath, backup.FileName)
}

type restoreReq struct {
	MasterPassword string `json:"master_password" binding:"required"`
}

// Restore decrypts a snapshot and replaces every namespace wholesale, in one
// transaction. Master-password gated on top of the admin route gate.
func (h *BackupHandler) Restore(c *gin.Context) {
	id := c.Param("id")

	var req restoreReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}
	if !util.CheckSecret(strings.TrimSpace(req.MasterPassword), h.MasterPassword) {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "incorrect master password")
		return
	}

	var backup models.Backup
	if err := h.DB.First(&backup, "id = ?", id).Error; err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "backup not found")
		return
	}

	enc, err := os.ReadFile(backup.FilePath)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "read backup file failed")
		return
	}

	raw, err := util.DecryptAES(h.EncryptKey, enc)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "decrypt failed")
		return
	}

	var data backupData
	if err := json.Unmarshal(raw, &data); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "parse snapshot failed")
		return
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&models.Fine{}, &models.Attendance{}, &models.Meeting{},
			&models.Participant{}, &models.Leader{},
		} {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return err
			}
		}

		if len(data.Leaders) > 0 {
			if err := tx.Create(&data.Leaders).Error; err != nil {
				return err
			}
		}
		if len(data.Participants) > 0 {
			if err := tx.Create(&data.Participants).Error; err != nil {
				return err
			}
		}
		if len(data.Meetings) > 0 {
			if err := tx.Create(&data.Meetings).Error; err != nil {
				return err
			}
		}
		if len(data.Attendance) > 0 {
			if err := tx.Create(&data.Attendance).Error; err != nil {
				return err
			}
		}
		if len(data.Fines) > 0 {
			if err := tx.Create(&data.Fines).Error; err != nil {
				return err
			}
		}
		// snapshot audit logs are not restored: the live trail is
		// append-only and records only what happened on this instance
		return nil
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "restore failed")
		return
	}

	actor := middleware.CurrentUser(c)
	writeAudit(h.DB, actor.Username, "Storage Restored", "restored snapshot "+backup.FileName)

	util.Success(c, util.Response{"restored": backup.FileName})
}

// Delete removes a snapshot file and its metadata row.
func (h *BackupHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	var backup models.Backup
	if err := h.DB.First(&backup, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "backup not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query backup failed")
		}
		return
	}

	_ = os.Remove(backup.FilePath)
	if err := h.DB.Delete(&backup).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "delete backup failed")
		return
	}

	util.Success(c, util.Response{"deleted": backup.ID})
}
