package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/middleware"
	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/models"
	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ParticipantHandler serves participant CRUD and CSV bulk import.
type ParticipantHandler struct {
	DB               *gorm.DB
	MasterPassword   string
	DeletionLockDays int
}

func NewParticipantHandler(db *gorm.DB, masterPassword string, deletionLockDays int) *ParticipantHandler {
	if deletionLockDays <= 0 {
		deletionLockDays = 60
	}
	return &ParticipantHandler{
		DB:               db,
		MasterPassword:   masterPassword,
		DeletionLockDays: deletionLockDays,
	}
}

type participantReq struct {
	FullName        string `json:"full_name" binding:"required"`
	AltName1        string `json:"alt_name1"`
	AltName2        string `json:"alt_name2"`
	Phone           string `json:"phone"`
	CurrentLeaderID string `json:"current_leader_id" binding:"required"`
}

func (h *ParticipantHandler) Create(c *gin.Context) {
	var req participantReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}
	if err := util.ValidateFullName(req.FullName); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	p := models.Participant{
		ID:              uuid.New().String(),
		FullName:        strings.TrimSpace(req.FullName),
		AltName1:        strings.TrimSpace(req.AltName1),
		AltName2:        strings.TrimSpace(req.AltName2),
		Phone:           req.Phone,
		CurrentLeaderID: req.CurrentLeaderID,
	}
	if err := h.DB.Create(&p).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "create participant failed")
		return
	}

	actor := middleware.CurrentUser(c)
	writeAudit(h.DB, actor.Username, "Participant Added", "added "+p.FullName)

	util.Success(c, util.Response{"participant": p})
}

func (h *ParticipantHandler) List(c *gin.Context) {
	q := h.DB.Order("created_at ASC")

	// leaders only see their own group
	actor := middleware.CurrentUser(c)
	if actor != nil && !actor.IsAdmin() {
		if actor.LeaderID == nil {
			util.Success(c, util.Response{"participants": []models.Participant{}})
			return
		}
		q = q.Where("current_leader_id = ?", *actor.LeaderID)
	}

	var participants []models.Participant
	if err := q.Find(&participants).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "list participants failed")
		return
	}
	util.Success(c, util.Response{"participants": participants})
}

func (h *ParticipantHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var p models.Participant
	if err := h.DB.First(&p, "id = ?", id).Error; err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "participant not found")
		return
	}

	var req participantReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}
	if err := util.ValidateFullName(req.FullName); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	p.FullName = strings.TrimSpace(req.FullName)
	p.AltName1 = strings.TrimSpace(req.AltName1)
	p.AltName2 = strings.TrimSpace(req.AltName2)
	p.Phone = req.Phone
	p.CurrentLeaderID = req.CurrentLeaderID
	if err := h.DB.Save(&p).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "update participant failed")
		return
	}

	util.Success(c, util.Response{"participant": p})
}

type deleteParticipantReq struct {
	MasterPassword string `json:"master_password" binding:"required"`
}

// Delete hard-deletes a participant. Blocked inside the deletion cool-down
// window from creation, and gated by the master password after that.
func (h *ParticipantHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	var req deleteParticipantReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}

	var p models.Participant
	if err := h.DB.First(&p, "id = ?", id).Error; err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "participant not found")
		return
	}

	lock := time.Duration(h.DeletionLockDays) * 24 * time.Hour
	if time.Since(p.CreatedAt) < lock {
		util.Error(c, http.StatusConflict, util.CodeConflict,
			fmt.Sprintf("deletion blocked: participants cannot be deleted within the first %d days", h.DeletionLockDays))
		return
	}

	if !util.CheckSecret(strings.TrimSpace(req.MasterPassword), h.MasterPassword) {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "incorrect master password")
		return
	}

	if err := h.DB.Delete(&p).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "delete participant failed")
		return
	}

	actor := middleware.CurrentUser(c)
	writeAudit(h.DB, actor.Username, "Participant Deleted", "hard deleted "+p.FullName)

	util.Success(c, util.Response{"deleted": p.ID})
}

// ImportCSV bulk-loads participants from rows of
// `fullName,altName1,altName2,phone,leaderName`. The leader name is resolved
// to its stable id once, here; unknown leader names fail the row's import.
func (h *ParticipantHandler) ImportCSV(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "csv file missing")
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = 5

	records, err := reader.ReadAll()
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid csv: "+err.Error())
		return
	}

	var leaders []models.Leader
	if err := h.DB.Find(&leaders).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "list leaders failed")
		return
	}
	leaderByName := make(map[string]string, len(leaders))
	for _, l := range leaders {
		leaderByName[strings.ToLower(l.Name)] = l.ID
	}

	created := 0
	for i, rec := range records {
		if i == 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "fullname") {
			continue
		}
		fullName := strings.TrimSpace(rec[0])
		if fullName == "" {
			continue
		}

		leaderName := strings.TrimSpace(rec[4])
		leaderID, ok := leaderByName[strings.ToLower(leaderName)]
		if !ok {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam,
				fmt.Sprintf("unknown leader %q (row %d)", leaderName, i+1))
			return
		}

		p := models.Participant{
			ID:              uuid.New().String(),
			FullName:        fullName,
			AltName1:        strings.TrimSpace(rec[1]),
			AltName2:        strings.TrimSpace(rec[2]),
			Phone:           strings.TrimSpace(rec[3]),
			CurrentLeaderID: leaderID,
		}
		if err := h.DB.Create(&p).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr,
				fmt.Sprintf("create participant (row %d) failed", i+1))
			return
		}
		created++
	}

	actor := middleware.CurrentUser(c)
	writeAudit(h.DB, actor.Username, "Participants Imported", fmt.Sprintf("imported %d participants from csv", created))

	util.Success(c, util.Response{"imported": created})
}
