package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"

	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/middleware"
	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/models"
	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LeaderHandler serves leader profile CRUD and CSV bulk import.
type LeaderHandler struct {
	DB *gorm.DB
}

func NewLeaderHandler(db *gorm.DB) *LeaderHandler {
	return &LeaderHandler{DB: db}
}

type leaderReq struct {
	Name      string `json:"name" binding:"required"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	GroupName string `json:"group_name" binding:"required"`
}

func (h *LeaderHandler) Create(c *gin.Context) {
	var req leaderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}
	if err := util.ValidateFullName(req.Name); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	leader := models.Leader{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(req.Name),
		Phone:     req.Phone,
		Email:     req.Email,
		GroupName: strings.TrimSpace(req.GroupName),
	}
	if err := h.DB.Create(&leader).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "create leader failed")
		return
	}

	actor := middleware.CurrentUser(c)
	writeAudit(h.DB, actor.Username, "Leader Added",
		fmt.Sprintf("added leader %s for group %s", leader.Name, leader.GroupName))

	util.Success(c, util.Response{"leader": leader})
}

func (h *LeaderHandler) List(c *gin.Context) {
	var leaders []models.Leader
	if err := h.DB.Order("created_at ASC").Find(&leaders).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "list leaders failed")
		return
	}
	util.Success(c, util.Response{"leaders": leaders})
}

func (h *LeaderHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var leader models.Leader
	if err := h.DB.First(&leader, "id = ?", id).Error; err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "leader not found")
		return
	}

	var req leaderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}

	leader.Name = strings.TrimSpace(req.Name)
	leader.Phone = req.Phone
	leader.Email = req.Email
	leader.GroupName = strings.TrimSpace(req.GroupName)
	if err := h.DB.Save(&leader).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "update leader failed")
		return
	}

	util.Success(c, util.Response{"leader": leader})
}

type deleteLeaderReq struct {
	MasterPassword string `json:"master_password" binding:"required"`
}

// Delete hard-deletes a leader profile. Gated by the master password; owned
// participants keep their (now dangling) leader reference and render as
// unassigned.
func (h *LeaderHandler) Delete(masterPassword string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		var req deleteLeaderReq
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
			return
		}
		if !util.CheckSecret(strings.TrimSpace(req.MasterPassword), masterPassword) {
			util.Error(c, http.StatusForbidden, util.CodeForbidden, "incorrect master password")
			return
		}

		var leader models.Leader
		if err := h.DB.First(&leader, "id = ?", id).Error; err != nil {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "leader not found")
			return
		}

		if err := h.DB.Delete(&leader).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "delete leader failed")
			return
		}

		actor := middleware.CurrentUser(c)
		writeAudit(h.DB, actor.Username, "Leader Deleted", "hard deleted leader "+leader.Name)

		util.Success(c, util.Response{"deleted": leader.ID})
	}
}

// ImportCSV bulk-loads leaders from rows of `name,phone,email,groupName`.
// A header row is skipped when detected; blank lines are ignored.
func (h *LeaderHandler) ImportCSV(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "csv file missing")
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = 4

	records, err := reader.ReadAll()
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid csv: "+err.Error())
		return
	}

	created := 0
	for i, rec := range records {
		if i == 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "name") {
			continue
		}
		name := strings.TrimSpace(rec[0])
		if name == "" {
			continue
		}

		leader := models.Leader{
			ID:        uuid.New().String(),
			Name:      name,
			Phone:     strings.TrimSpace(rec[1]),
			Email:     strings.TrimSpace(rec[2]),
			GroupName: strings.TrimSpace(rec[3]),
		}
		if err := h.DB.Create(&leader).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr,
				fmt.Sprintf("create leader (row %d) failed", i+1))
			return
		}
		created++
	}

	actor := middleware.CurrentUser(c)
	writeAudit(h.DB, actor.Username, "Leaders Imported", fmt.Sprintf("imported %d leaders from csv", created))

	util.Success(c, util.Response{"imported": created})
}
