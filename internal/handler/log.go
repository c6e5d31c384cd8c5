package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/middleware"
	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/models"
	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// LogHandler serves the audit trail (read-only: rows are never mutated).
type LogHandler struct {
	DB       *gorm.DB
	PageSize int
}

func NewLogHandler(db *gorm.DB, pageSize int) *LogHandler {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &LogHandler{DB: db, PageSize: pageSize}
}

type logResp struct {
	ID        uint      `json:"id"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	IP        string    `json:"ip"`
	CreatedAt time.Time `json:"created_at"`
}

// List pages through audit logs newest first. Admins may filter by ?actor=;
// leaders are pinned to their own actions.
func (h *LogHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)

	pageStr := c.DefaultQuery("page", "1")
	sizeStr := c.DefaultQuery("page_size", strconv.Itoa(h.PageSize))
	page, _ := strconv.Atoi(pageStr)
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(sizeStr)
	if size <= 0 || size > 100 {
		size = h.PageSize
	}
	offset := (page - 1) * size

	base := h.DB.Model(&models.AuditLog{})

	if user.IsAdmin() {
		if actor := strings.TrimSpace(c.Query("actor")); actor != "" {
			base = base.Where("actor = ?", actor)
		}
	} else {
		base = base.Where("actor = ?", user.Username)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	var logs []models.AuditLog
	if err := base.
		Order("created_at DESC, id DESC").
		Limit(size).
		Offset(offset).
		Find(&logs).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	items := make([]logResp, 0, len(logs))
	for _, l := range logs {
		items = append(items, logResp{
			ID:        l.ID,
			Actor:     l.Actor,
			Action:    l.Action,
			Details:   l.Details,
			IP:        l.IP,
			CreatedAt: l.CreatedAt,
		})
	}

	util.Success(c, util.Response{
		"items": items,
		"total": total,
		"page":  page,
		"size":  size,
	})
}
