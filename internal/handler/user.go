package handler

import (
	"net/http"
	"strings"

	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/middleware"
	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/models"
	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UserHandler serves admin user management.
type UserHandler struct {
	DB             *gorm.DB
	MasterPassword string
}

func NewUserHandler(db *gorm.DB, masterPassword string) *UserHandler {
	return &UserHandler{DB: db, MasterPassword: masterPassword}
}

func (h *UserHandler) List(c *gin.Context) {
	var users []models.User
	if err := h.DB.Order("created_at ASC").Find(&users).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "list users failed")
		return
	}

	items := make([]gin.H, 0, len(users))
	for _, u := range users {
		items = append(items, gin.H{
			"id":            u.ID,
			"username":      u.Username,
			"role":          u.Role,
			"leader_id":     u.LeaderID,
			"created_at":    u.CreatedAt,
			"last_login_at": u.LastLoginAt,
		})
	}
	util.Success(c, util.Response{"users": items})
}

type deleteUserReq struct {
	MasterPassword string `json:"master_password" binding:"required"`
}

// Delete permanently removes a user account. Master-password gated;
// self-deletion is blocked.
func (h *UserHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	actor := middleware.CurrentUser(c)

	var req deleteUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}
	if !util.CheckSecret(strings.TrimSpace(req.MasterPassword), h.MasterPassword) {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "incorrect master password")
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", id).Error; err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "user not found")
		return
	}

	if user.ID == actor.ID {
		util.Error(c, http.StatusConflict, util.CodeConflict, "cannot delete your own account")
		return
	}

	if err := h.DB.Delete(&user).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "delete user failed")
		return
	}

	writeAudit(h.DB, actor.Username, "Account Deleted", "permanently removed user account "+user.Username)

	util.Success(c, util.Response{"deleted": user.ID})
}
