package handler

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/models"
	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler serves login and master-password-gated registration.
type AuthHandler struct {
	DB             *gorm.DB
	JWTSecret      string
	TokenTTL       time.Duration
	BcryptCost     int
	MasterPassword string // pbkdf2 digest, see util.CheckSecret
}

func NewAuthHandler(db *gorm.DB, jwtSecret string, ttlHours, bcryptCost int, masterPassword string) *AuthHandler {
	if ttlHours <= 0 {
		ttlHours = 24
	}
	if bcryptCost <= 0 {
		bcryptCost = 12
	}
	return &AuthHandler{
		DB:             db,
		JWTSecret:      jwtSecret,
		TokenTTL:       time.Duration(ttlHours) * time.Hour,
		BcryptCost:     bcryptCost,
		MasterPassword: masterPassword,
	}
}

// ---------- register ----------

type registerReq struct {
	Username       string `json:"username" binding:"required"`
	Password       string `json:"password" binding:"required"`
	Role           string `json:"role" binding:"required,oneof=ADMIN LEADER"`
	LeaderID       string `json:"leader_id"` // optional link to a leader profile
	MasterPassword string `json:"master_password" binding:"required"`
}

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_ ]{3,40}$`)

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if !usernameRe.MatchString(req.Username) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "username must be 3-40 letters, digits, spaces or underscores")
		return
	}

	// registration is a privileged operation gated by the shared master password
	if !util.CheckSecret(strings.TrimSpace(req.MasterPassword), h.MasterPassword) {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "incorrect master password")
		return
	}

	if len(req.Password) < 1 || len(req.Password) > 64 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "password must be 1-64 characters")
		return
	}

	// case-insensitive unique username
	var count int64
	if err := h.DB.Model(&models.User{}).
		Where("LOWER(username) = LOWER(?)", req.Username).
		Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query user failed")
		return
	}
	if count > 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "username already exists")
		return
	}

	var leaderID *string
	if req.Role == models.RoleLeader && req.LeaderID != "" {
		var leader models.Leader
		if err := h.DB.First(&leader, "id = ?", req.LeaderID).Error; err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "leader profile not found")
			return
		}
		leaderID = &leader.ID
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.BcryptCost)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "hash password failed")
		return
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         req.Role,
		LeaderID:     leaderID,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "create user failed")
		return
	}

	writeAudit(h.DB, "SYSTEM", "User Created", "user "+user.Username+" registered as "+user.Role)

	util.Success(c, util.Response{
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"role":     user.Role,
		},
	})
}

// ---------- login ----------

type loginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}

	req.Username = strings.TrimSpace(req.Username)

	var user models.User
	if err := h.DB.Where("LOWER(username) = LOWER(?)", req.Username).
		First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "invalid username or password")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query user failed")
		}
		return
	}

	now := time.Now()

	if user.LockedUntil != nil && now.Before(*user.LockedUntil) {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "account locked, try again later")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		// wrong password: 5 consecutive failures lock the account for 10 minutes
		user.FailedLoginAttempts++
		if user.FailedLoginAttempts >= 5 {
			lockUntil := now.Add(10 * time.Minute)
			user.LockedUntil = &lockUntil
			user.FailedLoginAttempts = 0
		}
		_ = h.DB.Save(&user).Error
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "invalid username or password")
		return
	}

	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.LastLoginIP = c.ClientIP()
	user.LastLoginAt = &now
	_ = h.DB.Save(&user).Error

	leaderID := ""
	if user.LeaderID != nil {
		leaderID = *user.LeaderID
	}
	token, err := util.GenerateToken(h.JWTSecret, user.ID, user.Role, leaderID, h.TokenTTL)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "generate token failed")
		return
	}

	util.Success(c, util.Response{
		"token": token,
		"user": gin.H{
			"id":        user.ID,
			"username":  user.Username,
			"role":      user.Role,
			"leader_id": user.LeaderID,
		},
	})
}

// GetMe returns the authenticated user.
func GetMe(c *gin.Context) {
	v, ok := c.Get("currentUser")
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}
	user, ok := v.(*models.User)
	if !ok || user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	util.Success(c, util.Response{
		"user": gin.H{
			"id":        user.ID,
			"username":  user.Username,
			"role":      user.Role,
			"leader_id": user.LeaderID,
		},
	})
}
