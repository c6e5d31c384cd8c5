package handler

import (
	"fmt"
	"net/http"

	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/middleware"
	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/models"
	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// FineHandler serves fine listing and payment toggling.
type FineHandler struct {
	DB *gorm.DB
}

func NewFineHandler(db *gorm.DB) *FineHandler {
	return &FineHandler{DB: db}
}

// List returns fines, optionally filtered by ?meeting_id=. Leaders only see
// fines of their own group members.
func (h *FineHandler) List(c *gin.Context) {
	q := h.DB.Model(&models.Fine{})

	if meetingID := c.Query("meeting_id"); meetingID != "" {
		q = q.Where("meeting_id = ?", meetingID)
	}

	actor := middleware.CurrentUser(c)
	if actor != nil && !actor.IsAdmin() {
		if actor.LeaderID == nil {
			util.Success(c, util.Response{"fines": []models.Fine{}})
			return
		}
		q = q.Where("participant_id IN (?)",
			h.DB.Model(&models.Participant{}).Select("id").
				Where("current_leader_id = ?", *actor.LeaderID))
	}

	var fines []models.Fine
	if err := q.Find(&fines).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "list fines failed")
		return
	}
	util.Success(c, util.Response{"fines": fines})
}

// TogglePaid flips IsPaid on one fine. Leaders may only touch fines of their
// own group members; the flip is independent of the meeting's revision state.
func (h *FineHandler) TogglePaid(c *gin.Context) {
	id := c.Param("id")

	var fine models.Fine
	if err := h.DB.First(&fine, "id = ?", id).Error; err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "fine not found")
		return
	}

	actor := middleware.CurrentUser(c)
	if !actor.IsAdmin() {
		if actor.LeaderID == nil {
			util.Error(c, http.StatusForbidden, util.CodeForbidden, "no leader profile linked")
			return
		}
		var p models.Participant
		if err := h.DB.First(&p, "id = ?", fine.ParticipantID).Error; err != nil ||
			p.CurrentLeaderID != *actor.LeaderID {
			util.Error(c, http.StatusForbidden, util.CodeForbidden, "fine belongs to another group")
			return
		}
	}

	fine.IsPaid = !fine.IsPaid
	if err := h.DB.Save(&fine).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "update fine failed")
		return
	}

	state := "UNPAID"
	if fine.IsPaid {
		state = "PAID"
	}
	writeAudit(h.DB, actor.Username, "Fine Updated",
		fmt.Sprintf("marked fine for participant %s as %s", fine.ParticipantID, state))

	util.Success(c, util.Response{"fine": fine})
}
