package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/ledger"
	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/middleware"
	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/models"
	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/report"
	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ReportHandler produces per-leader notification payloads for a meeting. The
// contract ends at string production: the compose URLs point the operator at
// their own mail/chat session, nothing is sent from here.
type ReportHandler struct {
	DB       *gorm.DB
	Ledger   *ledger.Service
	Composer *report.Composer
}

func NewReportHandler(db *gorm.DB, ledgerSvc *ledger.Service, composer *report.Composer) *ReportHandler {
	return &ReportHandler{DB: db, Ledger: ledgerSvc, Composer: composer}
}

type leaderReport struct {
	Leader      models.Leader `json:"leader"`
	TotalFines  int64         `json:"total_fines"`
	PlainText   string        `json:"plain_text"`
	RichText    string        `json:"rich_text"`
	GmailURL    string        `json:"gmail_url"`
	WhatsAppURL string        `json:"whatsapp_url"`
}

// ForMeeting renders the full notification batch for a meeting: one report
// per leader with at least one member holding an attendance record.
func (h *ReportHandler) ForMeeting(c *gin.Context) {
	id := c.Param("id")

	meeting, err := h.Ledger.Meeting(id)
	if err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "meeting not found")
		return
	}

	var leaders []models.Leader
	if err := h.DB.Find(&leaders).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "list leaders failed")
		return
	}
	var participants []models.Participant
	if err := h.DB.Find(&participants).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "list participants failed")
		return
	}
	attendance, err := h.Ledger.Attendance(id)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "list attendance failed")
		return
	}
	fines, err := h.Ledger.Fines(id)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "list fines failed")
		return
	}

	batches := report.LeaderBatches(meeting, leaders, participants, attendance, fines)

	reports := make([]leaderReport, 0, len(batches))
	for _, b := range batches {
		plain := h.Composer.Compose(meeting, b, false)
		rich := h.Composer.Compose(meeting, b, true)

		reports = append(reports, leaderReport{
			Leader:      b.Leader,
			TotalFines:  b.TotalFines,
			PlainText:   plain,
			RichText:    rich,
			GmailURL:    gmailComposeURL(b.Leader.Email, "Sadhana Report: "+meeting.Name, plain),
			WhatsAppURL: whatsAppComposeURL(b.Leader.Phone, rich),
		})
	}

	actor := middleware.CurrentUser(c)
	writeAudit(h.DB, actor.Username, "Reports Prepared",
		fmt.Sprintf("composed %d leader reports for meeting %s", len(reports), meeting.Name))

	util.Success(c, util.Response{
		"meeting": meeting,
		"reports": reports,
	})
}

func gmailComposeURL(to, subject, body string) string {
	return "https://mail.google.com/mail/?view=cm&fs=1&to=" + url.QueryEscape(to) +
		"&su=" + url.QueryEscape(subject) +
		"&body=" + url.QueryEscape(body)
}

// whatsAppComposeURL strips everything but digits from the phone, matching
// the wa.me number format.
func whatsAppComposeURL(phone, text string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return "https://web.whatsapp.com/send?phone=" + digits.String() +
		"&text=" + url.QueryEscape(text)
}
