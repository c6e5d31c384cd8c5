package handler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/ledger"
	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/middleware"
	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/models"
	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/ocr"
	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/reconcile"
	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// MeetingHandler drives the OCR-confirm cycle and the meeting ledger surface.
type MeetingHandler struct {
	DB     *gorm.DB
	Ledger *ledger.Service
	OCR    *ocr.Client
}

func NewMeetingHandler(db *gorm.DB, ledgerSvc *ledger.Service, ocrClient *ocr.Client) *MeetingHandler {
	return &MeetingHandler{DB: db, Ledger: ledgerSvc, OCR: ocrClient}
}

// ---------- scan ----------

// Scan runs one extraction over the uploaded screenshots and returns the
// verdict preview. Nothing is persisted here: reconciliation only runs after
// a successful oracle response, and an abandoned request cancels the call via
// its context. Raw names with no roster match are returned alongside the
// verdicts so the operator can see unmatched attendees.
func (h *MeetingHandler) Scan(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "multipart form expected")
		return
	}

	files := form.File["images"]
	if len(files) == 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "no images uploaded")
		return
	}

	images := make([]ocr.Image, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "read image failed")
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "read image failed")
			return
		}
		images = append(images, ocr.Image{
			MIMEType: fh.Header.Get("Content-Type"),
			Data:     data,
		})
	}

	rawNames, err := h.OCR.ExtractNames(c.Request.Context(), images)
	if err != nil {
		if errors.Is(err, ocr.ErrUnavailable) || errors.Is(err, ocr.ErrBadPayload) {
			util.Error(c, http.StatusBadGateway, util.CodeUpstreamErr, err.Error())
		} else {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		}
		return
	}

	var roster []models.Participant
	if err := h.DB.Order("created_at ASC").Find(&roster).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "list participants failed")
		return
	}

	// empty extraction is a normal run: everyone comes back ABSENT
	verdicts := reconcile.Reconcile(rawNames, roster)

	util.Success(c, util.Response{
		"found_names": rawNames,
		"verdicts":    verdicts,
	})
}

// ---------- confirm ----------

type verdictReq struct {
	ParticipantID string `json:"participant_id" binding:"required"`
	Status        string `json:"status" binding:"required,oneof=PRESENT ABSENT NEEDS_REVIEW"`
	Confidence    int    `json:"confidence" binding:"min=0,max=100"`
}

type confirmReq struct {
	Name       string       `json:"name" binding:"required"`
	Timestamp  int64        `json:"timestamp" binding:"required"` // unix millis
	FineAmount int64        `json:"fine_amount" binding:"required"`
	Verdicts   []verdictReq `json:"verdicts" binding:"required"`
}

// Confirm persists the operator-approved run: meeting row plus attendance and
// fine batches, atomically.
func (h *MeetingHandler) Confirm(c *gin.Context) {
	var req confirmReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}

	verdicts, err := h.resolveVerdicts(req.Verdicts)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	draft := ledger.Draft{
		Name:       req.Name,
		Timestamp:  time.UnixMilli(req.Timestamp),
		FineAmount: req.FineAmount,
	}

	meeting, err := h.Ledger.Confirm(draft, verdicts)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	actor := middleware.CurrentUser(c)
	writeAudit(h.DB, actor.Username, "Meeting Tracked", "generated attendance for "+meeting.Name)

	util.Success(c, util.Response{"meeting": meeting})
}

// resolveVerdicts rebuilds full verdicts from their participant ids, so the
// ledger writes against current roster rows.
func (h *MeetingHandler) resolveVerdicts(reqs []verdictReq) ([]reconcile.Verdict, error) {
	ids := make([]string, 0, len(reqs))
	for _, v := range reqs {
		ids = append(ids, v.ParticipantID)
	}

	var participants []models.Participant
	if err := h.DB.Where("id IN ?", ids).Find(&participants).Error; err != nil {
		return nil, fmt.Errorf("load participants: %w", err)
	}
	byID := make(map[string]models.Participant, len(participants))
	for _, p := range participants {
		byID[p.ID] = p
	}

	verdicts := make([]reconcile.Verdict, 0, len(reqs))
	seen := make(map[string]bool, len(reqs))
	for _, v := range reqs {
		p, ok := byID[v.ParticipantID]
		if !ok {
			return nil, fmt.Errorf("unknown participant %s", v.ParticipantID)
		}
		if seen[v.ParticipantID] {
			return nil, fmt.Errorf("duplicate verdict for participant %s", v.ParticipantID)
		}
		seen[v.ParticipantID] = true

		verdicts = append(verdicts, reconcile.Verdict{
			Participant: p,
			Status:      v.Status,
			Confidence:  v.Confidence,
		})
	}
	return verdicts, nil
}

// ---------- lifecycle ----------

type reopenReq struct {
	Confirm bool `json:"confirm"`
}

// Reopen transitions a meeting to REVISED. Requires the admin role (route
// gated) plus an explicit yes in the body; declining is a no-op.
func (h *MeetingHandler) Reopen(c *gin.Context) {
	id := c.Param("id")

	var req reopenReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}
	if !req.Confirm {
		util.Success(c, util.Response{"reopened": false})
		return
	}

	meeting, err := h.Ledger.Reopen(id)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrNotFound):
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "meeting not found")
		case errors.Is(err, ledger.ErrStaleRevision):
			util.Error(c, http.StatusConflict, util.CodeConflict, "only a CONFIRMED meeting can be reopened")
		default:
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "reopen failed")
		}
		return
	}

	actor := middleware.CurrentUser(c)
	writeAudit(h.DB, actor.Username, "Meeting Reopened",
		fmt.Sprintf("reopened meeting %s for revision (v%d)", meeting.Name, meeting.Version))

	util.Success(c, util.Response{"reopened": true, "meeting": meeting})
}

type rewriteReq struct {
	Verdicts []verdictReq `json:"verdicts" binding:"required"`
}

// RewriteBatch replaces a reopened meeting's attendance and fine batches
// wholesale with a new verdict set, the re-confirmation step after a reopen.
func (h *MeetingHandler) RewriteBatch(c *gin.Context) {
	id := c.Param("id")

	var req rewriteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}

	verdicts, err := h.resolveVerdicts(req.Verdicts)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	if err := h.Ledger.RewriteBatches(id, verdicts); err != nil {
		switch {
		case errors.Is(err, ledger.ErrNotFound):
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "meeting not found")
		case errors.Is(err, ledger.ErrStaleRevision):
			util.Error(c, http.StatusConflict, util.CodeConflict, "only a REVISED meeting accepts a batch rewrite")
		default:
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "rewrite batches failed")
		}
		return
	}

	actor := middleware.CurrentUser(c)
	writeAudit(h.DB, actor.Username, "Meeting Revised",
		fmt.Sprintf("rewrote attendance for meeting %s with %d verdicts", id, len(verdicts)))

	util.Success(c, util.Response{"rewritten": true})
}

func (h *MeetingHandler) List(c *gin.Context) {
	meetings, err := h.Ledger.Meetings()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "list meetings failed")
		return
	}
	util.Success(c, util.Response{"meetings": meetings})
}

func (h *MeetingHandler) Attendance(c *gin.Context) {
	id := c.Param("id")

	if _, err := h.Ledger.Meeting(id); err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "meeting not found")
		return
	}

	rows, err := h.Ledger.Attendance(id)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "list attendance failed")
		return
	}
	util.Success(c, util.Response{"attendance": rows})
}

type overrideReq struct {
	ParticipantID string `json:"participant_id" binding:"required"`
	Status        string `json:"status" binding:"required,oneof=PRESENT ABSENT NEEDS_REVIEW"`
}

// Override flips one attendance status by operator decision. Fines are not
// recomputed here; that is its own explicit operation.
func (h *MeetingHandler) Override(c *gin.Context) {
	id := c.Param("id")

	var req overrideReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}

	row, err := h.Ledger.Override(id, req.ParticipantID, req.Status)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "attendance record not found")
		} else {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		}
		return
	}

	actor := middleware.CurrentUser(c)
	writeAudit(h.DB, actor.Username, "Attendance Overridden",
		fmt.Sprintf("set participant %s to %s for meeting %s", req.ParticipantID, req.Status, id))

	util.Success(c, util.Response{"attendance": row})
}

// RecomputeFines rebuilds the fine batch from current attendance. Explicit,
// admin-only follow-up to manual overrides.
func (h *MeetingHandler) RecomputeFines(c *gin.Context) {
	id := c.Param("id")

	fines, err := h.Ledger.RecomputeFines(id)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "meeting not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "recompute fines failed")
		}
		return
	}

	actor := middleware.CurrentUser(c)
	writeAudit(h.DB, actor.Username, "Fines Recomputed",
		fmt.Sprintf("rebuilt %d fines for meeting %s", len(fines), id))

	util.Success(c, util.Response{"fines": fines})
}

// ---------- export ----------

type attendanceExportRow struct {
	Participant string
	Status      string
	Confidence  int
	Override    bool
}

func (h *MeetingHandler) exportRows(meetingID string) (*models.Meeting, []attendanceExportRow, error) {
	meeting, err := h.Ledger.Meeting(meetingID)
	if err != nil {
		return nil, nil, err
	}

	attendance, err := h.Ledger.Attendance(meetingID)
	if err != nil {
		return nil, nil, err
	}

	var participants []models.Participant
	if err := h.DB.Find(&participants).Error; err != nil {
		return nil, nil, fmt.Errorf("list participants: %w", err)
	}
	nameByID := make(map[string]string, len(participants))
	for _, p := range participants {
		nameByID[p.ID] = p.FullName
	}

	rows := make([]attendanceExportRow, 0, len(attendance))
	for _, a := range attendance {
		rows = append(rows, attendanceExportRow{
			Participant: nameByID[a.ParticipantID],
			Status:      a.Status,
			Confidence:  a.ConfidenceScore,
			Override:    a.IsManualOverride,
		})
	}
	return meeting, rows, nil
}

// ExportCSV downloads a meeting's attendance as CSV.
func (h *MeetingHandler) ExportCSV(c *gin.Context) {
	meeting, rows, err := h.exportRows(c.Param("id"))
	if err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "meeting not found")
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"attendance_%s.csv\"", meeting.ID))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write([]string{"Participant Name", "Status", "Confidence", "Override"})
	for _, r := range rows {
		writer.Write([]string{
			r.Participant,
			r.Status,
			fmt.Sprintf("%d%%", r.Confidence),
			fmt.Sprintf("%t", r.Override),
		})
	}
}

// ExportXLSX downloads a meeting's attendance as XLSX.
func (h *MeetingHandler) ExportXLSX(c *gin.Context) {
	meeting, rows, err := h.exportRows(c.Param("id"))
	if err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "meeting not found")
		return
	}

	f := excelize.NewFile()
	sheetName := "Attendance"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "create sheet failed")
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Participant Name", "Status", "Confidence", "Override"}
	for i, hd := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, hd)
	}

	for idx, r := range rows {
		row := idx + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), r.Participant)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), r.Status)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), fmt.Sprintf("%d%%", r.Confidence))
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), r.Override)
	}

	f.SetColWidth(sheetName, "A", "A", 28)
	f.SetColWidth(sheetName, "B", "B", 16)
	f.SetColWidth(sheetName, "C", "C", 12)
	f.SetColWidth(sheetName, "D", "D", 10)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"attendance_%s_%s.xlsx\"",
		meeting.Name, time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "export failed")
	}
}
