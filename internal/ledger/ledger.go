// Package ledger owns the meeting lifecycle and the authoritative attendance
// and fine batches. A batch write for a meeting id supersedes all prior rows
// for that id inside one transaction, so re-runs never accumulate duplicates
// and a half-applied confirm never becomes visible.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/models"
	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/reconcile"
	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/util"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrNotFound means no meeting exists under the given id.
	ErrNotFound = errors.New("meeting not found")

	// ErrStaleRevision means a lifecycle transition was attempted from a
	// state that does not allow it (reopen on anything but CONFIRMED).
	ErrStaleRevision = errors.New("meeting is not in a confirmable state")
)

// Service persists meetings and their batches.
type Service struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// Draft carries the operator-entered meeting details for confirmation.
type Draft struct {
	Name       string
	Timestamp  time.Time
	FineAmount int64
}

// Confirm mints a new meeting (fresh id, version 1, CONFIRMED) and writes its
// attendance and fine batches in one transaction, superseding any prior rows
// under the new id. Fines are derived from the verdicts as given, so operator
// adjustments made in the preview are honored.
func (s *Service) Confirm(draft Draft, verdicts []reconcile.Verdict) (*models.Meeting, error) {
	if err := util.ValidateMeetingName(draft.Name); err != nil {
		return nil, err
	}
	if err := util.ValidateFineAmount(draft.FineAmount); err != nil {
		return nil, err
	}

	meeting := models.Meeting{
		ID:         uuid.New().String(),
		Name:       draft.Name,
		Timestamp:  draft.Timestamp,
		FineAmount: draft.FineAmount,
		Status:     models.MeetingConfirmed,
		Version:    1,
	}

	attendance := make([]models.Attendance, 0, len(verdicts))
	for _, v := range verdicts {
		attendance = append(attendance, models.Attendance{
			ID:              uuid.New().String(),
			MeetingID:       meeting.ID,
			ParticipantID:   v.Participant.ID,
			Status:          v.Status,
			ConfidenceScore: v.Confidence,
		})
	}

	fines := make([]models.Fine, 0)
	for _, d := range reconcile.ComputeFines(verdicts, draft.FineAmount) {
		fines = append(fines, models.Fine{
			ID:            uuid.New().String(),
			MeetingID:     meeting.ID,
			ParticipantID: d.ParticipantID,
			Amount:        d.Amount,
		})
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&meeting).Error; err != nil {
			return fmt.Errorf("create meeting: %w", err)
		}
		return writeBatches(tx, meeting.ID, attendance, fines)
	})
	if err != nil {
		return nil, err
	}
	return &meeting, nil
}

// Reopen transitions a CONFIRMED meeting to REVISED: version+1, parent
// pointer set to the superseded edition, row updated in place. Any other
// starting state is rejected with ErrStaleRevision and no state change.
func (s *Service) Reopen(meetingID string) (*models.Meeting, error) {
	var meeting models.Meeting
	if err := s.DB.First(&meeting, "id = ?", meetingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load meeting: %w", err)
	}

	if meeting.Status != models.MeetingConfirmed {
		return nil, ErrStaleRevision
	}

	parent := meeting.ID
	meeting.Status = models.MeetingRevised
	meeting.Version++
	meeting.ParentMeetingID = &parent

	if err := s.DB.Save(&meeting).Error; err != nil {
		return nil, fmt.Errorf("save meeting: %w", err)
	}
	return &meeting, nil
}

// Meeting loads the latest edition stored under an id.
func (s *Service) Meeting(id string) (*models.Meeting, error) {
	var meeting models.Meeting
	if err := s.DB.First(&meeting, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load meeting: %w", err)
	}
	return &meeting, nil
}

// Meetings lists all meetings newest first.
func (s *Service) Meetings() ([]models.Meeting, error) {
	var meetings []models.Meeting
	if err := s.DB.Order("timestamp DESC").Find(&meetings).Error; err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	return meetings, nil
}

// Attendance returns the authoritative attendance batch for a meeting id.
func (s *Service) Attendance(meetingID string) ([]models.Attendance, error) {
	var rows []models.Attendance
	if err := s.DB.Where("meeting_id = ?", meetingID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return rows, nil
}

// Fines returns the authoritative fine batch for a meeting id.
func (s *Service) Fines(meetingID string) ([]models.Fine, error) {
	var rows []models.Fine
	if err := s.DB.Where("meeting_id = ?", meetingID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list fines: %w", err)
	}
	return rows, nil
}

// Override sets a manual attendance status for one participant of a meeting.
// Fines are deliberately untouched; recomputation is a separate operation.
func (s *Service) Override(meetingID, participantID, status string) (*models.Attendance, error) {
	switch status {
	case models.StatusPresent, models.StatusAbsent, models.StatusNeedsReview:
	default:
		return nil, fmt.Errorf("invalid attendance status %q", status)
	}

	var row models.Attendance
	err := s.DB.Where("meeting_id = ? AND participant_id = ?", meetingID, participantID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load attendance: %w", err)
	}

	row.Status = status
	row.IsManualOverride = true
	if err := s.DB.Save(&row).Error; err != nil {
		return nil, fmt.Errorf("save attendance: %w", err)
	}
	return &row, nil
}

// RecomputeFines rebuilds the fine batch for a meeting from its current
// attendance rows: one unpaid fine per ABSENT row at the meeting's configured
// amount, with IsPaid carried forward for participants that already had a
// fine under this meeting. This is the explicit follow-up to manual
// overrides; nothing triggers it implicitly.
func (s *Service) RecomputeFines(meetingID string) ([]models.Fine, error) {
	meeting, err := s.Meeting(meetingID)
	if err != nil {
		return nil, err
	}

	attendance, err := s.Attendance(meetingID)
	if err != nil {
		return nil, err
	}

	existing, err := s.Fines(meetingID)
	if err != nil {
		return nil, err
	}
	paid := make(map[string]bool, len(existing))
	for _, f := range existing {
		paid[f.ParticipantID] = f.IsPaid
	}

	fines := make([]models.Fine, 0)
	for _, a := range attendance {
		if a.Status != models.StatusAbsent {
			continue
		}
		fines = append(fines, models.Fine{
			ID:            uuid.New().String(),
			MeetingID:     meetingID,
			ParticipantID: a.ParticipantID,
			Amount:        meeting.FineAmount,
			IsPaid:        paid[a.ParticipantID],
		})
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("meeting_id = ?", meetingID).Delete(&models.Fine{}).Error; err != nil {
			return fmt.Errorf("supersede fines: %w", err)
		}
		if len(fines) == 0 {
			return nil
		}
		if err := tx.Create(&fines).Error; err != nil {
			return fmt.Errorf("write fines: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fines, nil
}

// writeBatches replaces the attendance and fine batches for a meeting id.
// Caller must run it inside a transaction.
func writeBatches(tx *gorm.DB, meetingID string, attendance []models.Attendance, fines []models.Fine) error {
	if err := tx.Where("meeting_id = ?", meetingID).Delete(&models.Attendance{}).Error; err != nil {
		return fmt.Errorf("supersede attendance: %w", err)
	}
	if err := tx.Where("meeting_id = ?", meetingID).Delete(&models.Fine{}).Error; err != nil {
		return fmt.Errorf("supersede fines: %w", err)
	}
	if len(attendance) > 0 {
		if err := tx.Create(&attendance).Error; err != nil {
			return fmt.Errorf("write attendance: %w", err)
		}
	}
	if len(fines) > 0 {
		if err := tx.Create(&fines).Error; err != nil {
			return fmt.Errorf("write fines: %w", err)
		}
	}
	return nil
}

// RewriteBatches replaces both batches for an existing meeting id in one
// transaction: the re-confirmation step after a reopen. Only a REVISED
// meeting accepts a wholesale rewrite; anything else is rejected with
// ErrStaleRevision and no state change.
func (s *Service) RewriteBatches(meetingID string, verdicts []reconcile.Verdict) error {
	meeting, err := s.Meeting(meetingID)
	if err != nil {
		return err
	}
	if meeting.Status != models.MeetingRevised {
		return ErrStaleRevision
	}

	attendance := make([]models.Attendance, 0, len(verdicts))
	for _, v := range verdicts {
		attendance = append(attendance, models.Attendance{
			ID:              uuid.New().String(),
			MeetingID:       meetingID,
			ParticipantID:   v.Participant.ID,
			Status:          v.Status,
			ConfidenceScore: v.Confidence,
		})
	}

	fines := make([]models.Fine, 0)
	for _, d := range reconcile.ComputeFines(verdicts, meeting.FineAmount) {
		fines = append(fines, models.Fine{
			ID:            uuid.New().String(),
			MeetingID:     meetingID,
			ParticipantID: d.ParticipantID,
			Amount:        d.Amount,
		})
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		return writeBatches(tx, meetingID, attendance, fines)
	})
}
