package ledger

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/models"
	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/reconcile"
)

func testService(t *testing.T) *Service {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "ledger_test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Meeting{}, &models.Attendance{}, &models.Fine{},
	))
	return New(db)
}

func verdict(id, name, status string, confidence int) reconcile.Verdict {
	return reconcile.Verdict{
		Participant: models.Participant{ID: id, FullName: name},
		Status:      status,
		Confidence:  confidence,
	}
}

func testDraft() Draft {
	return Draft{
		Name:       "Weekly Sadhana",
		Timestamp:  time.Date(2025, 6, 15, 18, 0, 0, 0, time.UTC),
		FineAmount: 50,
	}
}

func TestConfirm_WritesMeetingAndBatches(t *testing.T) {
	s := testService(t)

	meeting, err := s.Confirm(testDraft(), []reconcile.Verdict{
		verdict("p1", "Arjun Singh", models.StatusPresent, 100),
		verdict("p2", "Meera Devi", models.StatusAbsent, 0),
		verdict("p3", "Ravi Kumar", models.StatusNeedsReview, 85),
	})
	require.NoError(t, err)
	require.Equal(t, models.MeetingConfirmed, meeting.Status)
	require.Equal(t, 1, meeting.Version)
	require.Nil(t, meeting.ParentMeetingID)

	attendance, err := s.Attendance(meeting.ID)
	require.NoError(t, err)
	require.Len(t, attendance, 3)

	fines, err := s.Fines(meeting.ID)
	require.NoError(t, err)
	require.Len(t, fines, 1)
	require.Equal(t, "p2", fines[0].ParticipantID)
	require.Equal(t, int64(50), fines[0].Amount)
	require.False(t, fines[0].IsPaid)
}

func TestConfirm_RejectsInvalidDraft(t *testing.T) {
	s := testService(t)

	_, err := s.Confirm(Draft{Name: "", Timestamp: time.Now(), FineAmount: 50}, nil)
	require.Error(t, err)

	_, err = s.Confirm(Draft{Name: "Meet", Timestamp: time.Now(), FineAmount: 30}, nil)
	require.Error(t, err)

	meetings, err := s.Meetings()
	require.NoError(t, err)
	require.Empty(t, meetings)
}

func TestRewriteBatches_SupersedesPriorRows(t *testing.T) {
	s := testService(t)

	meeting, err := s.Confirm(testDraft(), []reconcile.Verdict{
		verdict("p1", "Arjun Singh", models.StatusAbsent, 0),
		verdict("p2", "Meera Devi", models.StatusAbsent, 0),
	})
	require.NoError(t, err)

	_, err = s.Reopen(meeting.ID)
	require.NoError(t, err)

	// the re-confirmation pass flips p1 to present; old rows must not survive
	err = s.RewriteBatches(meeting.ID, []reconcile.Verdict{
		verdict("p1", "Arjun Singh", models.StatusPresent, 100),
		verdict("p2", "Meera Devi", models.StatusAbsent, 0),
	})
	require.NoError(t, err)

	attendance, err := s.Attendance(meeting.ID)
	require.NoError(t, err)
	require.Len(t, attendance, 2)

	byParticipant := make(map[string]models.Attendance)
	for _, a := range attendance {
		byParticipant[a.ParticipantID] = a
	}
	require.Equal(t, models.StatusPresent, byParticipant["p1"].Status)
	require.Equal(t, models.StatusAbsent, byParticipant["p2"].Status)

	fines, err := s.Fines(meeting.ID)
	require.NoError(t, err)
	require.Len(t, fines, 1)
	require.Equal(t, "p2", fines[0].ParticipantID)
}

func TestRewriteBatches_RequiresRevised(t *testing.T) {
	s := testService(t)

	meeting, err := s.Confirm(testDraft(), []reconcile.Verdict{
		verdict("p1", "Arjun Singh", models.StatusAbsent, 0),
	})
	require.NoError(t, err)

	// still CONFIRMED: a wholesale rewrite needs a reopen first
	err = s.RewriteBatches(meeting.ID, []reconcile.Verdict{
		verdict("p1", "Arjun Singh", models.StatusPresent, 100),
	})
	require.ErrorIs(t, err, ErrStaleRevision)

	attendance, err := s.Attendance(meeting.ID)
	require.NoError(t, err)
	require.Len(t, attendance, 1)
	require.Equal(t, models.StatusAbsent, attendance[0].Status)

	err = s.RewriteBatches("no-such-id", nil)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestReopen_TransitionsConfirmedInPlace(t *testing.T) {
	s := testService(t)

	meeting, err := s.Confirm(testDraft(), []reconcile.Verdict{
		verdict("p1", "Arjun Singh", models.StatusPresent, 100),
	})
	require.NoError(t, err)

	reopened, err := s.Reopen(meeting.ID)
	require.NoError(t, err)
	require.Equal(t, meeting.ID, reopened.ID)
	require.Equal(t, models.MeetingRevised, reopened.Status)
	require.Equal(t, 2, reopened.Version)
	require.NotNil(t, reopened.ParentMeetingID)
	require.Equal(t, meeting.ID, *reopened.ParentMeetingID)

	meetings, err := s.Meetings()
	require.NoError(t, err)
	require.Len(t, meetings, 1)
}

func TestReopen_RejectsNonConfirmed(t *testing.T) {
	s := testService(t)

	meeting, err := s.Confirm(testDraft(), nil)
	require.NoError(t, err)

	_, err = s.Reopen(meeting.ID)
	require.NoError(t, err)

	// already revised; a second reopen must be refused without state change
	_, err = s.Reopen(meeting.ID)
	require.ErrorIs(t, err, ErrStaleRevision)

	current, err := s.Meeting(meeting.ID)
	require.NoError(t, err)
	require.Equal(t, 2, current.Version)
}

func TestReopen_UnknownMeeting(t *testing.T) {
	s := testService(t)
	_, err := s.Reopen("no-such-id")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestOverride_LeavesFinesUntouched(t *testing.T) {
	s := testService(t)

	meeting, err := s.Confirm(testDraft(), []reconcile.Verdict{
		verdict("p1", "Arjun Singh", models.StatusPresent, 100),
		verdict("p2", "Meera Devi", models.StatusAbsent, 0),
	})
	require.NoError(t, err)

	row, err := s.Override(meeting.ID, "p2", models.StatusPresent)
	require.NoError(t, err)
	require.True(t, row.IsManualOverride)
	require.Equal(t, models.StatusPresent, row.Status)

	// the stale fine stays until an explicit recompute
	fines, err := s.Fines(meeting.ID)
	require.NoError(t, err)
	require.Len(t, fines, 1)
	require.Equal(t, "p2", fines[0].ParticipantID)
}

func TestOverride_RejectsBadStatus(t *testing.T) {
	s := testService(t)

	meeting, err := s.Confirm(testDraft(), []reconcile.Verdict{
		verdict("p1", "Arjun Singh", models.StatusPresent, 100),
	})
	require.NoError(t, err)

	_, err = s.Override(meeting.ID, "p1", "MAYBE")
	require.Error(t, err)

	_, err = s.Override(meeting.ID, "no-such-participant", models.StatusAbsent)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRecomputeFines_RebuildsFromAttendance(t *testing.T) {
	s := testService(t)

	meeting, err := s.Confirm(testDraft(), []reconcile.Verdict{
		verdict("p1", "Arjun Singh", models.StatusPresent, 100),
		verdict("p2", "Meera Devi", models.StatusAbsent, 0),
	})
	require.NoError(t, err)

	_, err = s.Override(meeting.ID, "p1", models.StatusAbsent)
	require.NoError(t, err)
	_, err = s.Override(meeting.ID, "p2", models.StatusPresent)
	require.NoError(t, err)

	fines, err := s.RecomputeFines(meeting.ID)
	require.NoError(t, err)
	require.Len(t, fines, 1)
	require.Equal(t, "p1", fines[0].ParticipantID)
	require.Equal(t, int64(50), fines[0].Amount)

	stored, err := s.Fines(meeting.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
}

func TestRecomputeFines_CarriesPaidFlagForward(t *testing.T) {
	s := testService(t)

	meeting, err := s.Confirm(testDraft(), []reconcile.Verdict{
		verdict("p1", "Arjun Singh", models.StatusAbsent, 0),
		verdict("p2", "Meera Devi", models.StatusAbsent, 0),
	})
	require.NoError(t, err)

	// p1 settles their fine before an admin recomputes
	err = s.DB.Model(&models.Fine{}).
		Where("meeting_id = ? AND participant_id = ?", meeting.ID, "p1").
		Update("is_paid", true).Error
	require.NoError(t, err)

	fines, err := s.RecomputeFines(meeting.ID)
	require.NoError(t, err)
	require.Len(t, fines, 2)

	paid := make(map[string]bool)
	for _, f := range fines {
		paid[f.ParticipantID] = f.IsPaid
	}
	require.True(t, paid["p1"])
	require.False(t, paid["p2"])
}

func TestRecomputeFines_AllPresentClearsFines(t *testing.T) {
	s := testService(t)

	meeting, err := s.Confirm(testDraft(), []reconcile.Verdict{
		verdict("p1", "Arjun Singh", models.StatusAbsent, 0),
	})
	require.NoError(t, err)

	_, err = s.Override(meeting.ID, "p1", models.StatusPresent)
	require.NoError(t, err)

	fines, err := s.RecomputeFines(meeting.ID)
	require.NoError(t, err)
	require.Empty(t, fines)

	stored, err := s.Fines(meeting.ID)
	require.NoError(t, err)
	require.Empty(t, stored)
}
