package report

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/models"
)

func testMeeting() *models.Meeting {
	return &models.Meeting{
		ID:         "m1",
		Name:       "Area Sadhana Meet",
		Timestamp:  time.Date(2025, 6, 15, 18, 30, 0, 0, time.UTC),
		FineAmount: 50,
		Status:     models.MeetingConfirmed,
		Version:    1,
	}
}

func testBatch() Batch {
	fine := models.Fine{ID: "f1", MeetingID: "m1", ParticipantID: "p2", Amount: 50}
	return Batch{
		Leader: models.Leader{ID: "l1", Name: "Ravi Kumar", GroupName: "South Zone"},
		Members: []Member{
			{
				Participant: models.Participant{ID: "p1", FullName: "Arjun Singh"},
				Attendance:  models.Attendance{ParticipantID: "p1", Status: models.StatusPresent, ConfidenceScore: 100},
			},
			{
				Participant: models.Participant{ID: "p2", FullName: "Meera Devi"},
				Attendance:  models.Attendance{ParticipantID: "p2", Status: models.StatusAbsent},
				Fine:        &fine,
			},
		},
		TotalFines: 50,
	}
}

func TestCompose_LineOrder(t *testing.T) {
	c := NewComposer("Asia/Kolkata", "ADY ADMIN")
	text := c.Compose(testMeeting(), testBatch(), false)

	lines := strings.Split(text, "\n")
	wantPrefixes := []string{
		"Respected Ravi Kumar,",
		"",
		"Meeting: Area Sadhana Meet",
		"Date: ",
		"Group: South Zone",
		"Total Fines: ₹50",
		"",
		"Attendance Summary:",
		"- Arjun Singh: PRESENT",
		"- Meera Devi: ABSENT (Fine: ₹50)",
		"",
		"Regards,",
		"ADY ADMIN",
	}

	if len(lines) != len(wantPrefixes) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(wantPrefixes), text)
	}
	for i, want := range wantPrefixes {
		if !strings.HasPrefix(lines[i], want) {
			t.Errorf("line %d = %q, want prefix %q", i, lines[i], want)
		}
	}
}

func TestCompose_DateOnlyRedaction(t *testing.T) {
	c := NewComposer("Asia/Kolkata", "ADY ADMIN")
	// 18:30 UTC on Jun 15 is already Jun 16 in IST; only the date may appear
	m := testMeeting()
	m.Timestamp = time.Date(2025, 6, 15, 21, 0, 0, 0, time.UTC)

	text := c.Compose(m, testBatch(), false)
	if !strings.Contains(text, "Date: 16 Jun 2025") {
		t.Errorf("report date not rendered date-only in IST:\n%s", text)
	}
	if strings.Contains(text, ":0") || strings.Contains(text, "21:") {
		t.Errorf("time-of-day leaked into report:\n%s", text)
	}
}

func TestCompose_EmphasizeIsCosmetic(t *testing.T) {
	c := NewComposer("Asia/Kolkata", "ADY ADMIN")
	m := testMeeting()
	b := testBatch()

	plain := c.Compose(m, b, false)
	rich := c.Compose(m, b, true)

	if strings.Contains(plain, "*") {
		t.Errorf("plain variant contains emphasis markers:\n%s", plain)
	}
	if !strings.Contains(rich, "*Area Sadhana Meet*") || !strings.Contains(rich, "*₹50*") {
		t.Errorf("rich variant missing emphasis markers:\n%s", rich)
	}

	// stripping the markers must recover the plain variant exactly
	if strings.ReplaceAll(rich, "*", "") != plain {
		t.Errorf("emphasize changed more than decoration")
	}
}

func TestCompose_TotalMatchesDetailLines(t *testing.T) {
	c := NewComposer("Asia/Kolkata", "ADY ADMIN")
	m := testMeeting()
	b := testBatch()

	text := c.Compose(m, b, false)

	var detailTotal int64
	for _, line := range strings.Split(text, "\n") {
		var amount int64
		if _, err := fmt.Sscanf(line[strings.LastIndex(line, "(")+1:], "Fine: ₹%d)", &amount); strings.Contains(line, "(Fine:") && err == nil {
			detailTotal += amount
		}
	}

	if !strings.Contains(text, fmt.Sprintf("Total Fines: ₹%d", detailTotal)) {
		t.Errorf("summary total drifted from detail lines (detail sum %d):\n%s", detailTotal, text)
	}
}

func TestLeaderBatches_DropsLeadersWithoutRecords(t *testing.T) {
	m := testMeeting()
	leaders := []models.Leader{
		{ID: "l1", Name: "Ravi Kumar", GroupName: "South"},
		{ID: "l2", Name: "Sita Sharma", GroupName: "North"}, // no members with records
		{ID: "l3", Name: "Gone Leader", GroupName: "East"},  // member has no attendance row
	}
	participants := []models.Participant{
		{ID: "p1", FullName: "Arjun Singh", CurrentLeaderID: "l1"},
		{ID: "p2", FullName: "Meera Devi", CurrentLeaderID: "l3"},
	}
	attendance := []models.Attendance{
		{ID: "a1", MeetingID: "m1", ParticipantID: "p1", Status: models.StatusAbsent},
	}
	fines := []models.Fine{
		{ID: "f1", MeetingID: "m1", ParticipantID: "p1", Amount: 50},
	}

	batches := LeaderBatches(m, leaders, participants, attendance, fines)

	if len(batches) != 1 {
		t.Fatalf("got %d batches, want 1", len(batches))
	}
	if batches[0].Leader.ID != "l1" {
		t.Errorf("batch leader = %s, want l1", batches[0].Leader.ID)
	}
	if batches[0].TotalFines != 50 {
		t.Errorf("total fines = %d, want 50", batches[0].TotalFines)
	}
}

func TestLeaderBatches_TotalIsFinedCountTimesAmount(t *testing.T) {
	m := testMeeting() // fineAmount 50
	leaders := []models.Leader{{ID: "l1", Name: "Ravi", GroupName: "South"}}
	participants := []models.Participant{
		{ID: "p1", FullName: "A", CurrentLeaderID: "l1"},
		{ID: "p2", FullName: "B", CurrentLeaderID: "l1"},
		{ID: "p3", FullName: "C", CurrentLeaderID: "l1"},
	}
	attendance := []models.Attendance{
		{ID: "a1", MeetingID: "m1", ParticipantID: "p1", Status: models.StatusAbsent},
		{ID: "a2", MeetingID: "m1", ParticipantID: "p2", Status: models.StatusAbsent},
		{ID: "a3", MeetingID: "m1", ParticipantID: "p3", Status: models.StatusPresent},
	}
	fines := []models.Fine{
		{ID: "f1", MeetingID: "m1", ParticipantID: "p1", Amount: 50},
		{ID: "f2", MeetingID: "m1", ParticipantID: "p2", Amount: 50},
	}

	batches := LeaderBatches(m, leaders, participants, attendance, fines)
	if len(batches) != 1 {
		t.Fatalf("got %d batches, want 1", len(batches))
	}
	if batches[0].TotalFines != 100 {
		t.Errorf("total fines = %d, want 100", batches[0].TotalFines)
	}
}
