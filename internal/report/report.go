// Package report renders the per-leader attendance summary payload for a
// confirmed meeting. Output is deterministic text; delivery belongs to an
// external mail/chat composer.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/models"
)

// Member pairs a group member with its attendance row and optional fine.
type Member struct {
	Participant models.Participant `json:"participant"`
	Attendance  models.Attendance  `json:"attendance"`
	Fine        *models.Fine       `json:"fine,omitempty"`
}

// Batch is one leader's slice of a meeting's results.
type Batch struct {
	Leader     models.Leader `json:"leader"`
	Members    []Member      `json:"members"`
	TotalFines int64         `json:"total_fines"`
}

// Composer formats report payloads in a fixed timezone.
type Composer struct {
	loc    *time.Location
	sender string
}

// NewComposer builds a composer for the given IANA timezone name. An
// unloadable zone falls back to fixed IST, matching the product's audience.
func NewComposer(timezone, sender string) *Composer {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.FixedZone("IST", 5*3600+1800)
	}
	return &Composer{loc: loc, sender: sender}
}

// Compose renders the leader's report. Line order is fixed: salutation,
// meeting name, date, group, total fines, per-member lines, signature. The
// meeting date is rendered date-only — time-of-day is deliberately redacted
// even though the meeting stores a full timestamp. emphasize wraps key fields
// in '*' for rich-text channels and changes nothing else.
func (c *Composer) Compose(meeting *models.Meeting, batch Batch, emphasize bool) string {
	star := ""
	if emphasize {
		star = "*"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Respected %s,\n\n", batch.Leader.Name)
	fmt.Fprintf(&b, "Meeting: %s%s%s\n", star, meeting.Name, star)
	fmt.Fprintf(&b, "Date: %s\n", meeting.Timestamp.In(c.loc).Format("02 Jan 2006"))
	fmt.Fprintf(&b, "Group: %s%s%s\n", star, batch.Leader.GroupName, star)
	fmt.Fprintf(&b, "Total Fines: %s₹%d%s\n\n", star, batch.TotalFines, star)

	fmt.Fprintf(&b, "%sAttendance Summary:%s\n", star, star)
	for _, m := range batch.Members {
		fineText := ""
		if m.Fine != nil {
			fineText = fmt.Sprintf(" (Fine: ₹%d)", m.Fine.Amount)
		}
		fmt.Fprintf(&b, "- %s: %s%s\n", m.Participant.FullName, m.Attendance.Status, fineText)
	}

	fmt.Fprintf(&b, "\nRegards,\n%s", c.sender)
	return b.String()
}

// LeaderBatches groups a meeting's results by owning leader. Only members
// holding an attendance record for the meeting qualify; leaders with zero
// qualifying members are dropped from the batch entirely. TotalFines is
// count(fined members) × the meeting's fine amount.
func LeaderBatches(meeting *models.Meeting, leaders []models.Leader,
	participants []models.Participant, attendance []models.Attendance,
	fines []models.Fine) []Batch {

	attByParticipant := make(map[string]models.Attendance, len(attendance))
	for _, a := range attendance {
		attByParticipant[a.ParticipantID] = a
	}
	fineByParticipant := make(map[string]models.Fine, len(fines))
	for _, f := range fines {
		fineByParticipant[f.ParticipantID] = f
	}

	batches := make([]Batch, 0, len(leaders))
	for _, l := range leaders {
		members := make([]Member, 0)
		fined := int64(0)

		for _, p := range participants {
			if p.CurrentLeaderID != l.ID {
				continue
			}
			att, ok := attByParticipant[p.ID]
			if !ok {
				continue
			}

			m := Member{Participant: p, Attendance: att}
			if f, ok := fineByParticipant[p.ID]; ok {
				fine := f
				m.Fine = &fine
				fined++
			}
			members = append(members, m)
		}

		if len(members) == 0 {
			continue
		}

		batches = append(batches, Batch{
			Leader:     l,
			Members:    members,
			TotalFines: fined * meeting.FineAmount,
		})
	}

	return batches
}
