// Package reconcile turns one OCR extraction run into attendance verdicts and
// fine drafts. Both transforms are pure; persistence happens in the ledger.
package reconcile

import (
	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/match"
	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/models"
)

// Verdict is the computed attendance outcome for one participant against one
// meeting's raw name set.
type Verdict struct {
	Participant models.Participant `json:"participant"`
	Status      string             `json:"status"`
	Confidence  int                `json:"confidence"`
}

// FineDraft is a fine to be minted at confirmation time.
type FineDraft struct {
	ParticipantID string `json:"participant_id"`
	Amount        int64  `json:"amount"`
}

// Reconcile scans the roster against the extracted names. The scan is
// roster-driven: every participant gets exactly one verdict, in roster order,
// and raw names with no corresponding participant are dropped. For each
// participant the raw names are tried in oracle order and the first match
// wins; an empty extraction yields ABSENT for everyone.
func Reconcile(rawNames []string, roster []models.Participant) []Verdict {
	verdicts := make([]Verdict, 0, len(roster))

	for _, p := range roster {
		aliases := p.Aliases()

		found := false
		score := 0
		for _, raw := range rawNames {
			ok, s := match.Match(raw, aliases)
			if ok {
				found = true
				score = s
				break
			}
		}

		verdicts = append(verdicts, Verdict{
			Participant: p,
			Status:      match.StatusFor(found, score),
			Confidence:  score,
		})
	}

	return verdicts
}

// ComputeFines mints exactly one unpaid fine per ABSENT verdict, copying the
// meeting's configured amount. PRESENT and NEEDS_REVIEW never generate a fine
// here, even if later overridden.
func ComputeFines(verdicts []Verdict, fineAmount int64) []FineDraft {
	fines := make([]FineDraft, 0)
	for _, v := range verdicts {
		if v.Status == models.StatusAbsent {
			fines = append(fines, FineDraft{
				ParticipantID: v.Participant.ID,
				Amount:        fineAmount,
			})
		}
	}
	return fines
}
