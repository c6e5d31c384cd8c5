package match

import (
	"testing"

	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/models"
)

func TestMatch_Exact(t *testing.T) {
	testCases := []struct {
		raw     string
		aliases []string
	}{
		{"Arjun Singh", []string{"Arjun Singh"}},
		{"arjun singh", []string{"Arjun Singh"}},
		{"ARJUN SINGH", []string{"Meera Devi", "Arjun Singh"}},
		{"  Arjun Singh  ", []string{"Arjun Singh"}},
	}

	for _, tc := range testCases {
		ok, score := Match(tc.raw, tc.aliases)
		if !ok || score != ScoreExact {
			t.Errorf("Match(%q, %v) = (%t, %d), want (true, %d)", tc.raw, tc.aliases, ok, score, ScoreExact)
		}
	}
}

func TestMatch_Substring(t *testing.T) {
	testCases := []struct {
		raw     string
		aliases []string
	}{
		// alias contained in raw name
		{"Arjun S", []string{"Arjun"}},
		// raw name contained in alias
		{"Meera", []string{"Meera Devi"}},
		{"devi", []string{"Meera Devi"}},
	}

	for _, tc := range testCases {
		ok, score := Match(tc.raw, tc.aliases)
		if !ok || score != ScoreSubstring {
			t.Errorf("Match(%q, %v) = (%t, %d), want (true, %d)", tc.raw, tc.aliases, ok, score, ScoreSubstring)
		}
	}
}

func TestMatch_ExactBeatsSubstring(t *testing.T) {
	// "Arjun" is a substring of the first alias but exactly equals the second;
	// exact equality must win regardless of alias order
	ok, score := Match("Arjun", []string{"Arjun Singh", "Arjun"})
	if !ok || score != ScoreExact {
		t.Errorf("Match = (%t, %d), want (true, %d)", ok, score, ScoreExact)
	}
}

func TestMatch_None(t *testing.T) {
	testCases := []struct {
		raw     string
		aliases []string
	}{
		{"Arjun Singh", []string{"Meera Devi"}},
		{"", []string{"Meera Devi"}},
		{"Arjun", nil},
	}

	for _, tc := range testCases {
		ok, score := Match(tc.raw, tc.aliases)
		if ok || score != ScoreNone {
			t.Errorf("Match(%q, %v) = (%t, %d), want (false, 0)", tc.raw, tc.aliases, ok, score)
		}
	}
}

func TestMatch_EmptyAliasNeverSubstringMatches(t *testing.T) {
	// an empty alias is contained in everything; it must be skipped
	ok, score := Match("Anyone", []string{""})
	if ok || score != ScoreNone {
		t.Errorf("Match with empty alias = (%t, %d), want (false, 0)", ok, score)
	}
}

func TestStatusFor(t *testing.T) {
	testCases := []struct {
		isMatch bool
		score   int
		want    string
	}{
		{true, ScoreExact, models.StatusPresent},
		{true, ScoreSubstring, models.StatusNeedsReview},
		{false, ScoreNone, models.StatusAbsent},
		// threshold edge: 90 is a certain sighting, 89 is not
		{true, 90, models.StatusPresent},
		{true, 89, models.StatusNeedsReview},
	}

	for _, tc := range testCases {
		got := StatusFor(tc.isMatch, tc.score)
		if got != tc.want {
			t.Errorf("StatusFor(%t, %d) = %q, want %q", tc.isMatch, tc.score, got, tc.want)
		}
	}
}
