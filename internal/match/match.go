// Package match decides whether a raw OCR-extracted name refers to a known
// participant alias, with a three-tier confidence contract: exact 100,
// substring 85, no match 0. Downstream status derivation depends on these
// exact thresholds, so no fuzzy matching is layered on top.
package match

import (
	"strings"

	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/models"
)

// confidence tiers
const (
	ScoreExact     = 100
	ScoreSubstring = 85
	ScoreNone      = 0
)

// PresentThreshold is the minimum score treated as a certain sighting.
const PresentThreshold = 90

// Match compares a raw extracted name against an alias set. Comparison is
// case-insensitive (locale-naive lowercase). Exact equality wins over
// substring containment; the first satisfied tier short-circuits.
func Match(rawName string, aliases []string) (bool, int) {
	raw := normalize(rawName)
	if raw == "" {
		return false, ScoreNone
	}

	for _, alias := range aliases {
		if normalize(alias) == raw {
			return true, ScoreExact
		}
	}

	for _, alias := range aliases {
		a := normalize(alias)
		if a == "" {
			continue
		}
		if strings.Contains(a, raw) || strings.Contains(raw, a) {
			return true, ScoreSubstring
		}
	}

	return false, ScoreNone
}

// StatusFor derives the attendance status from a match result: a certain
// sighting is PRESENT, an uncertain one NEEDS_REVIEW, no sighting ABSENT.
func StatusFor(isMatch bool, score int) string {
	switch {
	case isMatch && score >= PresentThreshold:
		return models.StatusPresent
	case isMatch:
		return models.StatusNeedsReview
	default:
		return models.StatusAbsent
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
