package util

import (
	"fmt"

	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/models"
)

// ValidateFineAmount checks the amount against the fixed enumeration.
func ValidateFineAmount(amount int64) error {
	for _, a := range models.FineAmounts {
		if amount == a {
			return nil
		}
	}
	return fmt.Errorf("fine amount must be one of %v, got %d", models.FineAmounts, amount)
}

// ValidateMeetingName checks a meeting title (non-empty, bounded length).
func ValidateMeetingName(name string) error {
	if name == "" {
		return fmt.Errorf("meeting name is empty")
	}
	if len(name) > 128 {
		return fmt.Errorf("meeting name too long, max 128 characters")
	}
	return nil
}

// ValidateFullName checks a participant or leader name.
func ValidateFullName(name string) error {
	if name == "" {
		return fmt.Errorf("name is empty")
	}
	if len(name) > 128 {
		return fmt.Errorf("name too long, max 128 characters")
	}
	return nil
}
