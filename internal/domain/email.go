package domain

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidatePrizeEmail checks the prize form before anything is submitted.
func ValidatePrizeEmail(name, email string) error {
	var errs ValidationErrors
	if strings.TrimSpace(name) == "" {
		errs = append(errs, ValidationError{Field: "name", Message: "Name is required"})
	}
	if !emailPattern.MatchString(strings.TrimSpace(email)) {
		errs = append(errs, ValidationError{Field: "email", Message: "Please enter a valid email address"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
