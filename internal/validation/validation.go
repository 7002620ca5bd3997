// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"unicode/utf8"

	"momentum/internal/models"

	"github.com/google/uuid"
)

// MinPasswordLength is the shortest accepted account password.
const MinPasswordLength = 6

// Errors collects field-level messages so a request reports every problem at once.
type Errors struct {
	details []string
}

// Addf records one failed rule.
func (e *Errors) Addf(format string, args ...any) {
	e.details = append(e.details, fmt.Sprintf(format, args...))
}

// Required fails when value is blank.
func (e *Errors) Required(field, value string) {
	if strings.TrimSpace(value) == "" {
		e.Addf("%s is required", field)
	}
}

// MaxLen fails when value has more than max characters.
func (e *Errors) MaxLen(field, value string, max int) {
	if utf8.RuneCountInString(value) > max {
		e.Addf("%s must be at most %d characters", field, max)
	}
}

// Email fails when value is not a bare email address.
func (e *Errors) Email(field, value string) {
	if !IsEmail(value) {
		e.Addf("%s must be a valid email", field)
	}
}

// URI fails when a non-empty value is not an absolute http(s) URL.
func (e *Errors) URI(field, value string) {
	if value != "" && !IsURL(value) {
		e.Addf("%s must be a valid URL", field)
	}
}

// UUID fails when a non-empty value is not a canonical UUID.
func (e *Errors) UUID(field, value string) {
	if value == "" {
		return
	}
	if _, err := uuid.Parse(value); err != nil || len(value) != 36 {
		e.Addf("%s must be a valid UUID", field)
	}
}

// Hours fails unless 0.01 <= h <= maxHours.
func (e *Errors) Hours(field string, h float64, maxHours float64) {
	if h < 0.01 {
		e.Addf("%s must be at least 0.01", field)
	} else if h > maxHours {
		e.Addf("%s must be at most %g", field, maxHours)
	}
}

// Check fails with message when ok is false.
func (e *Errors) Check(ok bool, message string) {
	if !ok {
		e.details = append(e.details, message)
	}
}

// Empty reports whether no rule failed.
func (e *Errors) Empty() bool {
	return len(e.details) == 0
}

// Err returns a validation AppError carrying every message, or nil.
func (e *Errors) Err() error {
	if e.Empty() {
		return nil
	}
	return models.NewValidationError("Validation error", e.details...)
}

// IsEmail reports whether s is a bare address such as a@b.co.
func IsEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	return at > 0 && strings.Contains(s[at+1:], ".")
}

// IsURL reports whether s is an absolute http or https URL with a host.
func IsURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ValidatePassword checks the account password rules.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	}
	if len(password) > 72 {
		return fmt.Errorf("password must not exceed 72 characters")
	}
	return nil
}
