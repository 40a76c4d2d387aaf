package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidationError reports malformed input at the settings/contacts boundary.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ValidateThreshold checks an alert threshold in minutes.
func ValidateThreshold(minutes int) error {
	if minutes < 1 {
		return invalid("alertThresholdMinutes", "alert threshold must be at least 1 minute")
	}
	if minutes > MaxThresholdMinutes {
		return invalid("alertThresholdMinutes", "alert threshold must not exceed 30 days (%d minutes)", MaxThresholdMinutes)
	}
	return nil
}

// ValidateEmail checks an address against the accepted shape.
func ValidateEmail(field, email string) error {
	if strings.TrimSpace(email) == "" {
		return invalid(field, "email is required")
	}
	if !emailPattern.MatchString(email) {
		return invalid(field, "invalid email format")
	}
	return nil
}

// ValidateContact checks the editable fields of a contact.
func ValidateContact(c Contact) error {
	if strings.TrimSpace(c.Name) == "" {
		return invalid("name", "name is required")
	}
	return ValidateEmail("email", c.Email)
}

// ValidateSMTP requires every credential field.
func ValidateSMTP(c SMTPConfig) error {
	switch {
	case c.Host == "":
		return invalid("host", "SMTP host is required")
	case c.Port <= 0 || c.Port > 65535:
		return invalid("port", "SMTP port must be between 1 and 65535")
	case c.Username == "":
		return invalid("username", "SMTP username is required")
	case c.Password == "":
		return invalid("password", "SMTP password is required")
	}
	return nil
}
