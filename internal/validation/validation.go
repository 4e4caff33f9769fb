package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// FieldError is a single failed check on a named input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is the error type returned by every validator in this package.
// Handlers serialize it as {success:false, errors:[{field,message},...]}.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return strings.Join(msgs, "; ")
}

// Collector accumulates field errors across a set of checks.
type Collector struct {
	errs Errors
}

func (c *Collector) Add(field, message string) {
	c.errs = append(c.errs, FieldError{Field: field, Message: message})
}

// Err returns the accumulated errors, or nil if every check passed.
func (c *Collector) Err() error {
	if len(c.errs) == 0 {
		return nil
	}
	return c.errs
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

const (
	MinUsernameLength = 3
	MinPasswordLength = 6
	MinStars          = 1
	MaxStars          = 5
	MaxPerPage        = 100
)

func ValidStars(stars int) bool {
	return stars >= MinStars && stars <= MaxStars
}
