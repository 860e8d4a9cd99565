// Package contribution holds user-submitted dictionary entries and the
// durable offline queue they wait in until they reach the remote tracker.
package contribution

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// AnonymousContributor is the sentinel used when no username is known.
const AnonymousContributor = "anonymous"

// Status tracks where a contribution is in its submission lifecycle.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSubmitted Status = "submitted"
	StatusFailed    Status = "failed"
)

// Contribution is a single proposed dictionary entry.
type Contribution struct {
	AmharicWord   string `json:"amharic" validate:"required"`
	Pronunciation string `json:"pronunciation" validate:"required"`
	ArabicWord    string `json:"arabic" validate:"required"`
	UsageExample  string `json:"usage,omitempty"`
	Category      string `json:"category" validate:"required"`
	Level         string `json:"level" validate:"required"`
	Timestamp     string `json:"timestamp"`
	Contributor   string `json:"contributor"`
	Status        Status `json:"status"`
}

// ValidationError reports a missing required submission field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the required fields. It reports the first missing one.
func (c Contribution) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrors validator.ValidationErrors
		if ok := errors.As(err, &fieldErrors); ok && len(fieldErrors) > 0 {
			return &ValidationError{Field: jsonField(fieldErrors[0].StructField())}
		}
		return fmt.Errorf("validate.Struct() > %w", err)
	}
	return nil
}

// SameIdentity reports whether two contributions are the same queued item.
// No server-assigned identifier exists before a successful submission, so
// identity is the (timestamp, contributor) pair stamped at intake.
func (c Contribution) SameIdentity(other Contribution) bool {
	return c.Timestamp == other.Timestamp && c.Contributor == other.Contributor
}

// Stamp fills the intake metadata: timestamp, contributor, and pending status.
// Nanosecond precision keeps same-instant collisions between two submissions
// by the same contributor out of the removal-by-identity path.
func (c Contribution) Stamp(contributor string, now time.Time) Contribution {
	if contributor == "" {
		contributor = AnonymousContributor
	}
	c.Contributor = contributor
	c.Timestamp = now.UTC().Format(time.RFC3339Nano)
	c.Status = StatusPending
	return c
}

func jsonField(structField string) string {
	switch structField {
	case "AmharicWord":
		return "amharic"
	case "Pronunciation":
		return "pronunciation"
	case "ArabicWord":
		return "arabic"
	case "Category":
		return "category"
	case "Level":
		return "level"
	}
	return strings.ToLower(structField)
}
