package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSessionNotFound     = errors.New("wizard session not found")
	ErrSessionClosed       = errors.New("wizard session is closed")
	ErrStepLocked          = errors.New("step has not been reached yet")
	ErrRequestPending      = errors.New("a request of this kind is already in progress")
	ErrSubmissionInFlight  = errors.New("project submission already in progress")
	ErrNotOnLaunchStep     = errors.New("project can only be launched from the final step")
	ErrNothingToRetry      = errors.New("no failed request to retry")
	ErrTeamFull            = errors.New("team is already at its maximum size")
	ErrDuplicateMember     = errors.New("member is already on the team")
	ErrCannotRemoveCreator = errors.New("the project creator cannot be removed")
	ErrMemberNotFound      = errors.New("team member not found")
	ErrMilestoneNotFound   = errors.New("milestone not found")
	ErrInvalidComplexity   = errors.New("complexity must be beginner, intermediate or advanced")
	ErrUnknownCategory     = errors.New("unknown category")
	ErrNegativeBudget      = errors.New("estimated budget cannot be negative")
	ErrInvalidDate         = errors.New("dates must use the YYYY-MM-DD format")
)

// FieldError describes one missing or malformed field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when a gated action is blocked by incomplete input.
// It is a normal outcome, never a crash: callers render Fields inline.
type ValidationError struct {
	Step   Step         `json:"step"`
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return fmt.Sprintf("step %s is incomplete: %s", e.Step, strings.Join(names, ", "))
}

// AsValidation unwraps err into a *ValidationError.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
