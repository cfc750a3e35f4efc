package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound                = errors.New("declaration_not_found")
	ErrInvalidUser             = errors.New("invalid_user")
	ErrInvalidYear             = errors.New("invalid_year")
	ErrInvalidMonth            = errors.New("invalid_month")
	ErrInvalidTransition       = errors.New("invalid_transition")
	ErrCorrectionNotesRequired = errors.New("correction_notes_required")
	ErrAlreadyPaid             = errors.New("filing_already_paid")
)

// InvalidTransitionError reports a lifecycle action attempted against a
// status that does not permit it. It always names the current status so
// the caller can see why the action was refused.
type InvalidTransitionError struct {
	Action  string
	Current Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s: declaration is %s", e.Action, e.Current)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

func NewInvalidTransition(action string, current Status) error {
	return &InvalidTransitionError{Action: action, Current: current}
}
