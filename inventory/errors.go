package inventory

import (
	"errors"
	"fmt"
)

// Every registry failure wraps one of these three sentinels, so callers can
// map them to a response without parsing message text. There is no fatal
// class: a rejected operation leaves the registry unchanged and is safe to
// retry after the input or the record's state changes.
var (
	// ErrValidation: a required field was empty or a constrained field held a
	// value outside its allowed set. Re-prompt and retry.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidStateTransition: the operation is not legal from the record's
	// current status/loanType. Retrying does not help without a state change.
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrNotFound: no instrument with the given id.
	ErrNotFound = errors.New("instrument not found")
)

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func transitionErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidStateTransition, fmt.Sprintf(format, args...))
}
