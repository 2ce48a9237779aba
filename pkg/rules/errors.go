package rules

import "errors"

// ValidationError marks malformed facts, outcomes or request parameters.
// Construction rejects them before anything reaches the store.
type ValidationError struct {
	reason error
}

func NewValidationError(reason error) ValidationError {
	return ValidationError{reason: reason}
}

func (e ValidationError) Error() string {
	return e.reason.Error()
}

func (e ValidationError) Unwrap() error {
	return e.reason
}

func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}
