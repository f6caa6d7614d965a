package dialog

import (
	"errors"
	"fmt"
)

// ValidationError rejects a single input without failing the wizard. The
// session and draft are left untouched so the user can retry the same step.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func invalidf(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is an input rejection rather than an
// infrastructure failure.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
