package soil

import "fmt"

// ValidationError reports an invalid soil or foundation parameter.
type ValidationError struct {
	Field string
	msg   string
}

func newValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, msg: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return e.msg
}
