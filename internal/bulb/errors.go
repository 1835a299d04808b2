package bulb

import (
	"errors"
	"fmt"
)

// ErrResourceLimit is wrapped by every ResourceLimitError.
var ErrResourceLimit = errors.New("resource limit exceeded")

// ResourceLimitError reports a request rejected before computation because
// it would exceed a configured bound.
type ResourceLimitError struct {
	Param string
	Value float64
	Limit float64
}

func (e *ResourceLimitError) Error() string {
	return fmt.Sprintf("%s %g exceeds the configured maximum %g", e.Param, e.Value, e.Limit)
}

func (e *ResourceLimitError) Unwrap() error { return ErrResourceLimit }
