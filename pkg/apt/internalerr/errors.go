package internalerr

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidConfig = errors.New("invalid configuration")

	// Recovered conditions: reported through diagnostics, never fatal.
	ErrParse              = errors.New("malformed field")
	ErrUndefinedStatistic = errors.New("undefined statistic")
	ErrMissingTotals      = errors.New("missing totals entry")

	// ErrResource marks an input that is absent or unreadable.
	ErrResource = errors.New("resource unavailable")
)

// StageError reports which pipeline stage failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Recoverable reports whether err is one of the conditions the pipeline
// counts and skips rather than aborting on.
func Recoverable(err error) bool {
	return errors.Is(err, ErrParse) ||
		errors.Is(err, ErrUndefinedStatistic) ||
		errors.Is(err, ErrMissingTotals)
}
