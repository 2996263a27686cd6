package analysis

import (
	"errors"
	"fmt"

	"github.com/PinjariAbdul/smart-task-analyser/internal/dag"
	"github.com/PinjariAbdul/smart-task-analyser/internal/priority"
	"github.com/PinjariAbdul/smart-task-analyser/internal/task"
)

// ErrBatchTooLarge is matched by every *BatchTooLargeError.
var ErrBatchTooLarge = errors.New("batch too large")

// Error titles carried in ErrorResult.Error.
const (
	TitleValidation  = "Validation failed"
	TitleCycle       = "Circular dependencies detected"
	TitleStrategy    = "Strategy not supported"
	TitleBatchTooBig = "Batch too large"
	TitleInvalidJSON = "Invalid JSON"
	TitleInternal    = "Internal error"
)

// BatchTooLargeError reports a batch above the configured size bound.
type BatchTooLargeError struct {
	Size  int
	Limit int
}

func (e *BatchTooLargeError) Error() string {
	return fmt.Sprintf("%v: %d tasks exceeds the limit of %d", ErrBatchTooLarge, e.Size, e.Limit)
}

// Is reports whether target is ErrBatchTooLarge.
func (e *BatchTooLargeError) Is(target error) bool {
	return target == ErrBatchTooLarge
}

// ErrorResult is the structured error body returned for a rejected batch.
type ErrorResult struct {
	Error        string   `json:"error"`
	Details      []string `json:"details,omitempty"`
	CycleDetails []string `json:"cycle_details,omitempty"`
}

// ErrorResultFor maps an analysis error to its structured form. Errors
// outside the taxonomy become TitleInternal.
func ErrorResultFor(err error) ErrorResult {
	var (
		cerr *dag.CycleError
		verr *task.ValidationError
		serr *priority.StrategyNotSupportedError
		berr *BatchTooLargeError
	)
	switch {
	case errors.As(err, &cerr):
		return ErrorResult{Error: TitleCycle, CycleDetails: append([]string(nil), cerr.Path...)}
	case errors.As(err, &verr):
		return ErrorResult{Error: TitleValidation, Details: verr.Details()}
	case errors.As(err, &serr):
		return ErrorResult{Error: TitleStrategy, Details: []string{serr.Error()}}
	case errors.As(err, &berr):
		return ErrorResult{Error: TitleBatchTooBig, Details: []string{berr.Error()}}
	default:
		return ErrorResult{Error: TitleInternal, Details: []string{err.Error()}}
	}
}

// requestError wraps a malformed request parameter as a batch-level
// validation problem.
func requestError(field string, err error) error {
	return &task.ValidationError{Problems: []*task.FieldError{{Index: -1, Field: field, Err: err}}}
}
