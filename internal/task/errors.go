package task

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for task validation.
var (
	// ErrMissingField indicates a required field (id, title, ...) is absent or empty.
	ErrMissingField = errors.New("required field missing")
	// ErrDuplicateID indicates two or more tasks share the same id.
	ErrDuplicateID = errors.New("duplicate task ID")
	// ErrInvalidField indicates a field has the wrong type or format.
	ErrInvalidField = errors.New("invalid field value")
	// ErrOutOfRange indicates a numeric field is outside its allowed bounds.
	ErrOutOfRange = errors.New("value out of range")
	// ErrUnknownDependency indicates a dependency id that is not in the batch.
	ErrUnknownDependency = errors.New("unknown dependency")
)

// FieldError records one validation problem with its position in the batch.
type FieldError struct {
	Index  int    // zero-based position of the record in the batch; -1 for batch-level problems
	TaskID string // id of the record when known
	Field  string
	Err    error
}

// Error returns a human-readable string including record and field context.
func (e *FieldError) Error() string {
	var b strings.Builder
	switch {
	case e.Index < 0 && e.TaskID == "":
		// batch-level
	case e.TaskID != "":
		fmt.Fprintf(&b, "task %d (%q): ", e.Index, e.TaskID)
	default:
		fmt.Fprintf(&b, "task %d: ", e.Index)
	}
	if e.Field != "" {
		b.WriteString(e.Field)
		b.WriteString(": ")
	}
	b.WriteString(e.Err.Error())
	return b.String()
}

// Unwrap returns the underlying error for use with errors.Is/As.
func (e *FieldError) Unwrap() error {
	return e.Err
}

// ValidationError collects every problem found in a batch so a caller can
// fix all of them in one round trip.
type ValidationError struct {
	Problems []*FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "validation failed: " + e.Problems[0].Error()
	}
	return fmt.Sprintf("validation failed: %d problems, first: %v", len(e.Problems), e.Problems[0])
}

// Unwrap exposes every problem to errors.Is/As.
func (e *ValidationError) Unwrap() []error {
	errs := make([]error, len(e.Problems))
	for i, p := range e.Problems {
		errs[i] = p
	}
	return errs
}

// Details returns one line per problem, in the order they were found.
func (e *ValidationError) Details() []string {
	details := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		details[i] = p.Error()
	}
	return details
}

// Add appends a problem.
func (e *ValidationError) Add(p *FieldError) {
	e.Problems = append(e.Problems, p)
}

// ErrOrNil returns e as an error when it holds problems, nil otherwise.
func (e *ValidationError) ErrOrNil() error {
	if e == nil || len(e.Problems) == 0 {
		return nil
	}
	return e
}
