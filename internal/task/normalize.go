package task

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/emirpasic/gods/sets/linkedhashset"
	"github.com/spf13/cast"
)

// Normalize validates a raw batch and returns normalized tasks in input
// order. It never stops at the first problem: the returned
// *ValidationError lists every offending record and field.
//
// Policies: estimated_hours defaults to 0 when absent; importance outside
// [MinImportance, MaxImportance] is rejected rather than clamped; duplicate
// dependency ids collapse to their first occurrence.
func Normalize(raw []RawTask) ([]Task, error) {
	verr := &ValidationError{}
	tasks := make([]Task, 0, len(raw))
	seen := make(map[string]int, len(raw))

	for i, r := range raw {
		t, problems := normalizeOne(i, r)
		for _, p := range problems {
			verr.Add(p)
		}
		if t.ID != "" {
			if first, ok := seen[t.ID]; ok {
				verr.Add(&FieldError{
					Index:  i,
					TaskID: t.ID,
					Field:  "id",
					Err:    fmt.Errorf("%w: %q already used by task %d", ErrDuplicateID, t.ID, first),
				})
			} else {
				seen[t.ID] = i
			}
		}
		tasks = append(tasks, t)
	}

	if err := verr.ErrOrNil(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func normalizeOne(i int, r RawTask) (Task, []*FieldError) {
	var (
		t        Task
		problems []*FieldError
	)
	fail := func(field string, err error) {
		problems = append(problems, &FieldError{Index: i, TaskID: t.ID, Field: field, Err: err})
	}

	id, err := text(r.ID)
	switch {
	case err != nil:
		fail("id", err)
	case id == "":
		fail("id", fmt.Errorf("%w: id", ErrMissingField))
	default:
		t.ID = id
	}

	title, err := text(r.Title)
	switch {
	case err != nil:
		fail("title", err)
	case title == "":
		fail("title", fmt.Errorf("%w: title", ErrMissingField))
	default:
		t.Title = title
	}

	if r.DueDate == nil {
		fail("due_date", fmt.Errorf("%w: due_date", ErrMissingField))
	} else if due, err := date(r.DueDate); err != nil {
		fail("due_date", err)
	} else {
		t.DueDate = due
	}

	if hours, err := hours(r.EstimatedHours); err != nil {
		fail("estimated_hours", err)
	} else {
		t.EstimatedHours = hours
	}

	if r.Importance == nil {
		fail("importance", fmt.Errorf("%w: importance", ErrMissingField))
	} else if imp, err := importance(r.Importance); err != nil {
		fail("importance", err)
	} else {
		t.Importance = imp
	}

	deps, err := dependencies(r.Dependencies)
	if err != nil {
		fail("dependencies", err)
	}
	t.Dependencies = deps

	return t, problems
}

// text coerces ids and titles. Numbers are accepted and rendered in
// decimal; collections and booleans are not.
func text(v any) (string, error) {
	switch v := v.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(v), nil
	case bool, []any, map[string]any:
		return "", fmt.Errorf("%w: want a string, got %T", ErrInvalidField, v)
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidField, err)
	}
	return strings.TrimSpace(s), nil
}

func date(v any) (Date, error) {
	switch v := v.(type) {
	case string:
		d, err := ParseDate(strings.TrimSpace(v))
		if err != nil {
			return Date{}, fmt.Errorf("%w: %q is not a %s date", ErrInvalidField, v, DateLayout)
		}
		return d, nil
	case time.Time:
		return DateOf(v), nil
	case Date:
		return v, nil
	case fmt.Stringer:
		return date(v.String())
	}
	return Date{}, fmt.Errorf("%w: want a %s date, got %T", ErrInvalidField, DateLayout, v)
}

func hours(v any) (float64, error) {
	if v == nil {
		return 0, nil
	}
	if _, ok := v.(bool); ok {
		return 0, fmt.Errorf("%w: want a number, got bool", ErrInvalidField)
	}
	if s, ok := v.(string); ok {
		v = strings.TrimSpace(s)
	}
	h, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, fmt.Errorf("%w: want a number, got %v", ErrInvalidField, v)
	}
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return 0, fmt.Errorf("%w: %v is not finite", ErrInvalidField, h)
	}
	if h < 0 {
		return 0, fmt.Errorf("%w: estimated_hours must be >= 0, got %v", ErrOutOfRange, h)
	}
	return h, nil
}

// importance reads strings as decimal so zero-padded ratings keep their
// value.
func importance(v any) (int, error) {
	switch n := v.(type) {
	case bool:
		return 0, fmt.Errorf("%w: want an integer, got bool", ErrInvalidField)
	case string:
		v = strings.TrimSpace(n)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, fmt.Errorf("%w: want an integer, got %v", ErrInvalidField, v)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: importance must be an integer, got %v", ErrInvalidField, f)
	}
	if f < MinImportance || f > MaxImportance {
		return 0, fmt.Errorf("%w: importance must be in [%d, %d], got %v",
			ErrOutOfRange, MinImportance, MaxImportance, f)
	}
	return int(f), nil
}

// dependencies coerces the dependency list into an ordered set.
func dependencies(v any) ([]string, error) {
	var items []any
	switch v := v.(type) {
	case nil:
		return []string{}, nil
	case []any:
		items = v
	case []string:
		items = make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
	default:
		return []string{}, fmt.Errorf("%w: want a list of task ids, got %T", ErrInvalidField, v)
	}

	set := linkedhashset.New()
	for j, item := range items {
		id, err := text(item)
		if err != nil {
			return []string{}, fmt.Errorf("entry %d: %w", j, err)
		}
		if id == "" {
			return []string{}, fmt.Errorf("%w: entry %d is empty", ErrInvalidField, j)
		}
		set.Add(id)
	}

	deps := make([]string, 0, set.Size())
	for _, id := range set.Values() {
		deps = append(deps, id.(string))
	}
	return deps, nil
}
