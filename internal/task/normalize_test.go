package task

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func validRaw(id string, deps ...any) RawTask {
	return RawTask{
		ID:             id,
		Title:          "Task " + id,
		DueDate:        "2025-03-10",
		EstimatedHours: 2.5,
		Importance:     float64(7),
		Dependencies:   deps,
	}
}

func TestNormalize_Valid(t *testing.T) {
	t.Parallel()

	got, err := Normalize([]RawTask{
		validRaw("a"),
		validRaw("b", "a", "a", " c "),
		validRaw("c"),
	})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	want := []Task{
		{ID: "a", Title: "Task a", DueDate: NewDate(2025, time.March, 10), EstimatedHours: 2.5, Importance: 7, Dependencies: []string{}},
		{ID: "b", Title: "Task b", DueDate: NewDate(2025, time.March, 10), EstimatedHours: 2.5, Importance: 7, Dependencies: []string{"a", "c"}},
		{ID: "c", Title: "Task c", DueDate: NewDate(2025, time.March, 10), EstimatedHours: 2.5, Importance: 7, Dependencies: []string{}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Normalize mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_Defaults(t *testing.T) {
	t.Parallel()

	raw := validRaw("a")
	raw.EstimatedHours = nil
	raw.Dependencies = nil

	got, err := Normalize([]RawTask{raw})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got[0].EstimatedHours != 0 {
		t.Errorf("EstimatedHours = %v, want 0", got[0].EstimatedHours)
	}
	if got[0].Dependencies == nil || len(got[0].Dependencies) != 0 {
		t.Errorf("Dependencies = %#v, want empty non-nil slice", got[0].Dependencies)
	}
}

func TestNormalize_Coercion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		mut   func(*RawTask)
		check func(t *testing.T, got Task)
	}{
		{
			name: "numeric id",
			mut:  func(r *RawTask) { r.ID = float64(42) },
			check: func(t *testing.T, got Task) {
				if got.ID != "42" {
					t.Errorf("ID = %q, want 42", got.ID)
				}
			},
		},
		{
			name: "string hours",
			mut:  func(r *RawTask) { r.EstimatedHours = " 3.5 " },
			check: func(t *testing.T, got Task) {
				if got.EstimatedHours != 3.5 {
					t.Errorf("EstimatedHours = %v, want 3.5", got.EstimatedHours)
				}
			},
		},
		{
			name: "int64 importance",
			mut:  func(r *RawTask) { r.Importance = int64(10) },
			check: func(t *testing.T, got Task) {
				if got.Importance != 10 {
					t.Errorf("Importance = %d, want 10", got.Importance)
				}
			},
		},
		{
			name: "string importance",
			mut:  func(r *RawTask) { r.Importance = "3" },
			check: func(t *testing.T, got Task) {
				if got.Importance != 3 {
					t.Errorf("Importance = %d, want 3", got.Importance)
				}
			},
		},
		{
			name: "zero-padded string importance",
			mut:  func(r *RawTask) { r.Importance = "010" },
			check: func(t *testing.T, got Task) {
				if got.Importance != 10 {
					t.Errorf("Importance = %d, want 10", got.Importance)
				}
			},
		},
		{
			name: "time due date",
			mut: func(r *RawTask) {
				r.DueDate = time.Date(2025, time.June, 1, 15, 30, 0, 0, time.UTC)
			},
			check: func(t *testing.T, got Task) {
				if got.DueDate != NewDate(2025, time.June, 1) {
					t.Errorf("DueDate = %v, want 2025-06-01", got.DueDate)
				}
			},
		},
		{
			name: "string slice dependencies",
			mut:  func(r *RawTask) { r.Dependencies = []string{"x"} },
			check: func(t *testing.T, got Task) {
				if diff := cmp.Diff([]string{"x"}, got.Dependencies); diff != "" {
					t.Errorf("Dependencies mismatch (-want +got):\n%s", diff)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			raw := validRaw("a")
			tt.mut(&raw)
			got, err := Normalize([]RawTask{raw})
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			tt.check(t, got[0])
		})
	}
}

func TestNormalize_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mut     func(*RawTask)
		field   string
		wantErr error
	}{
		{"missing id", func(r *RawTask) { r.ID = nil }, "id", ErrMissingField},
		{"blank id", func(r *RawTask) { r.ID = "  " }, "id", ErrMissingField},
		{"missing title", func(r *RawTask) { r.Title = "" }, "title", ErrMissingField},
		{"list title", func(r *RawTask) { r.Title = []any{"x"} }, "title", ErrInvalidField},
		{"missing due date", func(r *RawTask) { r.DueDate = nil }, "due_date", ErrMissingField},
		{"bad due date", func(r *RawTask) { r.DueDate = "next friday" }, "due_date", ErrInvalidField},
		{"negative hours", func(r *RawTask) { r.EstimatedHours = -1.0 }, "estimated_hours", ErrOutOfRange},
		{"bool hours", func(r *RawTask) { r.EstimatedHours = true }, "estimated_hours", ErrInvalidField},
		{"text hours", func(r *RawTask) { r.EstimatedHours = "a while" }, "estimated_hours", ErrInvalidField},
		{"missing importance", func(r *RawTask) { r.Importance = nil }, "importance", ErrMissingField},
		{"importance too high", func(r *RawTask) { r.Importance = float64(11) }, "importance", ErrOutOfRange},
		{"importance too low", func(r *RawTask) { r.Importance = float64(0) }, "importance", ErrOutOfRange},
		{"fractional importance", func(r *RawTask) { r.Importance = 4.5 }, "importance", ErrInvalidField},
		{"hex importance", func(r *RawTask) { r.Importance = "0x0A" }, "importance", ErrInvalidField},
		{"binary importance", func(r *RawTask) { r.Importance = "0b111" }, "importance", ErrInvalidField},
		{"fractional string importance", func(r *RawTask) { r.Importance = "4.5" }, "importance", ErrInvalidField},
		{"scalar dependencies", func(r *RawTask) { r.Dependencies = "b" }, "dependencies", ErrInvalidField},
		{"empty dependency", func(r *RawTask) { r.Dependencies = []any{"b", ""} }, "dependencies", ErrInvalidField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			raw := validRaw("a")
			tt.mut(&raw)
			_, err := Normalize([]RawTask{raw})

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("got %v, want *ValidationError", err)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
			if len(verr.Problems) != 1 {
				t.Fatalf("got %d problems, want 1: %v", len(verr.Problems), verr.Details())
			}
			if verr.Problems[0].Field != tt.field {
				t.Errorf("Field = %q, want %q", verr.Problems[0].Field, tt.field)
			}
		})
	}
}

func TestNormalize_CollectsAllProblems(t *testing.T) {
	t.Parallel()

	bad := validRaw("b")
	bad.Title = nil
	bad.Importance = float64(42)

	_, err := Normalize([]RawTask{
		validRaw("a"),
		bad,
		validRaw("a"),
	})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want *ValidationError", err)
	}

	want := []string{
		`task 1 ("b"): title: required field missing: title`,
		`task 1 ("b"): importance: value out of range: importance must be in [1, 10], got 42`,
		`task 2 ("a"): id: duplicate task ID: "a" already used by task 0`,
	}
	if diff := cmp.Diff(want, verr.Details()); diff != "" {
		t.Errorf("Details mismatch (-want +got):\n%s", diff)
	}
	if !errors.Is(err, ErrDuplicateID) {
		t.Error("errors.Is(err, ErrDuplicateID) = false, want true")
	}
}

func TestNormalize_EmptyBatch(t *testing.T) {
	t.Parallel()

	got, err := Normalize(nil)
	if err != nil {
		t.Fatalf("Normalize(nil): %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d tasks, want 0", len(got))
	}
}

func TestFieldError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  FieldError
		want string
	}{
		{FieldError{Index: 3, Field: "id", Err: ErrMissingField}, "task 3: id: required field missing"},
		{FieldError{Index: 0, TaskID: "a", Field: "title", Err: ErrMissingField}, `task 0 ("a"): title: required field missing`},
		{FieldError{Index: -1, Field: "weights", Err: ErrOutOfRange}, "weights: value out of range"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestDate(t *testing.T) {
	t.Parallel()

	d := NewDate(2025, time.January, 31)
	ref := time.Date(2025, time.January, 28, 23, 59, 0, 0, time.UTC)
	if got := d.DaysFrom(ref); got != 3 {
		t.Errorf("DaysFrom = %d, want 3", got)
	}
	if got := NewDate(2025, time.January, 20).DaysFrom(ref); got != -8 {
		t.Errorf("DaysFrom past = %d, want -8", got)
	}

	b, err := d.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if string(b) != `"2025-01-31"` {
		t.Errorf("MarshalJSON = %s", b)
	}

	var back Date
	if err := back.UnmarshalJSON(b); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if back != d {
		t.Errorf("round trip = %v, want %v", back, d)
	}
	if err := back.UnmarshalJSON([]byte("20250131")); err == nil || !strings.Contains(err.Error(), "date must be") {
		t.Errorf("UnmarshalJSON(non-string) err = %v", err)
	}
}
