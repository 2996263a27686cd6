// Package batchfile imports task batches from JSON, YAML and TOML files.
// It is the only place where alternate field spellings are accepted: every
// record is rewritten to the canonical field names before it reaches the
// analysis engine, which validates it again.
package batchfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"github.com/spf13/cast"

	"github.com/PinjariAbdul/smart-task-analyser/internal/analysis"
	"github.com/PinjariAbdul/smart-task-analyser/internal/task"
)

// Sentinel errors for batch files.
var (
	ErrUnsupportedFormat = errors.New("unsupported batch file format")
	ErrMalformed         = errors.New("malformed batch file")
)

// Format is the encoding of a batch file.
type Format int

// Supported formats.
const (
	JSON Format = iota
	YAML
	TOML
)

func (f Format) String() string {
	switch f {
	case JSON:
		return "json"
	case YAML:
		return "yaml"
	case TOML:
		return "toml"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON, nil
	case ".yaml", ".yml":
		return YAML, nil
	case ".toml":
		return TOML, nil
	}
	return 0, fmt.Errorf("%w: %q (want .json, .yaml, .yml or .toml)", ErrUnsupportedFormat, filepath.Base(path))
}

// Batch is one imported file.
type Batch struct {
	Source   string
	Tasks    []task.RawTask
	Strategy string
	Weights  map[string]float64
	Limit    int
	// Generated lists the ids assigned to records that had none.
	Generated []string
}

// Request returns the batch as an analysis request.
func (b *Batch) Request() analysis.Request {
	return analysis.Request{Tasks: b.Tasks, Strategy: b.Strategy, Weights: b.Weights}
}

// SuggestRequest returns the batch as a suggestion request.
func (b *Batch) SuggestRequest() analysis.SuggestRequest {
	return analysis.SuggestRequest{Tasks: b.Tasks, Strategy: b.Strategy, Weights: b.Weights, Limit: b.Limit}
}

// Load reads and decodes the batch file at path.
func Load(fs afero.Fs, path string) (*Batch, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	b, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	b.Source = path
	return b, nil
}

// Decode parses a batch document. The document is either the request shape
// (a "tasks" list plus optional strategy, weights and limit) or, for JSON
// and YAML, a bare list of tasks.
func Decode(data []byte, format Format) (*Batch, error) {
	var doc any
	var err error
	switch format {
	case JSON:
		err = json.Unmarshal(data, &doc)
	case YAML:
		err = yaml.Unmarshal(data, &doc)
	case TOML:
		var m map[string]any
		err = toml.Unmarshal(data, &m)
		doc = m
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return fromDocument(doc)
}

func fromDocument(doc any) (*Batch, error) {
	b := &Batch{}
	var records []any

	switch doc := doc.(type) {
	case nil:
		return nil, fmt.Errorf("%w: empty document", ErrMalformed)
	case []any:
		records = doc
	case map[string]any:
		for k, v := range doc {
			switch fold(k) {
			case "tasks":
				list, ok := v.([]any)
				if !ok && v != nil {
					return nil, fmt.Errorf("%w: tasks must be a list, got %T", ErrMalformed, v)
				}
				records = list
			case "strategy":
				s, err := cast.ToStringE(v)
				if err != nil {
					return nil, fmt.Errorf("%w: strategy: %v", ErrMalformed, err)
				}
				b.Strategy = s
			case "weights":
				w, err := weights(v)
				if err != nil {
					return nil, err
				}
				b.Weights = w
			case "limit":
				n, err := wholeNumber(v)
				if err != nil {
					return nil, fmt.Errorf("%w: limit: %v", ErrMalformed, err)
				}
				b.Limit = n
			}
		}
	default:
		return nil, fmt.Errorf("%w: want a task list or an object with tasks, got %T", ErrMalformed, doc)
	}

	tasks, err := canonicalize(records)
	if err != nil {
		return nil, err
	}
	b.Tasks = tasks
	b.Generated = assignIDs(b.Tasks)
	return b, nil
}

// wholeNumber reads strings as decimal, so "010" is ten.
func wholeNumber(v any) (int, error) {
	switch n := v.(type) {
	case bool:
		return 0, fmt.Errorf("want an integer, got bool")
	case string:
		v = strings.TrimSpace(n)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("want an integer, got %v", v)
	}
	return int(f), nil
}

func weights(v any) (map[string]float64, error) {
	m, err := cast.ToStringMapE(v)
	if err != nil {
		return nil, fmt.Errorf("%w: weights: %v", ErrMalformed, err)
	}
	out := make(map[string]float64, len(m))
	for k, raw := range m {
		f, err := cast.ToFloat64E(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: weights.%s: %v", ErrMalformed, k, err)
		}
		out[k] = f
	}
	return out, nil
}

// fieldAliases maps folded spellings to canonical field names.
var fieldAliases = map[string]string{
	"id":             "id",
	"taskid":         "id",
	"title":          "title",
	"name":           "title",
	"duedate":        "due_date",
	"due":            "due_date",
	"deadline":       "due_date",
	"estimatedhours": "estimated_hours",
	"hours":          "estimated_hours",
	"estimate":       "estimated_hours",
	"importance":     "importance",
	"priority":       "importance",
	"dependencies":   "dependencies",
	"dependson":      "dependencies",
	"deps":           "dependencies",
	"blockedby":      "dependencies",
}

// fold lowercases a key and drops separators so due_date, dueDate and
// Due-Date compare equal.
func fold(key string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', ' ':
			return -1
		}
		return r
	}, strings.ToLower(key))
}

// canonicalize rewrites each record to a RawTask. Unknown keys are ignored.
// When two spellings of one field appear the canonical spelling wins.
func canonicalize(records []any) ([]task.RawTask, error) {
	verr := &task.ValidationError{}
	tasks := make([]task.RawTask, 0, len(records))

	for i, rec := range records {
		m, err := record(rec)
		if err != nil {
			verr.Add(&task.FieldError{
				Index: i,
				Field: "record",
				Err:   fmt.Errorf("%w: want an object, got %T", task.ErrInvalidField, rec),
			})
			tasks = append(tasks, task.RawTask{})
			continue
		}

		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fields := make(map[string]any, len(m))
		exact := make(map[string]bool, len(m))
		for _, k := range keys {
			v := m[k]
			canon, ok := fieldAliases[fold(k)]
			if !ok {
				continue
			}
			if exact[canon] {
				continue
			}
			fields[canon] = v
			exact[canon] = k == canon
		}

		tasks = append(tasks, task.RawTask{
			ID:             fields["id"],
			Title:          fields["title"],
			DueDate:        fields["due_date"],
			EstimatedHours: fields["estimated_hours"],
			Importance:     fields["importance"],
			Dependencies:   fields["dependencies"],
		})
	}

	if err := verr.ErrOrNil(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func record(v any) (map[string]any, error) {
	switch v.(type) {
	case map[string]any, map[any]any:
		return cast.ToStringMapE(v)
	}
	return nil, fmt.Errorf("%T", v)
}

// assignIDs gives every record without an id the id task<N>, N being its
// one-based position, skipping ids already present in the batch.
func assignIDs(tasks []task.RawTask) []string {
	taken := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if id := idOf(t.ID); id != "" {
			taken[id] = true
		}
	}

	var generated []string
	for i := range tasks {
		if idOf(tasks[i].ID) != "" {
			continue
		}
		n := i + 1
		id := fmt.Sprintf("task%d", n)
		for taken[id] {
			n += len(tasks)
			id = fmt.Sprintf("task%d", n)
		}
		taken[id] = true
		tasks[i].ID = id
		generated = append(generated, id)
	}
	return generated
}

func idOf(v any) string {
	if v == nil {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimSpace(s)
}
