package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sourcegraph/conc/iter"

	"github.com/PinjariAbdul/smart-task-analyser/internal/analysis"
	"github.com/PinjariAbdul/smart-task-analyser/internal/batchfile"
	"github.com/PinjariAbdul/smart-task-analyser/internal/task"
	"github.com/PinjariAbdul/smart-task-analyser/internal/telemetry"
	"github.com/PinjariAbdul/smart-task-analyser/internal/ui"
)

// titleBatchFile heads errors from files that could not be read or decoded.
const titleBatchFile = "Invalid batch file"

type mode int

const (
	modeAnalyze mode = iota
	modeSuggest
)

// runOptions are the per-invocation overrides shared by analyze, suggest
// and validate.
type runOptions struct {
	strategy string
	limit    int
	today    string
	asJSON   bool
}

func (ro runOptions) referenceTime() (time.Time, error) {
	if ro.today == "" {
		return time.Time{}, nil
	}
	d, err := task.ParseDate(ro.today)
	if err != nil {
		return time.Time{}, fmt.Errorf("--today: want %s, got %q", task.DateLayout, ro.today)
	}
	return d.Time, nil
}

// outcome is the result of running one batch file.
type outcome struct {
	path    string
	batch   *batchfile.Batch
	resp    *analysis.Response
	err     error
	loadErr bool
}

func (o outcome) errorResult() analysis.ErrorResult {
	var verr *task.ValidationError
	if o.loadErr && !errors.As(o.err, &verr) {
		return analysis.ErrorResult{Error: titleBatchFile, Details: []string{o.err.Error()}}
	}
	return analysis.ErrorResultFor(o.err)
}

// runBatches runs every file concurrently and returns outcomes in path order.
func (e *env) runBatches(paths []string, m mode, ro runOptions) []outcome {
	return iter.Map(paths, func(path *string) outcome {
		return e.runBatch(*path, m, ro)
	})
}

func (e *env) runBatch(path string, m mode, ro runOptions) outcome {
	out := outcome{path: path}

	b, err := batchfile.Load(e.fs, path)
	if err != nil {
		out.err, out.loadErr = err, true
		return out
	}
	out.batch = b
	e.log.V(1).Info("batch loaded", "source", path, "tasks", len(b.Tasks), "generated", len(b.Generated))
	_ = e.events.Emit(telemetry.Event{
		Timestamp: time.Now(),
		Kind:      telemetry.KindBatchLoaded,
		Source:    path,
		Data:      map[string]any{"tasks": len(b.Tasks), "generated": len(b.Generated)},
	})

	now, err := ro.referenceTime()
	if err != nil {
		out.err = err
		return out
	}

	switch m {
	case modeSuggest:
		req := b.SuggestRequest()
		req.Now = now
		if ro.strategy != "" {
			req.Strategy = ro.strategy
		}
		if ro.limit != 0 {
			req.Limit = ro.limit
		}
		out.resp, out.err = e.svc.Suggest(req)
	default:
		req := b.Request()
		req.Now = now
		if ro.strategy != "" {
			req.Strategy = ro.strategy
		}
		out.resp, out.err = e.svc.Analyze(req)
	}
	return out
}

// printOutcomes writes each outcome in order and returns how many failed.
func printOutcomes(w io.Writer, outs []outcome, asJSON bool) (failed int, err error) {
	p := ui.New(w)
	enc := json.NewEncoder(w)
	for _, o := range outs {
		if o.err != nil {
			failed++
		}
		if asJSON {
			if err := enc.Encode(o.body()); err != nil {
				return failed, fmt.Errorf("encoding %s: %w", o.path, err)
			}
			continue
		}
		if o.err != nil {
			p.Rejected(o.path, o.errorResult())
			continue
		}
		p.Report(o.path, o.resp)
	}
	return failed, nil
}

// body is what the HTTP API would have returned for the batch.
func (o outcome) body() any {
	if o.err != nil {
		return o.errorResult()
	}
	return o.resp
}

func rejectedError(failed, total int) error {
	if failed == 0 {
		return nil
	}
	if total == 1 {
		return errors.New("batch rejected")
	}
	return fmt.Errorf("%d of %d batches rejected", failed, total)
}
