// Package analysis is the entry point of the task analysis engine. It runs
// validation, graph construction, cycle detection, scoring and ranking as
// one pipeline and exposes the full analysis and the top-N suggestion view.
package analysis

import (
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/PinjariAbdul/smart-task-analyser/internal/dag"
	"github.com/PinjariAbdul/smart-task-analyser/internal/priority"
	"github.com/PinjariAbdul/smart-task-analyser/internal/task"
	"github.com/PinjariAbdul/smart-task-analyser/internal/telemetry"
)

// Options holds the engine's tunables.
type Options struct {
	// MaxBatchSize bounds the number of tasks per call. Zero disables the bound.
	MaxBatchSize    int
	DefaultStrategy priority.Strategy
	Weights         priority.Weights
	SuggestLimit    int
	SuggestStrategy priority.Strategy
}

// DefaultOptions returns production defaults: 500 tasks per batch, the
// balanced strategy with default weights, and top-3 suggestions.
func DefaultOptions() Options {
	return Options{
		MaxBatchSize:    500,
		DefaultStrategy: priority.Balanced,
		Weights:         priority.DefaultWeights(),
		SuggestLimit:    3,
		SuggestStrategy: priority.Balanced,
	}
}

// Request is a full analysis call.
type Request struct {
	// ID correlates logs and telemetry; generated when empty.
	ID    string         `json:"-"`
	Tasks []task.RawTask `json:"tasks"`
	// Strategy names a priority.Strategy or alias; empty selects the default.
	Strategy string `json:"strategy,omitempty"`
	// Weights override individual balanced-strategy weights.
	Weights map[string]float64 `json:"weights,omitempty"`
	// Now is the reference time for due-date math; zero uses the service clock.
	Now time.Time `json:"-"`
}

// SuggestRequest is a top-N suggestion call.
type SuggestRequest struct {
	ID       string         `json:"-"`
	Tasks    []task.RawTask `json:"tasks"`
	Strategy string         `json:"strategy,omitempty"`
	// Weights overrides the configured balanced weights, as in Request.
	Weights map[string]float64 `json:"weights,omitempty"`
	// Limit overrides the configured N when positive.
	Limit int       `json:"limit,omitempty"`
	Now   time.Time `json:"-"`
}

// Response lists scored tasks in rank order.
type Response struct {
	Tasks    []priority.Result `json:"tasks"`
	Strategy string            `json:"-"`
}

// Service runs analyses. It keeps no state between calls and is safe for
// concurrent use.
type Service struct {
	opts   Options
	clock  func() time.Time
	log    logr.Logger
	events *telemetry.Emitter
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the source of the reference time.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l logr.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithTelemetry records analysis events to e. A nil emitter is a no-op.
func WithTelemetry(e *telemetry.Emitter) Option {
	return func(s *Service) { s.events = e }
}

// New creates a Service.
func New(opts Options, options ...Option) *Service {
	s := &Service{
		opts:  opts,
		clock: time.Now,
		log:   logr.Discard(),
	}
	for _, o := range options {
		o(s)
	}
	return s
}

// Options returns the service configuration.
func (s *Service) Options() Options {
	return s.opts
}

// Analyze validates, scores and ranks a batch. Any failing stage rejects
// the whole batch: no task is scored when validation fails or a cycle exists.
func (s *Service) Analyze(req Request) (*Response, error) {
	id := requestID(req.ID)
	start := time.Now()

	resp, err := s.run(req.Tasks, req.Strategy, s.opts.DefaultStrategy, req.Weights, s.refTime(req.Now))
	s.record(id, "analyze", len(req.Tasks), resp, err, time.Since(start))
	return resp, err
}

// Suggest runs the same pipeline as Analyze and keeps only the top N
// tasks. Batches smaller than N are returned whole.
func (s *Service) Suggest(req SuggestRequest) (*Response, error) {
	id := requestID(req.ID)
	start := time.Now()

	resp, err := s.suggest(req)
	s.record(id, "suggest", len(req.Tasks), resp, err, time.Since(start))
	return resp, err
}

func (s *Service) suggest(req SuggestRequest) (*Response, error) {
	if req.Limit < 0 {
		return nil, requestError("limit", fmt.Errorf("%w: limit must be >= 0, got %d", task.ErrOutOfRange, req.Limit))
	}
	limit := req.Limit
	if limit == 0 {
		limit = s.opts.SuggestLimit
	}

	resp, err := s.run(req.Tasks, req.Strategy, s.opts.SuggestStrategy, req.Weights, s.refTime(req.Now))
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(resp.Tasks) > limit {
		resp.Tasks = resp.Tasks[:limit]
	}
	return resp, nil
}

// run is the shared pipeline: size bound, strategy, validation, graph,
// cycle check, scoring, ranking.
func (s *Service) run(raw []task.RawTask, strategyName string, def priority.Strategy, weights map[string]float64, now time.Time) (*Response, error) {
	if s.opts.MaxBatchSize > 0 && len(raw) > s.opts.MaxBatchSize {
		return nil, &BatchTooLargeError{Size: len(raw), Limit: s.opts.MaxBatchSize}
	}

	strategy, err := priority.ParseStrategy(strategyName, def)
	if err != nil {
		return nil, err
	}
	w, err := s.opts.Weights.Override(weights)
	if err != nil {
		return nil, requestError("weights", err)
	}
	scorer, err := priority.NewScorer(strategy, w, now)
	if err != nil {
		return nil, requestError("weights", err)
	}

	tasks, err := task.Normalize(raw)
	if err != nil {
		return nil, err
	}
	g, err := dag.Build(tasks)
	if err != nil {
		return nil, err
	}
	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, err
	}

	return &Response{
		Tasks:    priority.Rank(scorer.ScoreAll(tasks, g), order),
		Strategy: strategy.String(),
	}, nil
}

func (s *Service) refTime(now time.Time) time.Time {
	if now.IsZero() {
		return s.clock()
	}
	return now
}

// record logs the outcome and emits a telemetry event.
func (s *Service) record(id, op string, size int, resp *Response, err error, elapsed time.Duration) {
	if err != nil {
		res := ErrorResultFor(err)
		s.log.Info("analysis rejected", "request_id", id, "op", op, "tasks", size, "error", res.Error, "reason", err.Error())
		_ = s.events.Emit(telemetry.Event{
			Timestamp: time.Now(),
			Kind:      telemetry.KindAnalysisRejected,
			RequestID: id,
			Data:      map[string]any{"op": op, "tasks": size, "error": res.Error, "cycle": res.CycleDetails},
		})
		return
	}

	s.log.V(1).Info("analysis complete", "request_id", id, "op", op, "strategy", resp.Strategy,
		"tasks", size, "returned", len(resp.Tasks), "elapsed", elapsed)
	data := map[string]any{
		"op":         op,
		"strategy":   resp.Strategy,
		"tasks":      size,
		"returned":   len(resp.Tasks),
		"elapsed_ms": elapsed.Milliseconds(),
	}
	if len(resp.Tasks) > 0 {
		data["top"] = resp.Tasks[0].ID
	}
	_ = s.events.Emit(telemetry.Event{
		Timestamp: time.Now(),
		Kind:      telemetry.KindAnalysisDone,
		RequestID: id,
		Data:      data,
	})
}

func requestID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}
