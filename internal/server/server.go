// Package server exposes the analysis engine over HTTP.
package server

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/PinjariAbdul/smart-task-analyser/internal/analysis"
	"github.com/PinjariAbdul/smart-task-analyser/internal/priority"
	"github.com/PinjariAbdul/smart-task-analyser/internal/telemetry"
)

// HeaderRequestID carries the request id on every response. A client may
// supply its own.
const HeaderRequestID = "X-Request-ID"

const localRequestID = "request_id"

var errEmptyBody = errors.New("request body is empty")

// StrategyInfo describes one supported strategy.
type StrategyInfo struct {
	Name        string   `json:"name"`
	Aliases     []string `json:"aliases,omitempty"`
	Description string   `json:"description"`
}

// StrategiesResponse is the body of GET /api/strategies.
type StrategiesResponse struct {
	Default    string         `json:"default"`
	Strategies []StrategyInfo `json:"strategies"`
}

// Server routes HTTP requests to an analysis.Service.
type Server struct {
	app    *fiber.App
	svc    *analysis.Service
	log    logr.Logger
	events *telemetry.Emitter
}

// Option configures a Server.
type Option func(*serverConfig)

type serverConfig struct {
	log       logr.Logger
	events    *telemetry.Emitter
	bodyLimit int
}

// WithLogger sets the request logger.
func WithLogger(l logr.Logger) Option {
	return func(c *serverConfig) { c.log = l }
}

// WithTelemetry records a server_start event to e.
func WithTelemetry(e *telemetry.Emitter) Option {
	return func(c *serverConfig) { c.events = e }
}

// WithBodyLimit bounds request bodies in bytes.
func WithBodyLimit(n int) Option {
	return func(c *serverConfig) { c.bodyLimit = n }
}

// New builds a Server with all routes registered.
func New(svc *analysis.Service, opts ...Option) *Server {
	cfg := serverConfig{log: logr.Discard(), bodyLimit: 4 << 20}
	for _, o := range opts {
		o(&cfg)
	}

	s := &Server{svc: svc, log: cfg.log, events: cfg.events}
	s.app = fiber.New(fiber.Config{
		AppName:      "taskanalyser",
		BodyLimit:    cfg.bodyLimit,
		ErrorHandler: s.handleError,
	})

	s.app.Use(s.requestID)
	s.app.Get("/healthz", s.healthz)

	api := s.app.Group("/api")
	api.Get("/strategies", s.strategies)
	api.Post("/tasks/analyze", s.analyze)
	api.Post("/tasks/suggest", s.suggest)
	return s
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.log.Info("listening", "addr", addr)
	_ = s.events.Emit(telemetry.Event{
		Timestamp: time.Now(),
		Kind:      telemetry.KindServerStart,
		Data:      map[string]any{"addr": addr},
	})
	return s.app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) requestID(c fiber.Ctx) error {
	id := strings.TrimSpace(c.Get(HeaderRequestID))
	if id == "" {
		id = uuid.NewString()
	} else {
		id = strings.Clone(id)
	}
	c.Locals(localRequestID, id)
	c.Set(HeaderRequestID, id)

	start := time.Now()
	err := c.Next()
	s.log.V(1).Info("request", "request_id", id, "method", c.Method(), "path", c.Path(),
		"status", c.Response().StatusCode(), "elapsed", time.Since(start))
	return err
}

func requestIDOf(c fiber.Ctx) string {
	id, _ := c.Locals(localRequestID).(string)
	return id
}

func (s *Server) healthz(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) strategies(c fiber.Ctx) error {
	return c.JSON(ListStrategies(s.svc.Options().DefaultStrategy))
}

// ListStrategies describes every supported strategy, marking def as the default.
func ListStrategies(def priority.Strategy) StrategiesResponse {
	resp := StrategiesResponse{Default: def.String()}
	for _, st := range priority.Strategies() {
		resp.Strategies = append(resp.Strategies, StrategyInfo{
			Name:        st.String(),
			Aliases:     st.Aliases(),
			Description: st.Description(),
		})
	}
	return resp
}

func (s *Server) analyze(c fiber.Ctx) error {
	var req analysis.Request
	if err := bindJSON(c, &req); err != nil {
		return s.invalidJSON(c, err)
	}
	req.ID = requestIDOf(c)

	resp, err := s.svc.Analyze(req)
	if err != nil {
		return s.rejected(c, err)
	}
	return c.JSON(resp)
}

func (s *Server) suggest(c fiber.Ctx) error {
	var req analysis.SuggestRequest
	if err := bindJSON(c, &req); err != nil {
		return s.invalidJSON(c, err)
	}
	req.ID = requestIDOf(c)

	resp, err := s.svc.Suggest(req)
	if err != nil {
		return s.rejected(c, err)
	}
	return c.JSON(resp)
}

func bindJSON(c fiber.Ctx, v any) error {
	if len(c.Body()) == 0 {
		return errEmptyBody
	}
	return c.Bind().JSON(v)
}

func (s *Server) invalidJSON(c fiber.Ctx, err error) error {
	s.log.V(1).Info("undecodable body", "request_id", requestIDOf(c), "error", err.Error())
	return c.Status(fiber.StatusBadRequest).JSON(analysis.ErrorResult{
		Error:   analysis.TitleInvalidJSON,
		Details: []string{err.Error()},
	})
}

func (s *Server) rejected(c fiber.Ctx, err error) error {
	res := analysis.ErrorResultFor(err)
	return c.Status(statusFor(res)).JSON(res)
}

// statusFor maps an error title to its HTTP status.
func statusFor(res analysis.ErrorResult) int {
	switch res.Error {
	case analysis.TitleBatchTooBig:
		return fiber.StatusRequestEntityTooLarge
	case analysis.TitleInternal:
		return fiber.StatusInternalServerError
	}
	return fiber.StatusBadRequest
}

// handleError renders errors returned by routing and body limits in the
// same shape as analysis errors.
func (s *Server) handleError(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		code = ferr.Code
	}
	if code >= fiber.StatusInternalServerError {
		s.log.Error(err, "request failed", "request_id", requestIDOf(c), "path", c.Path())
	}
	return c.Status(code).JSON(analysis.ErrorResult{Error: errorTitle(code, err), Details: []string{err.Error()}})
}

func errorTitle(code int, err error) string {
	switch code {
	case fiber.StatusRequestEntityTooLarge:
		return analysis.TitleBatchTooBig
	case fiber.StatusInternalServerError:
		return analysis.TitleInternal
	}
	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		return ferr.Message
	}
	return err.Error()
}
