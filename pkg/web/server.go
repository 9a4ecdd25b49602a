// Package web serves the nyaya front end: a JSON API over the session
// controller, a per-session websocket that carries state pushes and the
// browser speech bridge, and the embedded single-page UI.
package web

import (
	"context"
	_ "embed"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-nyaya/pkg/hub"
	"github.com/teslashibe/go-nyaya/pkg/inference"
	"github.com/teslashibe/go-nyaya/pkg/session"
)

//go:embed static/index.html
var indexHTML []byte

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithDebug enables the request logger.
func WithDebug(debug bool) Option {
	return func(s *Server) { s.debug = debug }
}

// WithSessionOptions sets options applied to every new session controller.
func WithSessionOptions(opts ...session.Option) Option {
	return func(s *Server) { s.sessionOpts = append(s.sessionOpts, opts...) }
}

// Server is the HTTP and websocket server.
type Server struct {
	app         *fiber.App
	sessions    *Registry
	logger      *slog.Logger
	debug       bool
	sessionOpts []session.Option
}

// NewServer creates a server whose sessions send prompts to provider.
func NewServer(provider inference.Provider, opts ...Option) *Server {
	s := &Server{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "web")
	s.sessions = NewRegistry(provider, s.logger, s.sessionOpts...)

	app := fiber.New(fiber.Config{
		AppName:               "nyaya",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Content-Type",
	}))
	if s.debug {
		app.Use(logger.New())
	}

	app.Get("/", s.handleIndex)
	app.Get("/health", s.handleHealth)

	api := app.Group("/api")
	api.Get("/options", s.handleOptions)
	api.Post("/sessions", s.handleCreateSession)
	api.Get("/sessions/:id", s.handleGetSession)
	api.Delete("/sessions/:id", s.handleDeleteSession)
	api.Put("/sessions/:id/state", s.handleUpdateState)
	api.Post("/sessions/:id/laws/:law", s.handleToggleLaw)
	api.Post("/sessions/:id/submit", s.handleSubmit)
	api.Post("/sessions/:id/copy", s.handleCopy)
	api.Post("/sessions/:id/voice/input", s.handleVoiceInput)
	api.Post("/sessions/:id/voice/output", s.handleVoiceOutput)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/sessions/:id", s.checkSession, websocket.New(s.handleSessionWS))

	s.app = app
	return s
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App { return s.app }

// Sessions returns the session registry.
func (s *Server) Sessions() *Registry { return s.sessions }

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	s.logger.Info("listening", "addr", addr)
	return s.app.Listen(addr)
}

// Serve serves on an existing listener until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("listening", "addr", ln.Addr().String())
	return s.app.Listener(ln)
}

// Shutdown tears down every session and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.sessions.Close()
	return s.app.ShutdownWithContext(ctx)
}

// checkSession rejects websocket upgrades for unknown sessions before the
// protocol switch, so the browser sees a 404.
func (s *Server) checkSession(c *fiber.Ctx) error {
	if s.sessions.Get(c.Params("id")) == nil {
		return fiber.NewError(fiber.StatusNotFound, "session not found")
	}
	return c.Next()
}

// handleSessionWS runs the session's websocket until the browser goes
// away, then tears the session down.
func (s *Server) handleSessionWS(c *websocket.Conn) {
	id := c.Params("id")
	sess := s.sessions.Get(id)
	if sess == nil {
		c.Close()
		return
	}

	start := time.Now()
	hub.NewClient(sess.hub, c).Run()

	s.sessions.Remove(id)
	s.logger.Debug("websocket closed", "session", id, "duration", time.Since(start))
}

// errorHandler renders every error as {"error": message}.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
