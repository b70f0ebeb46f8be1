// http/server.go
package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ViniZap4/moodlog-server/auth"
	"github.com/ViniZap4/moodlog-server/events"
	"github.com/ViniZap4/moodlog-server/store"
)

type Config struct {
	Addr         string
	PasswordHash []byte
	Logger       zerolog.Logger
	// Now stamps new entries; time.Now when nil.
	Now func() time.Time
}

// Server exposes the mood log over HTTP.
type Server struct {
	app   *fiber.App
	store *store.Store
	hub   *events.Hub
	cfg   Config
	log   zerolog.Logger
}

func NewServer(cfg Config, st *store.Store, hub *events.Hub) *Server {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           15 * time.Second,
		ErrorHandler:          errorHandler,
	})

	srv := &Server{
		app:   app,
		store: st,
		hub:   hub,
		cfg:   cfg,
		log:   cfg.Logger.With().Str("component", "http").Logger(),
	}

	app.Use(recover.New())
	app.Use(requestLogger(srv.log))
	app.Use(cors.New(cors.Config{
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Content-Type, " + auth.HeaderName,
	}))

	srv.registerRoutes()
	return srv
}

// App exposes the fiber application, mainly for app.Test.
func (s *Server) App() *fiber.App { return s.app }

// Run listens until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = s.app.ShutdownWithTimeout(5 * time.Second)
	}()

	s.log.Info().Str("addr", s.cfg.Addr).Msg("mood log listening")
	return s.app.Listen(s.cfg.Addr)
}

func (s *Server) registerRoutes() {
	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := s.app.Group("/api", auth.Middleware(s.cfg.PasswordHash))
	api.Get("/moods/labels", s.handleLabels)
	api.Get("/moods/stream", s.upgradeStream, websocket.New(s.handleStream))
	api.Get("/moods", s.handleListMoods)
	api.Post("/moods", s.handleCreateMood)
	api.Delete("/moods", s.handleClearMoods)
	api.Get("/stats", s.handleStats)
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

func requestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		id := c.Get(fiber.HeaderXRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(fiber.HeaderXRequestID, id)

		err := c.Next()

		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}

		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error().Err(err)
		}
		ev.Str("request_id", id).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
		return err
	}
}
