// Package rest exposes the REST API and mounts the WebSocket endpoint.
package rest

import (
	"chatline/auth"
	"chatline/contract"
	"chatline/domain"
	"chatline/errors"
	"chatline/infrastructure/ws"
	"chatline/services"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type Config struct {
	AllowedOrigins string
	CookieSecure   bool
	BodyLimit      int
	AccessLog      bool
}

// Stats feeds the health endpoint.
type Stats interface {
	Connections() int
	OnlineUsers() int
	Process() domain.ProcessStats
	Queues() []domain.ChannelCapacity
}

type Server struct {
	log    *slog.Logger
	cfg    Config
	auth   services.IAuthService
	chat   services.IChatService
	users  contract.IUserRepository
	tokens *auth.TokenIssuer
	ws     *ws.Handler
	stats  Stats
	start  time.Time
}

func NewServer(log *slog.Logger, cfg Config, authService services.IAuthService, chatService services.IChatService,
	users contract.IUserRepository, tokens *auth.TokenIssuer, wsHandler *ws.Handler, stats Stats) *Server {
	return &Server{
		log:    log,
		cfg:    cfg,
		auth:   authService,
		chat:   chatService,
		users:  users,
		tokens: tokens,
		ws:     wsHandler,
		stats:  stats,
		start:  time.Now(),
	}
}

// App builds the fiber application with every route mounted.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "chatline",
		DisableStartupMessage: true,
		BodyLimit:             s.cfg.BodyLimit,
		ErrorHandler:          s.errorHandler,
	})

	app.Use(recover.New())
	if s.cfg.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} ${method} ${path} ${latency}\n",
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.AllowedOrigins,
		AllowMethods:     "GET,POST,PUT,OPTIONS",
		AllowHeaders:     "Content-Type,Authorization",
		AllowCredentials: true,
	}))

	app.Get("/health", s.health)
	s.ws.Register(app, "/ws")

	protect := auth.Protect(s.tokens, s.users)
	api := app.Group("/api")

	authRoutes := api.Group("/auth")
	authRoutes.Post("/signup", s.signup)
	authRoutes.Post("/login", s.login)
	authRoutes.Post("/logout", s.logout)
	authRoutes.Get("/check", protect, s.check)
	authRoutes.Put("/update-profile", protect, s.updateProfile)

	messages := api.Group("/message", protect)
	messages.Get("/users", s.listUsers)
	messages.Get("/:id", s.conversation)
	messages.Post("/send/:id", s.send)

	return app
}

// fail writes the public view of err.
func (s *Server) fail(c *fiber.Ctx, err error) error {
	status := errors.MapToHTTPStatus(err)
	if status == fiber.StatusInternalServerError {
		s.log.Error("Request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}
	return c.Status(status).JSON(fiber.Map{"message": errors.PublicMessage(err)})
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
	}
	return s.fail(c, err)
}
