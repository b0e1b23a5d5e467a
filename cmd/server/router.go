package main

import (
	"time"

	"noteshare/cmd/server/handlers"
	assistantHandlers "noteshare/cmd/server/handlers/assistant"
	authHandlers "noteshare/cmd/server/handlers/auth"
	"noteshare/cmd/server/handlers/httperr"
	notesHandlers "noteshare/cmd/server/handlers/notes"
	"noteshare/cmd/server/middlewares"
	"noteshare/internal/config"
	"noteshare/internal/logger"
	util "noteshare/internal/utils"

	_ "noteshare/docs" // swagger docs

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
)

// RateLimitExpiration is the window of the auth rate limiter
const RateLimitExpiration = 1 * time.Minute

// services is everything the router mounts
type services struct {
	Auth      authHandlers.AuthService
	Notes     notesHandlers.Service
	Assistant assistantHandlers.Service
	Hub       notesHandlers.Hub
	Feed      middlewares.FeedStats
	Checks    []handlers.Check
}

// setupRouter configures and returns a Fiber app with all routes
func setupRouter(cfg config.Config, svc services) *fiber.App {
	v := util.NewValidator()

	app := fiber.New(fiber.Config{
		ErrorHandler: httperr.Handler,
		Immutable:    true,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Content-Type, Authorization",
	}))

	if cfg.RouteMetricsEnabled {
		middlewares.AttachMetrics(app, svc.Feed)
	}

	// outside the versioned API so probes are not logged
	app.Get("/healthz", handlers.Healthz(svc.Checks...))
	app.Get("/docs/*", swagger.HandlerDefault)

	var v1 fiber.Router
	if cfg.RequestLoggingEnabled {
		v1 = app.Group("/api/v1", fiberlogger.New())
		logger.L().Info("request logging enabled")
	} else {
		v1 = app.Group("/api/v1")
		logger.L().Info("request logging disabled")
	}

	jwtMiddleware := middlewares.JWT(cfg)

	authH := authHandlers.NewHandlers(svc.Auth, v)
	authGrp := v1.Group("/auth", middlewares.BuildRateLimiter(cfg.SignInRatePerMin, RateLimitExpiration))
	authGrp.Post("/sign-up", authH.SignUp)
	authGrp.Post("/sign-in", authH.SignIn)

	v1.Get("/me", jwtMiddleware, authH.Me)
	v1.Get("/profile", jwtMiddleware, authH.Profile)
	v1.Patch("/profile", jwtMiddleware, authH.UpdateProfile)

	notesH := notesHandlers.NewHandlers(svc.Notes, v)
	v1.Get("/feed", notesH.Feed)
	v1.Get("/users/:username/notes", notesH.ListByUsername)

	notesGrp := v1.Group("/notes", jwtMiddleware)
	notesGrp.Get("/mine", notesH.Mine)
	notesGrp.Post("/", notesH.Create)
	notesGrp.Get("/:id", notesH.Get)
	notesGrp.Patch("/:id", notesH.Update)
	notesGrp.Delete("/:id", notesH.Delete)
	notesGrp.Post("/:id/rating", notesH.Rate)
	notesGrp.Post("/:id/comments", notesH.AddComment)

	v1.Delete("/comments/:id", jwtMiddleware, notesH.DeleteComment)

	assistantH := assistantHandlers.NewHandlers(svc.Assistant, v)
	notesGrp.Get("/:id/assistant", assistantH.Status)
	v1.Post("/assistant/chat", jwtMiddleware, assistantH.Chat)

	wsH := notesHandlers.NewWebSocketHandlers(svc.Hub, cfg.SigningSecret(), cfg.WSMaxSessionSec)
	app.Get("/ws/feed/stream", wsH.WSUpgrade, websocket.New(wsH.WSFeedStream))

	return app
}
