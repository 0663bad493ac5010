package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"simple-todo/internal/api/handlers"
	"simple-todo/internal/config"
	"simple-todo/internal/middleware"
)

// NewApp builds the fiber app with middleware and every route.
func NewApp(deps *config.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "simple-todo",
		ErrorHandler:          handlers.ErrorHandler(deps.Log),
		DisableStartupMessage: true,
	})

	app.Use(middleware.ErrorHandler(deps.Log))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     deps.Config.ClientOrigin,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowCredentials: deps.Config.ClientOrigin != "*",
	}))

	RegisterRoutes(app, deps)
	return app
}

func RegisterRoutes(app *fiber.App, deps *config.Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.Auth, deps.Log)
	todoHandler := handlers.NewTodoHandler(deps.Tasks, deps.Log)
	useToken := middleware.UseToken(deps.Tokens, deps.Log)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Auth
	api.Post("/auth/register", authHandler.Register)
	api.Post("/auth/login", authHandler.Login)
	api.Get("/auth/me", useToken, authHandler.Me)

	// Todo
	todoRoutes := api.Group("/todo", useToken)
	todoRoutes.Get("/", todoHandler.List)
	todoRoutes.Post("/", todoHandler.Create)
	todoRoutes.Put("/:id", todoHandler.Update)
	todoRoutes.Delete("/:id", todoHandler.Delete)
}
