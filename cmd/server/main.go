package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/foodmood/foodmood/internal/config"
	"github.com/foodmood/foodmood/internal/database"
	"github.com/foodmood/foodmood/internal/handlers"
	"github.com/foodmood/foodmood/internal/middleware"
	"github.com/foodmood/foodmood/internal/types"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"

	_ "github.com/foodmood/foodmood/docs/api" // Swagger docs
)

// @title FoodMood API
// @version 1.0.0
// @description Track what you eat and how you feel
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/foodmood/foodmood

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name cookie_session

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler:          customErrorHandler,
		DisableStartupMessage: false,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("foodmood")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API routes under /api
	api := app.Group("/api")

	// Version middleware
	api.Use(middleware.VersionMiddleware())

	// Create handlers
	edibleHandler := &handlers.EdibleHandler{DB: db}
	mealHandler := &handlers.MealHandler{DB: db}
	wellbeingHandler := &handlers.WellbeingHandler{DB: db}
	healthHandler := &handlers.HealthHandler{DB: db, Cfg: cfg}

	// Health
	api.Get("/health", healthHandler.Health)

	// Edible routes (public GET, user mutations)
	api.Get("/edibles", edibleHandler.ListEdibles)
	api.Post("/edibles", middleware.AuthUser(cfg), edibleHandler.CreateEdible)
	api.Post("/edibles/quick-create", middleware.AuthUser(cfg), edibleHandler.QuickCreate)
	api.Get("/edibles/:id", edibleHandler.GetEdible)
	api.Put("/edibles/:id", middleware.AuthUser(cfg), edibleHandler.UpdateEdible)
	api.Delete("/edibles/:id", middleware.AuthUser(cfg), edibleHandler.DeleteEdible)
	api.Get("/edibles/:id/ingredients", edibleHandler.ListIngredients)
	api.Post("/edibles/:id/ingredients", middleware.AuthUser(cfg), edibleHandler.AddIngredient)
	api.Delete("/edibles/:id/ingredients/:ingredientId", middleware.AuthUser(cfg), edibleHandler.RemoveIngredient)

	// Meal routes (public GET, user mutations)
	api.Get("/meals", mealHandler.ListMeals)
	api.Post("/meals", middleware.AuthUser(cfg), mealHandler.LogMeal)
	api.Get("/meals/:id", mealHandler.GetMeal)
	api.Put("/meals/:id", middleware.AuthUser(cfg), mealHandler.UpdateMeal)
	api.Delete("/meals/:id", middleware.AuthUser(cfg), mealHandler.DeleteMeal)

	// Wellbeing category routes (scale administration is admin-only)
	api.Get("/wellbeing/categories", wellbeingHandler.ListCategories)
	api.Post("/wellbeing/categories", middleware.AuthAdmin(cfg), wellbeingHandler.CreateCategory)
	api.Get("/wellbeing/categories/:id", wellbeingHandler.GetCategory)
	api.Put("/wellbeing/categories/:id", middleware.AuthAdmin(cfg), wellbeingHandler.UpdateCategory)
	api.Delete("/wellbeing/categories/:id", middleware.AuthAdmin(cfg), wellbeingHandler.DeleteCategory)
	api.Post("/wellbeing/categories/:id/archive", middleware.AuthAdmin(cfg), wellbeingHandler.ArchiveCategory)
	api.Post("/wellbeing/categories/:id/restore", middleware.AuthAdmin(cfg), wellbeingHandler.RestoreCategory)
	api.Get("/wellbeing/categories/:id/options", wellbeingHandler.CategoryOptions)
	api.Post("/wellbeing/categories/:id/options", middleware.AuthAdmin(cfg), wellbeingHandler.AddOption)
	api.Get("/wellbeing/categories/:id/aggregate", wellbeingHandler.Aggregate)
	api.Delete("/wellbeing/options/:id", middleware.AuthAdmin(cfg), wellbeingHandler.DeleteOption)

	// Wellbeing entry routes (logging requires a user session)
	api.Get("/wellbeing/entries", wellbeingHandler.ListEntries)
	api.Post("/wellbeing/entries", middleware.AuthUser(cfg), wellbeingHandler.LogEntry)
	api.Post("/wellbeing/entries/bulk", middleware.AuthUser(cfg), wellbeingHandler.LogBulkEntries)
	api.Get("/wellbeing/entries/:id", wellbeingHandler.GetEntry)
	api.Put("/wellbeing/entries/:id", middleware.AuthUser(cfg), wellbeingHandler.UpdateEntry)
	api.Delete("/wellbeing/entries/:id", middleware.AuthUser(cfg), wellbeingHandler.DeleteEntry)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"message":   "[404] Resource Not Found",
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
		})
	})

	// Authorizer client is created lazily by the auth middleware
	log.Printf("Authorizer will be initialized on first authenticated request")

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	port := cfg.Port
	log.Printf("Starting server on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	// Check if it's a Fiber error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Auth middleware raises CustomError with its own code and type
	if e, ok := err.(*types.CustomError); ok {
		code = e.Code
		message = e.Message
		errorType = e.Type
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    code,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}
