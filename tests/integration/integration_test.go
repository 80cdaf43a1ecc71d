package integration_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/foodmood/foodmood/internal/config"
	"github.com/foodmood/foodmood/internal/database"
	"github.com/foodmood/foodmood/internal/handlers"
	"github.com/foodmood/foodmood/internal/models"
	"github.com/foodmood/foodmood/internal/services"
	"github.com/foodmood/foodmood/internal/types"
	"github.com/foodmood/foodmood/tests/helpers"
	"github.com/gofiber/fiber/v2"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

// TestWithMariaDB tests the service with a real MariaDB container
func TestWithMariaDB(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	// Start MariaDB container
	mariadbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        os.Getenv("DB_IMAGE"),
			ExposedPorts: []string{"3306/tcp"},
			Env: map[string]string{
				"MYSQL_ROOT_PASSWORD": "rootpass",
				"MYSQL_DATABASE":      "testdb",
				"MYSQL_USER":          "testuser",
				"MYSQL_PASSWORD":      "testpass",
			},
			WaitingFor: wait.ForLog("ready for connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start MariaDB container: %v", err)
	}
	defer func() {
		if err := mariadbContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate MariaDB container: %v", err)
		}
	}()

	// Get container host and port
	host, err := mariadbContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := mariadbContainer.MappedPort(ctx, "3306")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	// Create config
	cfg := &config.Config{
		DBType:            "mysql",
		DBHost:            host,
		DBPort:            port.Port(),
		DBDatabase:        "testdb",
		DBUser:            "testuser",
		DBPassword:        "testpass",
		DBConnectionLimit: 5,
	}

	// Wait for database to be ready
	time.Sleep(5 * time.Second)

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run migrations
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	// Run tests
	t.Run("EdibleGraph", func(t *testing.T) {
		testEdibleGraph(t, db)
	})

	t.Run("WellbeingFlow", func(t *testing.T) {
		testWellbeingFlow(t, db)
	})

	t.Run("ProtectedDeletes", func(t *testing.T) {
		testProtectedDeletes(t, db)
	})

	t.Run("HandlerQuickCreate", func(t *testing.T) {
		testHandlerQuickCreate(t, db)
	})
}

// TestWithPostgreSQL tests the service with a real PostgreSQL container
func TestWithPostgreSQL(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	// Start PostgreSQL container
	postgresContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        os.Getenv("POSTGRES_IMAGE"),
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_PASSWORD": "testpass",
				"POSTGRES_USER":     "testuser",
				"POSTGRES_DB":       "testdb",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer func() {
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}()

	// Get container host and port
	host, err := postgresContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := postgresContainer.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	// Create config
	cfg := &config.Config{
		DBType:            "postgres",
		DBHost:            host,
		DBPort:            port.Port(),
		DBDatabase:        "testdb",
		DBUser:            "testuser",
		DBPassword:        "testpass",
		DBConnectionLimit: 5,
	}

	// Wait for database to be ready
	time.Sleep(2 * time.Second)

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run migrations
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	// Run tests
	t.Run("EdibleGraph", func(t *testing.T) {
		testEdibleGraph(t, db)
	})

	t.Run("WellbeingFlow", func(t *testing.T) {
		testWellbeingFlow(t, db)
	})

	t.Run("HandlerQuickCreate", func(t *testing.T) {
		testHandlerQuickCreate(t, db)
	})
}

// testEdibleGraph exercises the containment graph against a real database
func testEdibleGraph(t *testing.T, db *gorm.DB) {
	salad, err := services.CreateEdible(db, "int-salad", "", models.JSON{}, nil)
	if err != nil {
		t.Fatalf("Failed to create edible: %v", err)
	}
	dressing, err := services.CreateEdible(db, "int-dressing", "", models.JSON{}, nil)
	if err != nil {
		t.Fatalf("Failed to create edible: %v", err)
	}
	oil, err := services.CreateEdible(db, "int-oil", "", models.JSON{}, nil)
	if err != nil {
		t.Fatalf("Failed to create edible: %v", err)
	}

	if err := services.AddIngredient(db, salad.EdibleID, dressing.EdibleID); err != nil {
		t.Fatalf("Failed to add ingredient: %v", err)
	}
	if err := services.AddIngredient(db, dressing.EdibleID, oil.EdibleID); err != nil {
		t.Fatalf("Failed to add ingredient: %v", err)
	}

	// Closing the loop must be rejected with the transaction rolled back
	err = services.AddIngredient(db, oil.EdibleID, salad.EdibleID)
	var cycle *types.CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("Expected CycleError, got %v", err)
	}

	all, err := services.ListIngredients(db, salad.EdibleID, true)
	if err != nil {
		t.Fatalf("Failed to list ingredients: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected 2 transitive ingredients, got %d", len(all))
	}
}

// testWellbeingFlow exercises the category, entry and aggregate path
func testWellbeingFlow(t *testing.T, db *gorm.DB) {
	mood, err := services.CreateCategory(db, "int-mood", "", "", []services.OptionInput{
		{Label: "Low", Value: 2},
		{Label: "High", Value: 8},
	})
	if err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}

	day := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for _, option := range mood.Options {
		if _, err := services.LogEntry(db, mood.CategoryID, option.OptionID, day.Add(time.Hour), ""); err != nil {
			t.Fatalf("Failed to log entry: %v", err)
		}
	}

	result, err := services.Aggregate(db, mood.CategoryID, day, day.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("Failed to aggregate: %v", err)
	}
	if result.Count != 2 {
		t.Errorf("Expected count 2, got %d", result.Count)
	}
	if result.Mean != 5.0 {
		t.Errorf("Expected mean 5.0, got %f", result.Mean)
	}
}

// testProtectedDeletes exercises the delete guards against a real database
func testProtectedDeletes(t *testing.T, db *gorm.DB) {
	bread, err := services.CreateEdible(db, "int-bread", "", models.JSON{}, nil)
	if err != nil {
		t.Fatalf("Failed to create edible: %v", err)
	}
	flour, err := services.CreateEdible(db, "int-flour", "", models.JSON{}, nil)
	if err != nil {
		t.Fatalf("Failed to create edible: %v", err)
	}
	if err := services.AddIngredient(db, bread.EdibleID, flour.EdibleID); err != nil {
		t.Fatalf("Failed to add ingredient: %v", err)
	}

	err = services.DeleteEdible(db, flour.EdibleID)
	var referenced *types.ReferencedError
	if !errors.As(err, &referenced) {
		t.Fatalf("Expected ReferencedError, got %v", err)
	}

	sleep, err := services.CreateCategory(db, "int-sleep", "", "", []services.OptionInput{
		{Label: "Poor", Value: 1},
		{Label: "Good", Value: 5},
	})
	if err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}
	if _, err := services.LogEntry(db, sleep.CategoryID, sleep.Options[0].OptionID, time.Time{}, ""); err != nil {
		t.Fatalf("Failed to log entry: %v", err)
	}

	err = services.DeleteOption(db, sleep.Options[0].OptionID)
	if !errors.As(err, &referenced) {
		t.Fatalf("Expected ReferencedError for option, got %v", err)
	}

	err = services.DeleteCategory(db, sleep.CategoryID)
	if !errors.As(err, &referenced) {
		t.Fatalf("Expected ReferencedError for category, got %v", err)
	}
}

// testHandlerQuickCreate tests the quick-create handler with a real database
func testHandlerQuickCreate(t *testing.T, db *gorm.DB) {
	app := fiber.New()
	handler := &handlers.EdibleHandler{DB: db}
	app.Post("/api/edibles/quick-create", handler.QuickCreate)

	form := "name=int-tomato"
	req := httptest.NewRequest("POST", "/api/edibles/quick-create", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	var first map[string]interface{}
	helpers.ParseJSON(t, resp, &first)
	if first["ok"] != true {
		t.Fatalf("Expected ok=true, got %v", first)
	}

	req = httptest.NewRequest("POST", "/api/edibles/quick-create", strings.NewReader("name=INT-TOMATO"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	var second map[string]interface{}
	helpers.ParseJSON(t, resp, &second)
	if first["id"] != second["id"] {
		t.Errorf("Expected same id, got %v and %v", first["id"], second["id"])
	}
}

// TestHealthCheck tests the health check functionality
func TestHealthCheck(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	// Start MariaDB container
	mariadbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        os.Getenv("DB_IMAGE"),
			ExposedPorts: []string{"3306/tcp"},
			Env: map[string]string{
				"MYSQL_ROOT_PASSWORD": "rootpass",
				"MYSQL_DATABASE":      "testdb",
				"MYSQL_USER":          "testuser",
				"MYSQL_PASSWORD":      "testpass",
			},
			WaitingFor: wait.ForLog("ready for connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start MariaDB container: %v", err)
	}
	defer func() {
		if err := mariadbContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate MariaDB container: %v", err)
		}
	}()

	host, err := mariadbContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := mariadbContainer.MappedPort(ctx, "3306")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	cfg := &config.Config{
		DBType:     "mysql",
		DBHost:     host,
		DBPort:     port.Port(),
		DBDatabase: "testdb",
		DBUser:     "testuser",
		DBPassword: "testpass",
		AuthzURL:   "http://localhost:9999", // Non-existent service
	}

	time.Sleep(5 * time.Second)

	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run health check
	result := services.HealthCheck(cfg, db)

	// Database should be healthy
	if result.Database != "ok" {
		t.Errorf("Expected database to be ok, got: %s", result.Database)
	}

	// Authorizer should be unreachable
	if result.Authorizer != "unreachable" {
		t.Errorf("Expected authorizer to be unreachable, got: %s", result.Authorizer)
	}

	// Overall status should be unhealthy
	if result.Status != "unhealthy" {
		t.Errorf("Expected status to be unhealthy, got: %s", result.Status)
	}
}
