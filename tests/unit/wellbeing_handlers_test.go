package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/foodmood/foodmood/internal/handlers"
	"github.com/foodmood/foodmood/internal/models"
	"github.com/foodmood/foodmood/tests/helpers"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// setupWellbeingApp wires the wellbeing routes without auth middleware
func setupWellbeingApp(db *gorm.DB) *fiber.App {
	app := fiber.New()
	handler := &handlers.WellbeingHandler{DB: db}
	app.Get("/api/wellbeing/categories", handler.ListCategories)
	app.Post("/api/wellbeing/categories", handler.CreateCategory)
	app.Get("/api/wellbeing/categories/:id", handler.GetCategory)
	app.Delete("/api/wellbeing/categories/:id", handler.DeleteCategory)
	app.Post("/api/wellbeing/categories/:id/archive", handler.ArchiveCategory)
	app.Get("/api/wellbeing/categories/:id/options", handler.CategoryOptions)
	app.Get("/api/wellbeing/categories/:id/aggregate", handler.Aggregate)
	app.Delete("/api/wellbeing/options/:id", handler.DeleteOption)
	app.Get("/api/wellbeing/entries", handler.ListEntries)
	app.Post("/api/wellbeing/entries", handler.LogEntry)
	app.Post("/api/wellbeing/entries/bulk", handler.LogBulkEntries)
	return app
}

// seedMoodCategory creates a category with two options directly in the database
func seedMoodCategory(t *testing.T, db *gorm.DB, name string) (models.WellbeingCategory, []models.WellbeingOption) {
	t.Helper()
	category := models.WellbeingCategory{CategoryName: name, IsActive: true}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}
	options := []models.WellbeingOption{
		{CategoryID: category.CategoryID, Label: "Low", OptionValue: 3, DisplayOrder: 0},
		{CategoryID: category.CategoryID, Label: "High", OptionValue: 9, DisplayOrder: 1},
	}
	for i := range options {
		if err := db.Create(&options[i]).Error; err != nil {
			t.Fatalf("Failed to create option: %v", err)
		}
	}
	return category, options
}

// TestCreateCategoryEndpoint tests the POST /api/wellbeing/categories endpoint
func TestCreateCategoryEndpoint(t *testing.T) {
	db := setupTestDB(t)
	app := setupWellbeingApp(db)

	body, _ := json.Marshal(map[string]interface{}{
		"name": "Mood",
		"icon": "smile",
		"options": []map[string]interface{}{
			{"label": "Bad", "value": 3},
			{"label": "Great", "value": "9"}, // string value from a form
		},
	})
	req := httptest.NewRequest("POST", "/api/wellbeing/categories", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 201 {
		t.Errorf("Expected status 201, got %d", resp.StatusCode)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	options, ok := result["options"].([]interface{})
	if !ok || len(options) != 2 {
		t.Errorf("Expected 2 options in response, got %v", result["options"])
	}
}

// TestCreateCategoryTooFewOptions tests scale size validation over HTTP
func TestCreateCategoryTooFewOptions(t *testing.T) {
	db := setupTestDB(t)
	app := setupWellbeingApp(db)

	body, _ := json.Marshal(map[string]interface{}{
		"name": "Mood",
		"options": []map[string]interface{}{
			{"label": "Only", "value": 1},
		},
	})
	req := httptest.NewRequest("POST", "/api/wellbeing/categories", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Errorf("Expected status 400, got %d", resp.StatusCode)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result["field"] != "options" {
		t.Errorf("Expected field options, got %v", result["field"])
	}

	var count int64
	db.Model(&models.WellbeingCategory{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected no categories, got %d", count)
	}
}

// TestCategoryOptionsEndpoint tests the option payload for the logging UI
func TestCategoryOptionsEndpoint(t *testing.T) {
	db := setupTestDB(t)
	app := setupWellbeingApp(db)

	category, _ := seedMoodCategory(t, db, "Mood")

	req := httptest.NewRequest("GET", fmt.Sprintf("/api/wellbeing/categories/%d/options", category.CategoryID), nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var result struct {
		Options []struct {
			ID    uint64 `json:"id"`
			Label string `json:"label"`
			Value int64  `json:"value"`
		} `json:"options"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(result.Options) != 2 {
		t.Fatalf("Expected 2 options, got %d", len(result.Options))
	}
	if result.Options[0].Label != "Low" || result.Options[0].Value != 3 {
		t.Errorf("Unexpected first option: %+v", result.Options[0])
	}
}

// TestLogEntryCrossCategoryEndpoint tests the entry guard over HTTP
func TestLogEntryCrossCategoryEndpoint(t *testing.T) {
	db := setupTestDB(t)
	app := setupWellbeingApp(db)

	moodID, _ := helpers.CreateTestCategory(t, db, "Mood", map[string]int64{"Bad": 3, "Great": 9})
	_, energyOptions := helpers.CreateTestCategory(t, db, "Energy", map[string]int64{"Low": 2, "High": 8})

	body, _ := json.Marshal(map[string]interface{}{
		"category_id": moodID,
		"option_id":   energyOptions["Low"],
	})
	req := httptest.NewRequest("POST", "/api/wellbeing/entries", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 409 {
		t.Errorf("Expected status 409, got %d", resp.StatusCode)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result["type"] != "cross_category" {
		t.Errorf("Expected type cross_category, got %v", result["type"])
	}

	var entries int64
	db.Model(&models.WellbeingEntry{}).Count(&entries)
	if entries != 0 {
		t.Errorf("Expected no entries, got %d", entries)
	}
}

// TestLogEntryWithFormTimestamp tests the datetime-local timestamp format
func TestLogEntryWithFormTimestamp(t *testing.T) {
	db := setupTestDB(t)
	app := setupWellbeingApp(db)

	mood, options := seedMoodCategory(t, db, "Mood")

	body, _ := json.Marshal(map[string]interface{}{
		"category_id": fmt.Sprint(mood.CategoryID),
		"option_id":   fmt.Sprint(options[1].OptionID),
		"recorded_at": "2026-08-01T09:30",
		"notes":       "after breakfast",
	})
	req := httptest.NewRequest("POST", "/api/wellbeing/entries", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 201 {
		t.Errorf("Expected status 201, got %d", resp.StatusCode)
	}

	var entry models.WellbeingEntry
	if err := db.First(&entry).Error; err != nil {
		t.Fatalf("Expected entry to be persisted: %v", err)
	}
	want := time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC)
	if !entry.RecordedAt.Equal(want) {
		t.Errorf("Expected recorded_at %v, got %v", want, entry.RecordedAt)
	}
}

// TestBulkEntriesEndpoint tests the daily check-in endpoint
func TestBulkEntriesEndpoint(t *testing.T) {
	db := setupTestDB(t)
	app := setupWellbeingApp(db)

	mood, moodOptions := seedMoodCategory(t, db, "Mood")
	energy, energyOptions := seedMoodCategory(t, db, "Energy")

	body, _ := json.Marshal(map[string]interface{}{
		"entries": []map[string]interface{}{
			{"category_id": mood.CategoryID, "option_id": moodOptions[0].OptionID},
			{"category_id": energy.CategoryID, "option_id": energyOptions[1].OptionID},
		},
		"notes": "daily check-in",
	})
	req := httptest.NewRequest("POST", "/api/wellbeing/entries/bulk", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 201 {
		t.Errorf("Expected status 201, got %d", resp.StatusCode)
	}

	var entries int64
	db.Model(&models.WellbeingEntry{}).Count(&entries)
	if entries != 2 {
		t.Errorf("Expected 2 entries, got %d", entries)
	}
}

// TestAggregateEndpoint tests mean and count over a window
func TestAggregateEndpoint(t *testing.T) {
	db := setupTestDB(t)
	app := setupWellbeingApp(db)

	mood, options := seedMoodCategory(t, db, "Mood")

	day := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for _, option := range options { // values 3 and 9
		helpers.CreateTestEntry(t, db, mood.CategoryID, option.OptionID, day.Add(2*time.Hour))
	}

	url := fmt.Sprintf("/api/wellbeing/categories/%d/aggregate?from=2026-08-01&to=2026-08-02", mood.CategoryID)
	req := httptest.NewRequest("GET", url, nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var result struct {
		Mean  float64 `json:"mean"`
		Count int64   `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result.Count != 2 {
		t.Errorf("Expected count 2, got %d", result.Count)
	}
	if result.Mean != 6.0 {
		t.Errorf("Expected mean 6.0, got %f", result.Mean)
	}
}

// TestDeleteOptionConflictEndpoint tests protected option delete over HTTP
func TestDeleteOptionConflictEndpoint(t *testing.T) {
	db := setupTestDB(t)
	app := setupWellbeingApp(db)

	mood, options := seedMoodCategory(t, db, "Mood")
	helpers.CreateTestEntry(t, db, mood.CategoryID, options[0].OptionID, time.Now().UTC())

	req := httptest.NewRequest("DELETE", fmt.Sprintf("/api/wellbeing/options/%d", options[0].OptionID), nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 409 {
		t.Errorf("Expected status 409, got %d", resp.StatusCode)
	}

	var count int64
	db.Model(&models.WellbeingOption{}).Count(&count)
	if count != 2 {
		t.Errorf("Expected options intact, got %d", count)
	}
}

// TestEntryNotFound tests 404 responses for entries
func TestEntryNotFound(t *testing.T) {
	db := setupTestDB(t)
	app := setupWellbeingApp(db)

	req := httptest.NewRequest("GET", "/api/wellbeing/categories/999", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 404 {
		t.Errorf("Expected status 404, got %d", resp.StatusCode)
	}
}

// TestInvalidIDParam tests malformed path parameters
func TestInvalidIDParam(t *testing.T) {
	db := setupTestDB(t)
	app := setupWellbeingApp(db)

	req := httptest.NewRequest("GET", "/api/wellbeing/categories/abc", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Errorf("Expected status 400, got %d", resp.StatusCode)
	}
}
