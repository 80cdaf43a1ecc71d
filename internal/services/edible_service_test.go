package services_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/foodmood/foodmood/internal/models"
	"github.com/foodmood/foodmood/internal/services"
	"github.com/foodmood/foodmood/internal/types"
	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	if err := db.SetupJoinTable(&models.Edible{}, "Ingredients", &models.EdibleIngredient{}); err != nil {
		t.Fatalf("Failed to set up join table: %v", err)
	}
	if err := db.SetupJoinTable(&models.Meal{}, "Edibles", &models.MealEdible{}); err != nil {
		t.Fatalf("Failed to set up join table: %v", err)
	}
	err = db.AutoMigrate(
		&models.Edible{},
		&models.Meal{},
		&models.WellbeingCategory{},
		&models.WellbeingOption{},
		&models.WellbeingEntry{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func mustCreateEdible(t *testing.T, db *gorm.DB, name string) *models.Edible {
	t.Helper()
	edible, err := services.CreateEdible(db, name, "", models.JSON{}, nil)
	if err != nil {
		t.Fatalf("Failed to create edible %s: %v", name, err)
	}
	return edible
}

func TestCreateEdibleDuplicateName(t *testing.T) {
	db := setupTestDB(t)

	mustCreateEdible(t, db, "Tomato")

	_, err := services.CreateEdible(db, "tomato", "", models.JSON{}, nil)
	var dup *types.DuplicateNameError
	if !errors.As(err, &dup) {
		t.Fatalf("Expected DuplicateNameError, got %v", err)
	}

	var count int64
	db.Model(&models.Edible{}).Count(&count)
	if count != 1 {
		t.Errorf("Expected 1 edible row, got %d", count)
	}
}

func TestQuickCreateIdempotent(t *testing.T) {
	db := setupTestDB(t)

	first, created, err := services.QuickCreateEdible(db, "Tomato")
	if err != nil {
		t.Fatalf("Quick create failed: %v", err)
	}
	if !created {
		t.Error("Expected first call to create")
	}

	// Same name modulo trim and case resolves to the existing row
	second, created, err := services.QuickCreateEdible(db, "  tomato ")
	if err != nil {
		t.Fatalf("Quick create failed: %v", err)
	}
	if created {
		t.Error("Expected second call to reuse the existing edible")
	}
	if second.EdibleID != first.EdibleID {
		t.Errorf("Expected id %d, got %d", first.EdibleID, second.EdibleID)
	}

	var count int64
	db.Model(&models.Edible{}).Count(&count)
	if count != 1 {
		t.Errorf("Expected 1 edible row, got %d", count)
	}
}

func TestQuickCreateValidation(t *testing.T) {
	db := setupTestDB(t)

	_, _, err := services.QuickCreateEdible(db, "   ")
	var validation *types.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("Expected ValidationError for blank name, got %v", err)
	}
}

func TestAddIngredientSelfReference(t *testing.T) {
	db := setupTestDB(t)
	tomato := mustCreateEdible(t, db, "Tomato")

	err := services.AddIngredient(db, tomato.EdibleID, tomato.EdibleID)
	var cycle *types.CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("Expected CycleError for self reference, got %v", err)
	}
}

func TestAddIngredientCycle(t *testing.T) {
	db := setupTestDB(t)
	salad := mustCreateEdible(t, db, "Salad")
	dressing := mustCreateEdible(t, db, "Dressing")
	oil := mustCreateEdible(t, db, "Olive Oil")

	if err := services.AddIngredient(db, salad.EdibleID, dressing.EdibleID); err != nil {
		t.Fatalf("Failed to add ingredient: %v", err)
	}
	if err := services.AddIngredient(db, dressing.EdibleID, oil.EdibleID); err != nil {
		t.Fatalf("Failed to add ingredient: %v", err)
	}

	// oil -> salad would close salad -> dressing -> oil -> salad
	err := services.AddIngredient(db, oil.EdibleID, salad.EdibleID)
	var cycle *types.CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("Expected CycleError, got %v", err)
	}

	// The rejected link must not have been persisted
	var count int64
	db.Model(&models.EdibleIngredient{}).Where("edible_id = ?", oil.EdibleID).Count(&count)
	if count != 0 {
		t.Errorf("Expected no links under oil, got %d", count)
	}
}

func TestAddIngredientDuplicateLinkNoop(t *testing.T) {
	db := setupTestDB(t)
	salad := mustCreateEdible(t, db, "Salad")
	tomato := mustCreateEdible(t, db, "Tomato")

	if err := services.AddIngredient(db, salad.EdibleID, tomato.EdibleID); err != nil {
		t.Fatalf("Failed to add ingredient: %v", err)
	}
	if err := services.AddIngredient(db, salad.EdibleID, tomato.EdibleID); err != nil {
		t.Fatalf("Expected duplicate link to be a no-op, got %v", err)
	}

	var count int64
	db.Model(&models.EdibleIngredient{}).Where("edible_id = ?", salad.EdibleID).Count(&count)
	if count != 1 {
		t.Errorf("Expected 1 link, got %d", count)
	}
}

func TestListIngredients(t *testing.T) {
	db := setupTestDB(t)
	salad := mustCreateEdible(t, db, "Salad")
	dressing := mustCreateEdible(t, db, "Dressing")
	oil := mustCreateEdible(t, db, "Olive Oil")
	tomato := mustCreateEdible(t, db, "Tomato")

	for _, pair := range [][2]uint64{
		{salad.EdibleID, dressing.EdibleID},
		{salad.EdibleID, tomato.EdibleID},
		{dressing.EdibleID, oil.EdibleID},
	} {
		if err := services.AddIngredient(db, pair[0], pair[1]); err != nil {
			t.Fatalf("Failed to add ingredient: %v", err)
		}
	}

	// Direct list stops at the first level, ordered by name
	direct, err := services.ListIngredients(db, salad.EdibleID, false)
	if err != nil {
		t.Fatalf("Failed to list ingredients: %v", err)
	}
	if len(direct) != 2 {
		t.Fatalf("Expected 2 direct ingredients, got %d", len(direct))
	}
	if direct[0].EdibleName != "Dressing" || direct[1].EdibleName != "Tomato" {
		t.Errorf("Unexpected direct order: %s, %s", direct[0].EdibleName, direct[1].EdibleName)
	}

	// Recursive list reaches oil through dressing
	all, err := services.ListIngredients(db, salad.EdibleID, true)
	if err != nil {
		t.Fatalf("Failed to list ingredients recursively: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 transitive ingredients, got %d", len(all))
	}

	// A leaf has an empty, non-nil ingredient list
	leaf, err := services.ListIngredients(db, tomato.EdibleID, true)
	if err != nil {
		t.Fatalf("Failed to list leaf ingredients: %v", err)
	}
	if leaf == nil || len(leaf) != 0 {
		t.Errorf("Expected empty list for leaf, got %v", leaf)
	}
}

func TestListIngredientsSharedIngredient(t *testing.T) {
	db := setupTestDB(t)
	sandwich := mustCreateEdible(t, db, "Sandwich")
	bread := mustCreateEdible(t, db, "Bread")
	sauce := mustCreateEdible(t, db, "Sauce")
	salt := mustCreateEdible(t, db, "Salt")

	// Diamond: salt is reachable through both bread and sauce
	for _, pair := range [][2]uint64{
		{sandwich.EdibleID, bread.EdibleID},
		{sandwich.EdibleID, sauce.EdibleID},
		{bread.EdibleID, salt.EdibleID},
		{sauce.EdibleID, salt.EdibleID},
	} {
		if err := services.AddIngredient(db, pair[0], pair[1]); err != nil {
			t.Fatalf("Failed to add ingredient: %v", err)
		}
	}

	all, err := services.ListIngredients(db, sandwich.EdibleID, true)
	if err != nil {
		t.Fatalf("Failed to list ingredients recursively: %v", err)
	}

	// salt appears once despite the two paths
	if len(all) != 3 {
		t.Fatalf("Expected 3 unique ingredients, got %d", len(all))
	}
}

func TestDeleteEdibleProtected(t *testing.T) {
	db := setupTestDB(t)
	salad := mustCreateEdible(t, db, "Salad")
	tomato := mustCreateEdible(t, db, "Tomato")

	if err := services.AddIngredient(db, salad.EdibleID, tomato.EdibleID); err != nil {
		t.Fatalf("Failed to add ingredient: %v", err)
	}

	// tomato is referenced by salad, delete must be blocked
	err := services.DeleteEdible(db, tomato.EdibleID)
	var referenced *types.ReferencedError
	if !errors.As(err, &referenced) {
		t.Fatalf("Expected ReferencedError, got %v", err)
	}

	var count int64
	db.Model(&models.Edible{}).Count(&count)
	if count != 2 {
		t.Errorf("Expected both edibles to survive, got %d", count)
	}

	// Removing the reference unblocks the delete
	if err := services.RemoveIngredient(db, salad.EdibleID, tomato.EdibleID); err != nil {
		t.Fatalf("Failed to remove ingredient: %v", err)
	}
	if err := services.DeleteEdible(db, tomato.EdibleID); err != nil {
		t.Fatalf("Failed to delete edible: %v", err)
	}
}

func TestDeleteEdibleClearsOwnLinks(t *testing.T) {
	db := setupTestDB(t)
	salad := mustCreateEdible(t, db, "Salad")
	tomato := mustCreateEdible(t, db, "Tomato")

	if err := services.AddIngredient(db, salad.EdibleID, tomato.EdibleID); err != nil {
		t.Fatalf("Failed to add ingredient: %v", err)
	}

	// salad references tomato, but nothing references salad
	if err := services.DeleteEdible(db, salad.EdibleID); err != nil {
		t.Fatalf("Failed to delete container: %v", err)
	}

	var links int64
	db.Model(&models.EdibleIngredient{}).Count(&links)
	if links != 0 {
		t.Errorf("Expected links to be cleared, got %d", links)
	}
}

func TestUpdateEdibleRenameClash(t *testing.T) {
	db := setupTestDB(t)
	mustCreateEdible(t, db, "Tomato")
	salad := mustCreateEdible(t, db, "Salad")

	_, err := services.UpdateEdible(db, salad.EdibleID, "TOMATO", "", models.JSON{})
	var dup *types.DuplicateNameError
	if !errors.As(err, &dup) {
		t.Fatalf("Expected DuplicateNameError, got %v", err)
	}

	// Renaming to itself with different casing is allowed
	updated, err := services.UpdateEdible(db, salad.EdibleID, "salad", "green", models.JSON{})
	if err != nil {
		t.Fatalf("Failed to update edible: %v", err)
	}
	if updated.EdibleName != "salad" || updated.Notes != "green" {
		t.Errorf("Unexpected update result: %+v", updated)
	}
}

func TestListEdiblesSummary(t *testing.T) {
	db := setupTestDB(t)
	salad := mustCreateEdible(t, db, "Salad")
	tomato := mustCreateEdible(t, db, "Tomato")
	oil := mustCreateEdible(t, db, "Olive Oil")

	for _, ingredient := range []uint64{tomato.EdibleID, oil.EdibleID} {
		if err := services.AddIngredient(db, salad.EdibleID, ingredient); err != nil {
			t.Fatalf("Failed to add ingredient: %v", err)
		}
	}

	summaries, err := services.ListEdibles(db, 10)
	if err != nil {
		t.Fatalf("Failed to list edibles: %v", err)
	}
	if len(summaries) != 3 {
		t.Fatalf("Expected 3 summaries, got %d", len(summaries))
	}

	counts := make(map[string]int64, len(summaries))
	for _, s := range summaries {
		counts[s.EdibleName] = s.IngredientCount
	}
	if counts["Salad"] != 2 {
		t.Errorf("Expected Salad to count 2 ingredients, got %d", counts["Salad"])
	}
	if counts["Tomato"] != 0 {
		t.Errorf("Expected Tomato to count 0 ingredients, got %d", counts["Tomato"])
	}
}

func TestGetEdibleNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := services.GetEdible(db, 999)
	if err == nil || err.Error() != "not found" {
		t.Fatalf("Expected not found error, got %v", err)
	}
}

func TestEdibleMetadataRoundTrip(t *testing.T) {
	db := setupTestDB(t)

	metadata := models.JSON{JSON: datatypes.JSON(`{"calories":22,"group":"vegetable"}`)}
	created, err := services.CreateEdible(db, "Tomato", "", metadata, nil)
	if err != nil {
		t.Fatalf("Failed to create edible: %v", err)
	}

	fetched, err := services.GetEdible(db, created.EdibleID)
	if err != nil {
		t.Fatalf("Failed to get edible: %v", err)
	}
	if !strings.Contains(string(fetched.Metadata.JSON), "calories") {
		t.Errorf("Expected metadata to survive the round trip, got %q", string(fetched.Metadata.JSON))
	}

	replaced := models.JSON{JSON: datatypes.JSON(`{"group":"fruit"}`)}
	if _, err := services.UpdateEdible(db, created.EdibleID, "Tomato", "", replaced); err != nil {
		t.Fatalf("Failed to update edible: %v", err)
	}

	fetched, err = services.GetEdible(db, created.EdibleID)
	if err != nil {
		t.Fatalf("Failed to get edible: %v", err)
	}
	if strings.Contains(string(fetched.Metadata.JSON), "calories") {
		t.Errorf("Expected update to replace metadata, got %q", string(fetched.Metadata.JSON))
	}
	if !strings.Contains(string(fetched.Metadata.JSON), "fruit") {
		t.Errorf("Expected replacement metadata, got %q", string(fetched.Metadata.JSON))
	}
}

func TestEdibleNameKeyUniqueAtStore(t *testing.T) {
	db := setupTestDB(t)
	mustCreateEdible(t, db, "Tomato")

	// Bypass the service entirely: the normalized key carries the unique
	// index, so even a raw insert of a case variant is rejected by the store.
	err := db.Create(&models.Edible{EdibleName: "  TOMATO "}).Error
	if err == nil {
		t.Fatal("Expected unique violation for case-variant name at the database level")
	}

	var count int64
	db.Model(&models.Edible{}).Count(&count)
	if count != 1 {
		t.Errorf("Expected 1 edible row, got %d", count)
	}
}

func TestDeleteEdibleInMealProtected(t *testing.T) {
	db := setupTestDB(t)
	toast := mustCreateEdible(t, db, "Toast")

	meal, err := services.LogMeal(db, "Breakfast", time.Time{}, "", []uint64{toast.EdibleID})
	if err != nil {
		t.Fatalf("Failed to log meal: %v", err)
	}

	err = services.DeleteEdible(db, toast.EdibleID)
	var referenced *types.ReferencedError
	if !errors.As(err, &referenced) {
		t.Fatalf("Expected ReferencedError while in a meal, got %v", err)
	}

	if err := services.DeleteMeal(db, meal.MealID); err != nil {
		t.Fatalf("Failed to delete meal: %v", err)
	}
	if err := services.DeleteEdible(db, toast.EdibleID); err != nil {
		t.Fatalf("Expected delete to succeed after the meal is gone: %v", err)
	}
}
