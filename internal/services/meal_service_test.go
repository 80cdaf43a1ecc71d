package services_test

import (
	"errors"
	"testing"
	"time"

	"github.com/foodmood/foodmood/internal/models"
	"github.com/foodmood/foodmood/internal/services"
	"github.com/foodmood/foodmood/internal/types"
	"gorm.io/gorm"
)

func mustLogMeal(t *testing.T, db *gorm.DB, name string, eatenAt time.Time, edibleIDs []uint64) *models.Meal {
	t.Helper()
	meal, err := services.LogMeal(db, name, eatenAt, "", edibleIDs)
	if err != nil {
		t.Fatalf("Failed to log meal %s: %v", name, err)
	}
	return meal
}

func TestLogMealDefaultsEatenAt(t *testing.T) {
	db := setupTestDB(t)
	toast := mustCreateEdible(t, db, "Toast")
	egg := mustCreateEdible(t, db, "Egg")

	before := time.Now().UTC().Add(-time.Second)
	meal := mustLogMeal(t, db, "Breakfast", time.Time{}, []uint64{toast.EdibleID, egg.EdibleID})
	after := time.Now().UTC().Add(time.Second)

	if meal.EatenAt.Before(before) || meal.EatenAt.After(after) {
		t.Errorf("Expected eaten_at to default to now, got %v", meal.EatenAt)
	}
	if len(meal.Edibles) != 2 {
		t.Fatalf("Expected 2 edibles on the meal, got %d", len(meal.Edibles))
	}
	// Preloaded in name order
	if meal.Edibles[0].EdibleName != "Egg" || meal.Edibles[1].EdibleName != "Toast" {
		t.Errorf("Expected edibles ordered by name, got %s, %s", meal.Edibles[0].EdibleName, meal.Edibles[1].EdibleName)
	}
}

func TestLogMealRequiresEdibles(t *testing.T) {
	db := setupTestDB(t)

	_, err := services.LogMeal(db, "Breakfast", time.Time{}, "", nil)
	var validation *types.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("Expected ValidationError for empty edible set, got %v", err)
	}
	if validation.Field != "edibles" {
		t.Errorf("Expected field edibles, got %s", validation.Field)
	}

	// Unknown edible rolls the whole meal back
	_, err = services.LogMeal(db, "Breakfast", time.Time{}, "", []uint64{999})
	if !errors.As(err, &validation) {
		t.Fatalf("Expected ValidationError for unknown edible, got %v", err)
	}

	var count int64
	db.Model(&models.Meal{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected no meal rows after failed logs, got %d", count)
	}
}

func TestListMealsWindowAndCounts(t *testing.T) {
	db := setupTestDB(t)
	toast := mustCreateEdible(t, db, "Toast")
	soup := mustCreateEdible(t, db, "Soup")

	morning := time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC)
	noon := time.Date(2026, 8, 1, 12, 30, 0, 0, time.UTC)
	evening := time.Date(2026, 8, 1, 19, 0, 0, 0, time.UTC)

	mustLogMeal(t, db, "Breakfast", morning, []uint64{toast.EdibleID})
	mustLogMeal(t, db, "Lunch", noon, []uint64{soup.EdibleID, toast.EdibleID})
	mustLogMeal(t, db, "Dinner", evening, []uint64{soup.EdibleID})

	summaries, err := services.ListMeals(db, time.Time{}, time.Time{}, 10)
	if err != nil {
		t.Fatalf("Failed to list meals: %v", err)
	}
	if len(summaries) != 3 {
		t.Fatalf("Expected 3 meals, got %d", len(summaries))
	}
	if summaries[0].MealName != "Dinner" {
		t.Errorf("Expected newest eaten first, got %s", summaries[0].MealName)
	}
	if summaries[1].MealName != "Lunch" || summaries[1].EdibleCount != 2 {
		t.Errorf("Expected Lunch with 2 edibles, got %s with %d", summaries[1].MealName, summaries[1].EdibleCount)
	}

	// [from, to) window keeps lunch, drops breakfast and dinner
	windowed, err := services.ListMeals(db, noon, evening, 10)
	if err != nil {
		t.Fatalf("Failed to list meals: %v", err)
	}
	if len(windowed) != 1 || windowed[0].MealName != "Lunch" {
		t.Fatalf("Expected only Lunch in the window, got %v", windowed)
	}
}

func TestUpdateMealReplacesEdibles(t *testing.T) {
	db := setupTestDB(t)
	toast := mustCreateEdible(t, db, "Toast")
	soup := mustCreateEdible(t, db, "Soup")

	meal := mustLogMeal(t, db, "Lunch", time.Time{}, []uint64{toast.EdibleID})

	updated, err := services.UpdateMeal(db, meal.MealID, "Late lunch", time.Time{}, "rushed", []uint64{soup.EdibleID})
	if err != nil {
		t.Fatalf("Failed to update meal: %v", err)
	}
	if updated.MealName != "Late lunch" || updated.Notes != "rushed" {
		t.Errorf("Expected updated fields, got %s / %s", updated.MealName, updated.Notes)
	}
	if len(updated.Edibles) != 1 || updated.Edibles[0].EdibleID != soup.EdibleID {
		t.Fatalf("Expected edible set replaced with Soup, got %v", updated.Edibles)
	}

	// The replaced edible is free to delete again
	if err := services.DeleteEdible(db, toast.EdibleID); err != nil {
		t.Errorf("Expected Toast to be deletable after replacement: %v", err)
	}

	_, err = services.UpdateMeal(db, meal.MealID, "Late lunch", time.Time{}, "", nil)
	var validation *types.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("Expected ValidationError for empty replacement set, got %v", err)
	}
}

func TestDeleteMealKeepsEdibles(t *testing.T) {
	db := setupTestDB(t)
	toast := mustCreateEdible(t, db, "Toast")

	meal := mustLogMeal(t, db, "Breakfast", time.Time{}, []uint64{toast.EdibleID})

	if err := services.DeleteMeal(db, meal.MealID); err != nil {
		t.Fatalf("Failed to delete meal: %v", err)
	}

	var links int64
	db.Model(&models.MealEdible{}).Count(&links)
	if links != 0 {
		t.Errorf("Expected meal links cleared, got %d", links)
	}

	if _, err := services.GetEdible(db, toast.EdibleID); err != nil {
		t.Errorf("Expected edible to survive meal deletion: %v", err)
	}

	if err := services.DeleteMeal(db, meal.MealID); err == nil || err.Error() != "not found" {
		t.Fatalf("Expected not found for repeated delete, got %v", err)
	}
}
