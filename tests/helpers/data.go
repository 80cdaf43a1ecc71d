// data.go
//
// FoodMood - track what you eat and how you feel
// Copyright (c) 2026 FoodMood contributors
//
// This file is part of foodmood.
// foodmood is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// foodmood is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with foodmood.
// If not, see <https://www.gnu.org/licenses/>.

package helpers

import (
	"testing"
	"time"

	"github.com/foodmood/foodmood/internal/models"
	"gorm.io/gorm"
)

// CreateTestEdible creates an edible and returns its id
func CreateTestEdible(t *testing.T, db *gorm.DB, name string) uint64 {
	edible := models.Edible{
		EdibleName: name,
	}
	if err := db.Create(&edible).Error; err != nil {
		t.Fatalf("Failed to create edible %s: %v", name, err)
	}
	return edible.EdibleID
}

// LinkTestIngredient links an ingredient directly under a container edible
func LinkTestIngredient(t *testing.T, db *gorm.DB, edibleID, ingredientID uint64) {
	link := models.EdibleIngredient{
		EdibleID:     edibleID,
		IngredientID: ingredientID,
	}
	if err := db.Create(&link).Error; err != nil {
		t.Fatalf("Failed to link ingredient %d under %d: %v", ingredientID, edibleID, err)
	}
}

// CreateTestCategory creates a wellbeing category with labeled options mapped
// to values. Returns the category id and option ids keyed by label.
func CreateTestCategory(t *testing.T, db *gorm.DB, name string, options map[string]int64) (uint64, map[string]uint64) {
	category := models.WellbeingCategory{
		CategoryName: name,
		IsActive:     true,
	}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("Failed to create category %s: %v", name, err)
	}

	optionIDs := make(map[string]uint64, len(options))
	order := 0
	for label, value := range options {
		option := models.WellbeingOption{
			CategoryID:   category.CategoryID,
			Label:        label,
			OptionValue:  value,
			DisplayOrder: order,
		}
		if err := db.Create(&option).Error; err != nil {
			t.Fatalf("Failed to create option %s: %v", label, err)
		}
		optionIDs[label] = option.OptionID
		order++
	}

	return category.CategoryID, optionIDs
}

// CreateTestEntry logs an entry against an option at a fixed time
func CreateTestEntry(t *testing.T, db *gorm.DB, categoryID, optionID uint64, recordedAt time.Time) uint64 {
	entry := models.WellbeingEntry{
		CategoryID: categoryID,
		OptionID:   optionID,
		RecordedAt: recordedAt,
	}
	if err := db.Create(&entry).Error; err != nil {
		t.Fatalf("Failed to create entry: %v", err)
	}
	return entry.EntryID
}
