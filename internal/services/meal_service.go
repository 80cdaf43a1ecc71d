// meal_service.go
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

package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/foodmood/foodmood/internal/models"
	"github.com/foodmood/foodmood/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// MaxMealNameLength matches the meal_name column size.
const MaxMealNameLength = 200

// MealSummary is the list-view shape: a meal with its edible count.
type MealSummary struct {
	MealID      uint64    `json:"id"`
	MealName    string    `json:"name"`
	EatenAt     time.Time `json:"eaten_at"`
	EdibleCount int64     `json:"edible_count"`
}

func validateMealName(name string) error {
	if name == "" {
		return &types.ValidationError{Field: "name", Message: "name is required"}
	}
	if len(name) > MaxMealNameLength {
		return &types.ValidationError{Field: "name", Message: fmt.Sprintf("name must be at most %d characters", MaxMealNameLength)}
	}
	return nil
}

// dedupeIDs preserves first-seen order.
func dedupeIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]bool, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// replaceMealEdibles swaps the meal's edible links for the given set inside
// the caller's transaction. Every referenced edible must exist.
func replaceMealEdibles(tx *gorm.DB, mealID uint64, edibleIDs []uint64) error {
	if err := tx.Where("meal_id = ?", mealID).Delete(&models.MealEdible{}).Error; err != nil {
		return err
	}

	for _, edibleID := range edibleIDs {
		var count int64
		if err := tx.Model(&models.Edible{}).Where("edible_id = ?", edibleID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return &types.ValidationError{Field: "edibles", Message: fmt.Sprintf("edible %d does not exist", edibleID)}
		}

		link := models.MealEdible{MealID: mealID, EdibleID: edibleID}
		if err := tx.Create(&link).Error; err != nil {
			return err
		}
	}

	return nil
}

// LogMeal records a consumption event: which edibles were eaten together and
// when. A meal must reference at least one edible. A zero eatenAt defaults
// to the current time; the meal row and its edible links are committed
// atomically.
func LogMeal(db *gorm.DB, name string, eatenAt time.Time, notes string, edibleIDs []uint64) (*models.Meal, error) {
	name = strings.TrimSpace(name)
	if err := validateMealName(name); err != nil {
		return nil, err
	}

	edibleIDs = dedupeIDs(edibleIDs)
	if len(edibleIDs) == 0 {
		return nil, &types.ValidationError{Field: "edibles", Message: "a meal must contain at least one edible"}
	}

	if eatenAt.IsZero() {
		eatenAt = time.Now().UTC()
	}

	meal := models.Meal{MealName: name, EatenAt: eatenAt, Notes: notes}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&meal).Error; err != nil {
			return err
		}
		return replaceMealEdibles(tx, meal.MealID, edibleIDs)
	})
	if err != nil {
		return nil, err
	}

	return GetMeal(db, meal.MealID)
}

// GetMeal returns a meal with its edibles preloaded, ordered by name.
func GetMeal(db *gorm.DB, mealID uint64) (*models.Meal, error) {
	var meal models.Meal
	err := db.Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)}).
		Preload("Edibles", func(db *gorm.DB) *gorm.DB {
			return db.Order("edible_name")
		}).
		Where("meal_id = ?", mealID).
		First(&meal).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("not found")
		}
		return nil, err
	}
	return &meal, nil
}

// UpdateMeal renames a meal, moves its timestamp, replaces its notes and
// swaps its edible set in one transaction. The at-least-one-edible rule
// holds on update as well.
func UpdateMeal(db *gorm.DB, mealID uint64, name string, eatenAt time.Time, notes string, edibleIDs []uint64) (*models.Meal, error) {
	name = strings.TrimSpace(name)
	if err := validateMealName(name); err != nil {
		return nil, err
	}

	edibleIDs = dedupeIDs(edibleIDs)
	if len(edibleIDs) == 0 {
		return nil, &types.ValidationError{Field: "edibles", Message: "a meal must contain at least one edible"}
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var meal models.Meal
		if err := tx.Session(&gorm.Session{Logger: tx.Logger.LogMode(logger.Silent)}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("meal_id = ?", mealID).
			First(&meal).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("not found")
			}
			return err
		}

		meal.MealName = name
		if !eatenAt.IsZero() {
			meal.EatenAt = eatenAt
		}
		meal.Notes = notes
		if err := tx.Save(&meal).Error; err != nil {
			return err
		}

		return replaceMealEdibles(tx, mealID, edibleIDs)
	})
	if err != nil {
		return nil, err
	}

	return GetMeal(db, mealID)
}

// DeleteMeal removes a meal and its edible links. The edibles themselves are
// untouched; deleting a meal never needs referential protection.
func DeleteMeal(db *gorm.DB, mealID uint64) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var meal models.Meal
		if err := tx.Session(&gorm.Session{Logger: tx.Logger.LogMode(logger.Silent)}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("meal_id = ?", mealID).
			First(&meal).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("not found")
			}
			return err
		}

		if err := tx.Where("meal_id = ?", mealID).Delete(&models.MealEdible{}).Error; err != nil {
			return err
		}

		return tx.Delete(&meal).Error
	})
}

// ListMeals returns the most recent meals with their edible counts, newest
// eaten first. from/to bound eaten_at as [from, to); zero values leave the
// bound open.
func ListMeals(db *gorm.DB, from, to time.Time, limit int) ([]MealSummary, error) {
	if limit <= 0 {
		limit = 10
	}

	query := db.Table("meals").
		Select("meals.meal_id, meals.meal_name, meals.eaten_at, " +
			"(SELECT COUNT(*) FROM meal_edibles me WHERE me.meal_id = meals.meal_id) AS edible_count")
	if !from.IsZero() {
		query = query.Where("meals.eaten_at >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("meals.eaten_at < ?", to)
	}

	var summaries []MealSummary
	err := query.Order("meals.eaten_at DESC").
		Limit(limit).
		Scan(&summaries).Error
	if err != nil {
		return nil, err
	}
	return summaries, nil
}
