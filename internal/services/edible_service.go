// edible_service.go
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

// MaxEdibleNameLength matches the edible_name column size.
const MaxEdibleNameLength = 64

// EdibleSummary is the list-view shape: an edible with its direct
// ingredient count.
type EdibleSummary struct {
	EdibleID        uint64    `json:"id"`
	EdibleName      string    `json:"name"`
	IngredientCount int64     `json:"ingredient_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// NormalizeEdibleName trims surrounding whitespace. Comparison against
// existing names is case-insensitive, so "Tomato" and "tomato " are the
// same edible.
func NormalizeEdibleName(name string) string {
	return strings.TrimSpace(name)
}

func validateEdibleName(name string) error {
	if name == "" {
		return &types.ValidationError{Field: "name", Message: "name is required"}
	}
	if len(name) > MaxEdibleNameLength {
		return &types.ValidationError{Field: "name", Message: fmt.Sprintf("name must be at most %d characters", MaxEdibleNameLength)}
	}
	return nil
}

// findEdibleByName looks an edible up by normalized name. The lookup goes
// through edible_name_key, the same column the unique index sits on, so the
// service check and the database constraint agree on every dialect.
func findEdibleByName(db *gorm.DB, name string) (*models.Edible, error) {
	var edible models.Edible
	err := db.Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)}).
		Where("edible_name_key = ?", strings.ToLower(name)).
		First(&edible).Error
	if err != nil {
		return nil, err
	}
	return &edible, nil
}

// CreateEdible creates an edible with an optional initial ingredient set.
// The edible row and all ingredient links are committed atomically.
func CreateEdible(db *gorm.DB, name, notes string, metadata models.JSON, ingredientIDs []uint64) (*models.Edible, error) {
	name = NormalizeEdibleName(name)
	if err := validateEdibleName(name); err != nil {
		return nil, err
	}

	var edible models.Edible

	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := findEdibleByName(tx, name); err == nil {
			return &types.DuplicateNameError{Name: name}
		} else if err != gorm.ErrRecordNotFound {
			return err
		}

		edible = models.Edible{EdibleName: name, Notes: notes, Metadata: metadata}
		if err := tx.Create(&edible).Error; err != nil {
			return err
		}

		seen := make(map[uint64]bool, len(ingredientIDs))
		for _, ingredientID := range ingredientIDs {
			if seen[ingredientID] {
				continue
			}
			seen[ingredientID] = true

			// The new edible is not referenced anywhere yet, so only the
			// degenerate self-cycle is possible here.
			if ingredientID == edible.EdibleID {
				return &types.CycleError{EdibleID: edible.EdibleID, IngredientID: ingredientID}
			}

			var count int64
			if err := tx.Model(&models.Edible{}).Where("edible_id = ?", ingredientID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return &types.ValidationError{Field: "ingredients", Message: fmt.Sprintf("edible %d does not exist", ingredientID)}
			}

			link := models.EdibleIngredient{EdibleID: edible.EdibleID, IngredientID: ingredientID}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &edible, nil
}

// QuickCreateEdible is the idempotent get-or-create behind the quick-create
// endpoint. A matching edible (trimmed, case-insensitive) is returned as-is;
// otherwise a new atomic edible is created. Two racing calls for the same
// name end up with exactly one row: the loser's insert hits the unique
// index and is retried as a lookup.
func QuickCreateEdible(db *gorm.DB, name string) (*models.Edible, bool, error) {
	name = NormalizeEdibleName(name)
	if err := validateEdibleName(name); err != nil {
		return nil, false, err
	}

	if existing, err := findEdibleByName(db, name); err == nil {
		return existing, false, nil
	} else if err != gorm.ErrRecordNotFound {
		return nil, false, err
	}

	edible := models.Edible{EdibleName: name}
	if err := db.Create(&edible).Error; err != nil {
		// Lost the race against a concurrent insert of the same name.
		if existing, lookupErr := findEdibleByName(db, name); lookupErr == nil {
			return existing, false, nil
		}
		return nil, false, err
	}

	return &edible, true, nil
}

// AddIngredient links ingredientID as a direct ingredient of edibleID.
// Rejected with CycleError when the link would make the containment graph
// cyclic, including the degenerate self-reference. Re-adding an existing
// link is a no-op.
func AddIngredient(db *gorm.DB, edibleID, ingredientID uint64) error {
	if edibleID == ingredientID {
		return &types.CycleError{EdibleID: edibleID, IngredientID: ingredientID}
	}

	return db.Transaction(func(tx *gorm.DB) error {
		// Lock the container row so concurrent link inserts against the same
		// edible serialize and can't sneak a cycle past the check.
		var container models.Edible
		if err := tx.Session(&gorm.Session{Logger: tx.Logger.LogMode(logger.Silent)}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("edible_id = ?", edibleID).
			First(&container).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("not found")
			}
			return err
		}

		var ingredient models.Edible
		if err := tx.Session(&gorm.Session{Logger: tx.Logger.LogMode(logger.Silent)}).
			Where("edible_id = ?", ingredientID).
			First(&ingredient).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("not found")
			}
			return err
		}

		var count int64
		if err := tx.Model(&models.EdibleIngredient{}).
			Where("edible_id = ? AND ingredient_id = ?", edibleID, ingredientID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		// The new edge points container -> ingredient. It closes a cycle
		// exactly when the container is already reachable from the
		// ingredient through existing edges.
		reachable, err := reachableFrom(tx, ingredientID, edibleID)
		if err != nil {
			return err
		}
		if reachable {
			return &types.CycleError{EdibleID: edibleID, IngredientID: ingredientID}
		}

		link := models.EdibleIngredient{EdibleID: edibleID, IngredientID: ingredientID}
		return tx.Create(&link).Error
	})
}

// reachableFrom reports whether targetID is reachable from startID through
// the ingredient relation (breadth-first over identifier pairs).
func reachableFrom(tx *gorm.DB, startID, targetID uint64) (bool, error) {
	visited := map[uint64]bool{startID: true}
	frontier := []uint64{startID}

	for len(frontier) > 0 {
		var next []uint64
		if err := tx.Model(&models.EdibleIngredient{}).
			Where("edible_id IN ?", frontier).
			Pluck("ingredient_id", &next).Error; err != nil {
			return false, err
		}

		frontier = frontier[:0]
		for _, id := range next {
			if id == targetID {
				return true, nil
			}
			if !visited[id] {
				visited[id] = true
				frontier = append(frontier, id)
			}
		}
	}

	return false, nil
}

// RemoveIngredient removes a direct ingredient link. Removing a link that
// does not exist is not an error.
func RemoveIngredient(db *gorm.DB, edibleID, ingredientID uint64) error {
	var count int64
	if err := db.Model(&models.Edible{}).Where("edible_id = ?", edibleID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("not found")
	}

	return db.Where("edible_id = ? AND ingredient_id = ?", edibleID, ingredientID).
		Delete(&models.EdibleIngredient{}).Error
}

// ListIngredients returns the ingredients of an edible, ordered by name at
// each level. With recursive set, the full transitive ingredient list is
// returned in depth-first discovery order, each edible at most once. The
// write path keeps the graph acyclic, but the walk still guards against a
// corrupt relation and fails with GraphIntegrityError instead of looping.
func ListIngredients(db *gorm.DB, edibleID uint64, recursive bool) ([]models.Edible, error) {
	var count int64
	if err := db.Model(&models.Edible{}).Where("edible_id = ?", edibleID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("not found")
	}

	if !recursive {
		return directIngredients(db, edibleID)
	}

	return collectIngredients(db, edibleID)
}

// directIngredients returns the immediate ingredients of an edible, ordered
// by name.
func directIngredients(db *gorm.DB, edibleID uint64) ([]models.Edible, error) {
	var ingredients []models.Edible
	err := db.Table("edibles").
		Joins("JOIN edible_ingredients ei ON ei.ingredient_id = edibles.edible_id").
		Where("ei.edible_id = ?", edibleID).
		Order("edibles.edible_name").
		Find(&ingredients).Error
	if err != nil {
		return nil, err
	}
	return ingredients, nil
}

// collectIngredients walks the containment graph depth-first. onPath tracks
// the current descent so a cycle reachable from the root is caught the
// moment it closes.
func collectIngredients(db *gorm.DB, rootID uint64) ([]models.Edible, error) {
	out := []models.Edible{}
	seen := make(map[uint64]bool)
	onPath := map[uint64]bool{rootID: true}

	var walk func(id uint64) error
	walk = func(id uint64) error {
		children, err := directIngredients(db, id)
		if err != nil {
			return err
		}
		for _, child := range children {
			if onPath[child.EdibleID] {
				return &types.GraphIntegrityError{EdibleID: rootID}
			}
			if seen[child.EdibleID] {
				continue
			}
			seen[child.EdibleID] = true
			out = append(out, child)

			onPath[child.EdibleID] = true
			if err := walk(child.EdibleID); err != nil {
				return err
			}
			delete(onPath, child.EdibleID)
		}
		return nil
	}

	if err := walk(rootID); err != nil {
		return nil, err
	}
	return out, nil
}

// GetEdible returns an edible with its direct ingredients preloaded,
// ordered by name.
func GetEdible(db *gorm.DB, edibleID uint64) (*models.Edible, error) {
	var edible models.Edible
	err := db.Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)}).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("edible_name")
		}).
		Where("edible_id = ?", edibleID).
		First(&edible).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("not found")
		}
		return nil, err
	}
	return &edible, nil
}

// UpdateEdible renames an edible and/or replaces its notes and metadata.
// Renaming honors the same case-insensitive uniqueness rule as creation.
func UpdateEdible(db *gorm.DB, edibleID uint64, name, notes string, metadata models.JSON) (*models.Edible, error) {
	name = NormalizeEdibleName(name)
	if err := validateEdibleName(name); err != nil {
		return nil, err
	}

	var edible models.Edible

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{Logger: tx.Logger.LogMode(logger.Silent)}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("edible_id = ?", edibleID).
			First(&edible).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("not found")
			}
			return err
		}

		if existing, err := findEdibleByName(tx, name); err == nil {
			if existing.EdibleID != edibleID {
				return &types.DuplicateNameError{Name: name}
			}
		} else if err != gorm.ErrRecordNotFound {
			return err
		}

		edible.EdibleName = name
		edible.Notes = notes
		edible.Metadata = metadata
		return tx.Save(&edible).Error
	})
	if err != nil {
		return nil, err
	}

	return &edible, nil
}

// DeleteEdible removes an edible. Deletion is blocked with ReferencedError
// while the edible is used as an ingredient elsewhere or appears in a logged
// meal; references are never cascaded or nulled. Its own ingredient links
// are cleared.
func DeleteEdible(db *gorm.DB, edibleID uint64) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var edible models.Edible
		if err := tx.Session(&gorm.Session{Logger: tx.Logger.LogMode(logger.Silent)}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("edible_id = ?", edibleID).
			First(&edible).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("not found")
			}
			return err
		}

		var refs int64
		if err := tx.Model(&models.EdibleIngredient{}).
			Where("ingredient_id = ?", edibleID).
			Count(&refs).Error; err != nil {
			return err
		}
		var mealRefs int64
		if err := tx.Model(&models.MealEdible{}).
			Where("edible_id = ?", edibleID).
			Count(&mealRefs).Error; err != nil {
			return err
		}
		if refs+mealRefs > 0 {
			return &types.ReferencedError{Entity: "edible", ID: edibleID, Count: refs + mealRefs}
		}

		if err := tx.Where("edible_id = ?", edibleID).Delete(&models.EdibleIngredient{}).Error; err != nil {
			return err
		}

		return tx.Delete(&edible).Error
	})
}

// ListEdibles returns the most recently created edibles with their direct
// ingredient counts, newest first.
func ListEdibles(db *gorm.DB, limit int) ([]EdibleSummary, error) {
	if limit <= 0 {
		limit = 10
	}

	var summaries []EdibleSummary
	err := db.Table("edibles").
		Select("edibles.edible_id, edibles.edible_name, edibles.created_at, " +
			"(SELECT COUNT(*) FROM edible_ingredients ei WHERE ei.edible_id = edibles.edible_id) AS ingredient_count").
		Order("edibles.created_at DESC").
		Limit(limit).
		Scan(&summaries).Error
	if err != nil {
		return nil, err
	}
	return summaries, nil
}
