// wellbeing_service.go
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
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/foodmood/foodmood/internal/models"
	"github.com/foodmood/foodmood/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	"gorm.io/hints"
)

// MinCategoryOptions is the smallest scale an entry can be meaningfully
// logged against. Enforced at category creation, not at the database level.
const MinCategoryOptions = 2

// OptionInput is the input shape for creating a wellbeing option. Value
// accepts JSON numbers or strings since form payloads send strings. Order is
// a pointer so an explicit 0 is distinguishable from an absent field.
type OptionInput struct {
	Label string          `json:"label"`
	Value types.FlexInt64 `json:"value"`
	Color string          `json:"color,omitempty"`
	Order *int            `json:"order,omitempty"`
}

// OptionView is the wire shape consumed by the logging UI to populate the
// response choices for a category.
type OptionView struct {
	ID    uint64 `json:"id"`
	Label string `json:"label"`
	Value int64  `json:"value"`
	Color string `json:"color"`
}

// EntrySelection names one option choice for a bulk check-in.
type EntrySelection struct {
	CategoryID uint64 `json:"category_id"`
	OptionID   uint64 `json:"option_id"`
}

// AggregateResult summarizes entries of a category over a time window.
// Mean is computed over the options' numeric values, never over labels.
type AggregateResult struct {
	Mean  float64 `json:"mean"`
	Count int64   `json:"count"`
}

// validateOptionSet checks a proposed option set: at least two options, no
// duplicate labels (case-insensitive) and no duplicate values within the set.
func validateOptionSet(options []OptionInput) error {
	if len(options) < MinCategoryOptions {
		return &types.ValidationError{
			Field:   "options",
			Message: fmt.Sprintf("a category needs at least %d options", MinCategoryOptions),
		}
	}

	labels := make(map[string]bool, len(options))
	values := make(map[int64]bool, len(options))
	for _, opt := range options {
		label := strings.TrimSpace(opt.Label)
		if label == "" {
			return &types.ValidationError{Field: "options", Message: "option labels must not be empty"}
		}
		key := strings.ToLower(label)
		if labels[key] {
			return &types.ValidationError{Field: "options", Message: fmt.Sprintf("duplicate option label %q", label)}
		}
		labels[key] = true

		value := opt.Value.Int64()
		if values[value] {
			return &types.ValidationError{Field: "options", Message: fmt.Sprintf("duplicate option value %d", value)}
		}
		values[value] = true
	}

	return nil
}

// CreateCategory creates a wellbeing category together with its option set.
// Either the category and all options are persisted, or none are.
func CreateCategory(db *gorm.DB, name, description, icon string, options []OptionInput) (*models.WellbeingCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &types.ValidationError{Field: "name", Message: "name is required"}
	}
	if err := validateOptionSet(options); err != nil {
		return nil, err
	}

	var category models.WellbeingCategory

	err := db.Transaction(func(tx *gorm.DB) error {
		// Name uniqueness spans active and archived categories.
		var count int64
		if err := tx.Model(&models.WellbeingCategory{}).
			Where("LOWER(category_name) = LOWER(?)", name).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return &types.ValidationError{Field: "name", Message: fmt.Sprintf("category %q already exists", name)}
		}

		category = models.WellbeingCategory{
			CategoryName: name,
			Description:  description,
			Icon:         icon,
			IsActive:     true,
		}
		if err := tx.Create(&category).Error; err != nil {
			return err
		}

		for i, opt := range options {
			// Fall back to the slice position only when order was omitted.
			order := i
			if opt.Order != nil {
				order = *opt.Order
			}
			option := models.WellbeingOption{
				CategoryID:   category.CategoryID,
				Label:        strings.TrimSpace(opt.Label),
				OptionValue:  opt.Value.Int64(),
				Color:        opt.Color,
				DisplayOrder: order,
			}
			if err := tx.Create(&option).Error; err != nil {
				return err
			}
			category.Options = append(category.Options, option)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &category, nil
}

// GetCategory returns a category with its options preloaded in display order.
func GetCategory(db *gorm.DB, categoryID uint64) (*models.WellbeingCategory, error) {
	var category models.WellbeingCategory
	err := db.Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)}).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order, option_value")
		}).
		Where("category_id = ?", categoryID).
		First(&category).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("not found")
		}
		return nil, err
	}
	return &category, nil
}

// ListCategories returns categories ordered by name, optionally restricted
// to active ones. Options come preloaded in display order.
func ListCategories(db *gorm.DB, activeOnly bool) ([]models.WellbeingCategory, error) {
	query := db.Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)}).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order, option_value")
		}).
		Order("category_name")

	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var categories []models.WellbeingCategory
	if err := query.Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// UpdateCategory changes name, description or icon. Name uniqueness is
// re-checked against all other categories.
func UpdateCategory(db *gorm.DB, categoryID uint64, name, description, icon string) (*models.WellbeingCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &types.ValidationError{Field: "name", Message: "name is required"}
	}

	var category models.WellbeingCategory

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{Logger: tx.Logger.LogMode(logger.Silent)}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("category_id = ?", categoryID).
			First(&category).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("not found")
			}
			return err
		}

		var count int64
		if err := tx.Model(&models.WellbeingCategory{}).
			Where("LOWER(category_name) = LOWER(?) AND category_id <> ?", name, categoryID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return &types.ValidationError{Field: "name", Message: fmt.Sprintf("category %q already exists", name)}
		}

		category.CategoryName = name
		category.Description = description
		category.Icon = icon
		return tx.Save(&category).Error
	})
	if err != nil {
		return nil, err
	}

	return &category, nil
}

// setCategoryActive flips the soft-delete flag. Entries stay fully readable
// and editable either way.
func setCategoryActive(db *gorm.DB, categoryID uint64, active bool) error {
	result := db.Model(&models.WellbeingCategory{}).
		Where("category_id = ?", categoryID).
		Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Idempotent toggle still needs the row to exist.
		var count int64
		if err := db.Model(&models.WellbeingCategory{}).Where("category_id = ?", categoryID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("not found")
		}
	}
	return nil
}

// ArchiveCategory marks a category inactive. Archiving never deletes.
func ArchiveCategory(db *gorm.DB, categoryID uint64) error {
	return setCategoryActive(db, categoryID, false)
}

// RestoreCategory reactivates an archived category.
func RestoreCategory(db *gorm.DB, categoryID uint64) error {
	return setCategoryActive(db, categoryID, true)
}

// DeleteCategory removes a category and its options. Allowed only while the
// category has no entries; with history it must be archived instead.
func DeleteCategory(db *gorm.DB, categoryID uint64) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var category models.WellbeingCategory
		if err := tx.Session(&gorm.Session{Logger: tx.Logger.LogMode(logger.Silent)}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("category_id = ?", categoryID).
			First(&category).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("not found")
			}
			return err
		}

		var entries int64
		if err := tx.Model(&models.WellbeingEntry{}).
			Where("category_id = ?", categoryID).
			Count(&entries).Error; err != nil {
			return err
		}
		if entries > 0 {
			return &types.ReferencedError{Entity: "category", ID: categoryID, Count: entries}
		}

		if err := tx.Where("category_id = ?", categoryID).Delete(&models.WellbeingOption{}).Error; err != nil {
			return err
		}

		return tx.Delete(&category).Error
	})
}

// AddOption appends one option to an existing category, honoring the
// per-category label and value uniqueness rules.
func AddOption(db *gorm.DB, categoryID uint64, input OptionInput) (*models.WellbeingOption, error) {
	label := strings.TrimSpace(input.Label)
	if label == "" {
		return nil, &types.ValidationError{Field: "label", Message: "label is required"}
	}

	var option models.WellbeingOption

	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.WellbeingCategory{}).Where("category_id = ?", categoryID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("not found")
		}

		var clash int64
		if err := tx.Model(&models.WellbeingOption{}).
			Where("category_id = ? AND (LOWER(label) = LOWER(?) OR option_value = ?)", categoryID, label, input.Value.Int64()).
			Count(&clash).Error; err != nil {
			return err
		}
		if clash > 0 {
			return &types.ValidationError{Field: "options", Message: "label and value must be unique within the category"}
		}

		displayOrder := 0
		if input.Order != nil {
			displayOrder = *input.Order
		}
		option = models.WellbeingOption{
			CategoryID:   categoryID,
			Label:        label,
			OptionValue:  input.Value.Int64(),
			Color:        input.Color,
			DisplayOrder: displayOrder,
		}
		return tx.Create(&option).Error
	})
	if err != nil {
		return nil, err
	}

	return &option, nil
}

// DeleteOption removes an option. Blocked with ReferencedError while any
// entry references it; the option and its entries remain intact after a
// failed call. Protected delete preserves the historical record.
func DeleteOption(db *gorm.DB, optionID uint64) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var option models.WellbeingOption
		if err := tx.Session(&gorm.Session{Logger: tx.Logger.LogMode(logger.Silent)}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("option_id = ?", optionID).
			First(&option).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("not found")
			}
			return err
		}

		var refs int64
		if err := tx.Model(&models.WellbeingEntry{}).
			Where("option_id = ?", optionID).
			Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return &types.ReferencedError{Entity: "option", ID: optionID, Count: refs}
		}

		return tx.Delete(&option).Error
	})
}

// CategoryOptions returns a category's options as the wire shape consumed
// by the logging UI, ordered by display order then value.
func CategoryOptions(db *gorm.DB, categoryID uint64) ([]OptionView, error) {
	var count int64
	if err := db.Model(&models.WellbeingCategory{}).Where("category_id = ?", categoryID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("not found")
	}

	var views []OptionView
	err := db.Model(&models.WellbeingOption{}).
		Select("option_id AS id, label, option_value AS value, color").
		Where("category_id = ?", categoryID).
		Order("display_order, option_value").
		Scan(&views).Error
	if err != nil {
		return nil, err
	}
	return views, nil
}

// checkOptionBelongs verifies the entry invariant: the referenced option
// must belong to the referenced category.
func checkOptionBelongs(tx *gorm.DB, categoryID, optionID uint64) error {
	var option models.WellbeingOption
	if err := tx.Session(&gorm.Session{Logger: tx.Logger.LogMode(logger.Silent)}).
		Where("option_id = ?", optionID).
		First(&option).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("not found")
		}
		return err
	}
	if option.CategoryID != categoryID {
		return &types.CrossCategoryError{CategoryID: categoryID, OptionID: optionID}
	}
	return nil
}

// LogEntry records one wellbeing reading. A zero recordedAt defaults to the
// current time.
func LogEntry(db *gorm.DB, categoryID, optionID uint64, recordedAt time.Time, notes string) (*models.WellbeingEntry, error) {
	var entry models.WellbeingEntry

	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.WellbeingCategory{}).Where("category_id = ?", categoryID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("not found")
		}

		if err := checkOptionBelongs(tx, categoryID, optionID); err != nil {
			return err
		}

		if recordedAt.IsZero() {
			recordedAt = time.Now().UTC()
		}

		entry = models.WellbeingEntry{
			CategoryID: categoryID,
			OptionID:   optionID,
			Notes:      notes,
			RecordedAt: recordedAt,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

// LogBulkEntries records one reading per selection in a single transaction
// (the daily check-in). Every selection is cross-category-guarded; on any
// failure nothing is committed.
func LogBulkEntries(db *gorm.DB, selections []EntrySelection, recordedAt time.Time, notes string) ([]models.WellbeingEntry, error) {
	if len(selections) == 0 {
		return nil, &types.ValidationError{Field: "entries", Message: "at least one selection is required"}
	}
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}

	var entries []models.WellbeingEntry

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, sel := range selections {
			if err := checkOptionBelongs(tx, sel.CategoryID, sel.OptionID); err != nil {
				return err
			}
			entry := models.WellbeingEntry{
				CategoryID: sel.CategoryID,
				OptionID:   sel.OptionID,
				Notes:      notes,
				RecordedAt: recordedAt,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// GetEntry returns one entry.
func GetEntry(db *gorm.DB, entryID uint64) (*models.WellbeingEntry, error) {
	var entry models.WellbeingEntry
	err := db.Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)}).
		Where("entry_id = ?", entryID).
		First(&entry).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("not found")
		}
		return nil, err
	}
	return &entry, nil
}

// UpdateEntry edits an entry's option, timestamp and notes. The replacement
// option must belong to the entry's category.
func UpdateEntry(db *gorm.DB, entryID, optionID uint64, recordedAt time.Time, notes string) (*models.WellbeingEntry, error) {
	var entry models.WellbeingEntry

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{Logger: tx.Logger.LogMode(logger.Silent)}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("entry_id = ?", entryID).
			First(&entry).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("not found")
			}
			return err
		}

		if err := checkOptionBelongs(tx, entry.CategoryID, optionID); err != nil {
			return err
		}

		entry.OptionID = optionID
		if !recordedAt.IsZero() {
			entry.RecordedAt = recordedAt
		}
		entry.Notes = notes
		return tx.Save(&entry).Error
	})
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

// DeleteEntry removes an entry. Entries are the leaf record and delete
// freely; nothing cascades onto the category or option.
func DeleteEntry(db *gorm.DB, entryID uint64) error {
	result := db.Where("entry_id = ?", entryID).Delete(&models.WellbeingEntry{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("not found")
	}
	return nil
}

// ListEntries returns entries most recent first, optionally filtered by
// category and a [from, to) recorded_at window.
func ListEntries(db *gorm.DB, categoryID uint64, from, to time.Time, limit int) ([]models.WellbeingEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	query := db.Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)}).
		Model(&models.WellbeingEntry{}).
		Order("recorded_at DESC").
		Limit(limit)

	if db.Dialector.Name() == "mysql" {
		query = query.Clauses(hints.UseIndex("idx_wellbeing_entries_recorded_at"))
	}
	if categoryID != 0 {
		query = query.Where("category_id = ?", categoryID)
	}
	if !from.IsZero() {
		query = query.Where("recorded_at >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("recorded_at < ?", to)
	}

	var entries []models.WellbeingEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Aggregate computes mean and count over the option values of a category's
// entries with recorded_at in [from, to). Options are the single source of
// the analyzable magnitude, so the average joins through to option_value
// and never assumes a fixed range.
func Aggregate(db *gorm.DB, categoryID uint64, from, to time.Time) (AggregateResult, error) {
	var result AggregateResult

	var count int64
	if err := db.Model(&models.WellbeingCategory{}).Where("category_id = ?", categoryID).Count(&count).Error; err != nil {
		return result, err
	}
	if count == 0 {
		return result, fmt.Errorf("not found")
	}

	var row struct {
		Mean  sql.NullFloat64
		Count int64
	}

	query := db.Table("wellbeing_entries").
		Select("AVG(wellbeing_options.option_value) AS mean, COUNT(*) AS count").
		Joins("JOIN wellbeing_options ON wellbeing_options.option_id = wellbeing_entries.option_id").
		Where("wellbeing_entries.category_id = ?", categoryID)

	if !from.IsZero() {
		query = query.Where("wellbeing_entries.recorded_at >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("wellbeing_entries.recorded_at < ?", to)
	}

	if err := query.Scan(&row).Error; err != nil {
		return result, err
	}

	result.Count = row.Count
	if row.Mean.Valid {
		result.Mean = row.Mean.Float64
	}
	return result, nil
}
