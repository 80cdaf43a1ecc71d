// wellbeing.go
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

package handlers

import (
	"github.com/foodmood/foodmood/internal/services"
	"github.com/foodmood/foodmood/internal/types"
	"github.com/foodmood/foodmood/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// WellbeingHandler handles wellbeing category, option and entry routes
type WellbeingHandler struct {
	DB *gorm.DB
}

// ListCategories handles GET /api/wellbeing/categories
// @Summary List wellbeing categories
// @Description Get categories with their option sets, optionally only active ones
// @Tags Wellbeing
// @Produce json
// @Param active query bool false "Restrict to active categories"
// @Success 200 {array} models.WellbeingCategory
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /wellbeing/categories [get]
func (h *WellbeingHandler) ListCategories(c *fiber.Ctx) error {
	activeOnly := c.QueryBool("active", false)

	categories, err := services.ListCategories(h.DB, activeOnly)
	if err != nil {
		return serviceErrorResponse(c, err, "listCategories")
	}

	return c.Status(fiber.StatusOK).JSON(categories)
}

// GetCategory handles GET /api/wellbeing/categories/:id
// @Summary Get a wellbeing category
// @Description Get a category with its options in display order
// @Tags Wellbeing
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} models.WellbeingCategory
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /wellbeing/categories/{id} [get]
func (h *WellbeingHandler) GetCategory(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return serviceErrorResponse(c, err, "getCategory")
	}

	category, err := services.GetCategory(h.DB, id)
	if err != nil {
		return serviceErrorResponse(c, err, "getCategory")
	}

	return c.Status(fiber.StatusOK).JSON(category)
}

// CreateCategory handles POST /api/wellbeing/categories
// @Summary Create a wellbeing category
// @Description Create a category together with its full option set, atomically
// @Tags Wellbeing
// @Accept json
// @Produce json
// @Param body body object true "Category with at least two options"
// @Success 201 {object} models.WellbeingCategory
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /wellbeing/categories [post]
func (h *WellbeingHandler) CreateCategory(c *fiber.Ctx) error {
	var body struct {
		Name        string                 `json:"name" form:"name"`
		Description string                 `json:"description" form:"description"`
		Icon        string                 `json:"icon" form:"icon"`
		Options     []services.OptionInput `json:"options"`
	}

	if err := c.BodyParser(&body); err != nil {
		return utils.ValidationErrorResponse(c, "", "Invalid input")
	}

	category, err := services.CreateCategory(h.DB, body.Name, body.Description, body.Icon, body.Options)
	if err != nil {
		return serviceErrorResponse(c, err, "createCategory")
	}

	return c.Status(fiber.StatusCreated).JSON(category)
}

// UpdateCategory handles PUT /api/wellbeing/categories/:id
// @Summary Update a wellbeing category
// @Description Change a category's name, description or icon
// @Tags Wellbeing
// @Accept json
// @Produce json
// @Param id path int true "Category ID"
// @Param body body object true "Fields to update"
// @Success 200 {object} models.WellbeingCategory
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /wellbeing/categories/{id} [put]
func (h *WellbeingHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return serviceErrorResponse(c, err, "updateCategory")
	}

	var body struct {
		Name        string `json:"name" form:"name"`
		Description string `json:"description" form:"description"`
		Icon        string `json:"icon" form:"icon"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.ValidationErrorResponse(c, "", "Invalid input")
	}

	category, err := services.UpdateCategory(h.DB, id, body.Name, body.Description, body.Icon)
	if err != nil {
		return serviceErrorResponse(c, err, "updateCategory")
	}

	return c.Status(fiber.StatusOK).JSON(category)
}

// ArchiveCategory handles POST /api/wellbeing/categories/:id/archive
// @Summary Archive a wellbeing category
// @Description Mark a category inactive; entries remain readable and editable
// @Tags Wellbeing
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /wellbeing/categories/{id}/archive [post]
func (h *WellbeingHandler) ArchiveCategory(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return serviceErrorResponse(c, err, "archiveCategory")
	}

	if err := services.ArchiveCategory(h.DB, id); err != nil {
		return serviceErrorResponse(c, err, "archiveCategory")
	}

	return utils.MutationSuccessResponse(c, id)
}

// RestoreCategory handles POST /api/wellbeing/categories/:id/restore
// @Summary Restore a wellbeing category
// @Description Reactivate an archived category
// @Tags Wellbeing
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /wellbeing/categories/{id}/restore [post]
func (h *WellbeingHandler) RestoreCategory(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return serviceErrorResponse(c, err, "restoreCategory")
	}

	if err := services.RestoreCategory(h.DB, id); err != nil {
		return serviceErrorResponse(c, err, "restoreCategory")
	}

	return utils.MutationSuccessResponse(c, id)
}

// DeleteCategory handles DELETE /api/wellbeing/categories/:id
// @Summary Delete a wellbeing category
// @Description Delete a category and its options; blocked while entries exist
// @Tags Wellbeing
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /wellbeing/categories/{id} [delete]
func (h *WellbeingHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return serviceErrorResponse(c, err, "deleteCategory")
	}

	if err := services.DeleteCategory(h.DB, id); err != nil {
		return serviceErrorResponse(c, err, "deleteCategory")
	}

	return utils.MutationSuccessResponse(c, id)
}

// CategoryOptions handles GET /api/wellbeing/categories/:id/options
// @Summary List a category's options
// @Description Get the option choices for the logging UI in display order
// @Tags Wellbeing
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /wellbeing/categories/{id}/options [get]
func (h *WellbeingHandler) CategoryOptions(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return serviceErrorResponse(c, err, "categoryOptions")
	}

	options, err := services.CategoryOptions(h.DB, id)
	if err != nil {
		return serviceErrorResponse(c, err, "categoryOptions")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"options": options})
}

// AddOption handles POST /api/wellbeing/categories/:id/options
// @Summary Add an option
// @Description Append one option to an existing category
// @Tags Wellbeing
// @Accept json
// @Produce json
// @Param id path int true "Category ID"
// @Param body body services.OptionInput true "Option to add"
// @Success 201 {object} models.WellbeingOption
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /wellbeing/categories/{id}/options [post]
func (h *WellbeingHandler) AddOption(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return serviceErrorResponse(c, err, "addOption")
	}

	var body services.OptionInput
	if err := c.BodyParser(&body); err != nil {
		return utils.ValidationErrorResponse(c, "", "Invalid input")
	}

	option, err := services.AddOption(h.DB, id, body)
	if err != nil {
		return serviceErrorResponse(c, err, "addOption")
	}

	return c.Status(fiber.StatusCreated).JSON(option)
}

// DeleteOption handles DELETE /api/wellbeing/options/:id
// @Summary Delete an option
// @Description Delete an option; blocked while entries reference it
// @Tags Wellbeing
// @Produce json
// @Param id path int true "Option ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /wellbeing/options/{id} [delete]
func (h *WellbeingHandler) DeleteOption(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return serviceErrorResponse(c, err, "deleteOption")
	}

	if err := services.DeleteOption(h.DB, id); err != nil {
		return serviceErrorResponse(c, err, "deleteOption")
	}

	return utils.MutationSuccessResponse(c, id)
}

// ListEntries handles GET /api/wellbeing/entries
// @Summary List wellbeing entries
// @Description Get entries most recent first, optionally filtered by category and time window
// @Tags Wellbeing
// @Produce json
// @Param category query int false "Category ID filter"
// @Param from query string false "Window start (inclusive), RFC3339 or date"
// @Param to query string false "Window end (exclusive), RFC3339 or date"
// @Param limit query int false "Maximum number of entries"
// @Success 200 {array} models.WellbeingEntry
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /wellbeing/entries [get]
func (h *WellbeingHandler) ListEntries(c *fiber.Ctx) error {
	categoryID := uint64(c.QueryInt("category", 0))
	limit := c.QueryInt("limit", 50)

	from, err := parseTime(c.Query("from"))
	if err != nil {
		return serviceErrorResponse(c, err, "listEntries")
	}
	to, err := parseTime(c.Query("to"))
	if err != nil {
		return serviceErrorResponse(c, err, "listEntries")
	}

	entries, err := services.ListEntries(h.DB, categoryID, from, to, limit)
	if err != nil {
		return serviceErrorResponse(c, err, "listEntries")
	}

	return c.Status(fiber.StatusOK).JSON(entries)
}

// GetEntry handles GET /api/wellbeing/entries/:id
// @Summary Get a wellbeing entry
// @Tags Wellbeing
// @Produce json
// @Param id path int true "Entry ID"
// @Success 200 {object} models.WellbeingEntry
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /wellbeing/entries/{id} [get]
func (h *WellbeingHandler) GetEntry(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return serviceErrorResponse(c, err, "getEntry")
	}

	entry, err := services.GetEntry(h.DB, id)
	if err != nil {
		return serviceErrorResponse(c, err, "getEntry")
	}

	return c.Status(fiber.StatusOK).JSON(entry)
}

// LogEntry handles POST /api/wellbeing/entries
// @Summary Log a wellbeing entry
// @Description Record one reading; the option must belong to the category
// @Tags Wellbeing
// @Accept json
// @Produce json
// @Param body body object true "Entry to log"
// @Success 201 {object} models.WellbeingEntry
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /wellbeing/entries [post]
func (h *WellbeingHandler) LogEntry(c *fiber.Ctx) error {
	var body struct {
		CategoryID types.FlexUint64 `json:"category_id" form:"category_id"`
		OptionID   types.FlexUint64 `json:"option_id" form:"option_id"`
		RecordedAt string           `json:"recorded_at" form:"recorded_at"`
		Notes      string           `json:"notes" form:"notes"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.ValidationErrorResponse(c, "", "Invalid input")
	}
	if body.CategoryID == 0 {
		return utils.ValidationErrorResponse(c, "category_id", "category_id is required")
	}
	if body.OptionID == 0 {
		return utils.ValidationErrorResponse(c, "option_id", "option_id is required")
	}

	recordedAt, err := parseTime(body.RecordedAt)
	if err != nil {
		return serviceErrorResponse(c, err, "logEntry")
	}

	entry, err := services.LogEntry(h.DB, body.CategoryID.Uint64(), body.OptionID.Uint64(), recordedAt, body.Notes)
	if err != nil {
		return serviceErrorResponse(c, err, "logEntry")
	}

	return c.Status(fiber.StatusCreated).JSON(entry)
}

// LogBulkEntries handles POST /api/wellbeing/entries/bulk
// @Summary Log a daily check-in
// @Description Record one reading per category selection in a single transaction
// @Tags Wellbeing
// @Accept json
// @Produce json
// @Param body body object true "Selections to log"
// @Success 201 {array} models.WellbeingEntry
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /wellbeing/entries/bulk [post]
func (h *WellbeingHandler) LogBulkEntries(c *fiber.Ctx) error {
	var body struct {
		Entries    []services.EntrySelection `json:"entries"`
		RecordedAt string                    `json:"recorded_at" form:"recorded_at"`
		Notes      string                    `json:"notes" form:"notes"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.ValidationErrorResponse(c, "", "Invalid input")
	}

	recordedAt, err := parseTime(body.RecordedAt)
	if err != nil {
		return serviceErrorResponse(c, err, "logBulkEntries")
	}

	entries, err := services.LogBulkEntries(h.DB, body.Entries, recordedAt, body.Notes)
	if err != nil {
		return serviceErrorResponse(c, err, "logBulkEntries")
	}

	return c.Status(fiber.StatusCreated).JSON(entries)
}

// UpdateEntry handles PUT /api/wellbeing/entries/:id
// @Summary Update a wellbeing entry
// @Description Change an entry's option, timestamp or notes
// @Tags Wellbeing
// @Accept json
// @Produce json
// @Param id path int true "Entry ID"
// @Param body body object true "Fields to update"
// @Success 200 {object} models.WellbeingEntry
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /wellbeing/entries/{id} [put]
func (h *WellbeingHandler) UpdateEntry(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return serviceErrorResponse(c, err, "updateEntry")
	}

	var body struct {
		OptionID   types.FlexUint64 `json:"option_id" form:"option_id"`
		RecordedAt string           `json:"recorded_at" form:"recorded_at"`
		Notes      string           `json:"notes" form:"notes"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.ValidationErrorResponse(c, "", "Invalid input")
	}
	if body.OptionID == 0 {
		return utils.ValidationErrorResponse(c, "option_id", "option_id is required")
	}

	recordedAt, err := parseTime(body.RecordedAt)
	if err != nil {
		return serviceErrorResponse(c, err, "updateEntry")
	}

	entry, err := services.UpdateEntry(h.DB, id, body.OptionID.Uint64(), recordedAt, body.Notes)
	if err != nil {
		return serviceErrorResponse(c, err, "updateEntry")
	}

	return c.Status(fiber.StatusOK).JSON(entry)
}

// DeleteEntry handles DELETE /api/wellbeing/entries/:id
// @Summary Delete a wellbeing entry
// @Tags Wellbeing
// @Produce json
// @Param id path int true "Entry ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /wellbeing/entries/{id} [delete]
func (h *WellbeingHandler) DeleteEntry(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return serviceErrorResponse(c, err, "deleteEntry")
	}

	if err := services.DeleteEntry(h.DB, id); err != nil {
		return serviceErrorResponse(c, err, "deleteEntry")
	}

	return utils.MutationSuccessResponse(c, id)
}

// Aggregate handles GET /api/wellbeing/categories/:id/aggregate
// @Summary Aggregate a category's entries
// @Description Mean and count over option values for entries in a [from, to) window
// @Tags Wellbeing
// @Produce json
// @Param id path int true "Category ID"
// @Param from query string false "Window start (inclusive), RFC3339 or date"
// @Param to query string false "Window end (exclusive), RFC3339 or date"
// @Success 200 {object} services.AggregateResult
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /wellbeing/categories/{id}/aggregate [get]
func (h *WellbeingHandler) Aggregate(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return serviceErrorResponse(c, err, "aggregate")
	}

	from, err := parseTime(c.Query("from"))
	if err != nil {
		return serviceErrorResponse(c, err, "aggregate")
	}
	to, err := parseTime(c.Query("to"))
	if err != nil {
		return serviceErrorResponse(c, err, "aggregate")
	}

	result, err := services.Aggregate(h.DB, id, from, to)
	if err != nil {
		return serviceErrorResponse(c, err, "aggregate")
	}

	return c.Status(fiber.StatusOK).JSON(result)
}
