// edibles.go
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
	"github.com/foodmood/foodmood/internal/models"
	"github.com/foodmood/foodmood/internal/services"
	"github.com/foodmood/foodmood/internal/types"
	"github.com/foodmood/foodmood/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// EdibleHandler handles edible routes
type EdibleHandler struct {
	DB *gorm.DB
}

// ListEdibles handles GET /api/edibles
// @Summary List latest edibles
// @Description Get the most recently created edibles with their ingredient counts
// @Tags Edibles
// @Produce json
// @Param limit query int false "Maximum number of edibles to return"
// @Success 200 {array} services.EdibleSummary
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /edibles [get]
func (h *EdibleHandler) ListEdibles(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)

	summaries, err := services.ListEdibles(h.DB, limit)
	if err != nil {
		return serviceErrorResponse(c, err, "listEdibles")
	}

	return c.Status(fiber.StatusOK).JSON(summaries)
}

// GetEdible handles GET /api/edibles/:id
// @Summary Get an edible
// @Description Get an edible with its direct ingredients
// @Tags Edibles
// @Produce json
// @Param id path int true "Edible ID"
// @Success 200 {object} models.Edible
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /edibles/{id} [get]
func (h *EdibleHandler) GetEdible(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return serviceErrorResponse(c, err, "getEdible")
	}

	edible, err := services.GetEdible(h.DB, id)
	if err != nil {
		return serviceErrorResponse(c, err, "getEdible")
	}

	return c.Status(fiber.StatusOK).JSON(edible)
}

// CreateEdible handles POST /api/edibles
// @Summary Create an edible
// @Description Create an edible with an optional initial ingredient set
// @Tags Edibles
// @Accept json
// @Produce json
// @Param body body object true "Edible to create"
// @Success 201 {object} models.Edible
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /edibles [post]
func (h *EdibleHandler) CreateEdible(c *fiber.Ctx) error {
	var body struct {
		Name        string                           `json:"name" form:"name"`
		Notes       string                           `json:"notes" form:"notes"`
		Metadata    models.JSON                      `json:"metadata"`
		Ingredients types.FlexList[types.FlexUint64] `json:"ingredients" form:"ingredients"`
	}

	if err := c.BodyParser(&body); err != nil {
		return utils.ValidationErrorResponse(c, "", "Invalid input")
	}

	ingredientIDs := make([]uint64, 0, len(body.Ingredients))
	for _, id := range body.Ingredients.Slice() {
		ingredientIDs = append(ingredientIDs, id.Uint64())
	}

	edible, err := services.CreateEdible(h.DB, body.Name, body.Notes, body.Metadata, ingredientIDs)
	if err != nil {
		return serviceErrorResponse(c, err, "createEdible")
	}

	return c.Status(fiber.StatusCreated).JSON(edible)
}

// UpdateEdible handles PUT /api/edibles/:id
// @Summary Update an edible
// @Description Rename an edible and/or replace its notes and metadata
// @Tags Edibles
// @Accept json
// @Produce json
// @Param id path int true "Edible ID"
// @Param body body object true "Fields to update"
// @Success 200 {object} models.Edible
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /edibles/{id} [put]
func (h *EdibleHandler) UpdateEdible(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return serviceErrorResponse(c, err, "updateEdible")
	}

	var body struct {
		Name     string      `json:"name" form:"name"`
		Notes    string      `json:"notes" form:"notes"`
		Metadata models.JSON `json:"metadata"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.ValidationErrorResponse(c, "", "Invalid input")
	}

	edible, err := services.UpdateEdible(h.DB, id, body.Name, body.Notes, body.Metadata)
	if err != nil {
		return serviceErrorResponse(c, err, "updateEdible")
	}

	return c.Status(fiber.StatusOK).JSON(edible)
}

// DeleteEdible handles DELETE /api/edibles/:id
// @Summary Delete an edible
// @Description Delete an edible; blocked while it is used as an ingredient elsewhere
// @Tags Edibles
// @Produce json
// @Param id path int true "Edible ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /edibles/{id} [delete]
func (h *EdibleHandler) DeleteEdible(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return serviceErrorResponse(c, err, "deleteEdible")
	}

	if err := services.DeleteEdible(h.DB, id); err != nil {
		return serviceErrorResponse(c, err, "deleteEdible")
	}

	return utils.MutationSuccessResponse(c, id)
}

// ListIngredients handles GET /api/edibles/:id/ingredients
// @Summary List ingredients
// @Description List an edible's ingredients, optionally the full transitive set
// @Tags Edibles
// @Produce json
// @Param id path int true "Edible ID"
// @Param recursive query bool false "Traverse the containment graph transitively"
// @Success 200 {array} models.Edible
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /edibles/{id}/ingredients [get]
func (h *EdibleHandler) ListIngredients(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return serviceErrorResponse(c, err, "listIngredients")
	}

	recursive := c.QueryBool("recursive", false)

	ingredients, err := services.ListIngredients(h.DB, id, recursive)
	if err != nil {
		return serviceErrorResponse(c, err, "listIngredients")
	}

	return c.Status(fiber.StatusOK).JSON(ingredients)
}

// AddIngredient handles POST /api/edibles/:id/ingredients
// @Summary Add an ingredient
// @Description Link another edible as a direct ingredient; rejected if it would create a cycle
// @Tags Edibles
// @Accept json
// @Produce json
// @Param id path int true "Edible ID"
// @Param body body object true "Ingredient to link"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /edibles/{id}/ingredients [post]
func (h *EdibleHandler) AddIngredient(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return serviceErrorResponse(c, err, "addIngredient")
	}

	var body struct {
		IngredientID types.FlexUint64 `json:"ingredient_id" form:"ingredient_id"`
	}
	if err := c.BodyParser(&body); err != nil || body.IngredientID == 0 {
		return utils.ValidationErrorResponse(c, "ingredient_id", "ingredient_id is required")
	}

	if err := services.AddIngredient(h.DB, id, body.IngredientID.Uint64()); err != nil {
		return serviceErrorResponse(c, err, "addIngredient")
	}

	return utils.MutationSuccessResponse(c, id)
}

// RemoveIngredient handles DELETE /api/edibles/:id/ingredients/:ingredientId
// @Summary Remove an ingredient
// @Description Remove a direct ingredient link
// @Tags Edibles
// @Produce json
// @Param id path int true "Edible ID"
// @Param ingredientId path int true "Ingredient edible ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /edibles/{id}/ingredients/{ingredientId} [delete]
func (h *EdibleHandler) RemoveIngredient(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return serviceErrorResponse(c, err, "removeIngredient")
	}
	ingredientID, err := parseIDParam(c, "ingredientId")
	if err != nil {
		return serviceErrorResponse(c, err, "removeIngredient")
	}

	if err := services.RemoveIngredient(h.DB, id, ingredientID); err != nil {
		return serviceErrorResponse(c, err, "removeIngredient")
	}

	return utils.MutationSuccessResponse(c, id)
}

// QuickCreate handles POST /api/edibles/quick-create
// @Summary Quick-create an edible
// @Description Idempotent get-or-create by name, used by the ingredient picker without a full page round-trip
// @Tags Edibles
// @Accept x-www-form-urlencoded
// @Produce json
// @Param name formData string true "Edible name"
// @Success 200 {object} map[string]interface{}
// @Security CookieAuth
// @Router /edibles/quick-create [post]
func (h *EdibleHandler) QuickCreate(c *fiber.Ctx) error {
	var body struct {
		Name string `json:"name" form:"name"`
	}

	// The calling UI treats every failure the same, so this endpoint never
	// surfaces detail, just {ok:false}.
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": false})
	}

	edible, _, err := services.QuickCreateEdible(h.DB, body.Name)
	if err != nil {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": false})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ok":   true,
		"id":   edible.EdibleID,
		"name": edible.EdibleName,
	})
}
