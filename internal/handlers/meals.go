// meals.go
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

// MealHandler handles meal routes
type MealHandler struct {
	DB *gorm.DB
}

// mealBody is shared by log and update; edibles accept numbers or strings,
// as a single object or an array.
type mealBody struct {
	Name    string                           `json:"name" form:"name"`
	Notes   string                           `json:"notes" form:"notes"`
	EatenAt string                           `json:"eaten_at" form:"eaten_at"`
	Edibles types.FlexList[types.FlexUint64] `json:"edibles" form:"edibles"`
}

func (b *mealBody) edibleIDs() []uint64 {
	ids := make([]uint64, 0, len(b.Edibles))
	for _, id := range b.Edibles.Slice() {
		ids = append(ids, id.Uint64())
	}
	return ids
}

// ListMeals handles GET /api/meals
// @Summary List latest meals
// @Description Get the most recently eaten meals with their edible counts
// @Tags Meals
// @Produce json
// @Param limit query int false "Maximum number of meals to return"
// @Param from query string false "Inclusive lower bound on eaten_at (RFC3339 or yyyy-mm-dd)"
// @Param to query string false "Exclusive upper bound on eaten_at"
// @Success 200 {array} services.MealSummary
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /meals [get]
func (h *MealHandler) ListMeals(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)

	from, err := parseTime(c.Query("from"))
	if err != nil {
		return utils.ValidationErrorResponse(c, "from", "invalid timestamp")
	}
	to, err := parseTime(c.Query("to"))
	if err != nil {
		return utils.ValidationErrorResponse(c, "to", "invalid timestamp")
	}

	summaries, err := services.ListMeals(h.DB, from, to, limit)
	if err != nil {
		return serviceErrorResponse(c, err, "listMeals")
	}

	return c.Status(fiber.StatusOK).JSON(summaries)
}

// GetMeal handles GET /api/meals/:id
// @Summary Get a meal
// @Description Get a meal with its edibles
// @Tags Meals
// @Produce json
// @Param id path int true "Meal ID"
// @Success 200 {object} models.Meal
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /meals/{id} [get]
func (h *MealHandler) GetMeal(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return serviceErrorResponse(c, err, "getMeal")
	}

	meal, err := services.GetMeal(h.DB, id)
	if err != nil {
		return serviceErrorResponse(c, err, "getMeal")
	}

	return c.Status(fiber.StatusOK).JSON(meal)
}

// LogMeal handles POST /api/meals
// @Summary Log a meal
// @Description Record which edibles were eaten together and when; eaten_at defaults to now
// @Tags Meals
// @Accept json
// @Produce json
// @Param body body object true "Meal to log"
// @Success 201 {object} models.Meal
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /meals [post]
func (h *MealHandler) LogMeal(c *fiber.Ctx) error {
	var body mealBody
	if err := c.BodyParser(&body); err != nil {
		return utils.ValidationErrorResponse(c, "", "Invalid input")
	}

	eatenAt, err := parseTime(body.EatenAt)
	if err != nil {
		return utils.ValidationErrorResponse(c, "eaten_at", "invalid timestamp")
	}

	meal, err := services.LogMeal(h.DB, body.Name, eatenAt, body.Notes, body.edibleIDs())
	if err != nil {
		return serviceErrorResponse(c, err, "logMeal")
	}

	return c.Status(fiber.StatusCreated).JSON(meal)
}

// UpdateMeal handles PUT /api/meals/:id
// @Summary Update a meal
// @Description Rename a meal, move its timestamp and replace its edible set
// @Tags Meals
// @Accept json
// @Produce json
// @Param id path int true "Meal ID"
// @Param body body object true "Fields to update"
// @Success 200 {object} models.Meal
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /meals/{id} [put]
func (h *MealHandler) UpdateMeal(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return serviceErrorResponse(c, err, "updateMeal")
	}

	var body mealBody
	if err := c.BodyParser(&body); err != nil {
		return utils.ValidationErrorResponse(c, "", "Invalid input")
	}

	eatenAt, err := parseTime(body.EatenAt)
	if err != nil {
		return utils.ValidationErrorResponse(c, "eaten_at", "invalid timestamp")
	}

	meal, err := services.UpdateMeal(h.DB, id, body.Name, eatenAt, body.Notes, body.edibleIDs())
	if err != nil {
		return serviceErrorResponse(c, err, "updateMeal")
	}

	return c.Status(fiber.StatusOK).JSON(meal)
}

// DeleteMeal handles DELETE /api/meals/:id
// @Summary Delete a meal
// @Description Delete a meal and its edible links; the edibles are untouched
// @Tags Meals
// @Produce json
// @Param id path int true "Meal ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /meals/{id} [delete]
func (h *MealHandler) DeleteMeal(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return serviceErrorResponse(c, err, "deleteMeal")
	}

	if err := services.DeleteMeal(h.DB, id); err != nil {
		return serviceErrorResponse(c, err, "deleteMeal")
	}

	return utils.MutationSuccessResponse(c, id)
}
