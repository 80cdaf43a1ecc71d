// common.go
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
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/foodmood/foodmood/internal/types"
	"github.com/foodmood/foodmood/internal/utils"
	"github.com/gofiber/fiber/v2"
)

// parseIDParam parses a numeric path parameter.
func parseIDParam(c *fiber.Ctx, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, &types.ValidationError{Field: name, Message: "must be a positive integer id"}
	}
	return id, nil
}

// timeFormats accepted for timestamps: RFC3339 from API clients, the
// datetime-local format from browser forms, and a bare date.
var timeFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseTime parses a timestamp in any accepted format. Empty input yields
// a zero time and no error.
func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range timeFormats {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &types.ValidationError{Field: "time", Message: "unrecognized timestamp format: " + value}
}

// serviceErrorResponse maps domain errors to HTTP responses. Validation
// problems come back with field detail, rejected state transitions as 409,
// and anything unexpected as a generic 500 without internal detail.
func serviceErrorResponse(c *fiber.Ctx, err error, errorType string) error {
	var validationErr *types.ValidationError
	if errors.As(err, &validationErr) {
		return utils.ValidationErrorResponse(c, validationErr.Field, validationErr.Message)
	}

	var duplicateErr *types.DuplicateNameError
	if errors.As(err, &duplicateErr) {
		return utils.ValidationErrorResponse(c, "name", duplicateErr.Error())
	}

	var cycleErr *types.CycleError
	if errors.As(err, &cycleErr) {
		return utils.ConflictResponse(c, cycleErr.Error(), "cycle")
	}

	var integrityErr *types.GraphIntegrityError
	if errors.As(err, &integrityErr) {
		return utils.ConflictResponse(c, integrityErr.Error(), "graph_integrity")
	}

	var referencedErr *types.ReferencedError
	if errors.As(err, &referencedErr) {
		return utils.ConflictResponse(c, referencedErr.Error(), "referenced")
	}

	var crossErr *types.CrossCategoryError
	if errors.As(err, &crossErr) {
		return utils.ConflictResponse(c, crossErr.Error(), "cross_category")
	}

	if err.Error() == "not found" {
		return utils.NotFoundResponse(c, "Resource not found")
	}

	log.Printf("%s: %v", errorType, err)
	return utils.ErrorResponse(c, "Internal error", fiber.StatusInternalServerError, errorType)
}
