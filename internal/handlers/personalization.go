// personalization.go
//
// AI report card-deck resolution service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of carddeck.
// carddeck is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// carddeck is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with carddeck.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/carddeck/internal/cards"
	"github.com/localnerve/carddeck/internal/personalization"
	"github.com/localnerve/carddeck/internal/utils"
)

// PersonalizationHandler handles user personalization routes
type PersonalizationHandler struct {
	Store *personalization.Store
}

// GetPersonalization handles GET /api/personalization/:userId
// @Summary Get user personalization
// @Description Get a user's personalization for an application and task
// @Tags Personalization
// @Accept json
// @Produce json
// @Param userId path string true "User ID"
// @Param applicationId query string true "Application ID"
// @Param taskId query string false "Task ID"
// @Success 200 {object} cards.PersonalizationConfig
// @Success 204
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /personalization/{userId} [get]
func (h *PersonalizationHandler) GetPersonalization(c *fiber.Ctx) error {
	userID := c.Params("userId")
	applicationID := c.Query("applicationId")
	taskID := c.Query("taskId")

	if userID == "" || applicationID == "" {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "personalization.validation.input")
	}

	cfg, err := h.Store.Load(c.Context(), applicationID, userID, taskID)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getPersonalization")
	}

	if cfg == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}

	return c.Status(fiber.StatusOK).JSON(cfg)
}

// SavePersonalization handles PUT /api/personalization/:userId
// @Summary Save user personalization
// @Description Save a user's personalization for an application and task
// @Tags Personalization
// @Accept json
// @Produce json
// @Param userId path string true "User ID"
// @Param applicationId query string true "Application ID"
// @Param taskId query string false "Task ID"
// @Param body body cards.PersonalizationConfig true "Personalization to save"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /personalization/{userId} [put]
func (h *PersonalizationHandler) SavePersonalization(c *fiber.Ctx) error {
	userID := c.Params("userId")
	applicationID := c.Query("applicationId")
	taskID := c.Query("taskId")

	if userID == "" || applicationID == "" {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "personalization.validation.input")
	}

	var body cards.PersonalizationConfig
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "personalization.validation.input")
	}

	if err := h.Store.Save(c.Context(), applicationID, userID, taskID, &body); err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "savePersonalization")
	}

	return utils.MutationSuccessResponse(c)
}
