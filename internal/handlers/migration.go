// migration.go
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
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/carddeck/internal/cards"
	"github.com/localnerve/carddeck/internal/registry"
	"github.com/localnerve/carddeck/internal/utils"
)

// MigrationHandler handles card migration registry routes
type MigrationHandler struct {
	Registry *registry.Registry
}

// ListMigrations handles GET /api/migration
// @Summary List migration statuses
// @Description List the migration status of every known card template
// @Tags Migration
// @Accept json
// @Produce json
// @Success 200 {array} registry.Status
// @Router /migration [get]
func (h *MigrationHandler) ListMigrations(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.Registry.Statuses())
}

// MarkMigrated handles POST /api/migration/:templateId
// @Summary Mark a card template migrated
// @Description Mark a card template as migrated to backend-driven data
// @Tags Migration
// @Accept json
// @Produce json
// @Param templateId path string true "Card template ID"
// @Param body body object false "Optional note"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /migration/{templateId} [post]
func (h *MigrationHandler) MarkMigrated(c *fiber.Ctx) error {
	templateID := cards.TemplateID(c.Params("templateId"))
	if !cards.IsKnownTemplate(templateID) {
		return utils.NotFoundResponse(c, fmt.Sprintf("Card template '%s' not found", templateID))
	}

	var body struct {
		Note string `json:"note"`
	}
	_ = c.BodyParser(&body) // note is optional, an empty body is fine

	h.Registry.MarkMigrated(templateID, body.Note)
	return utils.MutationSuccessResponse(c)
}

// MarkNotMigrated handles DELETE /api/migration/:templateId
// @Summary Mark a card template not migrated
// @Description Revert a card template to static fallback data
// @Tags Migration
// @Accept json
// @Produce json
// @Param templateId path string true "Card template ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /migration/{templateId} [delete]
func (h *MigrationHandler) MarkNotMigrated(c *fiber.Ctx) error {
	templateID := cards.TemplateID(c.Params("templateId"))
	if !cards.IsKnownTemplate(templateID) {
		return utils.NotFoundResponse(c, fmt.Sprintf("Card template '%s' not found", templateID))
	}

	h.Registry.MarkNotMigrated(templateID)
	return utils.MutationSuccessResponse(c)
}
