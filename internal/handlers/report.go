// report.go
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
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/carddeck/internal/resolver"
	"github.com/localnerve/carddeck/internal/utils"
)

// ReportHandler handles report resolution routes
type ReportHandler struct {
	Resolver *resolver.Resolver
}

// GetReport handles GET /api/reports/:applicationId/:reportType
// @Summary Resolve a report
// @Description Resolve a report's card deck for an application, optionally filtered by content
// @Tags Reports
// @Accept json
// @Produce json
// @Param applicationId path string true "Application ID"
// @Param reportType path string true "Report type (module key)"
// @Param filter query string false "Content filter, e.g. an industry"
// @Param userId query string false "User ID for personalization"
// @Param taskId query string false "Task ID for personalization scope"
// @Success 200 {object} cards.ReportWithCards
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /reports/{applicationId}/{reportType} [get]
func (h *ReportHandler) GetReport(c *fiber.Ctx) error {
	req := h.requestFrom(c)

	report, err := h.Resolver.Resolve(c.Context(), req)
	if err != nil {
		var notFound *resolver.ModuleNotFoundError
		if errors.As(err, &notFound) {
			return utils.NotFoundResponse(c, fmt.Sprintf("Report type '%s' not found", req.ReportType))
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getReport")
	}

	return c.Status(fiber.StatusOK).JSON(report)
}

// RefreshReport handles GET /api/reports/:applicationId/:reportType/refresh
// @Summary Refresh a report
// @Description Drop the cached report and resolve it again
// @Tags Reports
// @Accept json
// @Produce json
// @Param applicationId path string true "Application ID"
// @Param reportType path string true "Report type (module key)"
// @Param filter query string false "Content filter, e.g. an industry"
// @Success 200 {object} cards.ReportWithCards
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /reports/{applicationId}/{reportType}/refresh [get]
func (h *ReportHandler) RefreshReport(c *fiber.Ctx) error {
	req := h.requestFrom(c)
	h.Resolver.Invalidate(req)
	return h.GetReport(c)
}

func (h *ReportHandler) requestFrom(c *fiber.Ctx) resolver.Request {
	filter := ""
	if filters := parseFilter(c); len(filters) > 0 {
		filter = filters[0]
	}
	return resolver.Request{
		ApplicationID: c.Params("applicationId"),
		ReportType:    c.Params("reportType"),
		Filter:        filter,
		UserID:        c.Query("userId"),
		TaskID:        c.Query("taskId"),
	}
}
