// common.go
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
	"strings"

	"github.com/gofiber/fiber/v2"
)

// parseFilter extracts the content filter from query parameters, supporting
// both multiple 'filter' keys and comma-separated values. Only the first
// value participates in resolution; the rest are preserved for diagnostics.
func parseFilter(c *fiber.Ctx) []string {
	filterMap := make(map[string]struct{})
	ordered := make([]string, 0, 2)

	args := c.Context().QueryArgs()
	for key, value := range args.All() {
		if string(key) == "filter" {
			vals := strings.Split(string(value), ",")
			for _, v := range vals {
				v = strings.TrimSpace(v)
				if v == "" {
					continue
				}
				if _, seen := filterMap[v]; !seen {
					filterMap[v] = struct{}{}
					ordered = append(ordered, v)
				}
			}
		}
	}

	return ordered
}
