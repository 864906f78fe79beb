// cards.go
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

// Package statics serves the embedded fallback card set used whenever a card
// cannot, or must not, be sourced from the live backend.
package statics

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/localnerve/carddeck/data"
	"github.com/localnerve/carddeck/internal/cards"
)

// ErrNotFound indicates no static card exists for the requested id.
var ErrNotFound = errors.New("statics: card not found")

// Catalog is a read-only lookup over the embedded static card set.
type Catalog struct {
	byID       map[string]*cards.Instance
	byTemplate map[cards.TemplateID]*cards.Instance
}

// Load parses the embedded fallback card set.
func Load() (*Catalog, error) {
	var instances []cards.Instance
	if err := json.Unmarshal(data.FallbackCards, &instances); err != nil {
		return nil, fmt.Errorf("parsing fallback cards: %w", err)
	}

	c := &Catalog{
		byID:       make(map[string]*cards.Instance, len(instances)),
		byTemplate: make(map[cards.TemplateID]*cards.Instance, len(instances)),
	}
	for i := range instances {
		inst := &instances[i]
		c.byID[inst.ID] = inst
		// First instance per template is the canonical fallback
		if _, ok := c.byTemplate[inst.TemplateID]; !ok {
			c.byTemplate[inst.TemplateID] = inst
		}
	}
	return c, nil
}

// Get returns the static card with the given card id.
func (c *Catalog) Get(cardID string) (*cards.Instance, error) {
	inst, ok := c.byID[cardID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, cardID)
	}
	return cloneInstance(inst), nil
}

// ForTemplate returns the canonical fallback instance for a template id, or
// nil when no fallback exists for that shape.
func (c *Catalog) ForTemplate(id cards.TemplateID) *cards.Instance {
	inst, ok := c.byTemplate[id]
	if !ok {
		return nil
	}
	return cloneInstance(inst)
}

// cloneInstance copies an instance so callers can never mutate the catalog.
func cloneInstance(inst *cards.Instance) *cards.Instance {
	out := *inst
	out.Data = make(map[string]any, len(inst.Data))
	for k, v := range inst.Data {
		out.Data[k] = v
	}
	return &out
}
