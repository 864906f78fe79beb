// types.go
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

package backend

import (
	"encoding/json"

	"github.com/localnerve/carddeck/internal/cards"
	"github.com/localnerve/carddeck/internal/types"
)

// envelope is the transport wrapper every backend endpoint uses.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Module is an installed application module. Older deployments populate
// key/name, newer ones moduleKey/moduleName; both are accepted.
type Module struct {
	ID         string `json:"id"`
	ModuleKey  string `json:"moduleKey,omitempty"`
	Key        string `json:"key,omitempty"`
	ModuleName string `json:"moduleName,omitempty"`
	Name       string `json:"name,omitempty"`
}

// EffectiveKey returns the module key, preferring the newer field.
func (m Module) EffectiveKey() string {
	if m.ModuleKey != "" {
		return m.ModuleKey
	}
	return m.Key
}

// DisplayName returns the module display name, preferring the newer field.
func (m Module) DisplayName() string {
	if m.ModuleName != "" {
		return m.ModuleName
	}
	return m.Name
}

type modulesResponse struct {
	Modules []Module `json:"modules"`
}

// LayoutTab is a tab inside a directory's stored layout configuration.
type LayoutTab struct {
	ID      string   `json:"id"`
	Label   string   `json:"label"`
	CardIDs []string `json:"cardIds"`
}

// Layout is a pre-existing layout configuration attached to a directory.
type Layout struct {
	LayoutType string      `json:"layoutType,omitempty"`
	Tabs       []LayoutTab `json:"tabs,omitempty"`
}

// DirectoryConfig carries optional directory-level configuration.
type DirectoryConfig struct {
	IsMaster bool    `json:"isMaster,omitempty"`
	Layout   *Layout `json:"layout,omitempty"`
}

// Directory is a content directory inside a module.
type Directory struct {
	ID     string           `json:"id"`
	Slug   string           `json:"slug"`
	Config *DirectoryConfig `json:"config,omitempty"`
}

type directoriesResponse struct {
	Directories []Directory `json:"directories"`
}

// Record is a flat key/value backend record, already unwrapped from any
// storage envelope.
type Record map[string]any

type recordsResponse struct {
	Records []Record         `json:"records"`
	Total   types.FlexUint64 `json:"total,omitempty"`
}

type templateResponse struct {
	TemplateConfig *cards.TypeTemplateConfig `json:"template_config"`
}
