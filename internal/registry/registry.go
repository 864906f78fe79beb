// registry.go
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

// Package registry tracks which card templates source data from the live
// backend instead of the static fallback set.
package registry

import (
	"sync"
	"time"

	"github.com/localnerve/carddeck/internal/cards"
)

// Status is the migration state of one card template.
type Status struct {
	TemplateID cards.TemplateID `json:"templateId"`
	Migrated   bool             `json:"migrated"`
	MigratedAt *time.Time       `json:"migratedAt,omitempty"`
	Note       string           `json:"note,omitempty"`
}

// Registry holds per-template migration flags for the process lifetime.
// It is constructed and injected, never a package-level singleton, so tests
// can run independent registries.
type Registry struct {
	mu      sync.RWMutex
	entries map[cards.TemplateID]Status
}

// New creates a registry. Templates passed as seed start migrated; everything
// else defaults to not migrated, the safe side.
func New(seed ...cards.TemplateID) *Registry {
	r := &Registry{
		entries: make(map[cards.TemplateID]Status),
	}
	for _, id := range seed {
		r.MarkMigrated(id, "seeded at startup")
	}
	return r
}

// IsMigrated reports whether a template sources from the live backend.
// Unknown ids are not migrated.
func (r *Registry) IsMigrated(id cards.TemplateID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[id].Migrated
}

// MarkMigrated flips a template to live-backend sourcing.
func (r *Registry) MarkMigrated(id cards.TemplateID, note string) {
	now := time.Now().UTC()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = Status{
		TemplateID: id,
		Migrated:   true,
		MigratedAt: &now,
		Note:       note,
	}
}

// MarkNotMigrated flips a template back to static fallback sourcing.
func (r *Registry) MarkNotMigrated(id cards.TemplateID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = Status{TemplateID: id, Migrated: false}
}

// ListMigrated returns the migrated template ids in enumeration order.
func (r *Registry) ListMigrated() []cards.TemplateID {
	return r.list(true)
}

// ListNotMigrated returns the not-migrated template ids in enumeration order.
func (r *Registry) ListNotMigrated() []cards.TemplateID {
	return r.list(false)
}

func (r *Registry) list(migrated bool) []cards.TemplateID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []cards.TemplateID
	for _, id := range cards.KnownTemplates() {
		if r.entries[id].Migrated == migrated {
			out = append(out, id)
		}
	}
	return out
}

// Statuses returns the full status table over the known enumeration.
func (r *Registry) Statuses() []Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Status, 0, len(cards.KnownTemplates()))
	for _, id := range cards.KnownTemplates() {
		s, ok := r.entries[id]
		if !ok {
			s = Status{TemplateID: id}
		}
		out = append(out, s)
	}
	return out
}
