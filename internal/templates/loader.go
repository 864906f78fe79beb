// loader.go
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

// Package templates resolves the type template for a report through the
// application-custom, global, built-in precedence chain.
package templates

import (
	"context"
	"errors"

	"github.com/localnerve/carddeck/internal/backend"
	"github.com/localnerve/carddeck/internal/cards"
	"github.com/localnerve/carddeck/internal/logger"
)

// Loader resolves type templates with first-success-wins precedence.
type Loader struct {
	backend  *backend.Client
	defaults *Defaults
	log      *logger.Logger
}

// NewLoader creates a template loader.
func NewLoader(client *backend.Client, defaults *Defaults, log *logger.Logger) *Loader {
	return &Loader{backend: client, defaults: defaults, log: log}
}

// tier attempts one resolution source. A (nil, nil) return means "miss,
// continue to the next tier".
type tier func(ctx context.Context) (*cards.TypeTemplateConfig, error)

// Load resolves a template through application-custom, global, then built-in
// tiers. A not-found miss at any tier is an expected state and never logged;
// any other error logs a warning and resolution continues. When every tier
// misses, Load returns nil and the caller degrades to an empty framework.
func (l *Loader) Load(ctx context.Context, templateID, applicationID string) *cards.TypeTemplateConfig {
	var tiers []tier
	if applicationID != "" {
		tiers = append(tiers, func(ctx context.Context) (*cards.TypeTemplateConfig, error) {
			return l.backend.GetTemplate(ctx, templateID, applicationID)
		})
	}
	tiers = append(tiers,
		func(ctx context.Context) (*cards.TypeTemplateConfig, error) {
			return l.backend.GetTemplate(ctx, templateID, "")
		},
		func(ctx context.Context) (*cards.TypeTemplateConfig, error) {
			return l.defaults.Get(templateID), nil
		},
	)

	for _, resolve := range tiers {
		cfg, err := resolve(ctx)
		if err != nil {
			if !errors.Is(err, backend.ErrNotFound) {
				l.log.Warn("template tier failed",
					"templateId", templateID, "error", err)
			}
			continue
		}
		if cfg != nil {
			return cfg
		}
	}

	// Log once on the final miss, not per tier.
	l.log.Warn("no template resolved, degrading to empty framework",
		"templateId", templateID, "applicationId", applicationID)
	return nil
}
