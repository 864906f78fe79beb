// resolver.go
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

// Package resolver walks the application → module → directory → record
// hierarchy and materializes a report's ordered card instances, degrading to
// static fallback content at every stage except module discovery.
package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/localnerve/carddeck/internal/backend"
	"github.com/localnerve/carddeck/internal/cards"
	"github.com/localnerve/carddeck/internal/logger"
	"github.com/localnerve/carddeck/internal/merge"
	"github.com/localnerve/carddeck/internal/models"
	"github.com/localnerve/carddeck/internal/personalization"
	"github.com/localnerve/carddeck/internal/registry"
	"github.com/localnerve/carddeck/internal/statics"
	"github.com/localnerve/carddeck/internal/templates"
	"github.com/localnerve/carddeck/internal/types"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultCacheTTL  = 5 * time.Minute
	defaultPageLimit = 100

	masterDirectorySlug = "master-report"
	filterField         = "industry"
	contentKeyField     = "contentKey"
)

// ModuleNotFoundError is the only resolver failure surfaced to callers.
// It carries the available module keys for diagnostics.
type ModuleNotFoundError struct {
	Requested string
	Available []string
}

func (e *ModuleNotFoundError) Error() string {
	return fmt.Sprintf("module %q not found (available: %s)",
		e.Requested, strings.Join(e.Available, ", "))
}

// Request identifies one report resolution.
type Request struct {
	ApplicationID string
	ReportType    string
	Filter        string
	UserID        string
	TaskID        string
}

// Options tunes a Resolver.
type Options struct {
	CacheTTL  time.Duration
	PageLimit int
}

// Resolver orchestrates report resolution.
type Resolver struct {
	backend   *backend.Client
	registry  *registry.Registry
	loader    *templates.Loader
	store     *personalization.Store
	statics   *statics.Catalog
	cache     *reportCache
	db        *gorm.DB // optional snapshot sink
	log       *logger.Logger
	pageLimit int
}

// New creates a resolver. db may be nil to disable snapshot writes.
func New(client *backend.Client, reg *registry.Registry, loader *templates.Loader,
	store *personalization.Store, catalog *statics.Catalog, db *gorm.DB,
	log *logger.Logger, opts Options) *Resolver {

	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	limit := opts.PageLimit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	return &Resolver{
		backend:   client,
		registry:  reg,
		loader:    loader,
		store:     store,
		statics:   catalog,
		cache:     newReportCache(ttl),
		db:        db,
		log:       log,
		pageLimit: limit,
	}
}

// Invalidate drops the cached report for a request key.
func (r *Resolver) Invalidate(req Request) {
	r.cache.drop(cacheKey(req))
}

// Resolve produces the report for a request, serving from cache within the
// TTL window. The only error it can return is *ModuleNotFoundError or a
// module-listing transport failure; every later stage degrades locally.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*cards.ReportWithCards, error) {
	key := cacheKey(req)
	if cached, ok := r.cache.get(key); ok {
		return cached, nil
	}

	// Stage 2: module discovery, the single fatal stage.
	modules, err := r.backend.ListModules(ctx, req.ApplicationID)
	if err != nil {
		return nil, fmt.Errorf("listing modules for %s: %w", req.ApplicationID, err)
	}
	module := matchModule(modules, req.ReportType)
	if module == nil {
		available := make([]string, 0, len(modules))
		for _, m := range modules {
			available = append(available, m.EffectiveKey())
		}
		return nil, &ModuleNotFoundError{Requested: req.ReportType, Available: available}
	}

	// Stage 3: directory discovery. Failure here leaves the report running
	// on template defaults and static cards.
	dirs := attempt(func() ([]backend.Directory, error) {
		return r.backend.ListDirectories(ctx, req.ApplicationID, module.ID)
	}).orElse(func(err error) []backend.Directory {
		r.log.Warn("directory listing failed, continuing without directories",
			"moduleId", module.ID, "error", err)
		return nil
	})

	// Stages 4-5: master record and content config.
	masterDir := findMasterDirectory(dirs)
	var masterRecord backend.Record
	if masterDir != nil {
		records := attempt(func() ([]backend.Record, error) {
			return r.backend.ListAllRecords(ctx, masterDir.ID, req.ApplicationID, r.pageLimit)
		}).orElse(func(err error) []backend.Record {
			r.log.Warn("master record fetch failed",
				"directory", masterDir.Slug, "error", err)
			return nil
		})
		masterRecord = selectMasterRecord(records, req.Filter)
	}
	content := extractContentConfig(masterRecord, req.Filter)

	// Stage 6: personalization, absorbed failures inside the store.
	var pers *cards.PersonalizationConfig
	if req.UserID != "" {
		pers, _ = r.store.Load(ctx, req.ApplicationID, req.UserID, req.TaskID)
	}

	// Stage 7: template load + merge, reconciled against any stored layout.
	tmpl := r.loader.Load(ctx, req.ReportType, req.ApplicationID)
	merged := merge.Merge(tmpl, content, pers)
	order, tabs, layoutType := reconcileLayout(merged, masterDir)

	// Stage 8: per-card resolution, parallel and independent.
	order = dedupe(order)
	instances := make([]*cards.Instance, len(order))
	g, gctx := errgroup.WithContext(ctx)
	for i, tid := range order {
		g.Go(func() error {
			instances[i] = r.resolveCard(gctx, tid, req, dirs)
			return nil
		})
	}
	_ = g.Wait() // card goroutines absorb their own failures

	// Stage 9: assembly.
	report := r.assemble(module, req, order, instances, tabs, layoutType)
	r.cache.set(key, report)
	r.snapshot(key, report)
	return report, nil
}

// resolveCard materializes one card. It can return nil only when no static
// fallback exists for the template; it never fails.
func (r *Resolver) resolveCard(ctx context.Context, tid cards.TemplateID, req Request, dirs []backend.Directory) *cards.Instance {
	if !r.registry.IsMigrated(tid) {
		return r.statics.ForTemplate(tid)
	}

	dir := findCardDirectory(dirs, tid)
	if dir == nil {
		r.log.Debug("card directory missing, using static fallback", "templateId", tid)
		return r.statics.ForTemplate(tid)
	}

	records := attempt(func() ([]backend.Record, error) {
		return r.backend.ListAllRecords(ctx, dir.ID, req.ApplicationID, r.pageLimit)
	})
	if !records.ok() {
		r.log.Warn("card record fetch failed, using static fallback",
			"templateId", tid, "error", records.err)
		return r.statics.ForTemplate(tid)
	}
	if len(records.value) == 0 {
		return r.statics.ForTemplate(tid)
	}

	record := selectCardRecord(records.value, tid, req.Filter)

	instance := attempt(func() (*cards.Instance, error) {
		return transformRecord(record, tid, dir.Slug)
	})
	return instance.orElse(func(err error) *cards.Instance {
		r.log.Warn("card transform failed, using static fallback",
			"templateId", tid, "error", err)
		return r.statics.ForTemplate(tid)
	})
}

// assemble drops unresolved cards and rewrites the layout's placeholder ids
// to the produced instance ids, matched by template id.
func (r *Resolver) assemble(module *backend.Module, req Request,
	order []cards.TemplateID, instances []*cards.Instance,
	tabs []cards.Tab, layoutType string) *cards.ReportWithCards {

	byTemplate := make(map[cards.TemplateID]*cards.Instance, len(order))
	finalCards := make([]*cards.Instance, 0, len(order))
	cardIDs := make([]string, 0, len(order))
	for _, inst := range instances {
		if inst == nil {
			continue
		}
		byTemplate[inst.TemplateID] = inst
		finalCards = append(finalCards, inst)
		cardIDs = append(cardIDs, inst.ID)
	}

	finalTabs := make([]cards.Tab, 0, len(tabs))
	for _, tab := range tabs {
		ids := make([]string, 0, len(tab.CardIDs))
		for _, placeholder := range tab.CardIDs {
			if inst := byTemplate[templateIDFromCardID(placeholder)]; inst != nil {
				ids = append(ids, inst.ID)
			}
		}
		if len(ids) == 0 {
			continue
		}
		finalTabs = append(finalTabs, cards.Tab{ID: tab.ID, Label: tab.Label, CardIDs: ids})
	}

	return &cards.ReportWithCards{
		ReportConfig: cards.ReportConfig{
			ID:         uuid.NewString(),
			Name:       module.DisplayName(),
			Category:   req.ReportType,
			Version:    "1.0.0",
			LayoutType: layoutType,
			Tabs:       finalTabs,
			CardIDs:    cardIDs,
			Metadata: map[string]any{
				"applicationId": req.ApplicationID,
				"filter":        req.Filter,
				"resolvedAt":    time.Now().UTC().Format(time.RFC3339),
			},
		},
		Cards: finalCards,
	}
}

// snapshot persists a diagnostic copy of the resolved report, best effort.
func (r *Resolver) snapshot(key string, report *cards.ReportWithCards) {
	if r.db == nil {
		return
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return
	}
	snap := models.ReportSnapshot{
		CacheKey:   key,
		ResolvedAt: time.Now().UTC(),
	}
	snap.Payload.JSON = datatypes.JSON(payload)
	err = r.db.Where("cache_key = ?", key).
		Assign(map[string]any{"payload": snap.Payload, "resolved_at": snap.ResolvedAt}).
		FirstOrCreate(&snap).Error
	if err != nil {
		r.log.Debug("report snapshot write failed", "key", key, "error", err)
	}
}

// reconcileLayout prefers the directory's stored layout when the merge came
// out degenerate (fewer ids than the layout already references), so cards
// are never dropped silently by an empty merge.
func reconcileLayout(merged merge.Result, masterDir *backend.Directory) ([]cards.TemplateID, []cards.Tab, string) {
	order := merged.Order
	tabs := merged.Tabs
	layoutType := merged.LayoutType

	if masterDir == nil || masterDir.Config == nil || masterDir.Config.Layout == nil {
		return order, tabs, layoutType
	}
	layout := masterDir.Config.Layout

	var layoutOrder []cards.TemplateID
	var layoutTabs []cards.Tab
	for _, tab := range layout.Tabs {
		layoutTabs = append(layoutTabs, cards.Tab{ID: tab.ID, Label: tab.Label, CardIDs: tab.CardIDs})
		for _, id := range tab.CardIDs {
			layoutOrder = append(layoutOrder, templateIDFromCardID(id))
		}
	}

	if len(merged.Order) < len(layoutOrder) {
		order = layoutOrder
		tabs = layoutTabs
		if layout.LayoutType != "" {
			layoutType = layout.LayoutType
		}
	}
	return order, tabs, layoutType
}

// matchModule tolerates key drift: exact key, alternate key field, display
// name, then key prefix (instance-suffixed keys).
func matchModule(modules []backend.Module, key string) *backend.Module {
	for i, m := range modules {
		if m.ModuleKey == key || m.Key == key {
			return &modules[i]
		}
	}
	for i, m := range modules {
		if m.DisplayName() == key {
			return &modules[i]
		}
	}
	for i, m := range modules {
		if strings.HasPrefix(m.EffectiveKey(), key) {
			return &modules[i]
		}
	}
	return nil
}

// findMasterDirectory locates the master-report directory by slug, slug
// substring (generated slugs carry timestamps), or the explicit flag.
func findMasterDirectory(dirs []backend.Directory) *backend.Directory {
	for i, d := range dirs {
		if d.Slug == masterDirectorySlug {
			return &dirs[i]
		}
	}
	for i, d := range dirs {
		if strings.Contains(d.Slug, masterDirectorySlug) {
			return &dirs[i]
		}
		if d.Config != nil && d.Config.IsMaster {
			return &dirs[i]
		}
	}
	return nil
}

func findCardDirectory(dirs []backend.Directory, tid cards.TemplateID) *backend.Directory {
	slug := string(tid)
	for i, d := range dirs {
		if d.Slug == slug {
			return &dirs[i]
		}
	}
	for i, d := range dirs {
		if strings.Contains(d.Slug, slug) {
			return &dirs[i]
		}
	}
	return nil
}

// selectMasterRecord filters by the content filter field, accepting scalar
// and array authoring. A filter that matches nothing falls back to the first
// record; records must never produce an empty result when any exist.
func selectMasterRecord(records []backend.Record, filter string) backend.Record {
	if len(records) == 0 {
		return nil
	}
	if filter != "" {
		for _, rec := range records {
			if types.FlexContains(rec[filterField], filter) {
				return rec
			}
		}
	}
	return records[0]
}

// selectCardRecord filters by the composite content key with prefix
// tolerance, falling back to the first record.
func selectCardRecord(records []backend.Record, tid cards.TemplateID, filter string) backend.Record {
	if filter != "" {
		composite := string(tid) + "-" + filter
		for _, rec := range records {
			for _, key := range types.FlexStrings(rec[contentKeyField]) {
				if strings.HasPrefix(key, composite) {
					return rec
				}
			}
		}
	}
	return records[0]
}

// extractContentConfig pulls the filter-relevant fields and the AI-authored
// card configuration off the master record.
func extractContentConfig(rec backend.Record, filter string) *cards.ContentConfig {
	if rec == nil {
		return nil
	}

	content := &cards.ContentConfig{}
	if industries := types.FlexStrings(rec[filterField]); len(industries) > 0 {
		content.Industry = industries[0]
		if filter != "" && types.FlexContains(rec[filterField], filter) {
			content.Industry = filter
		}
	}
	if size, ok := rec["companySize"].(string); ok {
		content.CompanySize = size
	}

	if raw, ok := rec["generatedCardConfig"]; ok {
		if gcc := decodeGeneratedConfig(raw); gcc != nil {
			content.GeneratedCardConfig = gcc
		}
	}
	return content
}

// decodeGeneratedConfig accepts the AI config as a JSON string or an
// already-decoded object.
func decodeGeneratedConfig(raw any) *cards.GeneratedCardConfig {
	var data []byte
	switch t := raw.(type) {
	case string:
		data = []byte(t)
	default:
		encoded, err := json.Marshal(raw)
		if err != nil {
			return nil
		}
		data = encoded
	}
	var gcc cards.GeneratedCardConfig
	if err := json.Unmarshal(data, &gcc); err != nil {
		return nil
	}
	if len(gcc.Cards) == 0 {
		return nil
	}
	return &gcc
}

// templateIDFromCardID strips a numeric instance suffix ("trend-radar-001"
// becomes "trend-radar"); plain template ids pass through.
func templateIDFromCardID(id string) cards.TemplateID {
	if idx := strings.LastIndex(id, "-"); idx > 0 {
		suffix := id[idx+1:]
		if suffix != "" && isDigits(suffix) {
			return cards.TemplateID(id[:idx])
		}
	}
	return cards.TemplateID(id)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func dedupe(ids []cards.TemplateID) []cards.TemplateID {
	seen := make(map[cards.TemplateID]bool, len(ids))
	out := make([]cards.TemplateID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func cacheKey(req Request) string {
	return fmt.Sprintf("%s|%s|%s", req.ApplicationID, req.ReportType, req.Filter)
}
