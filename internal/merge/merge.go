// merge.go
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

// Package merge combines a type template, an optional AI-authored content
// config and an optional user personalization into the canonical card list
// and layout for one report. Merge is a pure function: no I/O, no hidden
// state, no randomness.
package merge

import (
	"sort"

	"github.com/localnerve/carddeck/internal/cards"
)

// DefaultLayout is used when no display preference names a layout.
const DefaultLayout = "tabs-sticky"

// Sticky-tab structural groups: first 5 cards, next 6, remainder.
var stickyGroups = []struct {
	id    string
	label string
	size  int
}{
	{"primary", "Primary", 5},
	{"secondary", "Secondary", 6},
	{"extended", "Extended", -1}, // -1 = remainder
}

// Result is the merged card selection and layout description. Cards and
// Order hold template ids; the resolver later rewrites them to instance ids.
type Result struct {
	Cards      []cards.TemplateID
	Order      []cards.TemplateID
	LayoutType string
	Tabs       []cards.Tab
}

// Merge resolves the final card set. tmpl may be nil (degrades to an empty
// framework); content and pers are optional layers.
func Merge(tmpl *cards.TypeTemplateConfig, content *cards.ContentConfig, pers *cards.PersonalizationConfig) Result {
	selection, order := baseSelection(tmpl, content)
	selection, order = applyPersonalization(selection, order, content, pers)
	return assembleLayout(selection, order, pers)
}

// baseSelection picks the starting card set from the template mode and the
// AI-authored content configuration.
func baseSelection(tmpl *cards.TypeTemplateConfig, content *cards.ContentConfig) ([]cards.TemplateID, []cards.TemplateID) {
	if tmpl == nil {
		return nil, nil
	}

	if tmpl.ConfigMode == cards.ConfigModeContentDriven {
		if content != nil && content.GeneratedCardConfig != nil {
			gcc := content.GeneratedCardConfig
			selection := append([]cards.TemplateID(nil), gcc.Cards...)
			order := append([]cards.TemplateID(nil), gcc.Order...)
			if len(order) == 0 {
				order = append([]cards.TemplateID(nil), selection...)
			}
			return selection, order
		}

		if content != nil && content.Industry != "" && tmpl.ContentDrivenRules != nil {
			if mapped, ok := tmpl.ContentDrivenRules.IndustryMapping[content.Industry]; ok {
				selection := append([]cards.TemplateID(nil), tmpl.Framework.RequiredCards...)
				selection = append(selection, mapped...)
				return selection, append([]cards.TemplateID(nil), selection...)
			}
		}

		selection := append([]cards.TemplateID(nil), tmpl.Framework.RequiredCards...)
		return selection, append([]cards.TemplateID(nil), selection...)
	}

	// personalization mode: required plus optional
	selection := append([]cards.TemplateID(nil), tmpl.Framework.RequiredCards...)
	selection = append(selection, tmpl.Framework.OptionalCards...)
	return selection, append([]cards.TemplateID(nil), selection...)
}

// applyPersonalization layers the user overrides in fixed order:
// selected replaces, order reorders, hidden removes, cardCount truncates.
func applyPersonalization(selection, order []cards.TemplateID, content *cards.ContentConfig, pers *cards.PersonalizationConfig) ([]cards.TemplateID, []cards.TemplateID) {
	if pers == nil {
		return selection, order
	}

	if sel := pers.CardSelection; sel != nil {
		if len(sel.Selected) > 0 {
			selection = append([]cards.TemplateID(nil), sel.Selected...)
			order = append([]cards.TemplateID(nil), sel.Selected...)
		}

		if len(sel.Order) > 0 {
			order = reorder(selection, order, sel.Order)
		}

		if len(sel.Hidden) > 0 {
			hidden := idSet(sel.Hidden)
			selection = without(selection, hidden)
			order = without(order, hidden)
		}
	}

	if pers.CardCount > 0 && pers.CardCount < len(selection) {
		selection = truncate(selection, order, content, pers.CardCount)
		keep := idSet(selection)
		order = filterTo(order, keep)
	}

	return selection, order
}

// reorder rebuilds order from the user's preferred list, filtered to ids in
// the selection, appending any selected card missing from the list in its
// prior relative order.
func reorder(selection, prior, preferred []cards.TemplateID) []cards.TemplateID {
	inSelection := idSet(selection)
	out := make([]cards.TemplateID, 0, len(selection))
	placed := make(map[cards.TemplateID]bool, len(selection))

	for _, id := range preferred {
		if inSelection[id] && !placed[id] {
			out = append(out, id)
			placed[id] = true
		}
	}
	for _, id := range prior {
		if inSelection[id] && !placed[id] {
			out = append(out, id)
			placed[id] = true
		}
	}
	// Selected cards absent from the prior order still belong at the end.
	for _, id := range selection {
		if !placed[id] {
			out = append(out, id)
			placed[id] = true
		}
	}
	return out
}

// truncate keeps the top n cards. With importance weights the n highest win
// (ties broken by current order); without weights truncation is positional.
func truncate(selection, order []cards.TemplateID, content *cards.ContentConfig, n int) []cards.TemplateID {
	var importance map[cards.TemplateID]float64
	if content != nil && content.GeneratedCardConfig != nil {
		importance = content.GeneratedCardConfig.Importance
	}
	if len(importance) == 0 {
		return append([]cards.TemplateID(nil), selection[:n]...)
	}

	position := make(map[cards.TemplateID]int, len(order))
	for i, id := range order {
		position[id] = i
	}
	ranked := append([]cards.TemplateID(nil), selection...)
	sort.SliceStable(ranked, func(i, j int) bool {
		wi, wj := importance[ranked[i]], importance[ranked[j]]
		if wi != wj {
			return wi > wj
		}
		return position[ranked[i]] < position[ranked[j]]
	})
	return ranked[:n]
}

// assembleLayout resolves the layout type and, for sticky tabs, partitions
// the order into the fixed structural groups.
func assembleLayout(selection, order []cards.TemplateID, pers *cards.PersonalizationConfig) Result {
	layout := DefaultLayout
	if pers != nil && pers.DisplayPreferences != nil && pers.DisplayPreferences.LayoutType != "" {
		layout = pers.DisplayPreferences.LayoutType
	}

	result := Result{
		Cards:      selection,
		Order:      order,
		LayoutType: layout,
	}

	if layout != DefaultLayout || len(order) == 0 {
		// Non-sticky layouts pass order/cards through unpartitioned.
		return result
	}

	rest := order
	for _, group := range stickyGroups {
		if len(rest) == 0 {
			break
		}
		take := group.size
		if take < 0 || take > len(rest) {
			take = len(rest)
		}
		ids := make([]string, take)
		for i, id := range rest[:take] {
			ids[i] = string(id)
		}
		result.Tabs = append(result.Tabs, cards.Tab{
			ID:      group.id,
			Label:   group.label,
			CardIDs: ids,
		})
		rest = rest[take:]
	}
	return result
}

func idSet(ids []cards.TemplateID) map[cards.TemplateID]bool {
	set := make(map[cards.TemplateID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func without(ids []cards.TemplateID, drop map[cards.TemplateID]bool) []cards.TemplateID {
	out := make([]cards.TemplateID, 0, len(ids))
	for _, id := range ids {
		if !drop[id] {
			out = append(out, id)
		}
	}
	return out
}

func filterTo(ids []cards.TemplateID, keep map[cards.TemplateID]bool) []cards.TemplateID {
	out := make([]cards.TemplateID, 0, len(ids))
	for _, id := range ids {
		if keep[id] {
			out = append(out, id)
		}
	}
	return out
}
