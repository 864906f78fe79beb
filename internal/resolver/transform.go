// transform.go
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

package resolver

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/localnerve/carddeck/internal/backend"
	"github.com/localnerve/carddeck/internal/cards"
	"github.com/localnerve/carddeck/internal/types"
)

// Field alias tables, tried in priority order. The aliases accumulate across
// historical record authoring tools; first hit wins.
var (
	titleAliases     = []string{"title", "cardTitle", "card_title", "name"}
	summaryAliases   = []string{"summary", "description", "abstract", "subtitle"}
	iconAliases      = []string{"icon", "iconName", "icon_name"}
	recordIDAliases  = []string{"id", "_id", "recordId", "record_id"}
	updatedAtAliases = []string{"updatedAt", "updated_at", "modifiedAt", "modified_at", "updateTime"}
	createdAtAliases = []string{"createdAt", "created_at", "createTime"}
)

// systemFields are bookkeeping keys never copied into card data.
var systemFields = map[string]bool{
	"id": true, "_id": true, "recordId": true, "record_id": true,
	"createdBy": true, "created_by": true, "updatedBy": true, "updated_by": true,
	"deletedAt": true, "deleted_at": true, "isDeleted": true, "is_deleted": true,
	"createdAt": true, "created_at": true, "createTime": true,
	"updatedAt": true, "updated_at": true, "modifiedAt": true, "modified_at": true, "updateTime": true,
	"tags": true, "contentKey": true, "content_key": true,
	"directoryId": true, "applicationId": true,
}

// fieldDecoder decodes one raw record value into its card-data form.
type fieldDecoder func(any) any

// shapeFields are the known structured fields a card record may carry.
// Each gets the JSON-text decoder; an undecodable payload stays visible as a
// tagged RawString instead of failing the whole transform.
var shapeFields = []string{
	"chartData", "radarData", "timeline", "items", "players", "risks",
	"factors", "scenarios", "stages", "metrics", "segments", "milestones",
}

var shapeDecoders = func() map[string]fieldDecoder {
	m := make(map[string]fieldDecoder, len(shapeFields))
	for _, f := range shapeFields {
		m[f] = decodeJSONText
	}
	return m
}()

// decodeJSONText speculatively decodes a string that textually looks like a
// JSON array or object literal. Decode failure returns a tagged RawString;
// non-literal values pass through untouched.
func decodeJSONText(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	trimmed := strings.TrimSpace(s)
	if len(trimmed) == 0 || (trimmed[0] != '[' && trimmed[0] != '{') {
		return v
	}
	var decoded any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		return types.RawString(s)
	}
	return decoded
}

// transformRecord turns a flat backend record into a card instance.
// Unknown template ids still succeed with the generic component and only the
// title/summary extraction rules.
func transformRecord(rec backend.Record, templateID cards.TemplateID, directory string) (*cards.Instance, error) {
	if len(rec) == 0 {
		return nil, fmt.Errorf("empty record for template %s", templateID)
	}

	createdAt := resolveTime(rec, createdAtAliases)
	updatedAt := resolveTime(rec, updatedAtAliases)

	data := map[string]any{}
	if title := firstString(rec, titleAliases); title != "" {
		data["title"] = title
	}
	if summary := firstString(rec, summaryAliases); summary != "" {
		data["summary"] = summary
	}
	if icon := firstString(rec, iconAliases); icon != "" {
		data["icon"] = icon
	}

	if cards.IsKnownTemplate(templateID) {
		for field, decode := range shapeDecoders {
			if v, ok := rec[field]; ok {
				data[field] = decode(v)
			}
		}
		for key, v := range rec {
			if systemFields[key] {
				continue
			}
			if _, done := data[key]; done {
				continue
			}
			if isAlias(key) {
				continue
			}
			data[key] = decodeJSONText(v)
		}
	}

	// Echoed for renderer convenience alongside metadata.
	data["createdAt"] = createdAt
	data["updatedAt"] = updatedAt

	return &cards.Instance{
		ID:            instanceID(rec, templateID),
		TemplateID:    templateID,
		ComponentName: cards.ComponentFor(templateID),
		DataSource:    cards.DataSourceAPI,
		Data:          data,
		Metadata: cards.Metadata{
			Directory: directory,
			RecordID:  firstString(rec, recordIDAliases),
			CreatedAt: createdAt,
			UpdatedAt: updatedAt,
		},
	}, nil
}

func instanceID(rec backend.Record, templateID cards.TemplateID) string {
	if id := firstString(rec, recordIDAliases); id != "" {
		return id
	}
	return fmt.Sprintf("%s-%s", templateID, uuid.NewString()[:8])
}

func firstString(rec backend.Record, aliases []string) string {
	for _, key := range aliases {
		if v, ok := rec[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// resolveTime tries each alias as RFC3339 text or epoch seconds, defaulting
// to now when entirely absent or unparseable.
func resolveTime(rec backend.Record, aliases []string) time.Time {
	for _, key := range aliases {
		v, ok := rec[key]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case string:
			if parsed, err := time.Parse(time.RFC3339, t); err == nil {
				return parsed
			}
		case float64:
			return time.Unix(int64(t), 0).UTC()
		}
	}
	return time.Now().UTC()
}

func isAlias(key string) bool {
	for _, set := range [][]string{titleAliases, summaryAliases, iconAliases} {
		for _, alias := range set {
			if alias == key {
				return true
			}
		}
	}
	return false
}
