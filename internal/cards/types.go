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

package cards

import "time"

// TemplateID names a card shape. The set is closed: every renderer and data
// contract is keyed by one of these values.
type TemplateID string

const (
	TemplateIndustryStack    TemplateID = "industry-stack"
	TemplateTrendRadar       TemplateID = "trend-radar"
	TemplateCompanySnapshot  TemplateID = "company-snapshot"
	TemplateMarketSize       TemplateID = "market-size"
	TemplateKeyPlayers       TemplateID = "key-players"
	TemplateInvestmentTrend  TemplateID = "investment-trend"
	TemplateRiskFactors      TemplateID = "risk-factors"
	TemplateTechEvolution    TemplateID = "tech-evolution"
	TemplateCompetitorMatrix TemplateID = "competitor-matrix"
	TemplateProductRoadmap   TemplateID = "product-roadmap"
	TemplateUserPersona      TemplateID = "user-persona"
	TemplateScenarioOutlook  TemplateID = "scenario-outlook"
)

// KnownTemplates returns the closed template enumeration in declaration order.
func KnownTemplates() []TemplateID {
	return []TemplateID{
		TemplateIndustryStack,
		TemplateTrendRadar,
		TemplateCompanySnapshot,
		TemplateMarketSize,
		TemplateKeyPlayers,
		TemplateInvestmentTrend,
		TemplateRiskFactors,
		TemplateTechEvolution,
		TemplateCompetitorMatrix,
		TemplateProductRoadmap,
		TemplateUserPersona,
		TemplateScenarioOutlook,
	}
}

// IsKnownTemplate reports whether id is part of the closed enumeration.
func IsKnownTemplate(id TemplateID) bool {
	for _, known := range KnownTemplates() {
		if known == id {
			return true
		}
	}
	return false
}

// DataSource tags where an instance's data came from.
type DataSource string

const (
	DataSourceAPI         DataSource = "api"
	DataSourceAIGenerated DataSource = "ai-generated"
)

// Metadata carries bookkeeping for a materialized card.
type Metadata struct {
	Directory string    `json:"directory,omitempty"`
	RecordID  string    `json:"recordId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Instance is a fully materialized, renderable unit of report content.
// Instances are immutable once produced; a new fetch produces a new instance.
type Instance struct {
	ID            string         `json:"id"`
	TemplateID    TemplateID     `json:"templateId"`
	ComponentName string         `json:"componentName"`
	DataSource    DataSource     `json:"dataSource"`
	Data          map[string]any `json:"data"`
	Metadata      Metadata       `json:"metadata"`
}

// Tab groups card ids inside a report layout.
type Tab struct {
	ID      string   `json:"id"`
	Label   string   `json:"label"`
	CardIDs []string `json:"cardIds"`
}

// ReportConfig describes a report's layout and card references.
// Every card id referenced by Tabs/CardIDs resolves to exactly one Instance
// in the realized result, or is dropped.
type ReportConfig struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Category   string         `json:"category"`
	Version    string         `json:"version"`
	LayoutType string         `json:"layoutType"`
	Tabs       []Tab          `json:"tabs,omitempty"`
	CardIDs    []string       `json:"cardIds,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// ReportWithCards is a ReportConfig realized with its card instances.
type ReportWithCards struct {
	ReportConfig
	Cards []*Instance `json:"cards"`
}

// Framework is a type template's card constraint envelope.
type Framework struct {
	RequiredCards    []TemplateID `json:"requiredCards,omitempty"`
	OptionalCards    []TemplateID `json:"optionalCards,omitempty"`
	DefaultCardCount int          `json:"defaultCardCount,omitempty"`
}

// ContentDrivenRules maps content attributes to card additions.
type ContentDrivenRules struct {
	IndustryMapping    map[string][]TemplateID `json:"industryMapping,omitempty"`
	CompanySizeMapping map[string][]TemplateID `json:"companySizeMapping,omitempty"`
}

// Config modes for a type template.
const (
	ConfigModePersonalization = "personalization"
	ConfigModeContentDriven   = "content-driven"
)

// TypeTemplateConfig is the system-level constraint envelope for a report
// type. Loaded read-only per request, authored out-of-band.
type TypeTemplateConfig struct {
	ID                 string              `json:"id"`
	Name               string              `json:"name"`
	ConfigMode         string              `json:"configMode"`
	Framework          Framework           `json:"framework"`
	ContentDrivenRules *ContentDrivenRules `json:"contentDrivenRules,omitempty"`
}

// GeneratedCardConfig is the AI-authored card selection for one report.
type GeneratedCardConfig struct {
	Cards      []TemplateID           `json:"cards"`
	Order      []TemplateID           `json:"order,omitempty"`
	Importance map[TemplateID]float64 `json:"importance,omitempty"`
}

// ContentConfig is derived per-request from the master report record.
// Ephemeral: recomputed every resolution.
type ContentConfig struct {
	Industry            string               `json:"industry,omitempty"`
	CompanySize         string               `json:"companySize,omitempty"`
	GeneratedCardConfig *GeneratedCardConfig `json:"generatedCardConfig,omitempty"`
}

// CardSelection is a user's explicit card override set.
type CardSelection struct {
	Selected []TemplateID `json:"selected,omitempty"`
	Order    []TemplateID `json:"order,omitempty"`
	Hidden   []TemplateID `json:"hidden,omitempty"`
}

// DisplayPreferences holds user layout preferences.
type DisplayPreferences struct {
	LayoutType string `json:"layoutType,omitempty"`
	Theme      string `json:"theme,omitempty"`
}

// PersonalizationConfig is the per-user override, persisted keyed by
// (applicationId, userId, taskId) and mutated only through an explicit save.
type PersonalizationConfig struct {
	CardCount          int                 `json:"cardCount,omitempty"`
	CardSelection      *CardSelection      `json:"cardSelection,omitempty"`
	DisplayPreferences *DisplayPreferences `json:"displayPreferences,omitempty"`
}
