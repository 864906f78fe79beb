package cards

// componentNames maps each template shape to its renderer component.
var componentNames = map[TemplateID]string{
	TemplateIndustryStack:    "IndustryStackCard",
	TemplateTrendRadar:       "TrendRadarCard",
	TemplateCompanySnapshot:  "CompanySnapshotCard",
	TemplateMarketSize:       "MarketSizeCard",
	TemplateKeyPlayers:       "KeyPlayersCard",
	TemplateInvestmentTrend:  "InvestmentTrendCard",
	TemplateRiskFactors:      "RiskFactorsCard",
	TemplateTechEvolution:    "TechEvolutionCard",
	TemplateCompetitorMatrix: "CompetitorMatrixCard",
	TemplateProductRoadmap:   "ProductRoadmapCard",
	TemplateUserPersona:      "UserPersonaCard",
	TemplateScenarioOutlook:  "ScenarioOutlookCard",
}

// GenericComponent renders any card whose template is not in the enumeration.
const GenericComponent = "GenericCard"

// ComponentFor returns the renderer component name for a template id,
// degrading to GenericComponent for unknown shapes.
func ComponentFor(id TemplateID) string {
	if name, ok := componentNames[id]; ok {
		return name
	}
	return GenericComponent
}
