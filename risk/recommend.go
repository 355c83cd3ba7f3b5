package risk

// Recommendation tables.
//
// Every table is an ordered rule list evaluated top to bottom so the
// precedence is explicit and testable. Delay rules are additive; the anomaly
// cascade in anomaly.go and the per-level risk table are first-match-wins.

type delayRule struct {
	applies func(delayHours, weatherRisk float64) bool
	advice  []string
}

var delayRules = []delayRule{
	{
		applies: func(delay, _ float64) bool { return delay > 8 },
		advice: []string{
			"Consider expedited shipping option",
			"Notify customer about potential delay",
		},
	},
	{
		applies: func(delay, _ float64) bool { return delay > 24 },
		advice: []string{
			"Investigate alternative carriers",
			"Implement contingency plan",
		},
	},
	{
		applies: func(_, weather float64) bool { return weather > 3 },
		advice:  []string{"Monitor weather conditions closely"},
	},
}

// delayRecommendations applies every matching delay rule in order. If no
// rule matches, a single on-track recommendation is emitted.
func delayRecommendations(delayHours, weatherRisk float64) []string {
	var recommendations []string
	for _, rule := range delayRules {
		if rule.applies(delayHours, weatherRisk) {
			recommendations = append(recommendations, rule.advice...)
		}
	}
	if len(recommendations) == 0 {
		recommendations = append(recommendations, "Shipment on track - monitor regularly")
	}
	return recommendations
}

var riskLevelRecommendations = map[RiskLevel][]string{
	RiskCritical: {
		"Immediate escalation to senior management required",
		"Activate contingency plans and backup suppliers",
		"Consider emergency transportation alternatives",
	},
	RiskHigh: {
		"Close monitoring and proactive communication needed",
		"Prepare contingency plans",
		"Notify stakeholders of potential risks",
	},
	RiskMedium: {
		"Regular monitoring recommended",
		"Review supplier performance metrics",
	},
	RiskLow: {
		"Continue standard monitoring procedures",
	},
}

func riskRecommendations(level RiskLevel) []string {
	advice, ok := riskLevelRecommendations[level]
	if !ok {
		advice = riskLevelRecommendations[RiskLow]
	}
	out := make([]string, len(advice))
	copy(out, advice)
	return out
}
