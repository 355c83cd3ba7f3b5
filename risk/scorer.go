package risk

import "math"

// Composite risk scoring: a pure weighted aggregation of the delay prediction
// with the caller-visible risk dimensions. No state is held between calls.

// riskWeights must sum to exactly 1.0; ScoreShipmentRisk asserts nothing at
// runtime, the property is pinned by tests.
var riskWeights = map[string]float64{
	"delay_risk":        0.30,
	"supplier_risk":     0.25,
	"route_risk":        0.20,
	"weather_risk":      0.15,
	"geopolitical_risk": 0.10,
}

// delayRiskBuckets converts a delay risk level to a 0-100 contribution.
var delayRiskBuckets = map[RiskLevel]float64{
	RiskLow:      10,
	RiskMedium:   40,
	RiskHigh:     70,
	RiskCritical: 95,
}

const defaultDelayRiskBucket = 40.0

// ScoreShipmentRisk combines the delay prediction for a shipment with its
// supplier, route, weather and geopolitical dimensions into a composite
// 0-100 score.
func ScoreShipmentRisk(record ShipmentRecord, delayPrediction PredictionResult) RiskScore {
	resolved := record.resolve()

	delayRisk, ok := delayRiskBuckets[delayPrediction.RiskLevel]
	if !ok {
		delayRisk = defaultDelayRiskBucket
	}

	breakdown := map[string]float64{
		"delay_risk":        delayRisk,
		"supplier_risk":     resolved.SupplierRiskScore,
		"route_risk":        resolved.RouteComplexity * 20,
		"weather_risk":      resolved.WeatherRisk * 20,
		"geopolitical_risk": resolved.GeopoliticalRisk * 20,
	}

	var total float64
	for component, contribution := range breakdown {
		total += contribution * riskWeights[component]
	}
	total = math.Round(total*100) / 100

	level := categorizeTotalRisk(total)
	return RiskScore{
		TotalRiskScore:  total,
		RiskLevel:       level,
		RiskBreakdown:   breakdown,
		PredictedDelay:  delayPrediction,
		Recommendations: riskRecommendations(level),
	}
}

func categorizeTotalRisk(total float64) RiskLevel {
	switch {
	case total < 30:
		return RiskLow
	case total < 60:
		return RiskMedium
	case total < 80:
		return RiskHigh
	default:
		return RiskCritical
	}
}
