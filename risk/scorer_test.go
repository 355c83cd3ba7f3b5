package risk

import (
	"math"
	"testing"
)

func TestRiskWeightsSumToOne(t *testing.T) {
	t.Parallel()

	var sum float64
	for _, w := range riskWeights {
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-12 {
		t.Fatalf("risk weights sum to %v, want 1.0", sum)
	}
}

func TestScoreShipmentRiskWeightedCombination(t *testing.T) {
	t.Parallel()

	// supplier 90, route 5, weather 5, geo 5 with a MEDIUM delay prediction:
	// 40*.30 + 90*.25 + 100*.20 + 100*.15 + 100*.10 = 79.5 → HIGH.
	record := ShipmentRecord{
		SupplierRiskScore: f64(90),
		RouteComplexity:   f64(5),
		WeatherRisk:       f64(5),
		GeopoliticalRisk:  f64(5),
	}
	prediction := PredictionResult{RiskLevel: RiskMedium}

	score := ScoreShipmentRisk(record, prediction)
	if score.TotalRiskScore != 79.5 {
		t.Fatalf("total_risk_score = %v, want 79.5", score.TotalRiskScore)
	}
	if score.RiskLevel != RiskHigh {
		t.Fatalf("risk_level = %s, want HIGH", score.RiskLevel)
	}
	if score.RiskBreakdown["delay_risk"] != 40 {
		t.Errorf("breakdown delay_risk = %v, want 40", score.RiskBreakdown["delay_risk"])
	}
	if score.RiskBreakdown["supplier_risk"] != 90 {
		t.Errorf("breakdown supplier_risk = %v, want 90", score.RiskBreakdown["supplier_risk"])
	}
	if score.RiskBreakdown["route_risk"] != 100 {
		t.Errorf("breakdown route_risk = %v, want 100", score.RiskBreakdown["route_risk"])
	}
}

func TestScoreShipmentRiskDelayBuckets(t *testing.T) {
	t.Parallel()

	cases := []struct {
		level RiskLevel
		want  float64
	}{
		{RiskLow, 10},
		{RiskMedium, 40},
		{RiskHigh, 70},
		{RiskCritical, 95},
		{RiskLevel("UNMAPPED"), 40}, // unknown levels fall back to the middle bucket
	}
	for _, tc := range cases {
		score := ScoreShipmentRisk(ShipmentRecord{}, PredictionResult{RiskLevel: tc.level})
		if score.RiskBreakdown["delay_risk"] != tc.want {
			t.Errorf("level %s: delay_risk = %v, want %v", tc.level, score.RiskBreakdown["delay_risk"], tc.want)
		}
	}
}

func TestScoreShipmentRiskBounds(t *testing.T) {
	t.Parallel()

	low := ScoreShipmentRisk(ShipmentRecord{
		SupplierRiskScore: f64(0),
		RouteComplexity:   f64(0),
		WeatherRisk:       f64(0),
		GeopoliticalRisk:  f64(0),
	}, PredictionResult{RiskLevel: RiskLow})
	if low.TotalRiskScore != 3 { // only the LOW delay bucket contributes: 10*.30
		t.Errorf("minimal score = %v, want 3", low.TotalRiskScore)
	}
	if low.RiskLevel != RiskLow {
		t.Errorf("minimal level = %s, want LOW", low.RiskLevel)
	}

	high := ScoreShipmentRisk(ShipmentRecord{
		SupplierRiskScore: f64(100),
		RouteComplexity:   f64(5),
		WeatherRisk:       f64(5),
		GeopoliticalRisk:  f64(5),
	}, PredictionResult{RiskLevel: RiskCritical})
	if high.TotalRiskScore > 100 {
		t.Errorf("maximal score = %v, exceeds 100", high.TotalRiskScore)
	}
	if high.RiskLevel != RiskCritical {
		t.Errorf("maximal level = %s, want CRITICAL", high.RiskLevel)
	}
}

func TestCategorizeTotalRiskBoundaries(t *testing.T) {
	t.Parallel()

	cases := []struct {
		total float64
		want  RiskLevel
	}{
		{0, RiskLow},
		{29.99, RiskLow},
		{30, RiskMedium},
		{59.99, RiskMedium},
		{60, RiskHigh},
		{79.99, RiskHigh},
		{80, RiskCritical},
		{100, RiskCritical},
	}
	for _, tc := range cases {
		if got := categorizeTotalRisk(tc.total); got != tc.want {
			t.Errorf("categorizeTotalRisk(%v) = %s, want %s", tc.total, got, tc.want)
		}
	}
}

func TestRiskRecommendationsPerLevel(t *testing.T) {
	t.Parallel()

	critical := riskRecommendations(RiskCritical)
	if len(critical) != 3 || critical[0] != "Immediate escalation to senior management required" {
		t.Fatalf("CRITICAL recommendations = %v", critical)
	}

	low := riskRecommendations(RiskLow)
	if len(low) != 1 || low[0] != "Continue standard monitoring procedures" {
		t.Fatalf("LOW recommendations = %v", low)
	}

	// Unknown levels reuse the LOW advice, and the returned slice is a copy
	// the caller may mutate freely.
	unknown := riskRecommendations(RiskLevel("UNMAPPED"))
	if len(unknown) != 1 || unknown[0] != low[0] {
		t.Fatalf("unknown-level recommendations = %v", unknown)
	}
	unknown[0] = "clobbered"
	if riskRecommendations(RiskLow)[0] != "Continue standard monitoring procedures" {
		t.Fatal("mutating a returned recommendation slice leaked into the table")
	}
}

func TestEngineScoreRiskUsesPrediction(t *testing.T) {
	t.Parallel()

	engine := NewEngine(42)
	record := ShipmentRecord{
		DistanceKm:        f64(500),
		Carrier:           CarrierDHL,
		WeatherRisk:       f64(1),
		RouteComplexity:   f64(1),
		SupplierRiskScore: f64(30),
	}

	score, err := engine.ScoreRisk(record)
	if err != nil {
		t.Fatalf("ScoreRisk returned error: %v", err)
	}
	if score.PredictedDelay.ModelType != ModelTypeHeuristic {
		t.Errorf("embedded prediction model_type = %q, want heuristic", score.PredictedDelay.ModelType)
	}
	if score.TotalRiskScore < 0 || score.TotalRiskScore > 100 {
		t.Errorf("total_risk_score = %v, outside [0, 100]", score.TotalRiskScore)
	}
	if len(score.Recommendations) == 0 {
		t.Error("no recommendations returned")
	}
}

func TestEngineStatusTracksTraining(t *testing.T) {
	t.Parallel()

	engine := NewEngine(1)
	status := engine.Status()
	if status.ModelStatus != "not_trained" {
		t.Fatalf("ml_model_status = %q, want not_trained", status.ModelStatus)
	}
	if status.FeatureCount != len(ShipmentFeatureColumns) {
		t.Fatalf("feature_count = %d, want %d", status.FeatureCount, len(ShipmentFeatureColumns))
	}

	if _, err := engine.TrainDelayModel(trainingRecords(12)); err != nil {
		t.Fatalf("TrainDelayModel returned error: %v", err)
	}
	if engine.Status().ModelStatus != "trained" {
		t.Fatalf("ml_model_status = %q after training, want trained", engine.Status().ModelStatus)
	}
}
