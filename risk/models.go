package risk

import "time"

// RiskLevel buckets a numeric risk estimate for human consumption.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// Model type reported with every prediction so callers can tell a trained
// estimate from the heuristic fallback.
const (
	ModelTypeTrained   = "trained"
	ModelTypeHeuristic = "heuristic"
)

// PredictionResult is the outcome of one delay prediction.
type PredictionResult struct {
	PredictedDelayHours float64   `json:"predicted_delay_hours"`
	ConfidenceScore     float64   `json:"confidence_score"`
	RiskLevel           RiskLevel `json:"risk_level"`
	ModelType           string    `json:"model_type"`
	Recommendations     []string  `json:"recommendations"`
}

// TrainingSummary reports diagnostics from one Fit call. MAE is measured on
// the training batch itself; no held-out split is performed.
type TrainingSummary struct {
	MAE           float64 `json:"mae"`
	FeatureCount  int     `json:"features_count"`
	SampleCount   int     `json:"samples_count"`
	RegressorType string  `json:"model_type"`
}

// Anomaly describes one supplier flagged by the outlier model, classified by
// the rule cascade.
type Anomaly struct {
	SupplierID      string   `json:"supplier_id"`
	SupplierName    string   `json:"supplier_name"`
	AnomalyType     string   `json:"anomaly_type"`
	Severity        string   `json:"severity"`
	Description     string   `json:"description"`
	OutlierScore    float64  `json:"outlier_score"`
	Recommendations []string `json:"recommendations"`
}

// AnomalyReport is the batch-level anomaly analysis result.
type AnomalyReport struct {
	Anomalies      []Anomaly `json:"anomalies"`
	TotalSuppliers int       `json:"total_suppliers"`
	AnomalyRate    float64   `json:"anomaly_rate"`
	Timestamp      time.Time `json:"timestamp"`
}

// RiskScore is the composite risk assessment for one shipment.
type RiskScore struct {
	TotalRiskScore  float64            `json:"total_risk_score"`
	RiskLevel       RiskLevel          `json:"risk_level"`
	RiskBreakdown   map[string]float64 `json:"risk_breakdown"`
	PredictedDelay  PredictionResult   `json:"predicted_delay"`
	Recommendations []string           `json:"recommendations"`
}

// EngineStatus is the informational training-state probe exposed to the
// health endpoint and the socket channel.
type EngineStatus struct {
	ModelStatus  string `json:"ml_model_status"`
	FeatureCount int    `json:"feature_count"`
}
