package models

import (
	"encoding/json"
	"time"
)

// Assessment is one stored analytical result: a delay prediction or a
// composite risk score. The full component output is kept as JSON so the
// history endpoint can replay it without the store knowing its shape.
type Assessment struct {
	ID        int64           `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Kind      string          `json:"kind"`
	RiskLevel string          `json:"risk_level"`
	Score     float64         `json:"score"`
	Carrier   string          `json:"carrier,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

// Assessment kinds.
const (
	AssessmentKindDelay = "delay_prediction"
	AssessmentKindRisk  = "risk_score"
)

// AssessmentStats summarises the stored history for the dashboard.
type AssessmentStats struct {
	Total       int            `json:"total"`
	ByRiskLevel map[string]int `json:"by_risk_level"`
	ByKind      map[string]int `json:"by_kind"`
}
