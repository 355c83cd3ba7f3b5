package risk

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// AnomalyDetector flags suppliers whose performance deviates from the rest of
// the batch. It is a stateless batch operation: the outlier model is refit on
// every call and nothing is retained between calls. Incremental or online
// detection would need a separate component with persisted model state.
type AnomalyDetector struct {
	// Contamination is the expected fraction of outliers; it caps how many
	// suppliers a single batch may flag.
	Contamination float64
}

const (
	defaultContamination = 0.10

	// Minimum max-|z| deviation before a supplier is considered an outlier
	// candidate. Keeps homogeneous batches from flagging anyone. A single
	// deviant in a batch of n caps out at |z| = sqrt(n-1), so batches of four
	// or fewer suppliers never flag, however extreme the deviant.
	outlierScoreThreshold = 2.0
)

func NewAnomalyDetector() *AnomalyDetector {
	return &AnomalyDetector{Contamination: defaultContamination}
}

// Analyze fits the outlier scorer on the batch and classifies every flagged
// supplier through the rule cascade. The batch must be non-empty; the rate
// denominator is validated before any arithmetic.
func (d *AnomalyDetector) Analyze(records []SupplierPerformanceRecord) (AnomalyReport, error) {
	if len(records) == 0 {
		return AnomalyReport{}, validationErrorf("empty supplier batch: nothing to analyze")
	}

	rows, err := ExtractPerformanceFeatures(records)
	if err != nil {
		return AnomalyReport{}, err
	}

	scaler, err := NewFeatureScaler(rows)
	if err != nil {
		return AnomalyReport{}, computationError("failed to fit performance scaler", err)
	}

	// Outlier score per supplier: the largest absolute z-score across the
	// performance dimensions. Candidates above the deviation threshold are
	// flagged worst-first, capped by the contamination fraction.
	type scoredRecord struct {
		index int
		score float64
	}
	scored := make([]scoredRecord, len(rows))
	for i, row := range rows {
		z := scaler.Transform(row)
		score := 0.0
		for _, v := range z {
			if abs := math.Abs(v); abs > score {
				score = abs
			}
		}
		scored[i] = scoredRecord{index: i, score: score}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	quota := int(math.Ceil(d.Contamination * float64(len(records))))

	anomalies := make([]Anomaly, 0, quota)
	for _, candidate := range scored {
		if len(anomalies) >= quota || candidate.score < outlierScoreThreshold {
			break
		}
		record := records[candidate.index]
		anomaly := classifyAnomaly(record)
		anomaly.OutlierScore = candidate.score
		anomalies = append(anomalies, anomaly)
	}

	return AnomalyReport{
		Anomalies:      anomalies,
		TotalSuppliers: len(records),
		AnomalyRate:    float64(len(anomalies)) / float64(len(records)),
		Timestamp:      time.Now().UTC(),
	}, nil
}

// anomalyRule is one step of the classification cascade. Rules are evaluated
// in order and the first match wins.
type anomalyRule struct {
	matches  func(resolvedPerformance) bool
	classify func(resolvedPerformance) Anomaly
}

var anomalyRules = []anomalyRule{
	{
		matches: func(p resolvedPerformance) bool { return p.OnTimeDeliveryRate < 70 },
		classify: func(p resolvedPerformance) Anomaly {
			return Anomaly{
				AnomalyType:     "delivery_reliability",
				Severity:        "high",
				Description:     fmt.Sprintf("On-time delivery rate critically low: %.1f%%", p.OnTimeDeliveryRate),
				Recommendations: []string{"Immediate supplier review required"},
			}
		},
	},
	{
		matches: func(p resolvedPerformance) bool { return p.QualityScore < 6 },
		classify: func(p resolvedPerformance) Anomaly {
			return Anomaly{
				AnomalyType:     "quality_issue",
				Severity:        "high",
				Description:     fmt.Sprintf("Quality score below threshold: %.1f/10", p.QualityScore),
				Recommendations: []string{"Quality audit recommended"},
			}
		},
	},
}

func classifyAnomaly(record SupplierPerformanceRecord) Anomaly {
	resolved := record.resolve()

	anomaly := Anomaly{
		AnomalyType: "performance",
		Severity:    "medium",
		Description: "Performance deviation detected",
	}
	for _, rule := range anomalyRules {
		if rule.matches(resolved) {
			anomaly = rule.classify(resolved)
			break
		}
	}

	anomaly.SupplierID = record.SupplierID
	anomaly.SupplierName = record.SupplierName
	if len(anomaly.Recommendations) == 0 {
		anomaly.Recommendations = []string{"Monitor supplier performance closely"}
	}
	return anomaly
}
