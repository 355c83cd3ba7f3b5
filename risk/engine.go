package risk

// Engine bundles the analytical components behind one injectable object. The
// transport layer holds a single Engine shared across requests; the only
// synchronization it needs lives inside DelayPredictor.
type Engine struct {
	predictor *DelayPredictor
	detector  *AnomalyDetector
}

// NewEngine builds an engine whose stochastic paths are driven by the given
// seed.
func NewEngine(seed int64) *Engine {
	return &Engine{
		predictor: NewDelayPredictor(seed),
		detector:  NewAnomalyDetector(),
	}
}

// PredictDelay estimates the delay for one shipment.
func (e *Engine) PredictDelay(record ShipmentRecord) (PredictionResult, error) {
	return e.predictor.Predict(record)
}

// TrainDelayModel fits the delay model on a labeled batch.
func (e *Engine) TrainDelayModel(records []ShipmentRecord) (TrainingSummary, error) {
	return e.predictor.Fit(records)
}

// AnalyzeSuppliers runs anomaly detection over a supplier performance batch.
func (e *Engine) AnalyzeSuppliers(records []SupplierPerformanceRecord) (AnomalyReport, error) {
	return e.detector.Analyze(records)
}

// ScoreRisk predicts the delay for a shipment and folds it into the
// composite risk score.
func (e *Engine) ScoreRisk(record ShipmentRecord) (RiskScore, error) {
	prediction, err := e.predictor.Predict(record)
	if err != nil {
		return RiskScore{}, err
	}
	return ScoreShipmentRisk(record, prediction), nil
}

// Status reports the informational training-state probe.
func (e *Engine) Status() EngineStatus {
	status := EngineStatus{
		ModelStatus:  "not_trained",
		FeatureCount: len(ShipmentFeatureColumns),
	}
	if e.predictor.Trained() {
		status.ModelStatus = "trained"
	}
	return status
}
