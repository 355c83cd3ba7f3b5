package risk

import (
	"errors"
	"math"
)

// FeatureScaler standardizes features across a batch using z-score
// normalization: each feature dimension is transformed to mean=0, std=1.
// Without scaling, large-magnitude features like distance_km or
// avg_order_value dominate both the regression fit and the outlier scores.
type FeatureScaler struct {
	Mean   []float64 `json:"mean"`
	Stddev []float64 `json:"stddev"`
}

// NewFeatureScaler computes scaling parameters from a batch of feature rows.
// The scaler is fit once per training call and fully replaced on refit; it is
// never updated incrementally.
func NewFeatureScaler(rows [][]float64) (*FeatureScaler, error) {
	if len(rows) == 0 {
		return nil, errors.New("no feature rows provided")
	}

	featureCount := len(rows[0])
	if featureCount == 0 {
		return nil, errors.New("feature rows are empty")
	}

	mean := make([]float64, featureCount)
	for _, row := range rows {
		if len(row) != featureCount {
			return nil, errors.New("inconsistent feature dimensions")
		}
		for i, val := range row {
			mean[i] += val
		}
	}
	for i := range mean {
		mean[i] /= float64(len(rows))
	}

	stddev := make([]float64, featureCount)
	for _, row := range rows {
		for i, val := range row {
			diff := val - mean[i]
			stddev[i] += diff * diff
		}
	}
	for i := range stddev {
		stddev[i] = math.Sqrt(stddev[i] / float64(len(rows)))
		// Constant features scale to zero, not to NaN.
		if stddev[i] < 1e-10 {
			stddev[i] = 1.0
		}
	}

	return &FeatureScaler{Mean: mean, Stddev: stddev}, nil
}

// Transform applies z-score standardization to one feature row.
func (fs *FeatureScaler) Transform(row []float64) []float64 {
	if len(row) != len(fs.Mean) {
		return row
	}

	scaled := make([]float64, len(row))
	for i, val := range row {
		scaled[i] = (val - fs.Mean[i]) / fs.Stddev[i]
	}
	return scaled
}

// TransformAll applies Transform to every row of a batch.
func (fs *FeatureScaler) TransformAll(rows [][]float64) [][]float64 {
	scaled := make([][]float64, len(rows))
	for i, row := range rows {
		scaled[i] = fs.Transform(row)
	}
	return scaled
}
