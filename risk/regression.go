package risk

import (
	"errors"
	"math"
)

// ridgeModel is a linear delay model fit by regularized least squares on
// scaled features. The closed-form normal-equations solve keeps training
// deterministic: the same batch always produces the same weights.
type ridgeModel struct {
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
	Lambda    float64   `json:"lambda"`
}

const defaultRidgeLambda = 1.0

// fitRidge solves (X'X + lambda*I) w = X'y with an intercept column. The
// intercept is not regularized.
func fitRidge(rows [][]float64, targets []float64, lambda float64) (*ridgeModel, error) {
	if len(rows) == 0 || len(rows) != len(targets) {
		return nil, errors.New("feature rows and targets must be non-empty and aligned")
	}

	featureCount := len(rows[0])
	dim := featureCount + 1 // trailing intercept column

	// Normal equations: A = X'X + lambda*I, b = X'y.
	a := make([][]float64, dim)
	for i := range a {
		a[i] = make([]float64, dim)
	}
	b := make([]float64, dim)

	augmented := make([]float64, dim)
	for r, row := range rows {
		if len(row) != featureCount {
			return nil, errors.New("inconsistent feature dimensions")
		}
		copy(augmented, row)
		augmented[featureCount] = 1.0

		for i := 0; i < dim; i++ {
			for j := 0; j < dim; j++ {
				a[i][j] += augmented[i] * augmented[j]
			}
			b[i] += augmented[i] * targets[r]
		}
	}
	for i := 0; i < featureCount; i++ {
		a[i][i] += lambda
	}

	solution, err := solveLinearSystem(a, b)
	if err != nil {
		return nil, err
	}

	return &ridgeModel{
		Weights:   solution[:featureCount],
		Intercept: solution[featureCount],
		Lambda:    lambda,
	}, nil
}

func (m *ridgeModel) predict(row []float64) float64 {
	sum := m.Intercept
	limit := len(row)
	if len(m.Weights) < limit {
		limit = len(m.Weights)
	}
	for i := 0; i < limit; i++ {
		sum += m.Weights[i] * row[i]
	}
	return sum
}

// solveLinearSystem performs Gaussian elimination with partial pivoting.
// Mutates its arguments.
func solveLinearSystem(a [][]float64, b []float64) ([]float64, error) {
	n := len(a)
	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return nil, errors.New("singular normal-equations matrix")
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		for row := col + 1; row < n; row++ {
			factor := a[row][col] / a[col][col]
			if factor == 0 {
				continue
			}
			for k := col; k < n; k++ {
				a[row][k] -= factor * a[col][k]
			}
			b[row] -= factor * b[col]
		}
	}

	solution := make([]float64, n)
	for row := n - 1; row >= 0; row-- {
		sum := b[row]
		for col := row + 1; col < n; col++ {
			sum -= a[row][col] * solution[col]
		}
		solution[row] = sum / a[row][row]
	}
	return solution, nil
}

func meanAbsoluteError(predicted, actual []float64) float64 {
	if len(predicted) == 0 || len(predicted) != len(actual) {
		return 0
	}
	var sum float64
	for i := range predicted {
		sum += math.Abs(predicted[i] - actual[i])
	}
	return sum / float64(len(predicted))
}
