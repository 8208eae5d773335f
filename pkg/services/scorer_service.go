package services

import (
	"encoding/json"
	"fmt"
	"os"

	"sales-forecast-api/pkg/models"
)

// Scorer is a previously trained regression function. Implementations must
// be stateless and safe for concurrent use; Predict is called once per
// query with the whole batch and returns one value per input row, in input
// order.
type Scorer interface {
	Predict(matrix models.FeatureMatrix) ([]float64, error)
}

// LinearScorer scores a feature row as intercept + dot(weights, values).
// It is the serving-side form of the trained model: the training pipeline
// exports intercept and per-column weights to a JSON artifact, keyed by the
// same column names the feature pipeline emits.
type LinearScorer struct {
	intercept float64
	weights   map[string]float64
}

type scorerArtifact struct {
	Intercept float64            `json:"intercept"`
	Weights   map[string]float64 `json:"weights"`
}

// LoadScorer reads a model artifact from path. Every feature column the
// pipeline emits must have a weight; a stale artifact that predates a
// feature change fails here, at startup, instead of scoring garbage.
func LoadScorer(path string) (*LinearScorer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact %s: %w", path, err)
	}
	var artifact scorerArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to parse model artifact %s: %w", path, err)
	}
	return NewLinearScorer(artifact.Intercept, artifact.Weights)
}

// NewLinearScorer builds a scorer from an intercept and per-column weights.
func NewLinearScorer(intercept float64, weights map[string]float64) (*LinearScorer, error) {
	for _, col := range models.FeatureColumns() {
		if _, ok := weights[col]; !ok {
			return nil, fmt.Errorf("model artifact has no weight for feature column %s", col)
		}
	}
	w := make(map[string]float64, len(weights))
	for col, v := range weights {
		w[col] = v
	}
	return &LinearScorer{intercept: intercept, weights: w}, nil
}

// Predict scores every row of the matrix.
func (s *LinearScorer) Predict(matrix models.FeatureMatrix) ([]float64, error) {
	weights := make([]float64, len(matrix.Columns))
	for i, col := range matrix.Columns {
		w, ok := s.weights[col]
		if !ok {
			return nil, fmt.Errorf("no weight for feature column %s", col)
		}
		weights[i] = w
	}

	out := make([]float64, len(matrix.Rows))
	for i, row := range matrix.Rows {
		if len(row.Values) != len(matrix.Columns) {
			return nil, fmt.Errorf("%w: row %d has %d values for %d columns", ErrInvariant, i, len(row.Values), len(matrix.Columns))
		}
		v := s.intercept
		for j, x := range row.Values {
			v += weights[j] * x
		}
		out[i] = v
	}
	return out, nil
}
