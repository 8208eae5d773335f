package services

import (
	"fmt"
	"math"

	"sales-forecast-api/pkg/models"
)

// ForecastService answers point-in-time sales-forecast queries. It holds
// immutable references to the history table and the trained scorer, both
// loaded once at startup; queries allocate only their own intermediate rows,
// so the service is safe for concurrent use without locking.
type ForecastService struct {
	history       *HistoryStore
	scorer        Scorer
	pipeline      *FeaturePipeline
	defaultPeriod int
}

// NewForecastService creates a new ForecastService. defaultPeriod is the
// period forecast for when a query does not name one.
func NewForecastService(history *HistoryStore, scorer Scorer, defaultPeriod int) *ForecastService {
	return &ForecastService{
		history:       history,
		scorer:        scorer,
		pipeline:      NewFeaturePipeline(),
		defaultPeriod: defaultPeriod,
	}
}

// DefaultPeriod returns the period used when a query does not specify one.
func (s *ForecastService) DefaultPeriod() int {
	return s.defaultPeriod
}

// Forecast predicts the item's unit sales at targetPeriod for every shop
// that has ever sold it. Errors wrapping ErrUnknownItem or ErrInvalidPeriod
// are the caller's fault; everything else is an internal failure.
func (s *ForecastService) Forecast(itemID, targetPeriod int) (*models.ForecastResult, error) {
	if itemID < 0 {
		return nil, fmt.Errorf("item id %d: %w", itemID, ErrUnknownItem)
	}

	history := s.history.FilterByItem(itemID)
	if len(history) == 0 {
		return nil, fmt.Errorf("item id %d: %w", itemID, ErrUnknownItem)
	}

	// The target must lie beyond the item's recorded history; a period with
	// real observations would collide with the synthesized target rows.
	for _, o := range history {
		if o.Period >= targetPeriod {
			return nil, fmt.Errorf("period %d is not beyond item %d's history: %w", targetPeriod, itemID, ErrInvalidPeriod)
		}
	}

	matrix, err := s.pipeline.BuildFeatures(history, itemID, targetPeriod)
	if err != nil {
		return nil, err
	}

	raw, err := s.scorer.Predict(matrix)
	if err != nil {
		return nil, err
	}
	if len(raw) != len(matrix.Rows) {
		return nil, fmt.Errorf("%w: scorer returned %d predictions for %d rows", ErrInvariant, len(raw), len(matrix.Rows))
	}

	result := &models.ForecastResult{
		Item:        itemID,
		Period:      targetPeriod,
		Predictions: make([]models.Prediction, len(matrix.Rows)),
	}
	for i, row := range matrix.Rows {
		result.Predictions[i] = models.Prediction{
			Shop:           row.Shop,
			PredictedSales: roundSales(raw[i]),
		}
	}
	return result, nil
}

// roundSales rounds half away from zero, matching how the training pipeline
// rounded its outputs, then clamps at zero: predicted unit sales are
// non-negative.
func roundSales(v float64) int {
	n := int(math.Round(v))
	if n < 0 {
		return 0
	}
	return n
}
