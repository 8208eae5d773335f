package models

import "fmt"

// Column names of the merged monthly sales table. They match the headers the
// training pipeline wrote, so the serving-side feature columns line up with
// the weights in the model artifact.
const (
	ColPeriod   = "date_block_num"
	ColShop     = "shop_id"
	ColItem     = "item_id"
	ColMonth    = "month"
	ColCategory = "item_category_id"
	ColQuantity = "item_cnt_month"
	ColPrice    = "avg_item_price"
)

// LagColumn returns the derived column name for a measure lagged by the
// given number of periods, e.g. "item_cnt_month_lag_2".
func LagColumn(measure string, lag int) string {
	return fmt.Sprintf("%s_lag_%d", measure, lag)
}

// QuantityLags and PriceLags are the lag offsets the model was trained with.
var (
	QuantityLags = []int{1, 2, 3}
	PriceLags    = []int{1}
)

// FeatureColumns returns the exact column order the scorer expects: identity
// columns first, then quantity lags, then price lags. Raw quantity, price
// and period columns are never part of it.
func FeatureColumns() []string {
	cols := []string{ColShop, ColItem, ColMonth, ColCategory}
	for _, lag := range QuantityLags {
		cols = append(cols, LagColumn(ColQuantity, lag))
	}
	for _, lag := range PriceLags {
		cols = append(cols, LagColumn(ColPrice, lag))
	}
	return cols
}

// Observation is one historical fact: what one shop sold of one item in one
// month. At most one Observation may exist per (Period, Shop, Item).
type Observation struct {
	Period   int     `json:"date_block_num"`
	Shop     int     `json:"shop_id"`
	Item     int     `json:"item_id"`
	Month    int     `json:"month"`
	Category int     `json:"item_category_id"`
	Quantity float64 `json:"item_cnt_month"`
	Price    float64 `json:"avg_item_price"`
}

// Key identifies the observation within the history table.
func (o Observation) Key() ObservationKey {
	return ObservationKey{Period: o.Period, Shop: o.Shop, Item: o.Item}
}

// ObservationKey is the uniqueness key of the history table.
type ObservationKey struct {
	Period int
	Shop   int
	Item   int
}

// FeatureRow is one scoring input: the feature values in FeatureColumns
// order. Shop is carried alongside so predictions can be paired with shops
// by key rather than by iteration order.
type FeatureRow struct {
	Shop   int
	Values []float64
}

// FeatureMatrix is the batch handed to the scorer for one query.
type FeatureMatrix struct {
	Columns []string
	Rows    []FeatureRow
}

// Prediction is the forecast for a single shop. PredictedSales is the
// scorer's continuous output rounded half away from zero and clamped at
// zero, since negative unit sales are not meaningful.
type Prediction struct {
	Shop           int `json:"shop_id"`
	PredictedSales int `json:"predicted_sales"`
}

// ForecastResult is the answer to one forecast query. Predictions are
// ordered by ascending shop ID.
type ForecastResult struct {
	Item        int          `json:"item_id"`
	Period      int          `json:"period"`
	Predictions []Prediction `json:"predictions"`
}
