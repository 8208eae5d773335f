package services

import (
	"fmt"
	"sort"

	"sales-forecast-api/pkg/models"
)

// tableRow is one line of the pipeline's working table: the identity columns
// plus a sparse value set for measures and derived lag columns. A column
// missing from values means "no data", which is distinct from 0 until
// FillNA runs.
type tableRow struct {
	Period   int
	Shop     int
	Item     int
	Month    int
	Category int
	values   map[string]float64
}

func (r tableRow) value(col string) (float64, bool) {
	v, ok := r.values[col]
	return v, ok
}

// withValue returns a copy of the row with one more column set. The
// receiver's value map is never mutated, so earlier pipeline stages keep
// seeing their own version of the table.
func (r tableRow) withValue(col string, v float64) tableRow {
	values := make(map[string]float64, len(r.values)+1)
	for k, val := range r.values {
		values[k] = val
	}
	values[col] = v
	out := r
	out.values = values
	return out
}

func observationRow(o models.Observation) tableRow {
	return tableRow{
		Period:   o.Period,
		Shop:     o.Shop,
		Item:     o.Item,
		Month:    o.Month,
		Category: o.Category,
		values: map[string]float64{
			models.ColQuantity: o.Quantity,
			models.ColPrice:    o.Price,
		},
	}
}

// LagFeatures derives, for every row, the value of Col observed Lags[i]
// periods earlier for the same (shop, item), as new columns named
// LagColumn(Col, lag). Each offset reads the original measure column, never
// another lag column, so offsets accumulate independently.
type LagFeatures struct {
	Lags []int
	Col  string
}

// Transform returns a new table with the lag columns added. Row count and
// order are preserved: a row with no predecessor at period-lag simply gets
// no value for that lag column. (period, shop, item) must be unique across
// the input; duplicates would fan out a join-based derivation, so they are
// rejected here instead of producing silently multiplied rows.
func (lf LagFeatures) Transform(rows []tableRow) ([]tableRow, error) {
	seen := make(map[models.ObservationKey]struct{}, len(rows))
	for _, r := range rows {
		key := models.ObservationKey{Period: r.Period, Shop: r.Shop, Item: r.Item}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: duplicate key (period=%d shop=%d item=%d) in lag derivation input",
				ErrInvariant, key.Period, key.Shop, key.Item)
		}
		seen[key] = struct{}{}
	}

	out := rows
	for _, lag := range lf.Lags {
		// Shifted view of the measure column: a value observed at period p
		// becomes the lagged value of period p+lag for the same shop/item.
		shifted := make(map[models.ObservationKey]float64, len(out))
		for _, r := range out {
			v, ok := r.value(lf.Col)
			if !ok {
				continue
			}
			shifted[models.ObservationKey{Period: r.Period + lag, Shop: r.Shop, Item: r.Item}] = v
		}

		lagCol := models.LagColumn(lf.Col, lag)
		next := make([]tableRow, len(out))
		for i, r := range out {
			key := models.ObservationKey{Period: r.Period, Shop: r.Shop, Item: r.Item}
			if v, ok := shifted[key]; ok {
				next[i] = r.withValue(lagCol, v)
			} else {
				next[i] = r
			}
		}
		out = next
	}
	return out, nil
}

// FillNA replaces every absent value in the given columns with 0, the same
// blanket fill the model saw at training time. Safe here because both
// tracked measures are zero-valid for "no prior period" and the raw measure
// columns are dropped before scoring anyway. Idempotent.
type FillNA struct {
	Columns []string
}

// Transform returns a new table with no absent values in fna.Columns.
func (fna FillNA) Transform(rows []tableRow) []tableRow {
	out := make([]tableRow, len(rows))
	for i, r := range rows {
		filled := r
		for _, col := range fna.Columns {
			if _, ok := filled.value(col); !ok {
				filled = filled.withValue(col, 0)
			}
		}
		out[i] = filled
	}
	return out
}

// synthesizeTargetRows fabricates one forecast-target row per shop that has
// ever sold the item: period and month set to the target, category carried
// forward, quantity and price left absent. When a shop's category for the
// item changed over time, the category from the greatest period wins. Rows
// come back sorted by ascending shop ID, which fixes the output order of
// the whole query.
func synthesizeTargetRows(history []models.Observation, itemID, targetPeriod, targetMonth int) []tableRow {
	latest := make(map[int]models.Observation, len(history))
	for _, o := range history {
		if prev, ok := latest[o.Shop]; !ok || o.Period > prev.Period {
			latest[o.Shop] = o
		}
	}

	shops := make([]int, 0, len(latest))
	for shop := range latest {
		shops = append(shops, shop)
	}
	sort.Ints(shops)

	rows := make([]tableRow, 0, len(shops))
	for _, shop := range shops {
		rows = append(rows, tableRow{
			Period:   targetPeriod,
			Shop:     shop,
			Item:     itemID,
			Month:    targetMonth,
			Category: latest[shop].Category,
			values:   map[string]float64{},
		})
	}
	return rows
}

// monthOrdinal maps a period index to its 1..12 calendar month. Period 0 is
// January of the first year covered by the history table.
func monthOrdinal(period int) int {
	return period%12 + 1
}

// FeaturePipeline rebuilds, for an arbitrary future period, the exact
// lagged-feature representation the model was trained on.
type FeaturePipeline struct{}

// NewFeaturePipeline creates a new FeaturePipeline.
func NewFeaturePipeline() *FeaturePipeline {
	return &FeaturePipeline{}
}

// BuildFeatures synthesizes target rows for the item, concatenates them with
// the item's history, derives quantity and price lags over the combined
// table, zero-fills what has no predecessor, and returns only the
// target-period rows projected to the scorer's column order.
//
// history must be non-empty; an unknown item is the caller's error and is
// rejected before this point.
func (fp *FeaturePipeline) BuildFeatures(history []models.Observation, itemID, targetPeriod int) (models.FeatureMatrix, error) {
	targets := synthesizeTargetRows(history, itemID, targetPeriod, monthOrdinal(targetPeriod))

	combined := make([]tableRow, 0, len(history)+len(targets))
	for _, o := range history {
		combined = append(combined, observationRow(o))
	}
	combined = append(combined, targets...)

	combined, err := (LagFeatures{Lags: models.QuantityLags, Col: models.ColQuantity}).Transform(combined)
	if err != nil {
		return models.FeatureMatrix{}, err
	}
	combined, err = (LagFeatures{Lags: models.PriceLags, Col: models.ColPrice}).Transform(combined)
	if err != nil {
		return models.FeatureMatrix{}, err
	}

	filled := make([]string, 0, 2+len(models.QuantityLags)+len(models.PriceLags))
	filled = append(filled, models.ColQuantity, models.ColPrice)
	for _, lag := range models.QuantityLags {
		filled = append(filled, models.LagColumn(models.ColQuantity, lag))
	}
	for _, lag := range models.PriceLags {
		filled = append(filled, models.LagColumn(models.ColPrice, lag))
	}
	combined = FillNA{Columns: filled}.Transform(combined)

	columns := models.FeatureColumns()
	matrix := models.FeatureMatrix{Columns: columns}
	for _, r := range combined {
		if r.Period != targetPeriod {
			continue
		}
		values := make([]float64, 0, len(columns))
		for _, col := range columns {
			switch col {
			case models.ColShop:
				values = append(values, float64(r.Shop))
			case models.ColItem:
				values = append(values, float64(r.Item))
			case models.ColMonth:
				values = append(values, float64(r.Month))
			case models.ColCategory:
				values = append(values, float64(r.Category))
			default:
				v, ok := r.value(col)
				if !ok {
					return models.FeatureMatrix{}, fmt.Errorf("%w: feature column %s absent after fill", ErrInvariant, col)
				}
				values = append(values, v)
			}
		}
		matrix.Rows = append(matrix.Rows, models.FeatureRow{Shop: r.Shop, Values: values})
	}

	if len(matrix.Rows) == 0 {
		// Synthesis guarantees one target row per shop, so an empty
		// selection means a stage dropped rows.
		return models.FeatureMatrix{}, fmt.Errorf("%w: no rows for target period %d after feature derivation", ErrInvariant, targetPeriod)
	}
	return matrix, nil
}
