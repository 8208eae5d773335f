package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"sales-forecast-api/pkg/models"
)

// HistoryStore holds the merged monthly observation table. It is loaded once
// at startup and never mutated afterwards, so concurrent queries can read it
// without locking.
type HistoryStore struct {
	observations []models.Observation
	byItem       map[int][]models.Observation
	maxPeriod    int
}

// NewHistoryStore loads the observation table from path. CSV and XLSX files
// are supported, chosen by extension. Duplicate (period, shop, item) keys
// make the load fail: the lag derivation joins on that key and silently
// merging duplicates would hide corrupt input.
func NewHistoryStore(path string) (*HistoryStore, error) {
	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		rows, err = readXLSX(path)
	case ".csv":
		rows, err = readCSV(path)
	default:
		return nil, fmt.Errorf("unsupported history file format: %s (want .csv or .xlsx)", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history from %s: %w", path, err)
	}

	observations, err := parseObservations(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to parse history from %s: %w", path, err)
	}
	return NewHistoryStoreFromObservations(observations)
}

// NewHistoryStoreFromObservations builds a store from an in-memory table,
// enforcing the same key-uniqueness rule as the file loaders.
func NewHistoryStoreFromObservations(observations []models.Observation) (*HistoryStore, error) {
	seen := make(map[models.ObservationKey]struct{}, len(observations))
	byItem := make(map[int][]models.Observation)
	maxPeriod := 0
	for _, o := range observations {
		key := o.Key()
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("duplicate observation (period=%d shop=%d item=%d)", key.Period, key.Shop, key.Item)
		}
		seen[key] = struct{}{}
		byItem[o.Item] = append(byItem[o.Item], o)
		if o.Period > maxPeriod {
			maxPeriod = o.Period
		}
	}
	return &HistoryStore{observations: observations, byItem: byItem, maxPeriod: maxPeriod}, nil
}

// FilterByItem returns every observation for the item, or nil when the item
// has no history. Callers must treat the returned slice as read-only.
func (s *HistoryStore) FilterByItem(itemID int) []models.Observation {
	return s.byItem[itemID]
}

// Items returns every known item ID in ascending order.
func (s *HistoryStore) Items() []int {
	items := make([]int, 0, len(s.byItem))
	for item := range s.byItem {
		items = append(items, item)
	}
	sort.Ints(items)
	return items
}

// Len returns the total number of observations.
func (s *HistoryStore) Len() int {
	return len(s.observations)
}

// MaxPeriod returns the latest period present in the history table.
func (s *HistoryStore) MaxPeriod() int {
	return s.maxPeriod
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.GetRows(f.GetSheetName(0))
}

// parseObservations turns raw header+data rows into observations. Headers
// are matched case-insensitively with a few accepted aliases, so exports
// from different tools load without renaming columns.
func parseObservations(rows [][]string) ([]models.Observation, error) {
	if len(rows) < 2 {
		return nil, errors.New("history needs a header row and at least one data row")
	}

	header := normalizeHeader(rows[0])
	periodIdx := findColumn(header, models.ColPeriod, "period")
	shopIdx := findColumn(header, models.ColShop, "shop")
	itemIdx := findColumn(header, models.ColItem, "item")
	monthIdx := findColumn(header, models.ColMonth)
	categoryIdx := findColumn(header, models.ColCategory, "category_id")
	quantityIdx := findColumn(header, models.ColQuantity, "item_cnt", "quantity")
	priceIdx := findColumn(header, models.ColPrice, "item_price", "price")
	for col, idx := range map[string]int{
		models.ColPeriod:   periodIdx,
		models.ColShop:     shopIdx,
		models.ColItem:     itemIdx,
		models.ColMonth:    monthIdx,
		models.ColCategory: categoryIdx,
		models.ColQuantity: quantityIdx,
		models.ColPrice:    priceIdx,
	} {
		if idx == -1 {
			return nil, fmt.Errorf("column %s not found in header", col)
		}
	}

	observations := make([]models.Observation, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if isBlankRow(row) {
			continue
		}
		o, err := parseObservation(row, periodIdx, shopIdx, itemIdx, monthIdx, categoryIdx, quantityIdx, priceIdx)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		observations = append(observations, o)
	}

	if len(observations) == 0 {
		return nil, errors.New("history contains no valid rows")
	}
	return observations, nil
}

func parseObservation(row []string, periodIdx, shopIdx, itemIdx, monthIdx, categoryIdx, quantityIdx, priceIdx int) (models.Observation, error) {
	var o models.Observation
	var err error
	if o.Period, err = cellInt(row, periodIdx); err != nil {
		return o, err
	}
	if o.Shop, err = cellInt(row, shopIdx); err != nil {
		return o, err
	}
	if o.Item, err = cellInt(row, itemIdx); err != nil {
		return o, err
	}
	if o.Month, err = cellInt(row, monthIdx); err != nil {
		return o, err
	}
	if o.Category, err = cellInt(row, categoryIdx); err != nil {
		return o, err
	}
	if o.Quantity, err = cellFloat(row, quantityIdx); err != nil {
		return o, err
	}
	if o.Price, err = cellFloat(row, priceIdx); err != nil {
		return o, err
	}
	return o, nil
}

func normalizeHeader(hdr []string) []string {
	out := make([]string, len(hdr))
	for i, v := range hdr {
		v = strings.TrimPrefix(v, "\ufeff")
		out[i] = strings.ToLower(strings.TrimSpace(v))
	}
	return out
}

func findColumn(hdr []string, candidates ...string) int {
	for _, c := range candidates {
		for i, v := range hdr {
			if v == c {
				return i
			}
		}
	}
	return -1
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func cellInt(row []string, idx int) (int, error) {
	v, err := cellFloat(row, idx)
	if err != nil {
		return 0, err
	}
	// merged tables exported from float-typed frames write "22.0" for 22
	return int(v), nil
}

func cellFloat(row []string, idx int) (float64, error) {
	if idx >= len(row) {
		return 0, fmt.Errorf("missing column %d", idx)
	}
	s := strings.TrimSpace(row[idx])
	if s == "" {
		return 0, fmt.Errorf("empty value in column %d", idx)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q in column %d", s, idx)
	}
	return v, nil
}
