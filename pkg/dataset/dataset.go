package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Dataset holds the categorical domains derived from a reference CSV. It is
// immutable after Parse and safe for concurrent readers.
type Dataset struct {
	source  Source
	rows    int
	domains map[string][]string
	models  map[string][]string
	seats   []int
}

// Parse derives domains from CSV data with a header row. Values equal to a
// missing marker (empty, NA, NaN, null, ...) are dropped.
func Parse(src Source, data []byte) (*Dataset, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: dataset is empty", ErrDataUnavailable)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.ReuseRecord = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %w", ErrDataUnavailable, err)
	}
	columns := indexColumns(header)
	for _, field := range RequiredFields {
		if _, ok := columns[field]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrDataUnavailable, field)
		}
	}

	tracked := trackedFields(columns)
	sets := make(map[string]map[string]struct{}, len(tracked))
	for _, field := range tracked {
		sets[field] = make(map[string]struct{})
	}
	modelSets := make(map[string]map[string]struct{})
	seatSet := make(map[int]struct{})

	ds := &Dataset{source: src}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
		}
		ds.rows++

		for _, field := range tracked {
			value := strings.TrimSpace(record[columns[field]])
			if isMissing(value) {
				continue
			}
			if field == FieldSeats {
				seats, err := parseSeats(value)
				if err != nil {
					return nil, fmt.Errorf("%w: row %d: %w", ErrDataUnavailable, ds.rows, err)
				}
				seatSet[seats] = struct{}{}
				continue
			}
			sets[field][value] = struct{}{}
		}

		brand := strings.TrimSpace(record[columns[FieldBrand]])
		if isMissing(brand) {
			continue
		}
		models, ok := modelSets[brand]
		if !ok {
			models = make(map[string]struct{})
			modelSets[brand] = models
		}
		if model := strings.TrimSpace(record[columns[FieldModel]]); !isMissing(model) {
			models[model] = struct{}{}
		}
	}

	if ds.rows == 0 {
		return nil, fmt.Errorf("%w: dataset has no rows", ErrDataUnavailable)
	}

	ds.domains = make(map[string][]string, len(tracked))
	for _, field := range tracked {
		if field == FieldSeats {
			continue
		}
		ds.domains[field] = sortedKeys(sets[field])
	}

	ds.seats = make([]int, 0, len(seatSet))
	for seats := range seatSet {
		ds.seats = append(ds.seats, seats)
	}
	sort.Ints(ds.seats)
	seatValues := make([]string, len(ds.seats))
	for i, seats := range ds.seats {
		seatValues[i] = strconv.Itoa(seats)
	}
	ds.domains[FieldSeats] = seatValues

	ds.models = make(map[string][]string, len(modelSets))
	for brand, models := range modelSets {
		ds.models[brand] = sortedKeys(models)
	}

	return ds, nil
}

// Source reports where the dataset was read from.
func (d *Dataset) Source() Source {
	if d == nil {
		return nil
	}
	return d.source
}

// Rows reports the number of data rows read, missing values included.
func (d *Dataset) Rows() int {
	if d == nil {
		return 0
	}
	return d.rows
}

// Fields lists the fields Domain answers for, sorted.
func (d *Dataset) Fields() []string {
	if d == nil {
		return nil
	}
	out := make([]string, 0, len(d.domains))
	for field := range d.domains {
		out = append(out, field)
	}
	sort.Strings(out)
	return out
}

// Domain returns the sorted distinct values observed for field. Seats are
// ordered numerically, everything else lexicographically.
func (d *Dataset) Domain(field string) ([]string, error) {
	if d == nil {
		return nil, ErrDataUnavailable
	}
	values, ok := d.domains[field]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return append([]string{}, values...), nil
}

// DependentDomain returns the sorted models observed for brand. Unknown
// brands and brands without models yield an empty slice.
func (d *Dataset) DependentDomain(brand string) []string {
	if d == nil {
		return []string{}
	}
	return append([]string{}, d.models[brand]...)
}

// Seats returns the seat counts observed in the dataset in ascending order.
func (d *Dataset) Seats() []int {
	if d == nil {
		return nil
	}
	return append([]int{}, d.seats...)
}

func indexColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if name == "" {
			continue
		}
		if _, exists := columns[name]; !exists {
			columns[name] = i
		}
	}
	return columns
}

func trackedFields(columns map[string]int) []string {
	fields := append([]string{}, RequiredFields...)
	for _, field := range OptionalFields {
		if _, ok := columns[field]; ok {
			fields = append(fields, field)
		}
	}
	return fields
}

func parseSeats(raw string) (int, error) {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(value, 0) || value != math.Trunc(value) || value <= 0 {
		return 0, fmt.Errorf("invalid seats value %q", raw)
	}
	return int(value), nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for key := range set {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
