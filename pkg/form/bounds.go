package form

import "github.com/goliatone/go-carprice/pkg/rules"

// Bound declares the legal range of a numeric field. Step is an input hint
// and is not enforced.
type Bound struct {
	Field   string  `json:"field"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	HasMax  bool    `json:"has_max"`
	Step    float64 `json:"step"`
	Integer bool    `json:"integer"`
}

// DefaultBounds returns the declared bounds for the fixed-range numeric
// fields. Seat bounds come from the dataset.
func DefaultBounds() []Bound {
	return []Bound{
		{Field: FieldCarAge, Min: 0, Max: 50, HasMax: true, Step: 1, Integer: true},
		{Field: FieldKmsDriven, Min: 0, Step: 1000, Integer: true},
		{Field: FieldEngineCapacity, Min: 600, Max: 6000, HasMax: true, Step: 100, Integer: true},
		{Field: FieldMileage, Min: 5.0, Max: 40.0, HasMax: true, Step: 0.5},
	}
}

func seatBound(seats []int) Bound {
	b := Bound{Field: FieldSeats, HasMax: true, Step: 1, Integer: true}
	if len(seats) > 0 {
		b.Min = float64(seats[0])
		b.Max = float64(seats[len(seats)-1])
	}
	return b
}

// Rule compiles the bound into its range rule.
func (b Bound) Rule() rules.Rule {
	if !b.HasMax {
		return rules.Range(b.Field, b.Min, nil)
	}
	max := b.Max
	return rules.Range(b.Field, b.Min, &max)
}
