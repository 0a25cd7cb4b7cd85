package form

import (
	"strconv"

	"github.com/goliatone/go-carprice/pkg/dataset"
)

// Numeric field names.
const (
	FieldCarAge         = "car_age"
	FieldKmsDriven      = "kms_driven"
	FieldEngineCapacity = "engine_capacity"
	FieldMileage        = "mileage"
	FieldSeats          = dataset.FieldSeats
)

// CategoricalFields lists the select fields in submission order. Brand comes
// first so model legality is checked against the final brand.
var CategoricalFields = []string{
	dataset.FieldBrand,
	dataset.FieldModel,
	dataset.FieldCity,
	dataset.FieldFuelType,
	dataset.FieldTransmissionType,
	dataset.FieldOwnerType,
	dataset.FieldInsurance,
}

// NumericFields lists the numeric inputs in display order.
var NumericFields = []string{
	FieldCarAge,
	FieldKmsDriven,
	FieldEngineCapacity,
	FieldMileage,
	FieldSeats,
}

// State is the current selection for every form field. An empty categorical
// value means "no selection".
type State struct {
	Brand            string  `json:"brand"`
	Model            string  `json:"model"`
	City             string  `json:"city"`
	FuelType         string  `json:"fuel_type"`
	TransmissionType string  `json:"transmission_type"`
	OwnerType        string  `json:"owner_type"`
	Insurance        string  `json:"insurance"`
	CarAge           int     `json:"car_age"`
	KmsDriven        int     `json:"kms_driven"`
	EngineCapacity   int     `json:"engine_capacity"`
	Mileage          float64 `json:"mileage"`
	Seats            int     `json:"seats"`
}

// Categorical returns the selection for a categorical field.
func (s State) Categorical(field string) (string, bool) {
	switch field {
	case dataset.FieldBrand:
		return s.Brand, true
	case dataset.FieldModel:
		return s.Model, true
	case dataset.FieldCity:
		return s.City, true
	case dataset.FieldFuelType:
		return s.FuelType, true
	case dataset.FieldTransmissionType:
		return s.TransmissionType, true
	case dataset.FieldOwnerType:
		return s.OwnerType, true
	case dataset.FieldInsurance:
		return s.Insurance, true
	}
	return "", false
}

// Numeric returns the value of a numeric field.
func (s State) Numeric(field string) (float64, bool) {
	switch field {
	case FieldCarAge:
		return float64(s.CarAge), true
	case FieldKmsDriven:
		return float64(s.KmsDriven), true
	case FieldEngineCapacity:
		return float64(s.EngineCapacity), true
	case FieldMileage:
		return s.Mileage, true
	case FieldSeats:
		return float64(s.Seats), true
	}
	return 0, false
}

// Value renders any field as a string, the way it is posted back by a form.
func (s State) Value(field string) string {
	if v, ok := s.Categorical(field); ok {
		return v
	}
	if field == FieldMileage {
		return strconv.FormatFloat(s.Mileage, 'f', -1, 64)
	}
	if v, ok := s.Numeric(field); ok {
		return strconv.Itoa(int(v))
	}
	return ""
}

// Values renders every field keyed by name.
func (s State) Values() map[string]string {
	out := make(map[string]string, len(CategoricalFields)+len(NumericFields))
	for _, field := range CategoricalFields {
		out[field] = s.Value(field)
	}
	for _, field := range NumericFields {
		out[field] = s.Value(field)
	}
	return out
}

// Missing lists fields without a usable value: empty selections and a zero
// seat count.
func (s State) Missing() []string {
	var missing []string
	for _, field := range CategoricalFields {
		if v, _ := s.Categorical(field); v == "" {
			missing = append(missing, field)
		}
	}
	if s.Seats <= 0 {
		missing = append(missing, FieldSeats)
	}
	return missing
}

func (s State) withCategorical(field, value string) State {
	switch field {
	case dataset.FieldBrand:
		s.Brand = value
	case dataset.FieldModel:
		s.Model = value
	case dataset.FieldCity:
		s.City = value
	case dataset.FieldFuelType:
		s.FuelType = value
	case dataset.FieldTransmissionType:
		s.TransmissionType = value
	case dataset.FieldOwnerType:
		s.OwnerType = value
	case dataset.FieldInsurance:
		s.Insurance = value
	}
	return s
}

func (s State) withNumeric(field string, value float64) State {
	switch field {
	case FieldCarAge:
		s.CarAge = int(value)
	case FieldKmsDriven:
		s.KmsDriven = int(value)
	case FieldEngineCapacity:
		s.EngineCapacity = int(value)
	case FieldMileage:
		s.Mileage = value
	case FieldSeats:
		s.Seats = int(value)
	}
	return s
}
