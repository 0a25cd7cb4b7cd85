package prediction

import (
	"github.com/goliatone/go-carprice/pkg/form"
)

// Record is the feature row sent to the model predictor. Field names and
// types are the predictor's wire contract.
type Record struct {
	EngineCapacity   int     `json:"engine_capacity"`
	Insurance        string  `json:"insurance"`
	TransmissionType string  `json:"transmission_type"`
	KmsDriven        int     `json:"kms_driven"`
	OwnerType        string  `json:"owner_type"`
	FuelType         string  `json:"fuel_type"`
	Seats            int     `json:"seats"`
	City             string  `json:"city"`
	MileageNumeric   float64 `json:"mileage_numeric"`
	CarAge           int     `json:"car_age"`
	Brand            string  `json:"brand"`
	Model            string  `json:"model"`
}

// Wire field names.
const (
	FieldEngineCapacity   = "engine_capacity"
	FieldInsurance        = "insurance"
	FieldTransmissionType = "transmission_type"
	FieldKmsDriven        = "kms_driven"
	FieldOwnerType        = "owner_type"
	FieldFuelType         = "fuel_type"
	FieldSeats            = "seats"
	FieldCity             = "city"
	FieldMileageNumeric   = "mileage_numeric"
	FieldCarAge           = "car_age"
	FieldBrand            = "brand"
	FieldModel            = "model"
)

var recordFields = []string{
	FieldEngineCapacity,
	FieldInsurance,
	FieldTransmissionType,
	FieldKmsDriven,
	FieldOwnerType,
	FieldFuelType,
	FieldSeats,
	FieldCity,
	FieldMileageNumeric,
	FieldCarAge,
	FieldBrand,
	FieldModel,
}

// Fields returns the wire field names in schema order.
func Fields() []string {
	return append([]string{}, recordFields...)
}

// Numeric returns the numeric features keyed by wire name.
func (r Record) Numeric() map[string]float64 {
	return map[string]float64{
		FieldEngineCapacity: float64(r.EngineCapacity),
		FieldKmsDriven:      float64(r.KmsDriven),
		FieldSeats:          float64(r.Seats),
		FieldMileageNumeric: r.MileageNumeric,
		FieldCarAge:         float64(r.CarAge),
	}
}

// Categorical returns the categorical features keyed by wire name.
func (r Record) Categorical() map[string]string {
	return map[string]string{
		FieldInsurance:        r.Insurance,
		FieldTransmissionType: r.TransmissionType,
		FieldOwnerType:        r.OwnerType,
		FieldFuelType:         r.FuelType,
		FieldCity:             r.City,
		FieldBrand:            r.Brand,
		FieldModel:            r.Model,
	}
}

// State re-derives the form state the record was built from.
func (r Record) State() form.State {
	return form.State{
		Brand:            r.Brand,
		Model:            r.Model,
		City:             r.City,
		FuelType:         r.FuelType,
		TransmissionType: r.TransmissionType,
		OwnerType:        r.OwnerType,
		Insurance:        r.Insurance,
		CarAge:           r.CarAge,
		KmsDriven:        r.KmsDriven,
		EngineCapacity:   r.EngineCapacity,
		Mileage:          r.MileageNumeric,
		Seats:            r.Seats,
	}
}

func recordFromState(s form.State) Record {
	return Record{
		EngineCapacity:   s.EngineCapacity,
		Insurance:        s.Insurance,
		TransmissionType: s.TransmissionType,
		KmsDriven:        s.KmsDriven,
		OwnerType:        s.OwnerType,
		FuelType:         s.FuelType,
		Seats:            s.Seats,
		City:             s.City,
		MileageNumeric:   s.Mileage,
		CarAge:           s.CarAge,
		Brand:            s.Brand,
		Model:            s.Model,
	}
}
