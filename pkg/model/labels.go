package model

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/goliatone/go-carprice/pkg/dataset"
	"github.com/goliatone/go-carprice/pkg/form"
)

// DefaultLabels are the display labels of the known fields.
var DefaultLabels = map[string]string{
	dataset.FieldBrand:            "Brand",
	dataset.FieldModel:            "Model",
	dataset.FieldCity:             "City",
	form.FieldCarAge:              "Car Age (in years)",
	form.FieldKmsDriven:           "Kilometres Driven",
	form.FieldEngineCapacity:      "Engine Capacity (CC)",
	form.FieldMileage:             "Mileage (kmpl)",
	form.FieldSeats:               "Number of Seats",
	dataset.FieldFuelType:         "Fuel Type",
	dataset.FieldTransmissionType: "Transmission",
	dataset.FieldOwnerType:        "Owner Type",
	dataset.FieldInsurance:        "Insurance Type",
}

var splitWordsPattern = regexp.MustCompile(`[_\-\s]+`)

// DefaultLabeler converts a field name into a human-friendly label by
// splitting on underscores and dashes and title casing each word.
func DefaultLabeler(name string) string {
	words := splitWordsPattern.Split(strings.TrimSpace(name), -1)
	segments := make([]string, 0, len(words))
	for _, word := range words {
		if word != "" {
			segments = append(segments, word)
		}
	}
	return cases.Title(language.English).String(strings.Join(segments, " "))
}
