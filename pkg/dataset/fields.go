package dataset

// Field names as they appear in the reference CSV header.
const (
	FieldBrand            = "brand"
	FieldModel            = "model"
	FieldCity             = "city"
	FieldFuelType         = "fuel_type"
	FieldTransmissionType = "transmission_type"
	FieldOwnerType        = "owner_type"
	FieldInsurance        = "insurance"
	FieldBodyType         = "body_type"
	FieldSeats            = "seats"
)

// RequiredFields lists the columns a dataset must carry to back the form.
var RequiredFields = []string{
	FieldBrand,
	FieldModel,
	FieldCity,
	FieldFuelType,
	FieldTransmissionType,
	FieldOwnerType,
	FieldInsurance,
	FieldSeats,
}

// OptionalFields are exposed through Domain when present but never required.
var OptionalFields = []string{
	FieldBodyType,
}

var missingMarkers = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"n/a":  {},
	"NaN":  {},
	"nan":  {},
	"-nan": {},
	"null": {},
	"NULL": {},
	"None": {},
	"<NA>": {},
	"#N/A": {},
}

func isMissing(value string) bool {
	_, ok := missingMarkers[value]
	return ok
}
