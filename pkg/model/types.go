package model

// FieldKind tells renderers which control to draw.
type FieldKind string

const (
	FieldKindSelect FieldKind = "select"
	FieldKindNumber FieldKind = "number"
)

// Option is a single choice of a select field.
type Option struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected,omitempty"`
}

// Field describes one input.
type Field struct {
	Name     string    `json:"name"`
	Label    string    `json:"label"`
	Kind     FieldKind `json:"kind"`
	Value    string    `json:"value"`
	Required bool      `json:"required"`
	Options  []Option  `json:"options,omitempty"`
	// DependsOn names the field whose value filters Options.
	DependsOn string   `json:"depends_on,omitempty"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	Step      float64  `json:"step,omitempty"`
	Integer   bool     `json:"integer,omitempty"`
}

// Section groups fields under a heading.
type Section struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Fields []Field `json:"fields"`
}

// FormModel is the full page model.
type FormModel struct {
	Title    string    `json:"title"`
	Intro    string    `json:"intro"`
	Endpoint string    `json:"endpoint"`
	Method   string    `json:"method"`
	Submit   string    `json:"submit"`
	Sections []Section `json:"sections"`
}

// Field looks a field up by name across sections.
func (m FormModel) Field(name string) (Field, bool) {
	for _, section := range m.Sections {
		for _, field := range section.Fields {
			if field.Name == name {
				return field, true
			}
		}
	}
	return Field{}, false
}

// Fields flattens every section in display order.
func (m FormModel) Fields() []Field {
	var out []Field
	for _, section := range m.Sections {
		out = append(out, section.Fields...)
	}
	return out
}
