package render

import (
	"errors"
	"strings"

	"github.com/goliatone/go-carprice/pkg/form"
	"github.com/goliatone/go-carprice/pkg/prediction"
)

// ErrorMapping splits errors into field-level and form-level messages.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MapErrors sorts errs by the field they belong to. Field errors from the
// form controller and contract issues from the record builder land on their
// field; everything else is form-level so messages are not lost.
func MapErrors(errs ...error) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}

	for _, err := range errs {
		if err == nil {
			continue
		}

		var fieldErr *form.FieldError
		if errors.As(err, &fieldErr) && fieldErr.Field != "" {
			mapping.Fields[fieldErr.Field] = append(mapping.Fields[fieldErr.Field], fieldErr.Reason)
			continue
		}

		var incomplete *prediction.IncompleteStateError
		if errors.As(err, &incomplete) {
			for _, field := range incomplete.Missing {
				mapping.Fields[field] = append(mapping.Fields[field], "is required")
			}
			for _, issue := range incomplete.Issues {
				if issue.Field == "" {
					mapping.Form = append(mapping.Form, issue.Message)
					continue
				}
				name := formFieldName(issue.Field)
				mapping.Fields[name] = append(mapping.Fields[name], issue.Message)
			}
			continue
		}

		mapping.Form = append(mapping.Form, err.Error())
	}

	for field, messages := range mapping.Fields {
		mapping.Fields[field] = normalizeMessages(messages)
	}
	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

// MergeFormErrors concatenates and normalises multiple form-level error
// slices, trimming whitespace and removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// formFieldName maps record wire names back onto form field names.
func formFieldName(wire string) string {
	if wire == prediction.FieldMileageNumeric {
		return form.FieldMileage
	}
	return wire
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
