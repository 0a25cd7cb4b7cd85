package commands

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-carprice/pkg/form"
	"github.com/goliatone/go-carprice/pkg/rules"
)

type violation struct {
	file     string
	location string
	message  string
}

// errViolations is returned after violations were printed.
var errViolations = &exitError{code: 1}

func lintCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lint <rules file> [more...]",
		Short: "Check rules files before pointing CARPRICE_RULES_FILE at them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, paths []string) error {
			var violations []violation
			for _, path := range paths {
				linted, err := lintFile(path)
				if err != nil {
					return fmt.Errorf("lint %s: %w", path, err)
				}
				violations = append(violations, linted...)
			}
			if len(violations) == 0 {
				fmt.Fprintf(opts.out, "%d file(s) ok\n", len(paths))
				return nil
			}
			reportViolations(opts.errOut, violations)
			return errViolations
		},
	}
}

func lintFile(path string) ([]violation, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	parsed, err := rules.Parse(raw)
	if err != nil {
		return []violation{{file: path, location: "document", message: err.Error()}}, nil
	}

	evaluator := rules.NewEvaluator()
	var result []violation
	for i, rule := range parsed {
		location := formatLocation([]string{"rules", strconv.Itoa(i), rule.Field})
		if !supportedField(rule.Field) {
			message := fmt.Sprintf("unsupported field %q (supported: %s)", rule.Field, strings.Join(form.NumericFields, ", "))
			if rule.Field == "mileage_numeric" {
				message += "; rules use the form name mileage"
			}
			result = append(result, violation{file: path, location: location, message: message})
			continue
		}
		if _, err := evaluator.Eval(rule, map[string]any{"field": rule.Field, "value": 0}); err != nil {
			result = append(result, violation{
				file:     path,
				location: location,
				message:  fmt.Sprintf("logic cannot be evaluated: %v", err),
			})
		}
	}
	return result, nil
}

func supportedField(field string) bool {
	for _, name := range form.NumericFields {
		if name == field {
			return true
		}
	}
	return false
}

func reportViolations(w io.Writer, violations []violation) {
	sort.Slice(violations, func(i, j int) bool {
		if violations[i].file == violations[j].file {
			if violations[i].location == violations[j].location {
				return violations[i].message < violations[j].message
			}
			return violations[i].location < violations[j].location
		}
		return violations[i].file < violations[j].file
	})
	for _, v := range violations {
		fmt.Fprintf(w, "%s: %s -> %s\n", v.file, v.location, v.message)
	}
}

func formatLocation(path []string) string {
	return strings.Join(path, " > ")
}
