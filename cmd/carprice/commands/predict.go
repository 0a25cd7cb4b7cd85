package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-carprice/pkg/dataset"
	"github.com/goliatone/go-carprice/pkg/form"
	"github.com/goliatone/go-carprice/pkg/orchestrator"
	"github.com/goliatone/go-carprice/pkg/renderers/tui"
)

// predictFlags maps flag names onto form fields. Unset flags keep the
// initial selection.
var predictFlags = []struct {
	flag  string
	field string
	usage string
}{
	{"brand", dataset.FieldBrand, "car brand"},
	{"model", dataset.FieldModel, "car model (must belong to the brand)"},
	{"city", dataset.FieldCity, "city of sale"},
	{"car-age", form.FieldCarAge, "car age in years"},
	{"kms-driven", form.FieldKmsDriven, "kilometres driven"},
	{"engine-capacity", form.FieldEngineCapacity, "engine capacity in CC"},
	{"mileage", form.FieldMileage, "mileage in kmpl"},
	{"seats", form.FieldSeats, "number of seats"},
	{"fuel-type", dataset.FieldFuelType, "fuel type"},
	{"transmission", dataset.FieldTransmissionType, "transmission type"},
	{"owner-type", dataset.FieldOwnerType, "owner type"},
	{"insurance", dataset.FieldInsurance, "insurance type"},
}

func predictCmd(opts *rootOptions) *cobra.Command {
	values := make(map[string]*string, len(predictFlags))
	var output string

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Estimate one car's price from flags",
		Example: "  carprice predict --brand Honda --model City --city Pune --car-age 5 \\\n" +
			"    --kms-driven 45000 --engine-capacity 1500 --mileage 18 --seats 5",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, ok := tui.ParseOutputFormat(output)
			if !ok {
				return fmt.Errorf("unknown output format %q (want pretty, json or form)", output)
			}

			ctx := cmd.Context()
			cfg, err := loadConfig(ctx, opts, false)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			app, err := bootstrap(ctx, cfg, logger, "")
			if err != nil {
				return err
			}
			orch := app.Orchestrator

			state, err := orch.Initial()
			if err != nil {
				return err
			}
			submitted := make(map[string]string)
			for _, f := range predictFlags {
				if cmd.Flags().Changed(f.flag) {
					submitted[f.field] = strings.TrimSpace(*values[f.flag])
				}
			}
			state, errs := orch.Apply(state, submitted)
			if len(errs) == 0 {
				if model, ok := submitted[dataset.FieldModel]; ok && state.Model != model {
					if _, err := orch.Controller().SelectField(state, dataset.FieldModel, model); err != nil {
						errs = append(errs, err)
					}
				}
			}

			req := orchestrator.Request{State: state, Errors: errs}
			failed := len(errs) > 0
			if !failed {
				out := orch.Predict(ctx, state)
				req.State = out.State
				req.Outcome = &out
				failed = !out.OK()
			}

			page, err := orch.Model(req.State)
			if err != nil {
				return err
			}
			body, err := tui.New(tui.WithOutputFormat(format)).Render(ctx, page, orch.RenderOptions(req))
			if err != nil {
				return err
			}
			fmt.Fprintln(opts.out, strings.TrimRight(string(body), "\n"))
			if failed {
				return &exitError{code: 1}
			}
			return nil
		},
	}

	for _, f := range predictFlags {
		values[f.flag] = cmd.Flags().String(f.flag, "", f.usage)
	}
	cmd.Flags().StringVarP(&output, "output", "o", string(tui.OutputFormatPrettyText), "output format: pretty, json or form")
	return cmd
}
