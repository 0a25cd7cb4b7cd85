package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-carprice"
	"github.com/goliatone/go-carprice/pkg/dataset"
	"github.com/goliatone/go-carprice/pkg/form"
)

func optionsCmd(opts *rootOptions) *cobra.Command {
	var brand string

	cmd := &cobra.Command{
		Use:   "options <field>",
		Short: "List the values a select field accepts",
		Long:  "List the values a select field accepts. Models are listed per brand.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			field := strings.TrimSpace(args[0])
			if field == dataset.FieldModel && strings.TrimSpace(brand) == "" {
				return fmt.Errorf("--brand is required to list models")
			}

			cfg, err := loadConfig(ctx, opts, true)
			if err != nil {
				return err
			}
			ds, err := carprice.LoadDataset(ctx, cfg.Data.Source, cfg.Data.Timeout, nil)
			if err != nil {
				return err
			}
			ctrl, err := form.NewController(ds)
			if err != nil {
				return err
			}

			var values []string
			if field == dataset.FieldModel {
				values = ctrl.ModelOptions(form.State{Brand: strings.TrimSpace(brand)})
			} else if values, err = ctrl.Options(field); err != nil {
				return err
			}
			for _, value := range values {
				fmt.Fprintln(opts.out, value)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&brand, "brand", "", "brand whose models to list")
	return cmd
}
