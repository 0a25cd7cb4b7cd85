package commands

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-carprice/pkg/renderers/tui"
)

func tuiCmd(opts *rootOptions) *cobra.Command {
	var maxAttempts int

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Fill in the form interactively and estimate prices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			driver := opts.driver
			if driver == nil {
				driver = tui.NewSurveyDriver(opts.out)
			}
			session, err := tui.NewSession(app.Orchestrator,
				tui.WithPromptDriver(driver),
				tui.WithMaxAttempts(maxAttempts),
			)
			if err != nil {
				return err
			}
			_, err = session.Run(ctx)
			return err
		},
	}
	cmd.Flags().IntVar(&maxAttempts, "max-attempts", 0, "give up after this many invalid answers to one question (0 = never)")
	return cmd
}
