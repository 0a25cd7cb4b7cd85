package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-carprice/internal/server"
)

func serveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the estimator form and JSON API over HTTP",
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

			app, err := bootstrap(ctx, cfg, logger, server.ModelsPath)
			if err != nil {
				logger.Error("bootstrap failed", zap.Error(err))
				return err
			}
			router, err := server.NewRouter(app.Orchestrator, app.Dataset, server.WithLogger(logger))
			if err != nil {
				return err
			}

			logger.Info("starting carprice",
				zap.String("env", cfg.Environment),
				zap.String("predictor", cfg.Predictor.Target),
			)
			return server.Run(ctx, server.Config{
				Addr:            cfg.Server.Addr,
				ReadTimeout:     cfg.Server.ReadTimeout,
				WriteTimeout:    cfg.Server.WriteTimeout,
				ShutdownTimeout: cfg.Server.ShutdownTimeout,
			}, router, logger)
		},
	}
}
