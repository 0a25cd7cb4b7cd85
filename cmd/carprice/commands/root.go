package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-carprice"
	"github.com/goliatone/go-carprice/internal/config"
	"github.com/goliatone/go-carprice/internal/observability"
	"github.com/goliatone/go-carprice/pkg/renderers/tui"
)

type rootOptions struct {
	envFile   string
	logLevel  string
	logFormat string
	dataset   string
	predictor string

	out    io.Writer
	errOut io.Writer
	// driver replaces the survey prompts of the tui command.
	driver tui.PromptDriver
}

// exitError ends the process with code once its message, if any, has been
// printed by the command itself.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// Execute runs the CLI against the process arguments and streams.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	if code != 0 {
		return &exitError{code: code}
	}
	return nil
}

// Run executes args and returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(&rootOptions{out: stdout, errOut: stderr})
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var exit *exitError
	switch {
	case errors.As(err, &exit):
		return exit.code
	case carprice.IsDataUnavailable(err):
		fmt.Fprintln(stderr, carprice.MissingFilesMessage)
		fmt.Fprintf(stderr, "cause: %v\n", err)
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return 1
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:           "carprice",
		Short:         "Estimate the resale price of a used car",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.envFile, "env-file", ".env", "dotenv file read before the process environment")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (overrides "+config.KeyLogLevel+")")
	flags.StringVar(&opts.logFormat, "log-format", "", "json or console (overrides "+config.KeyLogFormat+")")
	flags.StringVar(&opts.dataset, "dataset", "", "reference dataset path or URL (overrides "+config.KeyDataset+")")
	flags.StringVar(&opts.predictor, "predictor", "", "model artifact path or URL (overrides "+config.KeyPredictor+")")

	root.AddCommand(
		serveCmd(opts),
		predictCmd(opts),
		tuiCmd(opts),
		optionsCmd(opts),
		lintCmd(opts),
	)
	return root
}

// loadConfig resolves configuration with flag values taking precedence.
func loadConfig(ctx context.Context, opts *rootOptions, optionalPredictor bool) (config.Config, error) {
	overrides := map[string]string{}
	for key, value := range map[string]string{
		config.KeyLogLevel:  opts.logLevel,
		config.KeyLogFormat: opts.logFormat,
		config.KeyDataset:   opts.dataset,
		config.KeyPredictor: opts.predictor,
	} {
		if value != "" {
			overrides[key] = value
		}
	}

	loadOpts := []config.Option{config.WithEnvFile(opts.envFile), config.WithEnvMap(overrides)}
	if optionalPredictor {
		loadOpts = append(loadOpts, config.WithOptionalPredictor())
	}
	return config.Load(ctx, loadOpts...)
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	return observability.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
}

func bootstrap(ctx context.Context, cfg config.Config, logger *zap.Logger, modelsEndpoint string) (*carprice.App, error) {
	return carprice.Bootstrap(ctx, carprice.Settings{
		Dataset:          cfg.Data.Source,
		DatasetTimeout:   cfg.Data.Timeout,
		Predictor:        cfg.Predictor.Target,
		PredictorTimeout: cfg.Predictor.Timeout,
		PingPredictor:    cfg.Predictor.Ping,
		RulesFile:        cfg.Data.RulesFile,
		IntroFile:        cfg.Server.IntroFile,
		ModelsEndpoint:   modelsEndpoint,
		Logger:           logger,
	})
}
