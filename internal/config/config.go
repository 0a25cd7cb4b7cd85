// Package config loads runtime configuration from a .env file, the process
// environment and explicit overrides, in increasing order of precedence.
package config

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile          = ".env"
	defaultAddr             = ":8080"
	defaultEnvironment      = "development"
	defaultPredictorTimeout = 5 * time.Second
	defaultDatasetTimeout   = 30 * time.Second
	defaultShutdownTimeout  = 10 * time.Second
	defaultReadTimeout      = 15 * time.Second
	defaultWriteTimeout     = 30 * time.Second
	defaultLogLevel         = "info"
	defaultLogFormat        = "json"
)

// Environment keys.
const (
	KeyAddr             = "CARPRICE_ADDR"
	KeyEnvironment      = "CARPRICE_ENV"
	KeyDataset          = "CARPRICE_DATASET"
	KeyDatasetTimeout   = "CARPRICE_DATASET_TIMEOUT"
	KeyPredictor        = "CARPRICE_PREDICTOR"
	KeyPredictorTimeout = "CARPRICE_PREDICTOR_TIMEOUT"
	KeyPingPredictor    = "CARPRICE_PING_PREDICTOR"
	KeyRulesFile        = "CARPRICE_RULES_FILE"
	KeyIntroFile        = "CARPRICE_INTRO_FILE"
	KeyShutdownTimeout  = "CARPRICE_SHUTDOWN_TIMEOUT"
	KeyReadTimeout      = "CARPRICE_READ_TIMEOUT"
	KeyWriteTimeout     = "CARPRICE_WRITE_TIMEOUT"
	KeyLogLevel         = "LOG_LEVEL"
	KeyLogFormat        = "LOG_FORMAT"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Environment string
	Server      ServerConfig
	Data        DataConfig
	Predictor   PredictorConfig
	Logging     LoggingConfig
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	IntroFile       string
}

// DataConfig locates the reference dataset and optional rule overrides.
type DataConfig struct {
	// Source is a file path or an http(s) URL.
	Source    string
	Timeout   time.Duration
	RulesFile string
}

// PredictorConfig selects the model backend.
type PredictorConfig struct {
	// Target is an artifact path, a file:// URL or an http(s) base URL.
	Target  string
	Timeout time.Duration
	Ping    bool
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level  string
	Format string
}

// Development reports whether the environment is a development one.
func (c Config) Development() bool {
	switch strings.ToLower(c.Environment) {
	case "development", "dev", "local":
		return true
	}
	return false
}

// ValidationError is returned when required configuration is missing or
// invalid. It lists every problem found.
type ValidationError struct {
	fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing or invalid keys.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option configures Load.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile           string
	envMap            map[string]string
	useSystemEnv      bool
	optionalPredictor bool
}

// WithEnvFile sets the dotenv path. Empty disables it.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap supplies overrides that win over every other source.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv ignores the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// WithOptionalPredictor skips the predictor requirement, for commands that
// only read the dataset.
func WithOptionalPredictor() Option {
	return func(o *loaderOptions) {
		o.optionalPredictor = true
	}
}

// Load resolves and validates the configuration.
func Load(ctx context.Context, opts ...Option) (Config, error) {
	if err := ctx.Err(); err != nil {
		return Config{}, err
	}
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if value, ok := dotEnvValues[key]; ok {
			return value, true
		}
		return "", false
	}

	var invalid []string
	duration := func(key string, fallback time.Duration) time.Duration {
		d, ok := durationWithDefault(lookup, key, fallback)
		if !ok {
			invalid = append(invalid, key)
		}
		return d
	}
	boolean := func(key string, fallback bool) bool {
		b, ok := boolWithDefault(lookup, key, fallback)
		if !ok {
			invalid = append(invalid, key)
		}
		return b
	}

	cfg := Config{
		Environment: strings.ToLower(stringWithDefault(lookup, KeyEnvironment, defaultEnvironment)),
		Server: ServerConfig{
			Addr:            stringWithDefault(lookup, KeyAddr, defaultAddr),
			ReadTimeout:     duration(KeyReadTimeout, defaultReadTimeout),
			WriteTimeout:    duration(KeyWriteTimeout, defaultWriteTimeout),
			ShutdownTimeout: duration(KeyShutdownTimeout, defaultShutdownTimeout),
			IntroFile:       stringWithDefault(lookup, KeyIntroFile, ""),
		},
		Data: DataConfig{
			Source:    stringWithDefault(lookup, KeyDataset, ""),
			Timeout:   duration(KeyDatasetTimeout, defaultDatasetTimeout),
			RulesFile: stringWithDefault(lookup, KeyRulesFile, ""),
		},
		Predictor: PredictorConfig{
			Target:  stringWithDefault(lookup, KeyPredictor, ""),
			Timeout: duration(KeyPredictorTimeout, defaultPredictorTimeout),
			Ping:    boolean(KeyPingPredictor, false),
		},
		Logging: LoggingConfig{
			Level:  strings.ToLower(stringWithDefault(lookup, KeyLogLevel, defaultLogLevel)),
			Format: strings.ToLower(stringWithDefault(lookup, KeyLogFormat, defaultLogFormat)),
		},
	}

	if err := validateConfig(cfg, options, invalid); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config, options loaderOptions, invalid []string) error {
	problems := append([]string{}, invalid...)

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		problems = append(problems, KeyAddr)
	}
	if !validSource(cfg.Data.Source) {
		problems = append(problems, KeyDataset)
	}
	if !options.optionalPredictor && !validSource(cfg.Predictor.Target) {
		problems = append(problems, KeyPredictor)
	}
	if cfg.Predictor.Timeout <= 0 && !contains(problems, KeyPredictorTimeout) {
		problems = append(problems, KeyPredictorTimeout)
	}
	switch cfg.Logging.Format {
	case "json", "console":
	default:
		problems = append(problems, KeyLogFormat)
	}

	if len(problems) > 0 {
		return &ValidationError{fields: problems}
	}
	return nil
}

func validSource(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	if !strings.Contains(raw, "://") {
		return true
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https":
		return u.Host != ""
	case "file":
		return u.Path != ""
	}
	return false
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		values[key] = strings.Trim(strings.TrimSpace(value), "\"'")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) (time.Duration, bool) {
	value, ok := lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback, true
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback, false
	}
	return d, true
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) (bool, bool) {
	value, ok := lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback, true
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "on":
		return true, true
	case "false", "0", "no", "off":
		return false, true
	}
	if parsed, err := strconv.ParseBool(value); err == nil {
		return parsed, true
	}
	return fallback, false
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
