package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvLookup resolves the value for an environment variable.
type EnvLookup func(string) (string, bool)

// Option customises the loader behaviour.
type Option func(*loadOptions)

type loadOptions struct {
	ctx        context.Context
	envLookup  EnvLookup
	readFile   func(string) ([]byte, error)
	fetch      SecretFetcher
	overrides  Overrides
	configPath string
	dotEnvPath string
}

// WithContext bounds remote lookups made while loading.
func WithContext(ctx context.Context) Option {
	return func(o *loadOptions) {
		o.ctx = ctx
	}
}

// WithEnv supplies a custom environment lookup implementation.
func WithEnv(lookup EnvLookup) Option {
	return func(o *loadOptions) {
		o.envLookup = lookup
	}
}

// WithOverrides applies caller overrides that take highest precedence.
func WithOverrides(overrides Overrides) Option {
	return func(o *loadOptions) {
		o.overrides = overrides
	}
}

// WithConfigPath forces the loader to read a specific YAML file. The file
// must exist.
func WithConfigPath(path string) Option {
	return func(o *loadOptions) {
		o.configPath = path
	}
}

// WithDotEnvPath reads .env values from path instead of ./.env.
func WithDotEnvPath(path string) Option {
	return func(o *loadOptions) {
		o.dotEnvPath = path
	}
}

// WithFileReader injects a custom reader, used primarily for tests.
func WithFileReader(reader func(string) ([]byte, error)) Option {
	return func(o *loadOptions) {
		o.readFile = reader
	}
}

// WithSecretFetcher replaces the Secrets Manager client.
func WithSecretFetcher(fetch SecretFetcher) Option {
	return func(o *loadOptions) {
		o.fetch = fetch
	}
}

// DefaultEnvLookup delegates to os.LookupEnv.
func DefaultEnvLookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// MapLookup turns a map into an EnvLookup.
func MapLookup(values map[string]string) EnvLookup {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

// firstOf returns the first non-empty value across lookups.
func firstOf(key string, lookups ...EnvLookup) string {
	for _, lookup := range lookups {
		if lookup == nil {
			continue
		}
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// Load constructs the configuration by merging defaults, file, .env,
// secret, environment and overrides.
func Load(opts ...Option) (Config, Metadata, error) {
	options := loadOptions{
		ctx:       context.Background(),
		envLookup: DefaultEnvLookup,
		readFile:  os.ReadFile,
		fetch:     fetchAWSSecret,
	}
	for _, opt := range opts {
		opt(&options)
	}

	meta := Metadata{sources: map[string]ValueSource{}, loadedAt: time.Now()}
	cfg := Default()

	dotenv, err := readDotEnv(options)
	if err != nil {
		return Config{}, Metadata{}, err
	}

	if err := applyFile(&cfg, &meta, options, dotenv); err != nil {
		return Config{}, Metadata{}, err
	}

	secret, err := readSecret(&cfg, options, dotenv)
	if err != nil {
		return Config{}, Metadata{}, err
	}

	layers := []struct {
		source ValueSource
		lookup EnvLookup
	}{
		{SourceDotEnv, MapLookup(dotenv)},
		{SourceSecret, MapLookup(secret)},
		{SourceEnv, options.envLookup},
	}
	for _, layer := range layers {
		if err := applyEnv(&cfg, &meta, layer.lookup, layer.source); err != nil {
			return Config{}, Metadata{}, err
		}
	}

	applyOverrides(&cfg, &meta, options.overrides)
	return cfg, meta, nil
}

func readDotEnv(opts loadOptions) (map[string]string, error) {
	path := opts.dotEnvPath
	explicit := path != ""
	if !explicit {
		path = firstOf(EnvDotEnvFile, opts.envLookup)
		explicit = path != ""
	}
	if path == "" {
		path = DefaultDotEnvFile
	}

	data, err := opts.readFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read env file: %w", err)
	}
	values, err := godotenv.UnmarshalBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parse env file %s: %w", path, err)
	}
	return values, nil
}

func applyFile(cfg *Config, meta *Metadata, opts loadOptions, dotenv map[string]string) error {
	path := opts.configPath
	explicit := path != ""
	if !explicit {
		path = firstOf(EnvConfigFile, opts.envLookup, MapLookup(dotenv))
		explicit = path != ""
	}
	if path == "" {
		path = DefaultConfigFile
	}

	data, err := opts.readFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	var keys map[string]any
	if err := yaml.Unmarshal(data, &keys); err == nil {
		for key := range keys {
			meta.sources[key] = SourceFile
		}
	}
	return nil
}

func readSecret(cfg *Config, opts loadOptions, dotenv map[string]string) (map[string]string, error) {
	secretID := firstOf(EnvSecretID, opts.envLookup, MapLookup(dotenv))
	if secretID == "" || opts.fetch == nil {
		return map[string]string{}, nil
	}
	region := firstOf(EnvAWSRegion, opts.envLookup, MapLookup(dotenv))
	if region == "" {
		region = cfg.AWSRegion
	}
	values, err := opts.fetch(opts.ctx, secretID, region)
	if err != nil {
		return nil, fmt.Errorf("load secret %s: %w", secretID, err)
	}
	return values, nil
}

func applyEnv(cfg *Config, meta *Metadata, lookup EnvLookup, source ValueSource) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		if !ok {
			return "", false
		}
		v = strings.TrimSpace(v)
		return v, v != ""
	}
	setString := func(key string, dst *string) {
		if v, ok := get(key); ok {
			*dst = v
			meta.sources[key] = source
		}
	}
	setInt := func(key string, dst *int) error {
		v, ok := get(key)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", key, err)
		}
		*dst = n
		meta.sources[key] = source
		return nil
	}
	setBool := func(key string, dst *bool) error {
		v, ok := get(key)
		if !ok {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", key, err)
		}
		*dst = b
		meta.sources[key] = source
		return nil
	}

	setString(EnvToken, &cfg.BrightDataToken)
	setString(EnvMCPEndpoint, &cfg.MCPEndpoint)
	setString(EnvDefaultModel, &cfg.DefaultModelID)
	setString(EnvAWSRegion, &cfg.AWSRegion)
	setString(EnvFrontendURL, &cfg.FrontendURL)
	setString(EnvLogLevel, &cfg.Observability.Logging.Level)
	setString(EnvLogFormat, &cfg.Observability.Logging.Format)
	setString(EnvOTLPEndpoint, &cfg.Observability.Tracing.OTLPEndpoint)
	setString(EnvServiceName, &cfg.Observability.Tracing.ServiceName)

	for key, dst := range map[string]*int{
		EnvPort:        &cfg.Port,
		EnvToolRetries: &cfg.ToolRetryAttempts,
		EnvRateLimit:   &cfg.RateLimit.RequestsPerMinute,
		EnvRateBurst:   &cfg.RateLimit.Burst,
	} {
		if err := setInt(key, dst); err != nil {
			return err
		}
	}
	if err := setBool(EnvParallelLookup, &cfg.Dining.ParallelLookup); err != nil {
		return err
	}
	if err := setBool(EnvTracing, &cfg.Observability.Tracing.Enabled); err != nil {
		return err
	}

	if v, ok := get(EnvRequestTimeout); ok {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvRequestTimeout, err)
		}
		cfg.RequestTimeout = d
		meta.sources[EnvRequestTimeout] = source
	}
	if v, ok := get(EnvSampleRate); ok {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvSampleRate, err)
		}
		cfg.Observability.Tracing.SampleRate = rate
		meta.sources[EnvSampleRate] = source
	}
	return nil
}

// parseDuration accepts Go duration syntax or a bare number of seconds.
func parseDuration(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}

func applyOverrides(cfg *Config, meta *Metadata, o Overrides) {
	setString := func(key string, src *string, dst *string) {
		if src != nil && strings.TrimSpace(*src) != "" {
			*dst = strings.TrimSpace(*src)
			meta.sources[key] = SourceOverride
		}
	}
	setString(EnvMCPEndpoint, o.MCPEndpoint, &cfg.MCPEndpoint)
	setString(EnvDefaultModel, o.DefaultModelID, &cfg.DefaultModelID)
	setString(EnvAWSRegion, o.AWSRegion, &cfg.AWSRegion)
	setString(EnvFrontendURL, o.FrontendURL, &cfg.FrontendURL)
	setString(EnvLogLevel, o.LogLevel, &cfg.Observability.Logging.Level)
	setString(EnvLogFormat, o.LogFormat, &cfg.Observability.Logging.Format)
	if o.Port != nil && *o.Port > 0 {
		cfg.Port = *o.Port
		meta.sources[EnvPort] = SourceOverride
	}
	if o.RequestTimeout != nil {
		cfg.RequestTimeout = *o.RequestTimeout
		meta.sources[EnvRequestTimeout] = SourceOverride
	}
}
