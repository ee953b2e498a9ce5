// Package config loads the service settings from defaults, an optional YAML
// file, a .env file, an optional AWS Secrets Manager secret, the process
// environment and caller overrides, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"diningagent/internal/agent"
	"diningagent/internal/diningplan"
	agenterrors "diningagent/internal/errors"
	"diningagent/internal/mcp"
	"diningagent/internal/observability"
)

// ValueSource describes where a configuration value originated from.
type ValueSource string

const (
	SourceDefault  ValueSource = "default"
	SourceFile     ValueSource = "file"
	SourceDotEnv   ValueSource = "dotenv"
	SourceSecret   ValueSource = "secret"
	SourceEnv      ValueSource = "environment"
	SourceOverride ValueSource = "override"
)

// Environment keys.
const (
	EnvToken          = mcp.TokenEnvKey
	EnvMCPEndpoint    = "MCP_ENDPOINT"
	EnvDefaultModel   = "DEFAULT_MODEL_ID"
	EnvAWSRegion      = "AWS_REGION"
	EnvFrontendURL    = "FRONTEND_URL"
	EnvPort           = "PORT"
	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvLogLevel       = "LOG_LEVEL"
	EnvLogFormat      = "LOG_FORMAT"
	EnvToolRetries    = "TOOL_RETRY_ATTEMPTS"
	EnvParallelLookup = "DINING_PARALLEL_LOOKUP"
	EnvRateLimit      = "RATE_LIMIT_PER_MINUTE"
	EnvRateBurst      = "RATE_LIMIT_BURST"
	EnvTracing        = "TRACING_ENABLED"
	EnvOTLPEndpoint   = "OTEL_EXPORTER_OTLP_ENDPOINT"
	EnvServiceName    = "OTEL_SERVICE_NAME"
	EnvSampleRate     = "TRACING_SAMPLE_RATE"

	EnvConfigFile = "CONFIG_FILE"
	EnvDotEnvFile = "ENV_FILE"
	EnvSecretID   = "SECRETS_MANAGER_SECRET_ID"
)

const (
	DefaultFrontendURL = "http://localhost:3000"
	DefaultPort        = 8080
	DefaultConfigFile  = "diningagent.yaml"
	DefaultDotEnvFile  = ".env"
)

// Config is the fully resolved service configuration.
type Config struct {
	BrightDataToken   string               `yaml:"brightdata_api_token"`
	MCPEndpoint       string               `yaml:"mcp_endpoint"`
	DefaultModelID    string               `yaml:"default_model_id"`
	AWSRegion         string               `yaml:"aws_region"`
	FrontendURL       string               `yaml:"frontend_url"`
	Port              int                  `yaml:"port"`
	RequestTimeout    time.Duration        `yaml:"request_timeout"`
	ToolRetryAttempts int                  `yaml:"tool_retry_attempts"`
	RateLimit         RateLimitConfig      `yaml:"rate_limit"`
	Observability     observability.Config `yaml:"observability"`
	Dining            diningplan.Config    `yaml:"dining"`
}

// RateLimitConfig bounds requests per client on the HTTP surface. Zero
// values disable limiting.
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
	Burst             int `yaml:"burst"`
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		MCPEndpoint:       mcp.DefaultEndpoint,
		DefaultModelID:    agent.DefaultModelID,
		FrontendURL:       DefaultFrontendURL,
		Port:              DefaultPort,
		RequestTimeout:    60 * time.Second,
		ToolRetryAttempts: agenterrors.DefaultRetryConfig().MaxAttempts,
		RateLimit:         RateLimitConfig{RequestsPerMinute: 60, Burst: 10},
		Observability:     observability.DefaultConfig(),
		Dining:            diningplan.DefaultConfig(),
	}
}

// Validate reports settings the service cannot run with. Malformed values
// are reported first; only a config without them reports a missing
// credential, as a ConfigError keyed by its environment name.
func (c Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("%s %d out of range", EnvPort, c.Port))
	}
	if c.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", EnvRequestTimeout))
	}
	if c.ToolRetryAttempts < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", EnvToolRetries))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	if strings.TrimSpace(c.BrightDataToken) == "" {
		return agenterrors.NewConfigError(EnvToken, "")
	}
	return nil
}

// MCPConfig returns the remote tool client settings.
func (c Config) MCPConfig() mcp.Config {
	retry := agenterrors.DefaultRetryConfig()
	retry.MaxAttempts = c.ToolRetryAttempts
	if c.ToolRetryAttempts == 0 {
		retry = agenterrors.NoRetry()
	}
	return mcp.Config{
		Endpoint: c.MCPEndpoint,
		Token:    c.BrightDataToken,
		Retry:    retry,
	}
}

// AgentConfig returns the orchestrator settings.
func (c Config) AgentConfig() agent.Config {
	cfg := agent.DefaultConfig()
	cfg.DefaultModelID = c.DefaultModelID
	cfg.RequestTimeout = c.RequestTimeout
	return cfg
}

// Address is the listen address for the HTTP server.
func (c Config) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Metadata contains provenance details for loaded configuration.
type Metadata struct {
	sources  map[string]ValueSource
	loadedAt time.Time
}

// Source returns the origin for the given key.
func (m Metadata) Source(key string) ValueSource {
	if m.sources == nil {
		return SourceDefault
	}
	if src, ok := m.sources[key]; ok {
		return src
	}
	return SourceDefault
}

// LoadedAt returns the timestamp when the configuration was constructed.
func (m Metadata) LoadedAt() time.Time {
	return m.loadedAt
}

// Overrides conveys caller-specified values that win over every other source.
type Overrides struct {
	MCPEndpoint    *string
	DefaultModelID *string
	AWSRegion      *string
	FrontendURL    *string
	Port           *int
	RequestTimeout *time.Duration
	LogLevel       *string
	LogFormat      *string
}
