package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"diningagent/internal/config"
)

// Flag keys shared between cobra and viper.
const (
	flagConfig    = "config"
	flagEnvFile   = "env-file"
	flagLogLevel  = "log-level"
	flagLogFormat = "log-format"
	flagRegion    = "region"
	flagEndpoint  = "mcp-endpoint"
	flagModel     = "model"
	flagPort      = "port"
	flagTimeout   = "timeout"
	flagFrontend  = "frontend-url"
	flagURL       = "url"
	flagRaw       = "raw"
)

func newRootCommand() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:          "diningagent",
		Short:        "Restaurant discovery and dining-plan assistant",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return v.BindPFlags(cmd.Flags())
		},
	}

	flags := root.PersistentFlags()
	flags.String(flagConfig, "", "YAML config file (default ./"+config.DefaultConfigFile+" if present)")
	flags.String(flagEnvFile, "", "dotenv file (default ./"+config.DefaultDotEnvFile+" if present)")
	flags.String(flagLogLevel, "", "log level: debug, info, warn, error")
	flags.String(flagLogFormat, "", "log format: text or json")
	flags.String(flagRegion, "", "AWS region for the model runtime")
	flags.String(flagEndpoint, "", "remote tool provider SSE endpoint")
	flags.Duration(flagTimeout, 0, "per-request deadline (0 keeps the configured value)")

	root.AddCommand(newServeCommand(v))
	root.AddCommand(newInvokeCommand(v))
	root.AddCommand(newPlanCommand(v))
	return root
}

// loadConfig resolves configuration with the command's flags as overrides.
func loadConfig(v *viper.Viper) (config.Config, error) {
	opts := []config.Option{config.WithOverrides(overridesFrom(v))}
	if path := v.GetString(flagConfig); path != "" {
		opts = append(opts, config.WithConfigPath(path))
	}
	if path := v.GetString(flagEnvFile); path != "" {
		opts = append(opts, config.WithDotEnvPath(path))
	}
	cfg, _, err := config.Load(opts...)
	return cfg, err
}

func overridesFrom(v *viper.Viper) config.Overrides {
	var o config.Overrides
	str := func(key string) *string {
		if s := v.GetString(key); s != "" {
			return &s
		}
		return nil
	}
	o.LogLevel = str(flagLogLevel)
	o.LogFormat = str(flagLogFormat)
	o.AWSRegion = str(flagRegion)
	o.MCPEndpoint = str(flagEndpoint)
	o.DefaultModelID = str(flagModel)
	o.FrontendURL = str(flagFrontend)
	if port := v.GetInt(flagPort); port > 0 {
		o.Port = &port
	}
	if timeout := v.GetDuration(flagTimeout); timeout > 0 {
		o.RequestTimeout = &timeout
	}
	return o
}
