package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	serverhttp "diningagent/internal/server/http"
)

func newServeCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the invocation API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.close()

			router := serverhttp.NewRouter(serverhttp.RouterConfig{
				FrontendURL: cfg.FrontendURL,
				RateLimit: serverhttp.RateLimitConfig{
					RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
					Burst:             cfg.RateLimit.Burst,
				},
				Debug: cfg.Observability.Logging.Level == "debug",
			}, serverhttp.RouterDeps{
				Invoker:  a.orchestrator,
				Logger:   a.logger,
				Metrics:  a.metrics,
				Tracer:   a.tracer,
				Gatherer: a.registry,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serverhttp.Serve(ctx, serverhttp.NewServer(cfg.Address(), router, cfg.RequestTimeout), a.logger)
		},
	}
	cmd.Flags().Int(flagPort, 0, "listen port (default from PORT or 8080)")
	cmd.Flags().String(flagModel, "", "default model id")
	cmd.Flags().String(flagFrontend, "", "browser origin allowed by CORS")
	return cmd
}
