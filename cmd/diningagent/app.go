package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"diningagent/internal/agent"
	"diningagent/internal/config"
	"diningagent/internal/diningplan"
	agenterrors "diningagent/internal/errors"
	"diningagent/internal/llm/bedrock"
	"diningagent/internal/logging"
	"diningagent/internal/mcp"
	"diningagent/internal/observability"
	"diningagent/internal/tools"
)

// app holds the long-lived collaborators shared by every command.
type app struct {
	cfg          config.Config
	logger       logging.Logger
	tracer       *observability.TracerProvider
	metrics      *observability.Metrics
	registry     *prometheus.Registry
	client       *mcp.Client
	orchestrator *agent.Orchestrator
}

func newApp(cfg config.Config) (*app, error) {
	obsLogger := observability.NewLogger(observability.LogConfig{
		Level:  cfg.Observability.Logging.Level,
		Format: cfg.Observability.Logging.Format,
		Output: os.Stderr,
	})
	logger := logging.FromObservabilityWithComponent(obsLogger, "diningagent")

	if err := cfg.Validate(); err != nil {
		if !agenterrors.IsConfig(err) {
			return nil, err
		}
		logger.Warn("%v; tool calls will report a configuration failure", err)
	}

	tracer, err := observability.NewTracerProvider(cfg.Observability.Tracing)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.MustNewMetrics(registry)

	client := mcp.NewClient(cfg.MCPConfig(),
		mcp.WithLogger(logging.FromObservabilityWithComponent(obsLogger, "mcp")),
		mcp.WithMetrics(metrics),
		mcp.WithTracer(tracer),
	)

	provider := bedrock.NewProvider(bedrock.Config{Region: cfg.AWSRegion},
		bedrock.WithLogger(logging.FromObservabilityWithComponent(obsLogger, "bedrock")),
		bedrock.WithTracer(tracer),
	)

	toolLogger := logging.FromObservabilityWithComponent(obsLogger, "tools")
	orchestrator := agent.New(cfg.AgentConfig(), provider,
		diningTools(client, cfg.Dining, toolLogger, metrics, tracer),
		agent.WithLogger(logging.FromObservabilityWithComponent(obsLogger, "agent")),
		agent.WithTracer(tracer),
	)

	return &app{
		cfg:          cfg,
		logger:       logger,
		tracer:       tracer,
		metrics:      metrics,
		registry:     registry,
		client:       client,
		orchestrator: orchestrator,
	}, nil
}

// diningTools builds a fresh tool set for every request, so a bad deriver
// configuration surfaces as a binding failure rather than a startup crash.
func diningTools(caller tools.Caller, cfg diningplan.Config, logger logging.Logger, metrics *observability.Metrics, tracer *observability.TracerProvider) agent.ToolFactory {
	return func(ctx context.Context) ([]tools.Tool, error) {
		set, err := tools.NewDiningSet(caller, cfg, logger,
			diningplan.WithMetrics(metrics),
			diningplan.WithTracer(tracer),
		)
		if err != nil {
			return nil, err
		}
		return set.Tools(), nil
	}
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.tracer.Shutdown(ctx); err != nil {
		a.logger.Warn("Tracer shutdown: %v", err)
	}
}
