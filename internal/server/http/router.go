// Package http serves the orchestrator over a small JSON API.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"diningagent/internal/agent"
	"diningagent/internal/logging"
	"diningagent/internal/observability"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "diningagent"

// Invoker handles one inbound request.
type Invoker interface {
	Handle(ctx context.Context, req agent.Request) agent.Message
}

// RouterConfig holds the surface settings.
type RouterConfig struct {
	FrontendURL string
	RateLimit   RateLimitConfig
	Debug       bool
}

// RouterDeps are the collaborators the router needs. Nil fields fall back to
// no-op implementations, except Invoker which is required.
type RouterDeps struct {
	Invoker  Invoker
	Logger   logging.Logger
	Metrics  *observability.Metrics
	Tracer   *observability.TracerProvider
	Gatherer prometheus.Gatherer
}

// NewRouter builds the gin engine with every route and middleware attached.
func NewRouter(cfg RouterConfig, deps RouterDeps) *gin.Engine {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	logger := logging.OrNop(deps.Logger)
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.New(corsConfig(cfg.FrontendURL)))
	engine.Use(RequestIDMiddleware())
	engine.Use(ObservabilityMiddleware(deps.Tracer, deps.Metrics, logger))

	handler := &invocationHandler{invoker: deps.Invoker, logger: logger}
	engine.GET("/ping", handlePing)
	engine.GET("/health", handleHealth)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	engine.POST("/invocations", RateLimitMiddleware(cfg.RateLimit), handler.handle)

	return engine
}

func corsConfig(frontendURL string) cors.Config {
	cfg := cors.DefaultConfig()
	if frontendURL == "" {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = []string{frontendURL}
		cfg.AllowCredentials = true
	}
	cfg.AllowMethods = []string{
		http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
		http.MethodDelete, http.MethodHead, http.MethodOptions,
	}
	cfg.AllowHeaders = []string{"*"}
	cfg.MaxAge = 12 * time.Hour
	return cfg
}
