package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors for tool calls, dining-plan outcomes
// and inbound HTTP requests.
type Metrics struct {
	toolCalls    *prometheus.CounterVec
	toolLatency  *prometheus.HistogramVec
	planOutcomes *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
}

// MustNewMetrics constructs a Metrics instance using the provided registerer.
// Collectors that are already registered are reused; any other registration
// error panics.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		toolCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "diningagent",
				Name:      "tool_calls_total",
				Help:      "Remote tool calls by tool name and outcome.",
			},
			[]string{"tool", "outcome"},
		),
		toolLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "diningagent",
				Name:      "tool_call_duration_seconds",
				Help:      "Wall time of remote tool calls including retries.",
				Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40},
			},
			[]string{"tool"},
		),
		planOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "diningagent",
				Name:      "dining_plan_outcomes_total",
				Help:      "Dining-plan derivations by terminal outcome.",
			},
			[]string{"outcome"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "diningagent",
				Name:      "http_requests_total",
				Help:      "Inbound HTTP requests by route and status code.",
			},
			[]string{"route", "code"},
		),
	}

	m.toolCalls = registerCounterVec(reg, m.toolCalls)
	m.planOutcomes = registerCounterVec(reg, m.planOutcomes)
	m.httpRequests = registerCounterVec(reg, m.httpRequests)
	if err := reg.Register(m.toolLatency); err != nil {
		already, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			panic(err)
		}
		m.toolLatency = already.ExistingCollector.(*prometheus.HistogramVec)
	}
	return m
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec) *prometheus.CounterVec {
	if err := reg.Register(vec); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return already.ExistingCollector.(*prometheus.CounterVec)
		}
		panic(err)
	}
	return vec
}

// ObserveToolCall records one remote tool call.
func (m *Metrics) ObserveToolCall(tool, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.toolCalls.WithLabelValues(tool, outcome).Inc()
	m.toolLatency.WithLabelValues(tool).Observe(duration.Seconds())
}

// IncPlanOutcome counts a dining-plan derivation outcome.
func (m *Metrics) IncPlanOutcome(outcome string) {
	if m == nil {
		return
	}
	m.planOutcomes.WithLabelValues(outcome).Inc()
}

// IncHTTPRequest counts an inbound request.
func (m *Metrics) IncHTTPRequest(route, code string) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, code).Inc()
}

// ToolCallCounter exposes the tool call counter for assertions.
func (m *Metrics) ToolCallCounter() *prometheus.CounterVec { return m.toolCalls }

// PlanOutcomeCounter exposes the plan outcome counter for assertions.
func (m *Metrics) PlanOutcomeCounter() *prometheus.CounterVec { return m.planOutcomes }

// HTTPRequestCounter exposes the request counter for assertions.
func (m *Metrics) HTTPRequestCounter() *prometheus.CounterVec { return m.httpRequests }
