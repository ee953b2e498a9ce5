package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecordToolCalls(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := MustNewMetrics(reg)

	m.ObserveToolCall("search_engine", "success", 120*time.Millisecond)
	m.ObserveToolCall("search_engine", "transport", time.Second)
	m.IncPlanOutcome("report")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ToolCallCounter().WithLabelValues("search_engine", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ToolCallCounter().WithLabelValues("search_engine", "transport")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PlanOutcomeCounter().WithLabelValues("report")))
}

func TestMustNewMetricsReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := MustNewMetrics(reg)
	second := MustNewMetrics(reg)

	first.IncHTTPRequest("/ping", "200")
	second.IncHTTPRequest("/ping", "200")

	assert.Equal(t, 2.0, testutil.ToFloat64(first.HTTPRequestCounter().WithLabelValues("/ping", "200")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveToolCall("x", "success", 0)
	m.IncPlanOutcome("report")
	m.IncHTTPRequest("/", "200")
}
