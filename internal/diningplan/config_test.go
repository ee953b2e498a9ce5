package diningplan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferJurisdiction(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		text     string
		target   bool
		rate     float64
		expected string
	}{
		{name: "toronto", text: "123 Queen St W, Toronto, ON M5H 2M9", target: true, rate: 13, expected: "Canada (13% HST)"},
		{name: "mixed case province", text: "Located in BRITISH COLUMBIA", target: true, rate: 13, expected: "Canada (13% HST)"},
		{name: "etobicoke", text: "Etobicoke plaza", target: true, rate: 13, expected: "Canada (13% HST)"},
		{name: "no gazetteer terms", text: "500 Main St, Boston, MA", target: false, rate: 8.5, expected: "US (8.5% tax)"},
		{name: "empty text", text: "", target: false, rate: 8.5, expected: "US (8.5% tax)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cfg.InferJurisdiction(tt.text)
			assert.Equal(t, tt.target, got.Target)
			assert.Equal(t, tt.rate, got.Rate)
			assert.Equal(t, tt.expected, got.Label)
		})
	}
}

func TestCustomGazetteer(t *testing.T) {
	cfg := Config{
		Gazetteer:   []string{"Austin"},
		TargetRate:  Rate(8.25),
		TargetLabel: "Texas (8.25% tax)",
	}.withDefaults()

	assert.Equal(t, "Texas (8.25% tax)", cfg.InferJurisdiction("downtown austin").Label)
	assert.False(t, cfg.InferJurisdiction("Toronto").Target)
}

func TestWithDefaultsFillsZeroFields(t *testing.T) {
	cfg := Config{PreviewLength: 200}.withDefaults()
	def := DefaultConfig()

	assert.Equal(t, 200, cfg.PreviewLength)
	assert.Equal(t, def.MinContentLength, cfg.MinContentLength)
	assert.Equal(t, def.URLPattern, cfg.URLPattern)
	assert.Equal(t, def.Gazetteer, cfg.Gazetteer)
	assert.Equal(t, "google", cfg.SearchEngine)
}

func TestZeroRateIsKept(t *testing.T) {
	cfg := Config{OtherRate: Rate(0)}.withDefaults()

	got := cfg.InferJurisdiction("Portland, Oregon")
	assert.Equal(t, 0.0, got.Rate)
	assert.Equal(t, "US (0% tax)", got.Label)
}

func TestLabelFollowsOverriddenRate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TargetRate = Rate(15)
	cfg = cfg.withDefaults()

	got := cfg.InferJurisdiction("Halifax, Nova Scotia")
	assert.Equal(t, 15.0, got.Rate)
	assert.Equal(t, "Canada (15% HST)", got.Label)
	assert.Equal(t, "US (8.5% tax)", cfg.InferJurisdiction("Boston").Label)
}

func TestNegativeRateRejected(t *testing.T) {
	_, err := New(Config{TargetRate: Rate(-1)}, &stubSearcher{}, &stubScraper{})
	assert.ErrorContains(t, err, "negative")
}

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "13", formatRate(13))
	assert.Equal(t, "8.5", formatRate(8.5))
}
