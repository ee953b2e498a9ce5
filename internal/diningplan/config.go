package diningplan

import (
	"fmt"
	"regexp"
	"strings"
)

// PartySize is fixed for every plan.
const PartySize = "2 adults and 1 kid"

// Config holds the data tables and thresholds the deriver works from.
type Config struct {
	// URLPattern extracts candidate links from search text.
	URLPattern string `yaml:"url_pattern"`
	// URLKeywords mark a candidate as a menu link. The restaurant name with
	// spaces removed is always added.
	URLKeywords []string `yaml:"url_keywords"`
	// Gazetteer lists place names of the target jurisdiction.
	Gazetteer []string `yaml:"gazetteer"`

	// Rates are percentages; nil means the stock rate, so 0 is a valid rate.
	// An empty label is derived from its rate.
	TargetRate  *float64 `yaml:"target_rate"`
	TargetLabel string   `yaml:"target_label"`
	OtherRate   *float64 `yaml:"other_rate"`
	OtherLabel  string   `yaml:"other_label"`

	PreviewLength    int    `yaml:"preview_length"`
	MinContentLength int    `yaml:"min_content_length"`
	SearchEngine     string `yaml:"search_engine"`

	// ParallelLookup runs the location search alongside the scrape.
	ParallelLookup bool `yaml:"parallel_lookup"`
}

// DefaultGazetteer is the Canadian province and city list.
func DefaultGazetteer() []string {
	return []string{
		"canada", "ontario", "quebec", "british columbia", "alberta",
		"manitoba", "saskatchewan", "nova scotia", "new brunswick",
		"toronto", "vancouver", "montreal", "calgary", "ottawa",
		"mississauga", "winnipeg", "edmonton", "hamilton", "etobicoke",
	}
}

// Stock tax rates in percent.
const (
	DefaultTargetRate = 13.0
	DefaultOtherRate  = 8.5
)

// Rate returns a pointer to v for Config rate fields.
func Rate(v float64) *float64 {
	return &v
}

// DefaultConfig returns the stock tables: Canada at 13% HST, elsewhere 8.5%.
// Labels are left empty so they follow whatever rate ends up configured.
func DefaultConfig() Config {
	return Config{
		URLPattern:       `https?://[^\s<>"]+`,
		URLKeywords:      []string{"menu", "food"},
		Gazetteer:        DefaultGazetteer(),
		TargetRate:       Rate(DefaultTargetRate),
		OtherRate:        Rate(DefaultOtherRate),
		PreviewLength:    500,
		MinContentLength: 100,
		SearchEngine:     "google",
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if strings.TrimSpace(c.URLPattern) == "" {
		c.URLPattern = def.URLPattern
	}
	if len(c.URLKeywords) == 0 {
		c.URLKeywords = def.URLKeywords
	}
	if len(c.Gazetteer) == 0 {
		c.Gazetteer = def.Gazetteer
	}
	if c.TargetRate == nil {
		c.TargetRate = def.TargetRate
	}
	if c.TargetLabel == "" {
		c.TargetLabel = fmt.Sprintf("Canada (%s%% HST)", formatRate(*c.TargetRate))
	}
	if c.OtherRate == nil {
		c.OtherRate = def.OtherRate
	}
	if c.OtherLabel == "" {
		c.OtherLabel = fmt.Sprintf("US (%s%% tax)", formatRate(*c.OtherRate))
	}
	if c.PreviewLength <= 0 {
		c.PreviewLength = def.PreviewLength
	}
	if c.MinContentLength <= 0 {
		c.MinContentLength = def.MinContentLength
	}
	if c.SearchEngine == "" {
		c.SearchEngine = def.SearchEngine
	}
	return c
}

func (c Config) compile() (*regexp.Regexp, error) {
	if *c.TargetRate < 0 || *c.OtherRate < 0 {
		return nil, fmt.Errorf("tax rates must not be negative")
	}
	re, err := regexp.Compile(c.URLPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid url pattern %q: %w", c.URLPattern, err)
	}
	return re, nil
}

// Jurisdiction is the tax classification inferred from location text.
type Jurisdiction struct {
	Target bool
	Rate   float64
	Label  string
}

// InferJurisdiction matches lower-cased text against the gazetteer. It is a
// keyword heuristic, not a geocoder.
func (c Config) InferJurisdiction(text string) Jurisdiction {
	c = c.withDefaults()
	lowered := strings.ToLower(text)
	for _, term := range c.Gazetteer {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" && strings.Contains(lowered, term) {
			return Jurisdiction{Target: true, Rate: *c.TargetRate, Label: c.TargetLabel}
		}
	}
	return Jurisdiction{Rate: *c.OtherRate, Label: c.OtherLabel}
}
