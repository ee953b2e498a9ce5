// Package diningplan turns a restaurant name and optional menu link into a
// dining-plan report. Every path ends in text: a report, a guidance message
// asking for missing input, or a failure sentence.
package diningplan

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"diningagent/internal/logging"
	"diningagent/internal/observability"
)

// Searcher runs a web search and returns its text.
type Searcher interface {
	Run(ctx context.Context, query, engine string) string
}

// Scraper fetches a page and returns its text.
type Scraper interface {
	Run(ctx context.Context, url string) string
}

// Request names the restaurant and, optionally, its menu link.
type Request struct {
	RestaurantName string `json:"restaurant_name"`
	RestaurantURL  string `json:"restaurant_url,omitempty"`
}

// Outcome labels for metrics.
const (
	OutcomeNeedRestaurant  = "need_restaurant"
	OutcomeNeedMenuURL     = "need_menu_url"
	OutcomeMenuUnavailable = "menu_unavailable"
	OutcomeReport          = "report"
	OutcomeError           = "error"
)

// Option customizes a Deriver.
type Option func(*Deriver)

// WithLogger sets the deriver logger.
func WithLogger(logger logging.Logger) Option {
	return func(d *Deriver) { d.logger = logging.OrNop(logger) }
}

// WithMetrics sets the outcome counter.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(d *Deriver) { d.metrics = metrics }
}

// WithTracer sets the span provider.
func WithTracer(tracer *observability.TracerProvider) Option {
	return func(d *Deriver) { d.tracer = tracer }
}

// Deriver runs the discovery, retrieval, jurisdiction and report steps.
// It holds no per-request state and is safe for concurrent use.
type Deriver struct {
	cfg     Config
	search  Searcher
	scrape  Scraper
	logger  logging.Logger
	metrics *observability.Metrics
	tracer  *observability.TracerProvider

	urlPattern *regexp.Regexp
}

// New builds a deriver. Zero fields of cfg take their defaults; an invalid
// URL pattern is an error.
func New(cfg Config, search Searcher, scrape Scraper, opts ...Option) (*Deriver, error) {
	cfg = cfg.withDefaults()
	re, err := cfg.compile()
	if err != nil {
		return nil, err
	}
	d := &Deriver{
		cfg:        cfg,
		search:     search,
		scrape:     scrape,
		logger:     logging.Nop(),
		urlPattern: re,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Config returns the effective configuration.
func (d *Deriver) Config() Config {
	return d.cfg
}

// Derive produces the plan text for req. It never panics and never returns
// an error; cancellation surfaces as a failure sentence.
func (d *Deriver) Derive(ctx context.Context, req Request) (out string) {
	ctx, span := d.tracer.StartSpan(ctx, observability.SpanDiningPlan,
		attribute.String(observability.AttrRestaurant, req.RestaurantName))
	logger := logging.FromContext(ctx, d.logger)
	outcome := OutcomeError

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Dining plan panicked: %v", r)
			out = failedMessage(r)
			outcome = OutcomeError
		}
		span.SetAttributes(attribute.String(observability.AttrOutcome, outcome))
		span.End()
		d.metrics.IncPlanOutcome(outcome)
	}()

	out, outcome = d.derive(ctx, req, logger)
	return out
}

func (d *Deriver) derive(ctx context.Context, req Request, logger logging.Logger) (string, string) {
	name := strings.TrimSpace(req.RestaurantName)
	if name == "" {
		logger.Info("No restaurant given, asking for one")
		return needRestaurantMessage(), OutcomeNeedRestaurant
	}
	logger.Info("Dining plan for %s at %s", PartySize, name)

	url := strings.TrimSpace(req.RestaurantURL)
	if url == "" {
		logger.Info("No URL given, searching for %s website", name)
		searchText := d.search.Run(ctx, name+" menu website", d.cfg.SearchEngine)
		if err := ctx.Err(); err != nil {
			return failedMessage(err), OutcomeError
		}
		candidate, ok := d.pickMenuURL(name, searchText)
		if !ok {
			logger.Warn("No menu URL found for %s", name)
			return needMenuURLMessage(name, prefix(searchText, d.cfg.PreviewLength)), OutcomeNeedMenuURL
		}
		url = candidate
		logger.Info("Found menu URL %s", url)
	}

	content, location, err := d.retrieve(ctx, name, url)
	if err != nil {
		logger.Error("Menu retrieval for %s failed: %v", name, err)
		return failedMessage(err), OutcomeError
	}
	if err := ctx.Err(); err != nil {
		return failedMessage(err), OutcomeError
	}
	contentLength := len([]rune(content))
	logger.Info("Retrieved %d characters of menu content", contentLength)

	if d.unusable(content) {
		logger.Warn("Menu content for %s is unusable", name)
		return menuUnavailableMessage(name), OutcomeMenuUnavailable
	}

	if !d.cfg.ParallelLookup {
		location = d.search.Run(ctx, name+" location address", d.cfg.SearchEngine)
		if err := ctx.Err(); err != nil {
			return failedMessage(err), OutcomeError
		}
	}
	jurisdiction := d.cfg.InferJurisdiction(location)
	logger.Info("Location detected as %s, tax rate %s%%", jurisdiction.Label, formatRate(jurisdiction.Rate))

	return report{
		name:          name,
		url:           url,
		contentLength: contentLength,
		jurisdiction:  jurisdiction,
		preview:       prefix(content, d.cfg.PreviewLength),
	}.String(), OutcomeReport
}

// retrieve scrapes url. With ParallelLookup the location search runs at the
// same time and its text is returned as well; otherwise location is empty.
// A panic in either lookup comes back as err.
func (d *Deriver) retrieve(ctx context.Context, name, url string) (content, location string, err error) {
	if !d.cfg.ParallelLookup {
		return d.scrape.Run(ctx, url), "", nil
	}
	var g errgroup.Group
	g.Go(recovered(func() {
		content = d.scrape.Run(ctx, url)
	}))
	g.Go(recovered(func() {
		location = d.search.Run(ctx, name+" location address", d.cfg.SearchEngine)
	}))
	if err := g.Wait(); err != nil {
		return "", "", err
	}
	return content, location, nil
}

// recovered runs fn on an errgroup goroutine, turning a panic into an error
// so it reaches the caller instead of the runtime.
func recovered(fn func()) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%v", r)
			}
		}()
		fn()
		return nil
	}
}

func (d *Deriver) pickMenuURL(name, searchText string) (string, bool) {
	nameToken := strings.ToLower(strings.ReplaceAll(name, " ", ""))
	keywords := make([]string, 0, len(d.cfg.URLKeywords)+1)
	for _, k := range d.cfg.URLKeywords {
		if k = strings.ToLower(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	keywords = append(keywords, nameToken)

	for _, candidate := range d.urlPattern.FindAllString(searchText, -1) {
		lowered := strings.ToLower(candidate)
		for _, k := range keywords {
			if strings.Contains(lowered, k) {
				return candidate, true
			}
		}
	}
	return "", false
}

func (d *Deriver) unusable(content string) bool {
	return strings.Contains(strings.ToLower(content), "failed") ||
		len([]rune(content)) < d.cfg.MinContentLength
}

// prefix returns the first n characters of s.
func prefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
