package tools

import (
	"context"
	"fmt"

	"diningagent/internal/logging"
	"diningagent/internal/mcp"
)

// ScrapeToolName is the remote and bound name of the scrape tool.
const ScrapeToolName = "scrape_as_markdown"

// Scrape fetches a page as markdown through the provider.
type Scrape struct {
	caller Caller
	logger logging.Logger
}

// NewScrape builds a scrape adapter over caller.
func NewScrape(caller Caller, logger logging.Logger) *Scrape {
	return &Scrape{caller: caller, logger: logging.OrNop(logger)}
}

func (s *Scrape) Definition() Definition {
	return Definition{
		Name:        ScrapeToolName,
		Description: "Scrape a webpage and return content as markdown.",
		Parameters: ParameterSchema{
			Type: "object",
			Properties: map[string]Property{
				"url": {Type: "string", Description: "Address of the page to scrape."},
			},
			Required: []string{"url"},
		},
	}
}

func (s *Scrape) Execute(ctx context.Context, args map[string]any) string {
	return s.Run(ctx, stringArg(args, "url"))
}

// Run scrapes url. The URL is not validated locally.
func (s *Scrape) Run(ctx context.Context, url string) (out string) {
	logger := logging.FromContext(ctx, s.logger)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Scrape panicked: %v", r)
			out = fmt.Sprintf("Scraping failed: %v", r)
		}
	}()

	if isBlank(url) {
		return "Scraping failed: url is required"
	}

	logger.Info("Tool called: %s(url=%q)", ScrapeToolName, url)
	res := s.caller.Call(ctx, mcp.NewInvocation(ScrapeToolName, map[string]any{"url": url}))
	if !res.OK() {
		return "Scraping failed: " + res.Reason()
	}
	logger.Info("Scrape result: %d characters returned", len([]rune(res.Text())))
	return res.Text()
}
