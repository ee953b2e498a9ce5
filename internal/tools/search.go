package tools

import (
	"context"
	"fmt"

	"diningagent/internal/logging"
	"diningagent/internal/mcp"
)

const (
	// SearchToolName is the remote and bound name of the search tool.
	SearchToolName = "search_engine"
	// DefaultEngine is used when no engine is given.
	DefaultEngine = "google"
)

// Search forwards queries to the provider's search tool.
type Search struct {
	caller Caller
	logger logging.Logger
}

// NewSearch builds a search adapter over caller.
func NewSearch(caller Caller, logger logging.Logger) *Search {
	return &Search{caller: caller, logger: logging.OrNop(logger)}
}

func (s *Search) Definition() Definition {
	return Definition{
		Name:        SearchToolName,
		Description: "Search for information using Google, Bing, or Yandex search engines.",
		Parameters: ParameterSchema{
			Type: "object",
			Properties: map[string]Property{
				"query":  {Type: "string", Description: "Search query text."},
				"engine": {Type: "string", Description: "Search engine: google, bing or yandex.", Default: DefaultEngine},
			},
			Required: []string{"query"},
		},
	}
}

func (s *Search) Execute(ctx context.Context, args map[string]any) string {
	return s.Run(ctx, stringArg(args, "query"), stringArg(args, "engine"))
}

// Run searches with engine, defaulting to google. The engine is passed
// through unchecked. Failures come back as "Search failed: <reason>".
func (s *Search) Run(ctx context.Context, query, engine string) (out string) {
	logger := logging.FromContext(ctx, s.logger)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Search panicked: %v", r)
			out = fmt.Sprintf("Search failed: %v", r)
		}
	}()

	if isBlank(engine) {
		engine = DefaultEngine
	}
	if isBlank(query) {
		return "Search failed: query is required"
	}

	logger.Info("Tool called: %s(query=%q, engine=%q)", SearchToolName, query, engine)
	res := s.caller.Call(ctx, mcp.NewInvocation(SearchToolName, map[string]any{
		"query":  query,
		"engine": engine,
	}))
	if !res.OK() {
		return "Search failed: " + res.Reason()
	}
	logger.Info("Search result: %d characters returned", len([]rune(res.Text())))
	return res.Text()
}
