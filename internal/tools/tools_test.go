package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diningagent/internal/diningplan"
	"diningagent/internal/mcp"
)

type stubCaller struct {
	results map[string]mcp.Result
	panic   bool
	calls   []mcp.ToolInvocation
}

func (c *stubCaller) Call(ctx context.Context, inv mcp.ToolInvocation) mcp.Result {
	c.calls = append(c.calls, inv)
	if c.panic {
		panic("session closed unexpectedly")
	}
	if res, ok := c.results[inv.Name]; ok {
		return res
	}
	return mcp.Success(mcp.NoResultText)
}

func TestSearchForwardsQueryAndEngine(t *testing.T) {
	caller := &stubCaller{results: map[string]mcp.Result{SearchToolName: mcp.Success("results")}}
	search := NewSearch(caller, nil)

	assert.Equal(t, "results", search.Run(context.Background(), "hakka etobicoke", "bing"))
	require.Len(t, caller.calls, 1)
	assert.Equal(t, SearchToolName, caller.calls[0].Name)
	assert.Equal(t, map[string]any{"query": "hakka etobicoke", "engine": "bing"}, caller.calls[0].Arguments)
}

func TestSearchDefaultsEngine(t *testing.T) {
	caller := &stubCaller{}
	NewSearch(caller, nil).Execute(context.Background(), map[string]any{"query": "pizza"})

	require.Len(t, caller.calls, 1)
	assert.Equal(t, "google", caller.calls[0].Arguments["engine"])
}

func TestSearchPassesUnknownEngineThrough(t *testing.T) {
	caller := &stubCaller{}
	NewSearch(caller, nil).Run(context.Background(), "pizza", "duckduckgo")

	require.Len(t, caller.calls, 1)
	assert.Equal(t, "duckduckgo", caller.calls[0].Arguments["engine"])
}

func TestAdaptersCollapseFailures(t *testing.T) {
	caller := &stubCaller{results: map[string]mcp.Result{
		SearchToolName: mcp.Failure(mcp.FailureConfig, "BRIGHTDATA_API_TOKEN environment variable not set"),
		ScrapeToolName: mcp.Failure(mcp.FailureRemote, "invalid url"),
	}}

	assert.Equal(t, "Search failed: BRIGHTDATA_API_TOKEN environment variable not set",
		NewSearch(caller, nil).Run(context.Background(), "pizza", ""))
	assert.Equal(t, "Scraping failed: invalid url",
		NewScrape(caller, nil).Run(context.Background(), "not a url"))
}

func TestAdaptersRecoverPanics(t *testing.T) {
	caller := &stubCaller{panic: true}

	assert.Equal(t, "Search failed: session closed unexpectedly", NewSearch(caller, nil).Run(context.Background(), "q", ""))
	assert.Equal(t, "Scraping failed: session closed unexpectedly", NewScrape(caller, nil).Run(context.Background(), "https://x"))
}

func TestAdaptersRejectMissingArguments(t *testing.T) {
	caller := &stubCaller{}

	assert.Equal(t, "Search failed: query is required", NewSearch(caller, nil).Execute(context.Background(), map[string]any{}))
	assert.Equal(t, "Scraping failed: url is required", NewScrape(caller, nil).Execute(context.Background(), map[string]any{"url": "  "}))
	assert.Empty(t, caller.calls)
}

func TestScrapeDoesNotValidateURL(t *testing.T) {
	caller := &stubCaller{results: map[string]mcp.Result{ScrapeToolName: mcp.Success("# page")}}

	assert.Equal(t, "# page", NewScrape(caller, nil).Run(context.Background(), "ht!tp:/broken"))
	require.Len(t, caller.calls, 1)
	assert.Equal(t, map[string]any{"url": "ht!tp:/broken"}, caller.calls[0].Arguments)
}

func TestDiningSetRunsDeriverThroughAdapters(t *testing.T) {
	menu := strings.Repeat("Margherita pizza with basil. ", 10)
	caller := &stubCaller{results: map[string]mcp.Result{
		ScrapeToolName: mcp.Success(menu),
		SearchToolName: mcp.Success("1 Main St, Ottawa, Ontario"),
	}}
	set, err := NewDiningSet(caller, diningplan.Config{}, nil)
	require.NoError(t, err)

	tool, ok := set.Get(DiningPlanToolName)
	require.True(t, ok)

	out := tool.Execute(context.Background(), map[string]any{
		"restaurant_name": "Pizza Nova",
		"restaurant_url":  "https://pizzanova.com/menu",
	})

	assert.Contains(t, out, "**Tax Rate:** 13%")
	require.Len(t, caller.calls, 2)
	assert.Equal(t, ScrapeToolName, caller.calls[0].Name)
	assert.Equal(t, SearchToolName, caller.calls[1].Name)
	assert.Equal(t, "Pizza Nova location address", caller.calls[1].Arguments["query"])
}

func TestDiningSetMissingTokenFlowsAsText(t *testing.T) {
	caller := &stubCaller{results: map[string]mcp.Result{
		SearchToolName: mcp.Failure(mcp.FailureConfig, "BRIGHTDATA_API_TOKEN environment variable not set"),
	}}
	set, err := NewDiningSet(caller, diningplan.Config{}, nil)
	require.NoError(t, err)

	tool, _ := set.Get(DiningPlanToolName)
	out := tool.Execute(context.Background(), map[string]any{"restaurant_name": "Scaddabush"})

	assert.Contains(t, out, "need a direct menu URL")
	assert.Contains(t, out, "Search failed: BRIGHTDATA_API_TOKEN environment variable not set...")
}

func TestSetOrderAndDuplicates(t *testing.T) {
	caller := &stubCaller{}
	set, err := NewDiningSet(caller, diningplan.Config{}, nil)
	require.NoError(t, err)

	var names []string
	for _, def := range set.Definitions() {
		names = append(names, def.Name)
	}
	assert.Equal(t, []string{SearchToolName, ScrapeToolName, DiningPlanToolName}, names)
	assert.Equal(t, 3, set.Len())

	_, err = NewSet(NewSearch(caller, nil), NewSearch(caller, nil))
	assert.Error(t, err)
}

func TestParameterSchemaJSONSchema(t *testing.T) {
	schema := NewSearch(&stubCaller{}, nil).Definition().Parameters.JSONSchema()

	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []any{"query"}, schema["required"])
	props := schema["properties"].(map[string]any)
	engine := props["engine"].(map[string]any)
	assert.Equal(t, "google", engine["default"])
}
