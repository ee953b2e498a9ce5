package tools

import (
	"fmt"

	"diningagent/internal/diningplan"
	"diningagent/internal/logging"
)

// Set is an ordered, name-indexed collection of tools.
type Set struct {
	order  []string
	byName map[string]Tool
}

// NewSet indexes tools by definition name. Duplicate names are an error.
func NewSet(tools ...Tool) (*Set, error) {
	s := &Set{byName: make(map[string]Tool, len(tools))}
	for _, tool := range tools {
		if tool == nil {
			return nil, fmt.Errorf("nil tool")
		}
		name := tool.Definition().Name
		if name == "" {
			return nil, fmt.Errorf("tool without a name")
		}
		if _, exists := s.byName[name]; exists {
			return nil, fmt.Errorf("tool already exists: %s", name)
		}
		s.byName[name] = tool
		s.order = append(s.order, name)
	}
	return s, nil
}

// NewDiningSet wires search, scrape and the dining-plan tool over caller.
func NewDiningSet(caller Caller, cfg diningplan.Config, logger logging.Logger, opts ...diningplan.Option) (*Set, error) {
	logger = logging.OrNop(logger)
	search := NewSearch(caller, logger)
	scrape := NewScrape(caller, logger)
	deriver, err := diningplan.New(cfg, search, scrape, append([]diningplan.Option{diningplan.WithLogger(logger)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("build dining plan deriver: %w", err)
	}
	return NewSet(search, scrape, NewDiningPlan(deriver))
}

// Get returns the tool registered under name.
func (s *Set) Get(name string) (Tool, bool) {
	if s == nil {
		return nil, false
	}
	tool, ok := s.byName[name]
	return tool, ok
}

// Tools returns the tools in registration order.
func (s *Set) Tools() []Tool {
	if s == nil {
		return nil
	}
	out := make([]Tool, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.byName[name])
	}
	return out
}

// Definitions returns every tool definition in registration order.
func (s *Set) Definitions() []Definition {
	tools := s.Tools()
	defs := make([]Definition, 0, len(tools))
	for _, tool := range tools {
		defs = append(defs, tool.Definition())
	}
	return defs
}

// Len reports the number of tools.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}
