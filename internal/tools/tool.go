// Package tools adapts remote provider calls and the dining-plan deriver to a
// uniform text-in, text-out tool surface that a capability can bind.
package tools

import (
	"context"
	"fmt"
	"strings"

	"diningagent/internal/mcp"
)

// Definition describes a tool for the capability.
type Definition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  ParameterSchema `json:"parameters"`
}

// ParameterSchema defines tool parameters (JSON Schema format)
type ParameterSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

// Property defines a single parameter
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Default     any    `json:"default,omitempty"`
	Enum        []any  `json:"enum,omitempty"`
}

// JSONSchema renders the schema as a plain map for encoders that expect one.
func (s ParameterSchema) JSONSchema() map[string]any {
	props := make(map[string]any, len(s.Properties))
	for name, prop := range s.Properties {
		p := map[string]any{
			"type":        prop.Type,
			"description": prop.Description,
		}
		if prop.Default != nil {
			p["default"] = prop.Default
		}
		if len(prop.Enum) > 0 {
			p["enum"] = prop.Enum
		}
		props[name] = p
	}
	schema := map[string]any{
		"type":       s.Type,
		"properties": props,
	}
	if len(s.Required) > 0 {
		required := make([]any, len(s.Required))
		for i, r := range s.Required {
			required[i] = r
		}
		schema["required"] = required
	}
	return schema
}

// Tool is a named operation that always answers with text.
type Tool interface {
	Definition() Definition
	Execute(ctx context.Context, args map[string]any) string
}

// Caller sends one invocation to the remote tool provider.
type Caller interface {
	Call(ctx context.Context, inv mcp.ToolInvocation) mcp.Result
}

func stringArg(args map[string]any, key string) string {
	raw, ok := args[key]
	if !ok || raw == nil {
		return ""
	}
	switch v := raw.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
