package agent

import (
	"context"
	"errors"

	"diningagent/internal/tools"
)

// RoleAssistant is the role of every message the orchestrator returns.
const RoleAssistant = "assistant"

// ErrToolBinding marks a capability that could not bind the offered tools.
// The orchestrator retries such invocations without tools.
var ErrToolBinding = errors.New("tool binding failed")

// Request is the inbound invocation payload.
type Request struct {
	Prompt  string `json:"prompt"`
	ModelID string `json:"model_id,omitempty"`
}

// ContentPart is one piece of a structured message. Parts without text
// carry whatever the capability returned in Data.
type ContentPart struct {
	Text *string        `json:"text,omitempty"`
	Data map[string]any `json:"data,omitempty"`
}

// TextPart builds a text-bearing part.
func TextPart(text string) ContentPart {
	return ContentPart{Text: &text}
}

// Message is a role-tagged list of content parts.
type Message struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

// Text joins every text part with newlines.
func (m Message) Text() string {
	var out string
	for _, part := range m.Content {
		if part.Text == nil {
			continue
		}
		if out != "" {
			out += "\n"
		}
		out += *part.Text
	}
	return out
}

// Response is what a capability answers with: either a structured Message
// or plain Text.
type Response struct {
	Message *Message
	Text    *string
}

// Invocation is what the orchestrator hands to a capability.
type Invocation struct {
	Instruction string
	Tools       []tools.Tool
	Policy      string
}

// Capability is the opaque reasoning engine. It decides which tools, if any,
// to run for an instruction.
type Capability interface {
	Invoke(ctx context.Context, inv Invocation) (*Response, error)
}

// CapabilityProvider binds a selector such as a model id to a capability.
type CapabilityProvider interface {
	Capability(ctx context.Context, selector string) (Capability, error)
}

// ToolFactory builds the tools for one request.
type ToolFactory func(ctx context.Context) ([]tools.Tool, error)
