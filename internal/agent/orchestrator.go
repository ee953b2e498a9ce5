// Package agent routes an instruction to a capability with the dining tools
// bound and returns the sanitized answer.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	agenterrors "diningagent/internal/errors"
	"diningagent/internal/logging"
	"diningagent/internal/observability"
	"diningagent/internal/sanitize"
	"diningagent/internal/tools"
)

// Config carries the orchestrator's fixed settings.
type Config struct {
	DefaultModelID string
	RequestTimeout time.Duration
	Policy         string
	FallbackPolicy string
}

// DefaultConfig returns the stock policy, default model and 60s deadline.
func DefaultConfig() Config {
	return Config{
		DefaultModelID: DefaultModelID,
		RequestTimeout: 60 * time.Second,
		Policy:         PolicyText,
		FallbackPolicy: FallbackPolicyText,
	}
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the orchestrator logger.
func WithLogger(logger logging.Logger) Option {
	return func(o *Orchestrator) { o.logger = logging.OrNop(logger) }
}

// WithTracer sets the span provider.
func WithTracer(tracer *observability.TracerProvider) Option {
	return func(o *Orchestrator) { o.tracer = tracer }
}

// Orchestrator handles one request at a time per call; it keeps no state
// between calls.
type Orchestrator struct {
	cfg      Config
	provider CapabilityProvider
	tools    ToolFactory
	logger   logging.Logger
	tracer   *observability.TracerProvider
}

// New builds an orchestrator. Empty config fields take their defaults.
func New(cfg Config, provider CapabilityProvider, toolFactory ToolFactory, opts ...Option) *Orchestrator {
	def := DefaultConfig()
	if strings.TrimSpace(cfg.DefaultModelID) == "" {
		cfg.DefaultModelID = def.DefaultModelID
	}
	if cfg.Policy == "" {
		cfg.Policy = def.Policy
	}
	if cfg.FallbackPolicy == "" {
		cfg.FallbackPolicy = def.FallbackPolicy
	}
	o := &Orchestrator{
		cfg:      cfg,
		provider: provider,
		tools:    toolFactory,
		logger:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Handle delegates req to the selected capability and returns the sanitized
// assistant message. Failures come back as a message, never as an error.
func (o *Orchestrator) Handle(ctx context.Context, req Request) (msg Message) {
	if o.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.RequestTimeout)
		defer cancel()
	}

	prompt := req.Prompt
	if strings.TrimSpace(prompt) == "" {
		prompt = MissingPromptText
	}
	modelID := strings.TrimSpace(req.ModelID)
	if modelID == "" {
		modelID = o.cfg.DefaultModelID
	}

	ctx, span := o.tracer.StartSpan(ctx, observability.SpanAgentHandle, observability.ModelAttrs(modelID)...)
	logger := logging.FromContext(ctx, o.logger)
	var failure error
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Agent invocation panicked: %v", r)
			failure = fmt.Errorf("%v", r)
			msg = failureMessage(failure)
		}
		observability.EndSpan(span, failure)
	}()

	logger.Info("Processing message with model %s", modelID)

	resp, err := o.invoke(ctx, modelID, prompt, logger)
	if err != nil {
		failure = err
		logger.Error("Agent invocation failed: %v", err)
		return failureMessage(err)
	}
	span.SetAttributes(attribute.String(observability.AttrOutcome, "success"))
	return sanitizeResponse(resp)
}

func (o *Orchestrator) invoke(ctx context.Context, modelID, prompt string, logger logging.Logger) (*Response, error) {
	capability, err := o.provider.Capability(ctx, modelID)
	if err != nil {
		return nil, fmt.Errorf("bind capability %s: %w", modelID, err)
	}

	bound, err := o.bindTools(ctx)
	if err != nil {
		logger.Warn("Binding tools failed, continuing without tools: %v", err)
		return capability.Invoke(ctx, Invocation{Instruction: prompt, Policy: o.cfg.FallbackPolicy})
	}

	resp, err := capability.Invoke(ctx, Invocation{Instruction: prompt, Tools: bound, Policy: o.cfg.Policy})
	if errors.Is(err, ErrToolBinding) {
		logger.Warn("Capability rejected tools, continuing without tools: %v", err)
		return capability.Invoke(ctx, Invocation{Instruction: prompt, Policy: o.cfg.FallbackPolicy})
	}
	return resp, err
}

func (o *Orchestrator) bindTools(ctx context.Context) (bound []tools.Tool, err error) {
	if o.tools == nil {
		return nil, fmt.Errorf("%w: no tool factory configured", ErrToolBinding)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrToolBinding, r)
		}
	}()
	return o.tools(ctx)
}

func failureMessage(err error) Message {
	return Message{
		Role:    RoleAssistant,
		Content: []ContentPart{TextPart("Agent invocation failed: " + agenterrors.FormatForUser(err))},
	}
}

// sanitizeResponse cleans every text part, or the plain text, without
// touching the capability's own values.
func sanitizeResponse(resp *Response) Message {
	if resp == nil {
		return Message{Role: RoleAssistant, Content: []ContentPart{}}
	}
	if resp.Message == nil {
		text := ""
		if resp.Text != nil {
			text = sanitize.Sanitize(*resp.Text)
		}
		return Message{Role: RoleAssistant, Content: []ContentPart{TextPart(text)}}
	}

	role := resp.Message.Role
	if role == "" {
		role = RoleAssistant
	}
	parts := make([]ContentPart, len(resp.Message.Content))
	for i, part := range resp.Message.Content {
		parts[i] = part
		if part.Text != nil {
			cleaned := sanitize.Sanitize(*part.Text)
			parts[i].Text = &cleaned
		}
	}
	return Message{Role: role, Content: parts}
}
