// Package bedrock implements the agent capability over the Bedrock Converse
// API with a bounded tool-use loop.
package bedrock

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"diningagent/internal/agent"
	"diningagent/internal/logging"
	"diningagent/internal/observability"
)

const (
	gptOSSMarker  = "openai.gpt-oss"
	gptOSSModelID = "openai.gpt-oss-120b-1:0"
	gptOSSRegion  = "us-west-2"

	defaultTemperature = 0.7
	defaultMaxTurns    = 8
)

// ConverseAPI is the part of the Bedrock runtime client the capability uses.
type ConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// ClientFactory returns a Converse client for region. An empty region means
// the SDK default chain decides.
type ClientFactory func(ctx context.Context, region string) (ConverseAPI, error)

// Config configures the provider.
type Config struct {
	Region      string
	Temperature float32
	MaxTurns    int
	MaxTokens   int32
}

// Option customizes a Provider.
type Option func(*Provider)

// WithClientFactory replaces the SDK client constructor.
func WithClientFactory(factory ClientFactory) Option {
	return func(p *Provider) { p.newClient = factory }
}

// WithLogger sets the provider logger.
func WithLogger(logger logging.Logger) Option {
	return func(p *Provider) { p.logger = logging.OrNop(logger) }
}

// WithTracer sets the span provider.
func WithTracer(tracer *observability.TracerProvider) Option {
	return func(p *Provider) { p.tracer = tracer }
}

// Provider binds model selectors to Bedrock-backed capabilities.
type Provider struct {
	cfg       Config
	newClient ClientFactory
	logger    logging.Logger
	tracer    *observability.TracerProvider
}

var _ agent.CapabilityProvider = (*Provider)(nil)

// NewProvider builds a provider that loads AWS credentials from the default
// chain on each Capability call.
func NewProvider(cfg Config, opts ...Option) *Provider {
	if cfg.Temperature <= 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = defaultMaxTurns
	}
	p := &Provider{
		cfg:       cfg,
		newClient: defaultClientFactory,
		logger:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func defaultClientFactory(ctx context.Context, region string) (ConverseAPI, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return bedrockruntime.NewFromConfig(awsCfg), nil
}

// ResolveModel maps a selector to the model id and region to call. GPT-OSS
// selectors are pinned to the one model and region that serve them.
func ResolveModel(selector, region string) (modelID, resolvedRegion string) {
	if strings.Contains(selector, gptOSSMarker) {
		return gptOSSModelID, gptOSSRegion
	}
	return selector, region
}

// Capability returns a capability for selector.
func (p *Provider) Capability(ctx context.Context, selector string) (agent.Capability, error) {
	modelID, region := ResolveModel(strings.TrimSpace(selector), p.cfg.Region)
	if modelID == "" {
		return nil, fmt.Errorf("empty model id")
	}
	client, err := p.newClient(ctx, region)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("Bound model %s in region %q", modelID, region)
	return &capability{
		client:  client,
		modelID: modelID,
		cfg:     p.cfg,
		logger:  p.logger,
		tracer:  p.tracer,
	}, nil
}

type capability struct {
	client  ConverseAPI
	modelID string
	cfg     Config
	logger  logging.Logger
	tracer  *observability.TracerProvider
}

// Invoke runs the conversation until the model stops asking for tools.
func (c *capability) Invoke(ctx context.Context, inv agent.Invocation) (*agent.Response, error) {
	logger := logging.FromContext(ctx, c.logger)
	toolConfig, byName, err := buildToolConfig(inv.Tools)
	if err != nil {
		return nil, err
	}

	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(c.modelID),
		Messages: []types.Message{{
			Role:    types.ConversationRoleUser,
			Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: inv.Instruction}},
		}},
		InferenceConfig: &types.InferenceConfiguration{Temperature: aws.Float32(c.cfg.Temperature)},
		ToolConfig:      toolConfig,
	}
	if c.cfg.MaxTokens > 0 {
		input.InferenceConfig.MaxTokens = aws.Int32(c.cfg.MaxTokens)
	}
	if inv.Policy != "" {
		input.System = []types.SystemContentBlock{&types.SystemContentBlockMemberText{Value: inv.Policy}}
	}

	for turn := 1; turn <= c.cfg.MaxTurns; turn++ {
		spanCtx, span := c.tracer.StartSpan(ctx, observability.SpanModelConvers, observability.ModelAttrs(c.modelID)...)
		out, err := c.client.Converse(spanCtx, input)
		observability.EndSpan(span, err)
		if err != nil {
			return nil, fmt.Errorf("converse with %s: %w", c.modelID, err)
		}

		msgOut, ok := out.Output.(*types.ConverseOutputMemberMessage)
		if !ok {
			return nil, fmt.Errorf("converse with %s: unexpected output %T", c.modelID, out.Output)
		}
		if out.StopReason != types.StopReasonToolUse {
			return &agent.Response{Message: convertMessage(msgOut.Value)}, nil
		}

		results, count := runToolUses(ctx, msgOut.Value, byName, logger)
		if count == 0 {
			return &agent.Response{Message: convertMessage(msgOut.Value)}, nil
		}
		logger.Info("Turn %d: ran %d tool call(s)", turn, count)
		input.Messages = append(input.Messages, msgOut.Value, results)
	}
	return nil, fmt.Errorf("model %s still requesting tools after %d turns", c.modelID, c.cfg.MaxTurns)
}

func convertMessage(msg types.Message) *agent.Message {
	out := &agent.Message{Role: agent.RoleAssistant, Content: make([]agent.ContentPart, 0, len(msg.Content))}
	if msg.Role != "" {
		out.Role = string(msg.Role)
	}
	for _, block := range msg.Content {
		switch b := block.(type) {
		case *types.ContentBlockMemberText:
			out.Content = append(out.Content, agent.TextPart(b.Value))
		case *types.ContentBlockMemberToolUse:
			out.Content = append(out.Content, agent.ContentPart{Data: map[string]any{
				"toolUse": map[string]any{
					"toolUseId": aws.ToString(b.Value.ToolUseId),
					"name":      aws.ToString(b.Value.Name),
				},
			}})
		default:
			out.Content = append(out.Content, agent.ContentPart{Data: map[string]any{"type": fmt.Sprintf("%T", block)}})
		}
	}
	return out
}
