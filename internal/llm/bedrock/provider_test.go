package bedrock

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diningagent/internal/agent"
	"diningagent/internal/tools"
)

type fakeConverse struct {
	outputs []*bedrockruntime.ConverseOutput
	err     error
	inputs  []*bedrockruntime.ConverseInput
}

func (f *fakeConverse) Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	snapshot := *params
	snapshot.Messages = append([]types.Message(nil), params.Messages...)
	f.inputs = append(f.inputs, &snapshot)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.outputs) == 0 {
		return nil, errors.New("no scripted output")
	}
	out := f.outputs[0]
	f.outputs = f.outputs[1:]
	return out, nil
}

type recordingTool struct {
	name  string
	reply string
	args  []map[string]any
}

func (t *recordingTool) Definition() tools.Definition {
	return tools.Definition{
		Name:        t.name,
		Description: "test tool",
		Parameters: tools.ParameterSchema{
			Type:       "object",
			Properties: map[string]tools.Property{"query": {Type: "string", Description: "q"}},
			Required:   []string{"query"},
		},
	}
}

func (t *recordingTool) Execute(ctx context.Context, args map[string]any) string {
	t.args = append(t.args, args)
	return t.reply
}

func textOutput(text string) *bedrockruntime.ConverseOutput {
	return &bedrockruntime.ConverseOutput{
		StopReason: types.StopReasonEndTurn,
		Output: &types.ConverseOutputMemberMessage{Value: types.Message{
			Role:    types.ConversationRoleAssistant,
			Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: text}},
		}},
	}
}

func toolUseOutput(id, name string, input map[string]any) *bedrockruntime.ConverseOutput {
	return &bedrockruntime.ConverseOutput{
		StopReason: types.StopReasonToolUse,
		Output: &types.ConverseOutputMemberMessage{Value: types.Message{
			Role: types.ConversationRoleAssistant,
			Content: []types.ContentBlock{&types.ContentBlockMemberToolUse{Value: types.ToolUseBlock{
				ToolUseId: aws.String(id),
				Name:      aws.String(name),
				Input:     document.NewLazyDocument(input),
			}}},
		}},
	}
}

func providerWith(fake *fakeConverse, regions *[]string) *Provider {
	return NewProvider(Config{Region: "us-east-1"}, WithClientFactory(func(ctx context.Context, region string) (ConverseAPI, error) {
		if regions != nil {
			*regions = append(*regions, region)
		}
		return fake, nil
	}))
}

func TestResolveModel(t *testing.T) {
	tests := []struct {
		name     string
		selector string
		model    string
		region   string
	}{
		{name: "default model keeps region", selector: "us.amazon.nova-premier-v1:0", model: "us.amazon.nova-premier-v1:0", region: "us-east-1"},
		{name: "gpt-oss pinned", selector: "openai.gpt-oss-20b-1:0", model: "openai.gpt-oss-120b-1:0", region: "us-west-2"},
		{name: "gpt-oss substring", selector: "my-openai.gpt-oss", model: "openai.gpt-oss-120b-1:0", region: "us-west-2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, region := ResolveModel(tt.selector, "us-east-1")
			assert.Equal(t, tt.model, model)
			assert.Equal(t, tt.region, region)
		})
	}
}

func TestCapabilityUsesResolvedRegion(t *testing.T) {
	var regions []string
	fake := &fakeConverse{outputs: []*bedrockruntime.ConverseOutput{textOutput("hi")}}
	p := providerWith(fake, &regions)

	c, err := p.Capability(context.Background(), "openai.gpt-oss-120b")
	require.NoError(t, err)
	_, err = c.Invoke(context.Background(), agent.Invocation{Instruction: "hello"})
	require.NoError(t, err)

	assert.Equal(t, []string{"us-west-2"}, regions)
	require.Len(t, fake.inputs, 1)
	assert.Equal(t, "openai.gpt-oss-120b-1:0", aws.ToString(fake.inputs[0].ModelId))
}

func TestInvokeSendsPolicyTemperatureAndTools(t *testing.T) {
	fake := &fakeConverse{outputs: []*bedrockruntime.ConverseOutput{textOutput("Found 3 places")}}
	c, err := providerWith(fake, nil).Capability(context.Background(), "us.amazon.nova-premier-v1:0")
	require.NoError(t, err)

	resp, err := c.Invoke(context.Background(), agent.Invocation{
		Instruction: "Find pizza",
		Policy:      "use tools wisely",
		Tools:       []tools.Tool{&recordingTool{name: "search_engine"}},
	})
	require.NoError(t, err)

	require.NotNil(t, resp.Message)
	assert.Equal(t, "Found 3 places", resp.Message.Text())

	in := fake.inputs[0]
	require.Len(t, in.System, 1)
	assert.Equal(t, "use tools wisely", in.System[0].(*types.SystemContentBlockMemberText).Value)
	assert.InDelta(t, 0.7, float64(aws.ToFloat32(in.InferenceConfig.Temperature)), 1e-6)
	require.NotNil(t, in.ToolConfig)
	require.Len(t, in.ToolConfig.Tools, 1)
	spec := in.ToolConfig.Tools[0].(*types.ToolMemberToolSpec).Value
	assert.Equal(t, "search_engine", aws.ToString(spec.Name))
}

func TestInvokeRunsToolUseLoop(t *testing.T) {
	search := &recordingTool{name: "search_engine", reply: "Scaddabush, Toronto"}
	fake := &fakeConverse{outputs: []*bedrockruntime.ConverseOutput{
		toolUseOutput("call-1", "search_engine", map[string]any{"query": "Italian restaurants Toronto"}),
		textOutput("Try Scaddabush."),
	}}
	c, err := providerWith(fake, nil).Capability(context.Background(), "m")
	require.NoError(t, err)

	resp, err := c.Invoke(context.Background(), agent.Invocation{Instruction: "Find Italian", Tools: []tools.Tool{search}})
	require.NoError(t, err)

	assert.Equal(t, "Try Scaddabush.", resp.Message.Text())
	require.Len(t, search.args, 1)
	assert.Equal(t, "Italian restaurants Toronto", search.args[0]["query"])

	require.Len(t, fake.inputs, 2)
	second := fake.inputs[1].Messages
	require.Len(t, second, 3)
	result := second[2].Content[0].(*types.ContentBlockMemberToolResult).Value
	assert.Equal(t, "call-1", aws.ToString(result.ToolUseId))
	assert.Equal(t, types.ToolResultStatusSuccess, result.Status)
	assert.Equal(t, "Scaddabush, Toronto", result.Content[0].(*types.ToolResultContentBlockMemberText).Value)
}

func TestInvokeReportsUnknownToolToModel(t *testing.T) {
	fake := &fakeConverse{outputs: []*bedrockruntime.ConverseOutput{
		toolUseOutput("call-1", "book_table", map[string]any{}),
		textOutput("I cannot book tables."),
	}}
	c, _ := providerWith(fake, nil).Capability(context.Background(), "m")

	resp, err := c.Invoke(context.Background(), agent.Invocation{Instruction: "Book", Tools: []tools.Tool{&recordingTool{name: "search_engine"}}})
	require.NoError(t, err)
	assert.Equal(t, "I cannot book tables.", resp.Message.Text())

	result := fake.inputs[1].Messages[2].Content[0].(*types.ContentBlockMemberToolResult).Value
	assert.Equal(t, types.ToolResultStatusError, result.Status)
}

func TestInvokeStopsAfterMaxTurns(t *testing.T) {
	outputs := make([]*bedrockruntime.ConverseOutput, 0, 3)
	for i := 0; i < 3; i++ {
		outputs = append(outputs, toolUseOutput("c", "search_engine", map[string]any{"query": "x"}))
	}
	fake := &fakeConverse{outputs: outputs}
	p := NewProvider(Config{MaxTurns: 2}, WithClientFactory(func(context.Context, string) (ConverseAPI, error) { return fake, nil }))
	c, _ := p.Capability(context.Background(), "m")

	_, err := c.Invoke(context.Background(), agent.Invocation{Instruction: "loop", Tools: []tools.Tool{&recordingTool{name: "search_engine"}}})

	require.Error(t, err)
	assert.Len(t, fake.inputs, 2)
}

func TestInvokeRejectsInvalidToolNames(t *testing.T) {
	fake := &fakeConverse{}
	c, _ := providerWith(fake, nil).Capability(context.Background(), "m")

	_, err := c.Invoke(context.Background(), agent.Invocation{Tools: []tools.Tool{&recordingTool{name: "bad name!"}}})

	require.Error(t, err)
	assert.ErrorIs(t, err, agent.ErrToolBinding)
	assert.Empty(t, fake.inputs)
}

func TestInvokeWrapsConverseErrors(t *testing.T) {
	fake := &fakeConverse{err: errors.New("AccessDeniedException")}
	c, _ := providerWith(fake, nil).Capability(context.Background(), "m")

	_, err := c.Invoke(context.Background(), agent.Invocation{Instruction: "x"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "AccessDeniedException")
}

func TestCapabilityPropagatesFactoryError(t *testing.T) {
	p := NewProvider(Config{}, WithClientFactory(func(context.Context, string) (ConverseAPI, error) {
		return nil, errors.New("no region")
	}))

	_, err := p.Capability(context.Background(), "m")
	assert.EqualError(t, err, "no region")
}

func TestDecodeToolInput(t *testing.T) {
	args, err := decodeToolInput(document.NewLazyDocument(map[string]any{"url": "https://scaddabush.com/menu", "depth": 2}))
	require.NoError(t, err)
	assert.Equal(t, "https://scaddabush.com/menu", args["url"])
	assert.Equal(t, 2.0, args["depth"])

	args, err = decodeToolInput(nil)
	require.NoError(t, err)
	assert.Empty(t, args)

	args, err = decodeToolInput(document.NewLazyDocument(nil))
	require.NoError(t, err)
	assert.NotNil(t, args)
	assert.Empty(t, args)
}
