package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"diningagent/internal/agent"
	"diningagent/internal/logging"
	"diningagent/internal/tools"
)

var validToolNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

func isValidToolName(name string) bool {
	return validToolNamePattern.MatchString(strings.TrimSpace(name))
}

// buildToolConfig converts tool definitions into a Converse tool config.
// Any definition Bedrock would reject yields agent.ErrToolBinding.
func buildToolConfig(bound []tools.Tool) (*types.ToolConfiguration, map[string]tools.Tool, error) {
	if len(bound) == 0 {
		return nil, nil, nil
	}
	cfg := &types.ToolConfiguration{Tools: make([]types.Tool, 0, len(bound))}
	byName := make(map[string]tools.Tool, len(bound))
	for _, tool := range bound {
		if tool == nil {
			return nil, nil, fmt.Errorf("%w: nil tool", agent.ErrToolBinding)
		}
		def := tool.Definition()
		if !isValidToolName(def.Name) {
			return nil, nil, fmt.Errorf("%w: invalid tool name %q", agent.ErrToolBinding, def.Name)
		}
		if _, dup := byName[def.Name]; dup {
			return nil, nil, fmt.Errorf("%w: duplicate tool name %q", agent.ErrToolBinding, def.Name)
		}
		schema := def.Parameters
		if schema.Type == "" {
			schema.Type = "object"
		}
		spec := types.ToolSpecification{
			Name:        aws.String(def.Name),
			InputSchema: &types.ToolInputSchemaMemberJson{Value: document.NewLazyDocument(schema.JSONSchema())},
		}
		if def.Description != "" {
			spec.Description = aws.String(def.Description)
		}
		cfg.Tools = append(cfg.Tools, &types.ToolMemberToolSpec{Value: spec})
		byName[def.Name] = tool
	}
	return cfg, byName, nil
}

// runToolUses executes every tool_use block of msg and returns the user
// message carrying the results. Unknown tools and undecodable inputs are
// reported back to the model as error results.
func runToolUses(ctx context.Context, msg types.Message, byName map[string]tools.Tool, logger logging.Logger) (types.Message, int) {
	results := types.Message{Role: types.ConversationRoleUser}
	count := 0
	for _, block := range msg.Content {
		use, ok := block.(*types.ContentBlockMemberToolUse)
		if !ok {
			continue
		}
		count++
		name := aws.ToString(use.Value.Name)
		text, status := executeToolUse(ctx, use.Value, byName[name], logger)
		results.Content = append(results.Content, &types.ContentBlockMemberToolResult{Value: types.ToolResultBlock{
			ToolUseId: use.Value.ToolUseId,
			Content:   []types.ToolResultContentBlock{&types.ToolResultContentBlockMemberText{Value: text}},
			Status:    status,
		}})
	}
	return results, count
}

func executeToolUse(ctx context.Context, use types.ToolUseBlock, tool tools.Tool, logger logging.Logger) (string, types.ToolResultStatus) {
	name := aws.ToString(use.Name)
	if tool == nil {
		logger.Warn("Model requested unknown tool %s", name)
		return fmt.Sprintf("Unknown tool: %s", name), types.ToolResultStatusError
	}
	args, err := decodeToolInput(use.Input)
	if err != nil {
		logger.Warn("Decoding input for %s: %v", name, err)
		return fmt.Sprintf("Invalid arguments for %s: %v", name, err), types.ToolResultStatusError
	}
	logger.Debug("Running tool %s", name)
	return tool.Execute(ctx, args), types.ToolResultStatusSuccess
}

// decodeToolInput goes through JSON so that documents built locally and
// documents decoded from a response are read the same way.
func decodeToolInput(input document.Interface) (map[string]any, error) {
	args := map[string]any{}
	if input == nil {
		return args, nil
	}
	raw, err := input.MarshalSmithyDocument()
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}
