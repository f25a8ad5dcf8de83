package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = "claude-haiku-4-5-20251001"

type anthropicAgent struct {
	client anthropic.Client
	model  string
	runner *toolRunner
}

func newAnthropicAgent(apiKey, endpoint, model string, runner *toolRunner) *anthropicAgent {
	opts := []anthropicoption.RequestOption{
		anthropicoption.WithAPIKey(apiKey),
		anthropicoption.WithMaxRetries(0),
	}
	if endpoint != "" {
		opts = append(opts, anthropicoption.WithBaseURL(strings.TrimRight(endpoint, "/")))
	}
	if model == "" {
		model = defaultAnthropicModel
	}
	return &anthropicAgent{
		client: anthropic.NewClient(opts...),
		model:  model,
		runner: runner,
	}
}

func (a *anthropicAgent) Chat(ctx context.Context, message string) (*ChatResult, error) {
	tools := make([]anthropic.ToolUnionParam, 0, len(toolDefs()))
	for _, d := range toolDefs() {
		tools = append(tools, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        d.Name,
				Description: anthropic.String(d.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: d.Properties,
					Required:   d.Required,
				},
			},
		})
	}

	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(message)),
	}

	result := &ChatResult{}
	for step := 0; step < maxAgentSteps; step++ {
		msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     anthropic.Model(a.model),
			MaxTokens: 2048,
			System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
			Messages:  messages,
			Tools:     tools,
		})
		if err != nil {
			return nil, err
		}
		result.Steps++

		var text strings.Builder
		var toolResults []anthropic.ContentBlockParamUnion
		for _, block := range msg.Content {
			switch b := block.AsAny().(type) {
			case anthropic.TextBlock:
				text.WriteString(b.Text)
			case anthropic.ToolUseBlock:
				out := a.runner.Run(ctx, b.Name, json.RawMessage(b.JSON.Input.Raw()))
				result.ToolCalls = append(result.ToolCalls, ToolCallRecord{Name: b.Name, Result: out})
				toolResults = append(toolResults, anthropic.NewToolResultBlock(b.ID, out, false))
			}
		}

		if msg.StopReason != "tool_use" {
			result.Reply = strings.TrimSpace(text.String())
			if result.Reply == "" {
				return nil, errors.New("empty reply from model")
			}
			return result, nil
		}

		messages = append(messages, msg.ToParam())
		messages = append(messages, anthropic.NewUserMessage(toolResults...))
	}

	return nil, ErrStepLimit
}
