package assistant

import (
	"context"
	"encoding/json"
	"errors"
	neturl "net/url"
	"strings"

	openai "github.com/openai/openai-go/v2"
	openaioption "github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
)

const defaultOpenAIModel = "gpt-4o-mini"

// openaiAgent drives any chat-completions endpoint that speaks the OpenAI
// dialect (Groq, OpenRouter, self-hosted gateways).
type openaiAgent struct {
	client openai.Client
	model  string
	runner *toolRunner
}

func newOpenAIAgent(apiKey, endpoint, model string, runner *toolRunner) *openaiAgent {
	opts := []openaioption.RequestOption{
		openaioption.WithAPIKey(apiKey),
		openaioption.WithMaxRetries(0),
	}
	if normalized := normalizeOpenAIBaseURL(endpoint); normalized != "" {
		opts = append(opts, openaioption.WithBaseURL(normalized))
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	return &openaiAgent{
		client: openai.NewClient(opts...),
		model:  model,
		runner: runner,
	}
}

func (a *openaiAgent) Chat(ctx context.Context, message string) (*ChatResult, error) {
	tools := make([]openai.ChatCompletionToolUnionParam, 0, len(toolDefs()))
	for _, d := range toolDefs() {
		tools = append(tools, openai.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
			Name:        d.Name,
			Description: openai.String(d.Description),
			Parameters: shared.FunctionParameters{
				"type":       "object",
				"properties": d.Properties,
				"required":   d.Required,
			},
		}))
	}

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(a.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(message),
		},
		Tools: tools,
	}

	result := &ChatResult{}
	for step := 0; step < maxAgentSteps; step++ {
		resp, err := a.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return nil, err
		}
		if len(resp.Choices) == 0 {
			return nil, errors.New("empty reply from model")
		}
		result.Steps++

		choice := resp.Choices[0]
		if len(choice.Message.ToolCalls) == 0 {
			result.Reply = strings.TrimSpace(choice.Message.Content)
			if result.Reply == "" {
				return nil, errors.New("empty reply from model")
			}
			return result, nil
		}

		params.Messages = append(params.Messages, choice.Message.ToParam())
		for _, call := range choice.Message.ToolCalls {
			out := a.runner.Run(ctx, call.Function.Name, json.RawMessage(call.Function.Arguments))
			result.ToolCalls = append(result.ToolCalls, ToolCallRecord{Name: call.Function.Name, Result: out})
			params.Messages = append(params.Messages, openai.ToolMessage(out, call.ID))
		}
	}

	return nil, ErrStepLimit
}

// normalizeOpenAIBaseURL appends the /v1 segment the SDK expects when the
// configured endpoint leaves it off.
func normalizeOpenAIBaseURL(raw string) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		return ""
	}
	parsed, err := neturl.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return strings.TrimRight(base, "/")
	}

	path := strings.TrimRight(parsed.Path, "/")
	if !strings.HasSuffix(path, "/v1") {
		path += "/v1"
	}
	parsed.Path = path
	return strings.TrimRight(parsed.String(), "/")
}
