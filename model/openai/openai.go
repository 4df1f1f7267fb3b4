// Package openai implements model.Backend using the OpenAI Chat Completions
// API (streaming + function/tool calling). It adapts agentrun's normalized
// message transcript into the SDK's message format and back, and classifies
// provider failures into the closed model.Error kind set.
package openai

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/flowbyte/agentrun/core"
	"github.com/flowbyte/agentrun/model"
)

const providerName = "openai"

func init() {
	model.Register(providerName, func(cfg model.Config) (model.Backend, error) {
		return NewBackend(cfg), nil
	})
}

// aggCall aggregates partial tool call streaming deltas (id, name, arguments)
// so complete function call parts can be reconstructed at finish time.
type aggCall struct{ id, name, args string }

// Backend wraps the OpenAI Chat Completions API behind model.Backend.
type Backend struct {
	client openai.Client
	cfg    model.Config
}

// NewBackend creates an OpenAI backend using the official client. The API
// key is taken from cfg or, when empty, from the environment.
func NewBackend(cfg model.Config) *Backend {
	var clientOpts []option.RequestOption
	if cfg.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(cfg.APIKey))
	}
	return &Backend{client: openai.NewClient(clientOpts...), cfg: cfg}
}

// NewBackendFromClient creates an OpenAI backend from an existing client.
func NewBackendFromClient(client openai.Client, cfg model.Config) *Backend {
	return &Backend{client: client, cfg: cfg}
}

// Invoke implements model.Backend via a non-streaming completion call.
func (b *Backend) Invoke(ctx context.Context, req model.Request) (*core.Message, error) {
	resp, err := b.client.Chat.Completions.New(ctx, b.buildParams(req))
	if err != nil {
		return nil, classify(err)
	}
	if len(resp.Choices) == 0 {
		return nil, model.NewError(model.KindRetryable, providerName, "no choices returned", nil)
	}
	choice := resp.Choices[0]
	msg, err := b.messageFromChoice(choice.FinishReason, choice.Message.Content, toolCallsFromResponse(choice.Message.ToolCalls))
	if err != nil {
		return nil, err
	}
	msg.Usage = &core.TokenUsage{
		InputTokens:  int(resp.Usage.PromptTokens),
		OutputTokens: int(resp.Usage.CompletionTokens),
	}
	return msg, nil
}

// InvokeStreaming implements model.Backend, forwarding text deltas to
// onToken and returning the accumulated assistant message.
func (b *Backend) InvokeStreaming(ctx context.Context, req model.Request, onToken func(string)) (*core.Message, error) {
	params := b.buildParams(req)
	params.StreamOptions = openai.ChatCompletionStreamOptionsParam{IncludeUsage: openai.Bool(true)}

	stream := b.client.Chat.Completions.NewStreaming(ctx, params)
	var (
		textBuilder  strings.Builder
		toolAgg      = map[int64]*aggCall{}
		toolOrder    []int64
		finishReason string
		usage        core.TokenUsage
	)
	for stream.Next() {
		chunk := stream.Current()
		if chunk.Usage.TotalTokens > 0 {
			usage.InputTokens = int(chunk.Usage.PromptTokens)
			usage.OutputTokens = int(chunk.Usage.CompletionTokens)
		}
		for _, choice := range chunk.Choices {
			if choice.Delta.Content != "" {
				textBuilder.WriteString(choice.Delta.Content)
				if onToken != nil {
					onToken(choice.Delta.Content)
				}
			}
			for _, tc := range choice.Delta.ToolCalls {
				ac, ok := toolAgg[tc.Index]
				if !ok {
					ac = &aggCall{}
					toolAgg[tc.Index] = ac
					toolOrder = append(toolOrder, tc.Index)
				}
				if tc.ID != "" {
					ac.id = tc.ID
				}
				if tc.Function.Name != "" {
					ac.name = tc.Function.Name
				}
				ac.args += tc.Function.Arguments
			}
			if choice.FinishReason != "" {
				finishReason = choice.FinishReason
			}
		}
	}
	if err := stream.Err(); err != nil {
		return nil, classify(err)
	}

	calls := make([]core.ToolCall, 0, len(toolOrder))
	for _, idx := range toolOrder {
		ac := toolAgg[idx]
		calls = append(calls, core.ToolCall{ID: ac.id, Name: ac.name, Arguments: ac.args})
	}
	msg, err := b.messageFromChoice(finishReason, textBuilder.String(), calls)
	if err != nil {
		return nil, err
	}
	msg.Usage = &usage
	return msg, nil
}

// messageFromChoice converts a finished completion into a core.Message,
// handling the terminal finish reasons: truncation becomes a hard error,
// a content-safety stop becomes a synthetic diagnostic assistant message.
func (b *Backend) messageFromChoice(finishReason, content string, calls []core.ToolCall) (*core.Message, error) {
	switch finishReason {
	case "length":
		return nil, model.NewError(model.KindTruncated, providerName,
			"response truncated at max_output_tokens="+b.cfg.Ref(), nil)
	case "content_filter":
		msg := core.NewAssistantMessage("The model response was blocked by the provider's content filter. Please rephrase the request.")
		return &msg, nil
	}
	for i := range calls {
		if calls[i].ID == "" {
			calls[i].ID = core.NewID()
		}
	}
	return &core.Message{Role: core.RoleAssistant, Content: content, ToolCalls: calls}, nil
}

// buildParams assembles the completion parameters including tool definitions.
func (b *Backend) buildParams(req model.Request) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Messages:            buildMessages(req.Messages),
		Model:               b.cfg.Model,
		Temperature:         openai.Float(b.cfg.Temperature),
		MaxCompletionTokens: openai.Int(b.cfg.MaxOutputTokens),
	}
	if b.cfg.ReasoningEffort != "" {
		params.ReasoningEffort = shared.ReasoningEffort(b.cfg.ReasoningEffort)
	}
	if req.JSONMode {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}
	if len(req.Tools) > 0 {
		tools := make([]openai.ChatCompletionToolParam, len(req.Tools))
		for i, tdef := range req.Tools {
			tools[i] = openai.ChatCompletionToolParam{
				Type: "function",
				Function: openai.FunctionDefinitionParam{
					Name:        tdef.Name,
					Description: openai.String(tdef.Description),
					Parameters:  tdef.Parameters,
				},
			}
		}
		params.Tools = tools
	}
	return params
}

// buildMessages converts the normalized transcript into OpenAI chat messages.
// The engine keeps tool messages ordered directly after the assistant message
// that requested them, so no reordering is required here.
func buildMessages(messages []core.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case core.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case core.RoleUser:
			if len(m.Images) == 0 {
				out = append(out, openai.UserMessage(m.Content))
				continue
			}
			parts := make([]openai.ChatCompletionContentPartUnionParam, 0, len(m.Images)+1)
			if m.Content != "" {
				parts = append(parts, openai.TextContentPart(m.Content))
			}
			for _, img := range m.Images {
				parts = append(parts, openai.ImageContentPart(
					openai.ChatCompletionContentPartImageImageURLParam{URL: img}))
			}
			out = append(out, openai.UserMessage(parts))
		case core.RoleAssistant:
			if !m.HasToolCalls() {
				out = append(out, openai.AssistantMessage(m.Content))
				continue
			}
			toolCalls := make([]openai.ChatCompletionMessageToolCallParam, len(m.ToolCalls))
			for i, tc := range m.ToolCalls {
				toolCalls[i] = openai.ChatCompletionMessageToolCallParam{
					ID:   tc.ID,
					Type: "function",
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      tc.Name,
						Arguments: tc.Arguments,
					},
				}
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{
				OfAssistant: &openai.ChatCompletionAssistantMessageParam{
					ToolCalls: toolCalls,
				},
			})
		case core.RoleTool:
			out = append(out, openai.ToolMessage(m.Content, m.ToolCallID))
		}
	}
	return out
}

// toolCallsFromResponse converts SDK tool calls into core.ToolCalls.
func toolCallsFromResponse(calls []openai.ChatCompletionMessageToolCall) []core.ToolCall {
	out := make([]core.ToolCall, 0, len(calls))
	for _, tc := range calls {
		out = append(out, core.ToolCall{ID: tc.ID, Name: tc.Function.Name, Arguments: tc.Function.Arguments})
	}
	return out
}

// classify maps SDK errors into the closed model.Error kind set. Rate limits
// and 5xx responses are transient; other HTTP failures need caller
// reconfiguration. Errors without an HTTP status (network) are transient.
func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		if apierr.StatusCode == 429 || apierr.StatusCode >= 500 {
			return model.NewError(model.KindRetryable, providerName, err.Error(), err)
		}
		return model.NewError(model.KindConfig, providerName, err.Error(), err)
	}
	return model.NewError(model.KindRetryable, providerName, err.Error(), err)
}

// Info implements model.Backend.
func (b *Backend) Info() model.Info {
	return model.Info{Name: b.cfg.Model, Provider: providerName, SupportsTools: true}
}
