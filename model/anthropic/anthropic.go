// Package anthropic implements model.Backend using the Anthropic Messages
// API, including tool calling, streaming and extraction of thinking blocks.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/flowbyte/agentrun/core"
	"github.com/flowbyte/agentrun/model"
)

const providerName = "anthropic"

func init() {
	model.Register(providerName, func(cfg model.Config) (model.Backend, error) {
		return NewBackend(cfg), nil
	})
}

// Backend wraps the Anthropic Messages API behind model.Backend.
type Backend struct {
	client *anthropic.Client
	cfg    model.Config
}

// NewBackend creates an Anthropic backend using the official client. The API
// key is taken from cfg or, when empty, from the environment.
func NewBackend(cfg model.Config) *Backend {
	var clientOpts []option.RequestOption
	if cfg.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(cfg.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)
	return &Backend{client: &client, cfg: cfg}
}

// NewBackendFromClient creates an Anthropic backend from an existing client.
func NewBackendFromClient(client *anthropic.Client, cfg model.Config) *Backend {
	return &Backend{client: client, cfg: cfg}
}

// Invoke implements model.Backend via a non-streaming Messages call.
func (b *Backend) Invoke(ctx context.Context, req model.Request) (*core.Message, error) {
	resp, err := b.client.Messages.New(ctx, b.buildParams(req))
	if err != nil {
		return nil, classify(err)
	}
	return b.messageFromResponse(resp)
}

// InvokeStreaming implements model.Backend. Text deltas are forwarded to
// onToken while the SDK accumulator rebuilds the complete message.
func (b *Backend) InvokeStreaming(ctx context.Context, req model.Request, onToken func(string)) (*core.Message, error) {
	stream := b.client.Messages.NewStreaming(ctx, b.buildParams(req))
	acc := anthropic.Message{}
	for stream.Next() {
		event := stream.Current()
		if err := acc.Accumulate(event); err != nil {
			return nil, model.NewError(model.KindRetryable, providerName, "stream accumulation failed: "+err.Error(), err)
		}
		if onToken == nil {
			continue
		}
		if delta, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent); ok {
			if text, ok := delta.Delta.AsAny().(anthropic.TextDelta); ok && text.Text != "" {
				onToken(text.Text)
			}
		}
	}
	if err := stream.Err(); err != nil {
		return nil, classify(err)
	}
	return b.messageFromResponse(&acc)
}

// messageFromResponse converts an API message into a core.Message, applying
// the terminal stop-reason handling: max_tokens truncation is a hard error,
// a refusal becomes a synthetic diagnostic assistant message.
func (b *Backend) messageFromResponse(resp *anthropic.Message) (*core.Message, error) {
	switch string(resp.StopReason) {
	case "max_tokens":
		return nil, model.NewError(model.KindTruncated, providerName,
			"response truncated at max_output_tokens for "+b.cfg.Ref(), nil)
	case "refusal":
		msg := core.NewAssistantMessage("The model declined to answer due to its content policy. Please rephrase the request.")
		return &msg, nil
	}

	msg := core.Message{Role: core.RoleAssistant}
	var text, thinking strings.Builder
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.AsText().Text)
		case "thinking":
			thinking.WriteString(block.AsThinking().Thinking)
		case "tool_use":
			tu := block.AsToolUse()
			args := "{}"
			if raw, err := json.Marshal(tu.Input); err == nil && len(raw) > 0 {
				args = string(raw)
			}
			id := tu.ID
			if id == "" {
				id = core.NewID()
			}
			msg.ToolCalls = append(msg.ToolCalls, core.ToolCall{ID: id, Name: tu.Name, Arguments: args})
		}
	}
	msg.Content = text.String()
	msg.Thinking = thinking.String()
	if msg.Content == "" && !msg.HasToolCalls() {
		// Filtered to nothing usable; keep the run alive with a diagnostic.
		msg.Content = "The model returned no usable content for this request."
	}
	msg.Usage = &core.TokenUsage{
		InputTokens:  int(resp.Usage.InputTokens),
		OutputTokens: int(resp.Usage.OutputTokens),
	}
	return &msg, nil
}

// buildParams assembles the Messages API parameters.
func (b *Backend) buildParams(req model.Request) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(b.cfg.Model),
		Messages:    buildMessages(req.Messages),
		MaxTokens:   b.cfg.MaxOutputTokens,
		Temperature: anthropic.Float(b.cfg.Temperature),
	}
	if system := systemBlocks(req.Messages); len(system) > 0 {
		params.System = system
	}
	if budget := thinkingBudget(b.cfg.ReasoningEffort); budget > 0 {
		params.Thinking = anthropic.ThinkingConfigParamOfEnabled(budget)
	}
	if len(req.Tools) > 0 {
		params.Tools = buildTools(req.Tools)
	}
	return params
}

// thinkingBudget maps the provider-independent reasoning effort levels to
// Anthropic thinking token budgets. Unknown levels disable thinking.
func thinkingBudget(effort string) int64 {
	switch effort {
	case "low":
		return 2048
	case "medium":
		return 4096
	case "high":
		return 8192
	}
	return 0
}

// systemBlocks extracts system messages into the dedicated System parameter.
func systemBlocks(messages []core.Message) []anthropic.TextBlockParam {
	var blocks []anthropic.TextBlockParam
	for _, m := range messages {
		if m.Role == core.RoleSystem && m.Content != "" {
			blocks = append(blocks, anthropic.TextBlockParam{Text: m.Content})
		}
	}
	return blocks
}

// buildMessages converts the normalized transcript to Anthropic messages.
// Tool results become tool_result blocks inside user messages, as the
// Messages API requires.
func buildMessages(messages []core.Message) []anthropic.MessageParam {
	var out []anthropic.MessageParam
	for _, m := range messages {
		switch m.Role {
		case core.RoleUser:
			blocks := make([]anthropic.ContentBlockParamUnion, 0, len(m.Images)+1)
			if m.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(m.Content))
			}
			for _, img := range m.Images {
				mediaType, data := splitDataURL(img)
				blocks = append(blocks, anthropic.NewImageBlockBase64(mediaType, data))
			}
			if len(blocks) > 0 {
				out = append(out, anthropic.NewUserMessage(blocks...))
			}
		case core.RoleAssistant:
			blocks := make([]anthropic.ContentBlockParamUnion, 0, len(m.ToolCalls)+1)
			if m.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(m.Content))
			}
			for _, tc := range m.ToolCalls {
				var input any
				if err := json.Unmarshal([]byte(tc.Arguments), &input); err != nil {
					input = tc.Arguments
				}
				blocks = append(blocks, anthropic.NewToolUseBlock(tc.ID, input, tc.Name))
			}
			if len(blocks) > 0 {
				out = append(out, anthropic.NewAssistantMessage(blocks...))
			}
		case core.RoleTool:
			isError := strings.HasPrefix(m.Content, "Error: ")
			out = append(out, anthropic.NewUserMessage(
				anthropic.NewToolResultBlock(m.ToolCallID, m.Content, isError)))
		}
	}
	return out
}

// splitDataURL decodes "data:<mediatype>;base64,<payload>" image strings.
// Bare payloads default to image/png.
func splitDataURL(img string) (mediaType, data string) {
	if rest, ok := strings.CutPrefix(img, "data:"); ok {
		if mt, payload, found := strings.Cut(rest, ";base64,"); found {
			return mt, payload
		}
	}
	return "image/png", img
}

// buildTools converts tool definitions to the Anthropic tool format.
func buildTools(tools []model.ToolDefinition) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, len(tools))
	for i, tdef := range tools {
		schema := anthropic.ToolInputSchemaParam{}
		if tdef.Parameters != nil {
			if properties, ok := tdef.Parameters["properties"]; ok {
				schema.Properties = properties
			}
			schema.Required = requiredList(tdef.Parameters["required"])
		}
		out[i] = anthropic.ToolUnionParamOfTool(schema, tdef.Name)
	}
	return out
}

// requiredList tolerates both []string and JSON-decoded []any shapes.
func requiredList(v any) []string {
	switch req := v.(type) {
	case []string:
		return req
	case []any:
		var out []string
		for _, r := range req {
			if s, ok := r.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// classify maps SDK errors into the closed model.Error kind set.
func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		if apierr.StatusCode == 429 || apierr.StatusCode == 529 || apierr.StatusCode >= 500 {
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
