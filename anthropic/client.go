// Copyright (c) Microsoft. All rights reserved.

package anthropic

import (
	"context"
	"encoding/json"
	"fmt"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/microsoft/agentic-ai/agentic"
)

// DefaultModel is used when no model is configured on the client or
// per request via ChatOptions.
const DefaultModel = sdk.ModelClaude3_7SonnetLatest

// defaultMaxTokens applies when neither the client nor the request sets
// a max-token budget. The Messages API requires the field.
const defaultMaxTokens = int64(1024)

// Client implements [agentic.ChatClient] using the Anthropic Messages API.
// Use [New] to create one.
type Client struct {
	sdk       sdk.Client
	model     sdk.Model
	maxTokens int64
}

var _ agentic.ChatClient = (*Client)(nil)

// New creates an Anthropic [Client] with the given API key and options.
//
//	client := anthropic.New(os.Getenv("ANTHROPIC_API_KEY"),
//	    anthropic.WithModel("claude-sonnet-4-0"),
//	)
func New(apiKey string, opts ...Option) *Client {
	cfg := &clientConfig{}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.httpClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(cfg.httpClient))
	}

	c := &Client{
		sdk:       sdk.NewClient(reqOpts...),
		model:     DefaultModel,
		maxTokens: defaultMaxTokens,
	}
	if cfg.model != "" {
		c.model = sdk.Model(cfg.model)
	}
	if cfg.maxTokens > 0 {
		c.maxTokens = cfg.maxTokens
	}
	return c
}

// Response sends a non-streaming request to the Messages API and returns
// the complete response.
func (c *Client) Response(ctx context.Context, messages []agentic.Message, opts *agentic.ChatOptions) (*agentic.ChatResponse, error) {
	params, err := c.buildParams(messages, opts)
	if err != nil {
		return nil, err
	}

	msg, err := c.sdk.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: anthropic: %v", agentic.ErrService, err)
	}

	return parseMessage(msg), nil
}

// StreamResponse sends a streaming request to the Messages API. Text
// arrives as incremental updates; tool calls and usage are emitted in a
// final update once the accumulated message is complete.
func (c *Client) StreamResponse(ctx context.Context, messages []agentic.Message, opts *agentic.ChatOptions) (*agentic.ResponseStream[agentic.ChatResponseUpdate], error) {
	params, err := c.buildParams(messages, opts)
	if err != nil {
		return nil, err
	}

	stream := c.sdk.Messages.NewStreaming(ctx, params)

	return agentic.NewResponseStream[agentic.ChatResponseUpdate](ctx, func(ctx context.Context, ch chan<- agentic.ChatResponseUpdate) error {
		defer stream.Close()

		var acc sdk.Message
		for stream.Next() {
			event := stream.Current()
			if err := acc.Accumulate(event); err != nil {
				return fmt.Errorf("%w: anthropic: accumulate event: %v", agentic.ErrService, err)
			}

			delta, ok := event.AsAny().(sdk.ContentBlockDeltaEvent)
			if !ok {
				continue
			}
			text, ok := delta.Delta.AsAny().(sdk.TextDelta)
			if !ok || text.Text == "" {
				continue
			}

			update := agentic.ChatResponseUpdate{
				Role:       agentic.RoleAssistant,
				ResponseID: acc.ID,
				ModelID:    string(acc.Model),
				Contents:   agentic.Contents{&agentic.TextContent{Text: text.Text}},
			}
			select {
			case ch <- update:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := stream.Err(); err != nil {
			return fmt.Errorf("%w: anthropic: %v", agentic.ErrService, err)
		}

		final := agentic.ChatResponseUpdate{
			Role:         agentic.RoleAssistant,
			ResponseID:   acc.ID,
			ModelID:      string(acc.Model),
			FinishReason: mapStopReason(acc.StopReason),
			Usage: agentic.UsageDetails{
				InputTokens:  int(acc.Usage.InputTokens),
				OutputTokens: int(acc.Usage.OutputTokens),
				TotalTokens:  int(acc.Usage.InputTokens + acc.Usage.OutputTokens),
			},
		}
		for _, block := range acc.Content {
			if v, ok := block.AsAny().(sdk.ToolUseBlock); ok {
				final.Contents = append(final.Contents, &agentic.FunctionCallContent{
					CallID:    v.ID,
					Name:      v.Name,
					Arguments: v.JSON.Input.Raw(),
				})
			}
		}
		select {
		case ch <- final:
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	}), nil
}

// buildParams converts framework messages and options into Messages API
// request parameters. System-role messages and opts.Instructions are
// folded into the top-level system prompt.
func (c *Client) buildParams(messages []agentic.Message, opts *agentic.ChatOptions) (sdk.MessageNewParams, error) {
	system, conv, err := convertMessages(messages)
	if err != nil {
		return sdk.MessageNewParams{}, err
	}

	params := sdk.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages:  conv,
	}

	if opts != nil {
		if opts.ModelID != "" {
			params.Model = sdk.Model(opts.ModelID)
		}
		if opts.MaxTokens != nil {
			params.MaxTokens = int64(*opts.MaxTokens)
		}
		if opts.Temperature != nil {
			params.Temperature = sdk.Float(*opts.Temperature)
		}
		if opts.TopP != nil {
			params.TopP = sdk.Float(*opts.TopP)
		}
		if len(opts.Stop) > 0 {
			params.StopSequences = opts.Stop
		}
		if opts.Instructions != "" {
			if system != "" {
				system += "\n"
			}
			system += opts.Instructions
		}
		if len(opts.Tools) > 0 {
			tools, err := convertTools(opts.Tools)
			if err != nil {
				return sdk.MessageNewParams{}, err
			}
			params.Tools = tools
		}
		if tc := convertToolChoice(opts.ToolChoice); tc != nil {
			params.ToolChoice = *tc
		}
	}

	if system != "" {
		params.System = []sdk.TextBlockParam{{Text: system}}
	}

	return params, nil
}

// convertMessages maps framework messages to Messages API params.
// System messages are returned separately; tool results become tool_result
// blocks inside user messages, which is how the API expects them back.
func convertMessages(messages []agentic.Message) (string, []sdk.MessageParam, error) {
	var system string
	var out []sdk.MessageParam

	for i := range messages {
		m := &messages[i]
		switch m.Role {
		case agentic.RoleSystem:
			if system != "" {
				system += "\n"
			}
			system += m.Text()

		case agentic.RoleUser:
			var blocks []sdk.ContentBlockParamUnion
			for _, content := range m.Contents {
				if tc, ok := content.(*agentic.TextContent); ok && tc.Text != "" {
					blocks = append(blocks, sdk.NewTextBlock(tc.Text))
				}
			}
			if len(blocks) > 0 {
				out = append(out, sdk.NewUserMessage(blocks...))
			}

		case agentic.RoleAssistant:
			var blocks []sdk.ContentBlockParamUnion
			for _, content := range m.Contents {
				switch cc := content.(type) {
				case *agentic.TextContent:
					if cc.Text != "" {
						blocks = append(blocks, sdk.NewTextBlock(cc.Text))
					}
				case *agentic.FunctionCallContent:
					blocks = append(blocks, sdk.ContentBlockParamUnion{
						OfToolUse: &sdk.ToolUseBlockParam{
							ID:    cc.CallID,
							Name:  cc.Name,
							Input: json.RawMessage(cc.Arguments),
						},
					})
				}
			}
			if len(blocks) > 0 {
				out = append(out, sdk.NewAssistantMessage(blocks...))
			}

		case agentic.RoleTool:
			var blocks []sdk.ContentBlockParamUnion
			for _, content := range m.Contents {
				if rc, ok := content.(*agentic.FunctionResultContent); ok {
					blocks = append(blocks, sdk.NewToolResultBlock(rc.CallID, resultText(rc.Result), false))
				}
			}
			if len(blocks) > 0 {
				out = append(out, sdk.NewUserMessage(blocks...))
			}

		default:
			return "", nil, fmt.Errorf("%w: anthropic: unsupported role %q", agentic.ErrInvalidRequest, m.Role)
		}
	}

	return system, out, nil
}

// convertTools maps framework tool declarations to Messages API tool params.
// The framework's JSON Schema is decomposed into the SDK's input schema shape.
func convertTools(tools []agentic.Tool) ([]sdk.ToolUnionParam, error) {
	out := make([]sdk.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		var schema struct {
			Properties map[string]any `json:"properties"`
			Required   []string       `json:"required"`
		}
		if params := t.Parameters(); len(params) > 0 {
			if err := json.Unmarshal(params, &schema); err != nil {
				return nil, fmt.Errorf("%w: anthropic: tool %q schema: %v", agentic.ErrInvalidRequest, t.Name(), err)
			}
		}
		out = append(out, sdk.ToolUnionParam{OfTool: &sdk.ToolParam{
			Name:        t.Name(),
			Description: sdk.String(t.Description()),
			InputSchema: sdk.ToolInputSchemaParam{
				Properties: schema.Properties,
				Required:   schema.Required,
			},
		}})
	}
	return out, nil
}

func convertToolChoice(choice agentic.ToolChoice) *sdk.ToolChoiceUnionParam {
	switch choice {
	case "", agentic.ToolChoiceAuto:
		return nil
	case agentic.ToolChoiceRequired:
		return &sdk.ToolChoiceUnionParam{OfAny: &sdk.ToolChoiceAnyParam{}}
	case agentic.ToolChoiceNone:
		return &sdk.ToolChoiceUnionParam{OfNone: &sdk.ToolChoiceNoneParam{}}
	default:
		// "function:<name>" forces a specific tool.
		const prefix = "function:"
		name := string(choice)
		if len(name) > len(prefix) && name[:len(prefix)] == prefix {
			return &sdk.ToolChoiceUnionParam{OfTool: &sdk.ToolChoiceToolParam{Name: name[len(prefix):]}}
		}
		return nil
	}
}

// parseMessage converts an API message into the framework response shape.
func parseMessage(msg *sdk.Message) *agentic.ChatResponse {
	var contents agentic.Contents
	for _, block := range msg.Content {
		switch v := block.AsAny().(type) {
		case sdk.TextBlock:
			contents = append(contents, &agentic.TextContent{Text: v.Text})
		case sdk.ToolUseBlock:
			contents = append(contents, &agentic.FunctionCallContent{
				CallID:    v.ID,
				Name:      v.Name,
				Arguments: v.JSON.Input.Raw(),
			})
		}
	}

	return &agentic.ChatResponse{
		Messages:     []agentic.Message{{Role: agentic.RoleAssistant, Contents: contents, Raw: msg}},
		ResponseID:   msg.ID,
		ModelID:      string(msg.Model),
		FinishReason: mapStopReason(msg.StopReason),
		Usage: agentic.UsageDetails{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
			TotalTokens:  int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
		Raw: msg,
	}
}

func mapStopReason(reason sdk.StopReason) agentic.FinishReason {
	switch reason {
	case sdk.StopReasonEndTurn, sdk.StopReasonStopSequence:
		return agentic.FinishReasonStop
	case sdk.StopReasonMaxTokens:
		return agentic.FinishReasonLength
	case sdk.StopReasonToolUse:
		return agentic.FinishReasonToolCalls
	default:
		return ""
	}
}

// resultText renders a tool result as the string content of a tool_result
// block. Strings pass through; other values are JSON-encoded.
func resultText(result any) string {
	if s, ok := result.(string); ok {
		return s
	}
	b, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprintf("%v", result)
	}
	return string(b)
}
