// Copyright (c) Microsoft. All rights reserved.

package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	api "github.com/ollama/ollama/api"

	"github.com/microsoft/agentic-ai/agentic"
)

// DefaultHost is used when OLLAMA_HOST is unset and no host option is given.
const DefaultHost = "http://localhost:11434"

// Client implements [agentic.ChatClient] using a local Ollama server.
// Use [New] to create one.
type Client struct {
	api   *api.Client
	model string
}

var _ agentic.ChatClient = (*Client)(nil)

// New creates an Ollama [Client]. The host is taken from the OLLAMA_HOST
// environment variable unless overridden with [WithHost].
//
//	client, err := ollama.New(ollama.WithModel("llama3.2"))
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o(cfg)
	}

	host := cfg.host
	if host == "" {
		host = os.Getenv("OLLAMA_HOST")
	}
	if host == "" {
		host = DefaultHost
	}

	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("%w: ollama: invalid host %q: %v", agentic.ErrInvalidRequest, host, err)
	}

	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}

	return &Client{api: api.NewClient(u, httpClient), model: cfg.model}, nil
}

// Response sends the conversation and returns the complete reply.
func (c *Client) Response(ctx context.Context, messages []agentic.Message, opts *agentic.ChatOptions) (*agentic.ChatResponse, error) {
	req, err := c.buildRequest(messages, opts)
	if err != nil {
		return nil, err
	}
	stream := false
	req.Stream = &stream

	var (
		text strings.Builder
		last api.ChatResponse
	)
	err = c.api.Chat(ctx, req, func(cr api.ChatResponse) error {
		text.WriteString(cr.Message.Content)
		last = cr
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: ollama: %v", agentic.ErrService, err)
	}

	return &agentic.ChatResponse{
		Messages:     []agentic.Message{agentic.NewAssistantMessage(text.String())},
		ModelID:      last.Model,
		FinishReason: mapDoneReason(last.DoneReason),
		Usage: agentic.UsageDetails{
			InputTokens:  last.Metrics.PromptEvalCount,
			OutputTokens: last.Metrics.EvalCount,
			TotalTokens:  last.Metrics.PromptEvalCount + last.Metrics.EvalCount,
		},
		Raw: &last,
	}, nil
}

// StreamResponse sends the conversation and streams the reply token by
// token as the server produces it.
func (c *Client) StreamResponse(ctx context.Context, messages []agentic.Message, opts *agentic.ChatOptions) (*agentic.ResponseStream[agentic.ChatResponseUpdate], error) {
	req, err := c.buildRequest(messages, opts)
	if err != nil {
		return nil, err
	}
	stream := true
	req.Stream = &stream

	return agentic.NewResponseStream[agentic.ChatResponseUpdate](ctx, func(ctx context.Context, ch chan<- agentic.ChatResponseUpdate) error {
		err := c.api.Chat(ctx, req, func(cr api.ChatResponse) error {
			update := agentic.ChatResponseUpdate{
				Role:    agentic.RoleAssistant,
				ModelID: cr.Model,
			}
			if cr.Message.Content != "" {
				update.Contents = agentic.Contents{&agentic.TextContent{Text: cr.Message.Content}}
			}
			if cr.Done {
				update.FinishReason = mapDoneReason(cr.DoneReason)
				update.Usage = agentic.UsageDetails{
					InputTokens:  cr.Metrics.PromptEvalCount,
					OutputTokens: cr.Metrics.EvalCount,
					TotalTokens:  cr.Metrics.PromptEvalCount + cr.Metrics.EvalCount,
				}
			}
			select {
			case ch <- update:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil {
			return fmt.Errorf("%w: ollama: %v", agentic.ErrService, err)
		}
		return nil
	}), nil
}

func (c *Client) buildRequest(messages []agentic.Message, opts *agentic.ChatOptions) (*api.ChatRequest, error) {
	req := &api.ChatRequest{Model: c.model}

	if opts != nil {
		if opts.ModelID != "" {
			req.Model = opts.ModelID
		}
		if opts.Instructions != "" {
			req.Messages = append(req.Messages, api.Message{Role: "system", Content: opts.Instructions})
		}
		req.Options = buildOptions(opts)
	}
	if req.Model == "" {
		return nil, fmt.Errorf("%w: ollama: no model configured", agentic.ErrInvalidRequest)
	}

	conv, err := convertMessages(messages)
	if err != nil {
		return nil, err
	}
	req.Messages = append(req.Messages, conv...)
	return req, nil
}

func buildOptions(opts *agentic.ChatOptions) map[string]any {
	options := map[string]any{}
	if opts.Temperature != nil {
		options["temperature"] = *opts.Temperature
	}
	if opts.TopP != nil {
		options["top_p"] = *opts.TopP
	}
	if opts.MaxTokens != nil {
		options["num_predict"] = *opts.MaxTokens
	}
	if opts.Seed != nil {
		options["seed"] = *opts.Seed
	}
	if len(opts.Stop) > 0 {
		options["stop"] = opts.Stop
	}
	if len(options) == 0 {
		return nil
	}
	return options
}

// convertMessages flattens the transcript into Ollama chat messages.
// Local models speak tool calls as JSON text, so function calls are
// rendered back into their textual form and tool results become
// tool-role messages.
func convertMessages(messages []agentic.Message) ([]api.Message, error) {
	var out []api.Message
	for i := range messages {
		m := &messages[i]
		switch m.Role {
		case agentic.RoleSystem:
			out = append(out, api.Message{Role: "system", Content: m.Text()})

		case agentic.RoleUser:
			out = append(out, api.Message{Role: "user", Content: m.Text()})

		case agentic.RoleAssistant:
			var b strings.Builder
			for _, content := range m.Contents {
				switch cc := content.(type) {
				case *agentic.TextContent:
					b.WriteString(cc.Text)
				case *agentic.FunctionCallContent:
					if b.Len() > 0 {
						b.WriteString("\n")
					}
					b.WriteString(renderCall(cc))
				}
			}
			out = append(out, api.Message{Role: "assistant", Content: b.String()})

		case agentic.RoleTool:
			for _, content := range m.Contents {
				if rc, ok := content.(*agentic.FunctionResultContent); ok {
					out = append(out, api.Message{Role: "tool", Content: resultText(rc.Result)})
				}
			}

		default:
			return nil, fmt.Errorf("%w: ollama: unsupported role %q", agentic.ErrInvalidRequest, m.Role)
		}
	}
	return out, nil
}

// renderCall serializes a function call in the JSON shape local models
// emit, so a replayed transcript reads back the way the model wrote it.
func renderCall(call *agentic.FunctionCallContent) string {
	args := json.RawMessage(call.Arguments)
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	b, err := json.Marshal(map[string]any{"name": call.Name, "parameters": args})
	if err != nil {
		return call.Name
	}
	return string(b)
}

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

func mapDoneReason(reason string) agentic.FinishReason {
	switch reason {
	case "stop":
		return agentic.FinishReasonStop
	case "length":
		return agentic.FinishReasonLength
	default:
		return ""
	}
}
