// Copyright (c) Microsoft. All rights reserved.

package gemini

import (
	"context"
	"encoding/json"
	"fmt"

	genai "github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/microsoft/agentic-ai/agentic"
)

// DefaultModel is used when no model is configured on the client or
// per request via ChatOptions.
const DefaultModel = "gemini-1.5-flash"

// Client implements [agentic.ChatClient] using the Google Gemini API.
// Use [New] to create one.
type Client struct {
	genai *genai.Client
	model string
}

var _ agentic.ChatClient = (*Client)(nil)

// New creates a Gemini [Client] with the given API key and options.
//
//	client, err := gemini.New(ctx, os.Getenv("GEMINI_API_KEY"),
//	    gemini.WithModel("gemini-1.5-pro"),
//	)
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o(cfg)
	}

	gc, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("%w: gemini init: %v", agentic.ErrService, err)
	}

	c := &Client{genai: gc, model: DefaultModel}
	if cfg.model != "" {
		c.model = cfg.model
	}
	return c, nil
}

// Close releases the underlying API connection.
func (c *Client) Close() error {
	return c.genai.Close()
}

// Response sends the conversation and returns the complete reply.
func (c *Client) Response(ctx context.Context, messages []agentic.Message, opts *agentic.ChatOptions) (*agentic.ChatResponse, error) {
	session, parts, err := c.startChat(messages, opts)
	if err != nil {
		return nil, err
	}

	resp, err := session.SendMessage(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("%w: gemini: %v", agentic.ErrService, err)
	}

	return parseResponse(resp, c.modelID(opts))
}

// StreamResponse sends the conversation and streams the reply as
// incremental updates.
func (c *Client) StreamResponse(ctx context.Context, messages []agentic.Message, opts *agentic.ChatOptions) (*agentic.ResponseStream[agentic.ChatResponseUpdate], error) {
	session, parts, err := c.startChat(messages, opts)
	if err != nil {
		return nil, err
	}

	iter := session.SendMessageStream(ctx, parts...)
	modelID := c.modelID(opts)

	return agentic.NewResponseStream[agentic.ChatResponseUpdate](ctx, func(ctx context.Context, ch chan<- agentic.ChatResponseUpdate) error {
		for {
			resp, err := iter.Next()
			if err == iterator.Done {
				return nil
			}
			if err != nil {
				return fmt.Errorf("%w: gemini: %v", agentic.ErrService, err)
			}

			update := agentic.ChatResponseUpdate{Role: agentic.RoleAssistant, ModelID: modelID}
			if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
				update.Contents = partsToContents(resp.Candidates[0].Content.Parts)
				update.FinishReason = mapFinishReason(resp.Candidates[0].FinishReason)
			}
			if resp.UsageMetadata != nil {
				update.Usage = agentic.UsageDetails{
					InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
					OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
					TotalTokens:  int(resp.UsageMetadata.TotalTokenCount),
				}
			}

			select {
			case ch <- update:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}), nil
}

func (c *Client) modelID(opts *agentic.ChatOptions) string {
	if opts != nil && opts.ModelID != "" {
		return opts.ModelID
	}
	return c.model
}

// startChat builds a chat session from the transcript. All messages but
// the last become session history; the last message's parts are returned
// for sending.
func (c *Client) startChat(messages []agentic.Message, opts *agentic.ChatOptions) (*genai.ChatSession, []genai.Part, error) {
	model := c.genai.GenerativeModel(c.modelID(opts))

	system, contents, err := convertMessages(messages)
	if err != nil {
		return nil, nil, err
	}

	if opts != nil {
		if opts.Instructions != "" {
			if system != "" {
				system += "\n"
			}
			system += opts.Instructions
		}
		if opts.Temperature != nil {
			model.SetTemperature(float32(*opts.Temperature))
		}
		if opts.TopP != nil {
			model.SetTopP(float32(*opts.TopP))
		}
		if opts.MaxTokens != nil {
			model.SetMaxOutputTokens(int32(*opts.MaxTokens))
		}
		if len(opts.Stop) > 0 {
			model.StopSequences = opts.Stop
		}
		if len(opts.Tools) > 0 {
			decls, err := convertTools(opts.Tools)
			if err != nil {
				return nil, nil, err
			}
			model.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
		}
	}

	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	if len(contents) == 0 {
		return nil, nil, fmt.Errorf("%w: gemini: no sendable messages", agentic.ErrInvalidRequest)
	}

	session := model.StartChat()
	last := contents[len(contents)-1]
	session.History = contents[:len(contents)-1]
	return session, last.Parts, nil
}

// convertMessages maps the transcript to genai contents. System messages
// are returned separately for the model's system instruction. The API
// correlates function responses by name rather than call ID, so call IDs
// are resolved back to tool names from earlier assistant turns.
func convertMessages(messages []agentic.Message) (string, []*genai.Content, error) {
	var system string
	var out []*genai.Content
	callNames := make(map[string]string)

	for i := range messages {
		m := &messages[i]
		switch m.Role {
		case agentic.RoleSystem:
			if system != "" {
				system += "\n"
			}
			system += m.Text()

		case agentic.RoleUser:
			if text := m.Text(); text != "" {
				out = append(out, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(text)}})
			}

		case agentic.RoleAssistant:
			var parts []genai.Part
			for _, content := range m.Contents {
				switch cc := content.(type) {
				case *agentic.TextContent:
					if cc.Text != "" {
						parts = append(parts, genai.Text(cc.Text))
					}
				case *agentic.FunctionCallContent:
					callNames[cc.CallID] = cc.Name
					args := map[string]any{}
					if cc.Arguments != "" {
						if err := json.Unmarshal([]byte(cc.Arguments), &args); err != nil {
							return "", nil, fmt.Errorf("%w: gemini: call %q arguments: %v", agentic.ErrInvalidRequest, cc.Name, err)
						}
					}
					parts = append(parts, genai.FunctionCall{Name: cc.Name, Args: args})
				}
			}
			if len(parts) > 0 {
				out = append(out, &genai.Content{Role: "model", Parts: parts})
			}

		case agentic.RoleTool:
			var parts []genai.Part
			for _, content := range m.Contents {
				if rc, ok := content.(*agentic.FunctionResultContent); ok {
					name, ok := callNames[rc.CallID]
					if !ok {
						return "", nil, fmt.Errorf("%w: gemini: result for unknown call %q", agentic.ErrInvalidRequest, rc.CallID)
					}
					parts = append(parts, genai.FunctionResponse{Name: name, Response: resultMap(rc.Result)})
				}
			}
			if len(parts) > 0 {
				out = append(out, &genai.Content{Role: "function", Parts: parts})
			}

		default:
			return "", nil, fmt.Errorf("%w: gemini: unsupported role %q", agentic.ErrInvalidRequest, m.Role)
		}
	}

	return system, out, nil
}

func convertTools(tools []agentic.Tool) ([]*genai.FunctionDeclaration, error) {
	out := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		decl := &genai.FunctionDeclaration{
			Name:        t.Name(),
			Description: t.Description(),
		}
		if params := t.Parameters(); len(params) > 0 {
			schema, err := toSchema(params)
			if err != nil {
				return nil, fmt.Errorf("%w: gemini: tool %q schema: %v", agentic.ErrInvalidRequest, t.Name(), err)
			}
			decl.Parameters = schema
		}
		out = append(out, decl)
	}
	return out, nil
}

// jsonSchema is the subset of JSON Schema the framework's tool schemas
// produce, decoded for translation into genai's schema type.
type jsonSchema struct {
	Type        string                 `json:"type"`
	Description string                 `json:"description"`
	Properties  map[string]*jsonSchema `json:"properties"`
	Items       *jsonSchema            `json:"items"`
	Required    []string               `json:"required"`
	Enum        []string               `json:"enum"`
}

func toSchema(raw json.RawMessage) (*genai.Schema, error) {
	var js jsonSchema
	if err := json.Unmarshal(raw, &js); err != nil {
		return nil, err
	}
	return js.toGenai(), nil
}

func (js *jsonSchema) toGenai() *genai.Schema {
	s := &genai.Schema{
		Description: js.Description,
		Required:    js.Required,
		Enum:        js.Enum,
	}
	switch js.Type {
	case "string":
		s.Type = genai.TypeString
	case "integer":
		s.Type = genai.TypeInteger
	case "number":
		s.Type = genai.TypeNumber
	case "boolean":
		s.Type = genai.TypeBoolean
	case "array":
		s.Type = genai.TypeArray
	default:
		s.Type = genai.TypeObject
	}
	if len(js.Properties) > 0 {
		s.Properties = make(map[string]*genai.Schema, len(js.Properties))
		for name, prop := range js.Properties {
			s.Properties[name] = prop.toGenai()
		}
	}
	if js.Items != nil {
		s.Items = js.Items.toGenai()
	}
	return s
}

// resultMap shapes a tool result for a genai function response, which
// must be a JSON object.
func resultMap(result any) map[string]any {
	switch v := result.(type) {
	case map[string]any:
		return v
	case string:
		return map[string]any{"result": v}
	default:
		b, err := json.Marshal(result)
		if err != nil {
			return map[string]any{"result": fmt.Sprintf("%v", result)}
		}
		var m map[string]any
		if err := json.Unmarshal(b, &m); err != nil {
			return map[string]any{"result": string(b)}
		}
		return m
	}
}

func parseResponse(resp *genai.GenerateContentResponse, modelID string) (*agentic.ChatResponse, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("%w: gemini: empty response", agentic.ErrInvalidResponse)
	}
	candidate := resp.Candidates[0]

	result := &agentic.ChatResponse{
		Messages: []agentic.Message{{
			Role:     agentic.RoleAssistant,
			Contents: partsToContents(candidate.Content.Parts),
			Raw:      resp,
		}},
		ModelID:      modelID,
		FinishReason: mapFinishReason(candidate.FinishReason),
		Raw:          resp,
	}
	if resp.UsageMetadata != nil {
		result.Usage = agentic.UsageDetails{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	return result, nil
}

// partsToContents maps reply parts to framework contents. The API does
// not assign call IDs, so each function call gets a generated one; the
// name mapping in convertMessages resolves them on the way back.
func partsToContents(parts []genai.Part) agentic.Contents {
	var contents agentic.Contents
	for _, part := range parts {
		switch v := part.(type) {
		case genai.Text:
			contents = append(contents, &agentic.TextContent{Text: string(v)})
		case genai.FunctionCall:
			args, err := json.Marshal(v.Args)
			if err != nil {
				args = []byte("{}")
			}
			contents = append(contents, &agentic.FunctionCallContent{
				CallID:    uuid.NewString(),
				Name:      v.Name,
				Arguments: string(args),
			})
		}
	}
	return contents
}

func mapFinishReason(reason genai.FinishReason) agentic.FinishReason {
	switch reason {
	case genai.FinishReasonStop:
		return agentic.FinishReasonStop
	case genai.FinishReasonMaxTokens:
		return agentic.FinishReasonLength
	case genai.FinishReasonSafety, genai.FinishReasonRecitation:
		return agentic.FinishReasonContentFilter
	default:
		return ""
	}
}
