// Copyright (c) Microsoft. All rights reserved.

package anthropic_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/microsoft/agentic-ai/agentic"
	"github.com/microsoft/agentic-ai/anthropic"
)

type fakeTransport struct {
	status int
	body   []byte

	gotMethod string
	gotPath   string
	gotBody   []byte
}

func (f *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	b, _ := io.ReadAll(req.Body)
	_ = req.Body.Close()
	f.gotMethod = req.Method
	f.gotPath = req.URL.Path
	f.gotBody = b

	resp := &http.Response{
		StatusCode: f.status,
		Body:       io.NopCloser(bytes.NewReader(f.body)),
		Header:     make(http.Header),
	}
	resp.Header.Set("Content-Type", "application/json")
	return resp, nil
}

func newTestClient(ft *fakeTransport, opts ...anthropic.Option) *anthropic.Client {
	opts = append(opts, anthropic.WithHTTPClient(&http.Client{Transport: ft}))
	return anthropic.New("test-key", opts...)
}

const assistantReply = `{
	"id": "msg_01",
	"type": "message",
	"role": "assistant",
	"model": "claude-3-7-sonnet-latest",
	"stop_reason": "end_turn",
	"content": [{"type": "text", "text": "Hello there"}],
	"usage": {"input_tokens": 12, "output_tokens": 4}
}`

func TestResponse_Text(t *testing.T) {
	ft := &fakeTransport{status: 200, body: []byte(assistantReply)}
	client := newTestClient(ft)

	resp, err := client.Response(context.Background(), []agentic.Message{
		agentic.NewUserMessage("hi"),
	}, nil)
	if err != nil {
		t.Fatalf("Response: %v", err)
	}

	if got := resp.Text(); got != "Hello there" {
		t.Errorf("Text() = %q, want %q", got, "Hello there")
	}
	if resp.ResponseID != "msg_01" {
		t.Errorf("ResponseID = %q", resp.ResponseID)
	}
	if resp.FinishReason != agentic.FinishReasonStop {
		t.Errorf("FinishReason = %q", resp.FinishReason)
	}
	if resp.Usage.InputTokens != 12 || resp.Usage.OutputTokens != 4 || resp.Usage.TotalTokens != 16 {
		t.Errorf("Usage = %+v", resp.Usage)
	}
	if ft.gotMethod != http.MethodPost {
		t.Errorf("method = %q", ft.gotMethod)
	}
	if !strings.HasSuffix(ft.gotPath, "/messages") {
		t.Errorf("path = %q", ft.gotPath)
	}
}

func TestResponse_ToolUseBecomesFunctionCall(t *testing.T) {
	body := `{
		"id": "msg_02",
		"type": "message",
		"role": "assistant",
		"model": "claude-3-7-sonnet-latest",
		"stop_reason": "tool_use",
		"content": [
			{"type": "text", "text": "Checking."},
			{"type": "tool_use", "id": "toolu_01", "name": "get_weather", "input": {"city": "Oslo"}}
		],
		"usage": {"input_tokens": 8, "output_tokens": 6}
	}`
	ft := &fakeTransport{status: 200, body: []byte(body)}
	client := newTestClient(ft)

	resp, err := client.Response(context.Background(), []agentic.Message{
		agentic.NewUserMessage("weather in Oslo?"),
	}, nil)
	if err != nil {
		t.Fatalf("Response: %v", err)
	}

	if resp.FinishReason != agentic.FinishReasonToolCalls {
		t.Errorf("FinishReason = %q", resp.FinishReason)
	}
	var call *agentic.FunctionCallContent
	for _, c := range resp.Messages[0].Contents {
		if fc, ok := c.(*agentic.FunctionCallContent); ok {
			call = fc
		}
	}
	if call == nil {
		t.Fatal("no FunctionCallContent in response")
	}
	if call.CallID != "toolu_01" || call.Name != "get_weather" {
		t.Errorf("call = %+v", call)
	}
	var args map[string]string
	if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
		t.Fatalf("arguments not JSON: %v", err)
	}
	if args["city"] != "Oslo" {
		t.Errorf("arguments = %v", args)
	}
}

func TestResponse_RequestShape(t *testing.T) {
	ft := &fakeTransport{status: 200, body: []byte(assistantReply)}
	client := newTestClient(ft, anthropic.WithModel("claude-test"), anthropic.WithMaxTokens(256))

	tool := agentic.NewTool("lookup", "Look something up",
		json.RawMessage(`{"type":"object","properties":{"q":{"type":"string"}},"required":["q"]}`),
		func(ctx context.Context, args json.RawMessage) (any, error) { return "ok", nil })

	messages := []agentic.Message{
		agentic.NewSystemMessage("Be brief."),
		agentic.NewUserMessage("question"),
		agentic.NewToolMessage("toolu_09", "42"),
	}
	_, err := client.Response(context.Background(), messages, &agentic.ChatOptions{
		Tools: []agentic.Tool{tool},
	})
	if err != nil {
		t.Fatalf("Response: %v", err)
	}

	var req struct {
		Model     string `json:"model"`
		MaxTokens int64  `json:"max_tokens"`
		System    []struct {
			Text string `json:"text"`
		} `json:"system"`
		Messages []struct {
			Role    string `json:"role"`
			Content []struct {
				Type      string `json:"type"`
				ToolUseID string `json:"tool_use_id"`
			} `json:"content"`
		} `json:"messages"`
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	if err := json.Unmarshal(ft.gotBody, &req); err != nil {
		t.Fatalf("request body not JSON: %v", err)
	}

	if req.Model != "claude-test" {
		t.Errorf("model = %q", req.Model)
	}
	if req.MaxTokens != 256 {
		t.Errorf("max_tokens = %d", req.MaxTokens)
	}
	if len(req.System) != 1 || req.System[0].Text != "Be brief." {
		t.Errorf("system = %+v", req.System)
	}
	if len(req.Tools) != 1 || req.Tools[0].Name != "lookup" {
		t.Errorf("tools = %+v", req.Tools)
	}

	// System messages fold into the system field; the tool result rides in
	// a user message as a tool_result block.
	if len(req.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(req.Messages))
	}
	last := req.Messages[1]
	if last.Role != "user" {
		t.Errorf("tool result role = %q", last.Role)
	}
	if len(last.Content) != 1 || last.Content[0].Type != "tool_result" || last.Content[0].ToolUseID != "toolu_09" {
		t.Errorf("tool result block = %+v", last.Content)
	}
}

func TestResponse_ServiceErrorWrapped(t *testing.T) {
	ft := &fakeTransport{status: 400, body: []byte(`{"type":"error","error":{"type":"invalid_request_error","message":"boom"}}`)}
	client := newTestClient(ft)

	_, err := client.Response(context.Background(), []agentic.Message{
		agentic.NewUserMessage("hi"),
	}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "anthropic") {
		t.Errorf("error = %v", err)
	}
}
