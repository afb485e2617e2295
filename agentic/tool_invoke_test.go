// Copyright (c) Microsoft. All rights reserved.

package agentic_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/microsoft/agentic-ai/agentic"
)

// alwaysToolClient requests the same tool call on every model turn.
func alwaysToolClient(callCount *int) *mockClient {
	return &mockClient{
		responseFn: func(ctx context.Context, msgs []agentic.Message, opts *agentic.ChatOptions) (*agentic.ChatResponse, error) {
			*callCount++
			return &agentic.ChatResponse{
				Messages: []agentic.Message{{
					Role: agentic.RoleAssistant,
					Contents: agentic.Contents{
						&agentic.FunctionCallContent{
							CallID:    fmt.Sprintf("c%d", *callCount),
							Name:      "noop",
							Arguments: `{}`,
						},
					},
				}},
			}, nil
		},
	}
}

func noopTool() agentic.Tool {
	return agentic.NewTool("noop", "Does nothing", []byte(`{"type":"object"}`),
		func(ctx context.Context, args json.RawMessage) (any, error) {
			return "ok", nil
		},
	)
}

func TestToolLoop_NoToolCallsMeansOneModelCall(t *testing.T) {
	callCount := 0
	client := &mockClient{
		responseFn: func(ctx context.Context, msgs []agentic.Message, opts *agentic.ChatOptions) (*agentic.ChatResponse, error) {
			callCount++
			return &agentic.ChatResponse{
				Messages: []agentic.Message{agentic.NewAssistantMessage("plain answer")},
			}, nil
		},
	}

	agent := agentic.NewAgent(client, agentic.WithTools(noopTool()))
	resp, err := agent.Run(context.Background(), []agentic.Message{agentic.NewUserMessage("hi")})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if callCount != 1 {
		t.Errorf("model calls = %d, want 1", callCount)
	}
	if resp.Text() != "plain answer" {
		t.Errorf("Text = %q", resp.Text())
	}
}

func TestToolLoop_MaxIterationsReturnsSentinel(t *testing.T) {
	callCount := 0
	client := alwaysToolClient(&callCount)

	agent := agentic.NewAgent(client,
		agentic.WithTools(noopTool()),
		agentic.WithInvocationConfig(agentic.InvocationConfig{MaxIterations: 1}),
	)

	resp, err := agent.Run(context.Background(), []agentic.Message{agentic.NewUserMessage("go")})
	if err != nil {
		t.Fatalf("exhaustion should not be an error, got %v", err)
	}
	if callCount != 1 {
		t.Errorf("model calls = %d, want 1", callCount)
	}
	if resp.Text() != agentic.MaxIterationsText {
		t.Errorf("Text = %q, want %q", resp.Text(), agentic.MaxIterationsText)
	}
}

func TestToolLoop_BoundedModelCalls(t *testing.T) {
	callCount := 0
	client := alwaysToolClient(&callCount)

	agent := agentic.NewAgent(client,
		agentic.WithTools(noopTool()),
		agentic.WithInvocationConfig(agentic.InvocationConfig{MaxIterations: 5}),
	)

	resp, err := agent.Run(context.Background(), []agentic.Message{agentic.NewUserMessage("go")})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if callCount != 5 {
		t.Errorf("model calls = %d, want 5", callCount)
	}
	if resp.Text() != agentic.MaxIterationsText {
		t.Errorf("Text = %q", resp.Text())
	}
}

func TestToolLoop_ResultsInRequestOrder(t *testing.T) {
	callCount := 0
	var secondTurnTail []agentic.Message
	client := &mockClient{
		responseFn: func(ctx context.Context, msgs []agentic.Message, opts *agentic.ChatOptions) (*agentic.ChatResponse, error) {
			callCount++
			if callCount == 1 {
				return &agentic.ChatResponse{
					Messages: []agentic.Message{{
						Role: agentic.RoleAssistant,
						Contents: agentic.Contents{
							&agentic.TextContent{Text: "let me check"},
							&agentic.FunctionCallContent{CallID: "c-a", Name: "echo", Arguments: `{"v":"first"}`},
							&agentic.FunctionCallContent{CallID: "c-b", Name: "echo", Arguments: `{"v":"second"}`},
							&agentic.FunctionCallContent{CallID: "c-c", Name: "echo", Arguments: `{"v":"third"}`},
						},
					}},
				}, nil
			}
			secondTurnTail = msgs[len(msgs)-4:]
			return &agentic.ChatResponse{
				Messages: []agentic.Message{agentic.NewAssistantMessage("done")},
			}, nil
		},
	}

	echo := agentic.NewTypedTool("echo", "Echoes its input",
		func(ctx context.Context, args struct {
			V string `json:"v"`
		}) (any, error) {
			return args.V, nil
		},
	)

	agent := agentic.NewAgent(client, agentic.WithTools(echo))
	resp, err := agent.Run(context.Background(), []agentic.Message{agentic.NewUserMessage("go")})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if callCount != 2 {
		t.Fatalf("model calls = %d, want 2", callCount)
	}
	if resp.Text() != "done" {
		t.Errorf("Text = %q", resp.Text())
	}

	// The assistant message (with its free text) precedes the tool results.
	if secondTurnTail[0].Role != agentic.RoleAssistant {
		t.Fatalf("tail[0].Role = %q, want assistant", secondTurnTail[0].Role)
	}
	if got := secondTurnTail[0].Text(); got != "let me check" {
		t.Errorf("assistant text = %q, want it preserved", got)
	}

	// Three tool results follow, correlated in request order.
	wantIDs := []string{"c-a", "c-b", "c-c"}
	wantResults := []string{"first", "second", "third"}
	for i, m := range secondTurnTail[1:] {
		if m.Role != agentic.RoleTool {
			t.Fatalf("tail[%d].Role = %q, want tool", i+1, m.Role)
		}
		fr, ok := m.Contents[0].(*agentic.FunctionResultContent)
		if !ok {
			t.Fatalf("tail[%d] content = %T", i+1, m.Contents[0])
		}
		if fr.CallID != wantIDs[i] {
			t.Errorf("result[%d].CallID = %q, want %q", i, fr.CallID, wantIDs[i])
		}
		if fr.Result != wantResults[i] {
			t.Errorf("result[%d] = %v, want %q", i, fr.Result, wantResults[i])
		}
	}
}

func TestToolLoop_UnknownToolIsNonFatal(t *testing.T) {
	callCount := 0
	var unknownResult *agentic.FunctionResultContent
	client := &mockClient{
		responseFn: func(ctx context.Context, msgs []agentic.Message, opts *agentic.ChatOptions) (*agentic.ChatResponse, error) {
			callCount++
			if callCount == 1 {
				return &agentic.ChatResponse{
					Messages: []agentic.Message{{
						Role: agentic.RoleAssistant,
						Contents: agentic.Contents{
							&agentic.FunctionCallContent{CallID: "c1", Name: "no_such_tool", Arguments: `{}`},
						},
					}},
				}, nil
			}
			for _, m := range msgs {
				if m.Role != agentic.RoleTool {
					continue
				}
				if fr, ok := m.Contents[0].(*agentic.FunctionResultContent); ok && fr.CallID == "c1" {
					unknownResult = fr
				}
			}
			return &agentic.ChatResponse{
				Messages: []agentic.Message{agentic.NewAssistantMessage("recovered")},
			}, nil
		},
	}

	agent := agentic.NewAgent(client, agentic.WithTools(noopTool()))
	resp, err := agent.Run(context.Background(), []agentic.Message{agentic.NewUserMessage("go")})
	if err != nil {
		t.Fatalf("unknown tool should not abort the loop: %v", err)
	}
	if resp.Text() != "recovered" {
		t.Errorf("Text = %q", resp.Text())
	}
	if unknownResult == nil {
		t.Fatal("no tool result was sent back for the unknown call")
	}
	text := fmt.Sprint(unknownResult.Result)
	if !strings.Contains(text, "no_such_tool") {
		t.Errorf("unknown-tool notice = %q, want it to name the tool", text)
	}
}

func TestToolLoop_TerminateOnUnknown(t *testing.T) {
	callCount := 0
	client := &mockClient{
		responseFn: func(ctx context.Context, msgs []agentic.Message, opts *agentic.ChatOptions) (*agentic.ChatResponse, error) {
			callCount++
			return &agentic.ChatResponse{
				Messages: []agentic.Message{{
					Role: agentic.RoleAssistant,
					Contents: agentic.Contents{
						&agentic.FunctionCallContent{CallID: "c1", Name: "ghost", Arguments: `{}`},
					},
				}},
			}, nil
		},
	}

	agent := agentic.NewAgent(client,
		agentic.WithTools(noopTool()),
		agentic.WithInvocationConfig(agentic.InvocationConfig{TerminateOnUnknown: true}),
	)

	_, err := agent.Run(context.Background(), []agentic.Message{agentic.NewUserMessage("go")})
	if err == nil {
		t.Fatal("expected error in strict mode")
	}
	if !errors.Is(err, agentic.ErrToolExecution) {
		t.Errorf("error = %v, want ErrToolExecution", err)
	}
}

func TestToolLoop_ToolErrorBecomesResult(t *testing.T) {
	failing := agentic.NewTool("flaky", "Always fails", []byte(`{"type":"object"}`),
		func(ctx context.Context, args json.RawMessage) (any, error) {
			return nil, errors.New("disk on fire")
		},
	)

	callCount := 0
	var errorResult *agentic.FunctionResultContent
	client := &mockClient{
		responseFn: func(ctx context.Context, msgs []agentic.Message, opts *agentic.ChatOptions) (*agentic.ChatResponse, error) {
			callCount++
			if callCount == 1 {
				return &agentic.ChatResponse{
					Messages: []agentic.Message{{
						Role: agentic.RoleAssistant,
						Contents: agentic.Contents{
							&agentic.FunctionCallContent{CallID: "c1", Name: "flaky", Arguments: `{}`},
						},
					}},
				}, nil
			}
			for _, m := range msgs {
				if m.Role != agentic.RoleTool {
					continue
				}
				if fr, ok := m.Contents[0].(*agentic.FunctionResultContent); ok && fr.CallID == "c1" {
					errorResult = fr
				}
			}
			return &agentic.ChatResponse{
				Messages: []agentic.Message{agentic.NewAssistantMessage("moving on")},
			}, nil
		},
	}

	agent := agentic.NewAgent(client,
		agentic.WithTools(failing),
		agentic.WithInvocationConfig(agentic.InvocationConfig{IncludeDetailedErrors: true}),
	)

	resp, err := agent.Run(context.Background(), []agentic.Message{agentic.NewUserMessage("go")})
	if err != nil {
		t.Fatalf("a single tool failure should not abort the loop: %v", err)
	}
	if resp.Text() != "moving on" {
		t.Errorf("Text = %q", resp.Text())
	}
	if errorResult == nil {
		t.Fatal("no tool result was sent back for the failed call")
	}
	if text := fmt.Sprint(errorResult.Result); !strings.Contains(text, "disk on fire") {
		t.Errorf("error result = %q, want the tool's error text", text)
	}
}

func TestToolLoop_ConsecutiveErrorsAbort(t *testing.T) {
	failing := agentic.NewTool("flaky", "Always fails", []byte(`{"type":"object"}`),
		func(ctx context.Context, args json.RawMessage) (any, error) {
			return nil, errors.New("nope")
		},
	)

	callCount := 0
	client := &mockClient{
		responseFn: func(ctx context.Context, msgs []agentic.Message, opts *agentic.ChatOptions) (*agentic.ChatResponse, error) {
			callCount++
			return &agentic.ChatResponse{
				Messages: []agentic.Message{{
					Role: agentic.RoleAssistant,
					Contents: agentic.Contents{
						&agentic.FunctionCallContent{CallID: fmt.Sprintf("c%d", callCount), Name: "flaky", Arguments: `{}`},
					},
				}},
			}, nil
		},
	}

	agent := agentic.NewAgent(client,
		agentic.WithTools(failing),
		agentic.WithInvocationConfig(agentic.InvocationConfig{MaxConsecutiveErrors: 2}),
	)

	_, err := agent.Run(context.Background(), []agentic.Message{agentic.NewUserMessage("go")})
	if err == nil {
		t.Fatal("expected abort after consecutive tool errors")
	}
	if !errors.Is(err, agentic.ErrToolExecution) {
		t.Errorf("error = %v, want ErrToolExecution", err)
	}
}

func TestToolLoop_ModelErrorPropagates(t *testing.T) {
	boom := errors.New("model unavailable")
	client := &mockClient{
		responseFn: func(ctx context.Context, msgs []agentic.Message, opts *agentic.ChatOptions) (*agentic.ChatResponse, error) {
			return nil, boom
		},
	}

	agent := agentic.NewAgent(client, agentic.WithTools(noopTool()))
	_, err := agent.Run(context.Background(), []agentic.Message{agentic.NewUserMessage("go")})
	if err == nil {
		t.Fatal("expected model error to propagate")
	}
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want wrapped %v", err, boom)
	}
}

func TestToolLoop_DeterministicReplay(t *testing.T) {
	script := func(callCount *int, transcript *[][]agentic.Message) *mockClient {
		return &mockClient{
			responseFn: func(ctx context.Context, msgs []agentic.Message, opts *agentic.ChatOptions) (*agentic.ChatResponse, error) {
				*callCount++
				snapshot := make([]agentic.Message, len(msgs))
				copy(snapshot, msgs)
				*transcript = append(*transcript, snapshot)
				if *callCount == 1 {
					return &agentic.ChatResponse{
						Messages: []agentic.Message{{
							Role: agentic.RoleAssistant,
							Contents: agentic.Contents{
								&agentic.FunctionCallContent{CallID: "c1", Name: "echo", Arguments: `{"v":"x"}`},
							},
						}},
					}, nil
				}
				return &agentic.ChatResponse{
					Messages: []agentic.Message{agentic.NewAssistantMessage("final")},
				}, nil
			},
		}
	}

	echo := agentic.NewTypedTool("echo", "Echoes its input",
		func(ctx context.Context, args struct {
			V string `json:"v"`
		}) (any, error) {
			return args.V, nil
		},
	)

	run := func() (string, [][]agentic.Message) {
		calls := 0
		var transcript [][]agentic.Message
		agent := agentic.NewAgent(script(&calls, &transcript), agentic.WithTools(echo))
		resp, err := agent.Run(context.Background(), []agentic.Message{agentic.NewUserMessage("go")})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		return resp.Text(), transcript
	}

	text1, transcript1 := run()
	text2, transcript2 := run()

	if text1 != text2 {
		t.Errorf("replay text differs: %q vs %q", text1, text2)
	}
	if len(transcript1) != len(transcript2) {
		t.Fatalf("replay call counts differ: %d vs %d", len(transcript1), len(transcript2))
	}
	for i := range transcript1 {
		if len(transcript1[i]) != len(transcript2[i]) {
			t.Errorf("call %d: message counts differ: %d vs %d", i, len(transcript1[i]), len(transcript2[i]))
			continue
		}
		for j := range transcript1[i] {
			if transcript1[i][j].Role != transcript2[i][j].Role {
				t.Errorf("call %d message %d: roles differ", i, j)
			}
			if transcript1[i][j].Text() != transcript2[i][j].Text() {
				t.Errorf("call %d message %d: text differs", i, j)
			}
		}
	}
}
