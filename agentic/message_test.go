// Copyright (c) Microsoft. All rights reserved.

package agentic_test

import (
	"testing"

	"github.com/microsoft/agentic-ai/agentic"
)

func TestNewUserMessage(t *testing.T) {
	m := agentic.NewUserMessage("hi")
	if m.Role != agentic.RoleUser {
		t.Errorf("role = %q, want %q", m.Role, agentic.RoleUser)
	}
	if m.Text() != "hi" {
		t.Errorf("text = %q, want %q", m.Text(), "hi")
	}
}

func TestNewAssistantMessage(t *testing.T) {
	m := agentic.NewAssistantMessage("hello")
	if m.Role != agentic.RoleAssistant {
		t.Errorf("role = %q", m.Role)
	}
	if m.Text() != "hello" {
		t.Errorf("text = %q", m.Text())
	}
}

func TestNewToolMessage(t *testing.T) {
	m := agentic.NewToolMessage("call-1", "result")
	if m.Role != agentic.RoleTool {
		t.Errorf("role = %q", m.Role)
	}
	if len(m.Contents) != 1 {
		t.Fatalf("contents len = %d", len(m.Contents))
	}
	fr, ok := m.Contents[0].(*agentic.FunctionResultContent)
	if !ok {
		t.Fatalf("type = %T", m.Contents[0])
	}
	if fr.CallID != "call-1" {
		t.Errorf("CallID = %q", fr.CallID)
	}
}

func TestMessageText_MultipleContents(t *testing.T) {
	m := agentic.Message{
		Role: agentic.RoleAssistant,
		Contents: agentic.Contents{
			&agentic.TextContent{Text: "Hello "},
			&agentic.FunctionCallContent{Name: "fn"}, // non-text: skipped
			&agentic.TextContent{Text: "World"},
		},
	}
	if got := m.Text(); got != "Hello World" {
		t.Errorf("text = %q, want %q", got, "Hello World")
	}
}

func TestNormalizeMessages(t *testing.T) {
	msgs := agentic.NormalizeMessages(
		"hello",
		agentic.NewAssistantMessage("hi"),
		[]agentic.Message{agentic.NewSystemMessage("sys")},
	)
	if len(msgs) != 3 {
		t.Fatalf("len = %d, want 3", len(msgs))
	}
	if msgs[0].Role != agentic.RoleUser {
		t.Errorf("[0].Role = %q", msgs[0].Role)
	}
	if msgs[1].Role != agentic.RoleAssistant {
		t.Errorf("[1].Role = %q", msgs[1].Role)
	}
	if msgs[2].Role != agentic.RoleSystem {
		t.Errorf("[2].Role = %q", msgs[2].Role)
	}
}

func TestPrependInstructions(t *testing.T) {
	msgs := []agentic.Message{agentic.NewUserMessage("hi")}

	// With instructions
	result := agentic.PrependInstructions(msgs, "Be helpful")
	if len(result) != 2 {
		t.Fatalf("len = %d, want 2", len(result))
	}
	if result[0].Role != agentic.RoleSystem {
		t.Errorf("[0].Role = %q", result[0].Role)
	}
	if result[0].Text() != "Be helpful" {
		t.Errorf("[0].Text() = %q", result[0].Text())
	}

	// Empty instructions: no change
	result2 := agentic.PrependInstructions(msgs, "")
	if len(result2) != 1 {
		t.Errorf("empty instructions should not add message, got len=%d", len(result2))
	}

	// Already has system message: no duplicate
	withSys := []agentic.Message{agentic.NewSystemMessage("existing"), agentic.NewUserMessage("hi")}
	result3 := agentic.PrependInstructions(withSys, "new")
	if len(result3) != 2 {
		t.Errorf("should not add duplicate system message, got len=%d", len(result3))
	}
}
