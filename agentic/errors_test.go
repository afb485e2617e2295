// Copyright (c) Microsoft. All rights reserved.

package agentic_test

import (
	"errors"
	"testing"

	"github.com/microsoft/agentic-ai/agentic"
)

func TestErrorSentinelChain(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		match  bool
	}{
		{"ErrExecution wraps ErrAgent", agentic.ErrExecution, agentic.ErrAgent, true},
		{"ErrSession wraps ErrAgent", agentic.ErrSession, agentic.ErrAgent, true},
		{"ErrSessionModeLocked wraps ErrSession", agentic.ErrSessionModeLocked, agentic.ErrSession, true},
		{"ErrSessionModeLocked wraps ErrAgent", agentic.ErrSessionModeLocked, agentic.ErrAgent, true},
		{"ErrContentFilter wraps ErrService", agentic.ErrContentFilter, agentic.ErrService, true},
		{"ErrAuth wraps ErrService", agentic.ErrAuth, agentic.ErrService, true},
		{"ErrToolExecution wraps ErrTool", agentic.ErrToolExecution, agentic.ErrTool, true},
		{"ErrAgent does not wrap ErrService", agentic.ErrAgent, agentic.ErrService, false},
		{"ErrTool does not wrap ErrAgent", agentic.ErrTool, agentic.ErrAgent, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := errors.Is(tc.err, tc.target); got != tc.match {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tc.err, tc.target, got, tc.match)
			}
		})
	}
}

func TestServiceError(t *testing.T) {
	svcErr := &agentic.ServiceError{
		StatusCode: 429,
		Message:    "rate limited",
		Code:       "rate_limit_exceeded",
		Err:        agentic.ErrService,
	}

	// Check error message
	msg := svcErr.Error()
	if msg == "" {
		t.Fatal("error message should not be empty")
	}

	// errors.Is should match ErrService
	if !errors.Is(svcErr, agentic.ErrService) {
		t.Error("ServiceError should wrap ErrService")
	}

	// errors.As should extract ServiceError
	var extracted *agentic.ServiceError
	if !errors.As(svcErr, &extracted) {
		t.Fatal("errors.As should extract ServiceError")
	}
	if extracted.StatusCode != 429 {
		t.Errorf("StatusCode = %d", extracted.StatusCode)
	}
}

func TestToolError(t *testing.T) {
	toolErr := &agentic.ToolError{
		ToolName: "get_weather",
		Message:  "API timeout",
		Err:      agentic.ErrToolExecution,
	}

	if !errors.Is(toolErr, agentic.ErrToolExecution) {
		t.Error("ToolError should wrap ErrToolExecution")
	}
	if !errors.Is(toolErr, agentic.ErrTool) {
		t.Error("ToolError should transitively wrap ErrTool")
	}

	var extracted *agentic.ToolError
	if !errors.As(toolErr, &extracted) {
		t.Fatal("errors.As should extract ToolError")
	}
	if extracted.ToolName != "get_weather" {
		t.Errorf("ToolName = %q", extracted.ToolName)
	}
}
