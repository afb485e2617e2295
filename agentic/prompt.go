// Copyright (c) Microsoft. All rights reserved.

package agentic

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// variablePattern matches {name} placeholders. Doubled braces ({{ and }})
// are escapes and render as literal braces.
var variablePattern = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// PromptTemplate substitutes named variables into a text template.
// Variables are written as {name}; use {{ and }} for literal braces.
type PromptTemplate struct {
	template string
	vars     []string
}

// NewPromptTemplate parses a template string.
func NewPromptTemplate(template string) *PromptTemplate {
	return &PromptTemplate{
		template: template,
		vars:     extractVariables(template),
	}
}

// Variables returns the variable names referenced by the template, in order
// of first appearance.
func (p *PromptTemplate) Variables() []string {
	return append([]string(nil), p.vars...)
}

// Format substitutes values into the template. Every referenced variable
// must be present in values; a missing one fails with [ErrMissingVariable].
func (p *PromptTemplate) Format(values map[string]any) (string, error) {
	return substitute(p.template, values)
}

func extractVariables(template string) []string {
	masked := maskEscapes(template)
	var vars []string
	seen := make(map[string]bool)
	for _, m := range variablePattern.FindAllStringSubmatch(masked, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			vars = append(vars, m[1])
		}
	}
	return vars
}

// maskEscapes blanks out doubled braces so the variable pattern does not
// match inside them. Offsets are preserved.
func maskEscapes(s string) string {
	s = strings.ReplaceAll(s, "{{", "\x00\x00")
	return strings.ReplaceAll(s, "}}", "\x00\x00")
}

func substitute(template string, values map[string]any) (string, error) {
	masked := maskEscapes(template)
	var missing string
	var b strings.Builder
	last := 0
	for _, loc := range variablePattern.FindAllStringSubmatchIndex(masked, -1) {
		name := template[loc[2]:loc[3]]
		val, ok := values[name]
		if !ok {
			missing = name
			break
		}
		b.WriteString(template[last:loc[0]])
		b.WriteString(fmt.Sprint(val))
		last = loc[1]
	}
	if missing != "" {
		return "", fmt.Errorf("%w: %q", ErrMissingVariable, missing)
	}
	b.WriteString(template[last:])
	out := b.String()
	out = strings.ReplaceAll(out, "{{", "{")
	out = strings.ReplaceAll(out, "}}", "}")
	return out, nil
}

// promptPart is one entry of a [ChatPromptTemplate]: either a role+template
// pair or a history placeholder.
type promptPart struct {
	role        Role
	template    *PromptTemplate
	placeholder string
}

// PromptPart constructs one message slot of a [ChatPromptTemplate].
type PromptPart func() promptPart

// SystemPrompt adds a system-role template message.
func SystemPrompt(template string) PromptPart {
	return func() promptPart {
		return promptPart{role: RoleSystem, template: NewPromptTemplate(template)}
	}
}

// UserPrompt adds a user-role template message.
func UserPrompt(template string) PromptPart {
	return func() promptPart {
		return promptPart{role: RoleUser, template: NewPromptTemplate(template)}
	}
}

// AssistantPrompt adds an assistant-role template message.
func AssistantPrompt(template string) PromptPart {
	return func() promptPart {
		return promptPart{role: RoleAssistant, template: NewPromptTemplate(template)}
	}
}

// MessagesPlaceholder splices a []Message value (e.g. conversation history)
// into the formatted message list at this position. The value is looked up
// by variable name at format time.
func MessagesPlaceholder(variable string) PromptPart {
	return func() promptPart {
		return promptPart{placeholder: variable}
	}
}

// ChatPromptTemplate formats a whole message list from role/template pairs
// and history placeholders.
type ChatPromptTemplate struct {
	parts []promptPart
}

// NewChatPromptTemplate builds a chat template from ordered parts:
//
//	prompt := agentic.NewChatPromptTemplate(
//	    agentic.SystemPrompt("You are an expert in {domain}."),
//	    agentic.MessagesPlaceholder("history"),
//	    agentic.UserPrompt("{question}"),
//	)
func NewChatPromptTemplate(parts ...PromptPart) *ChatPromptTemplate {
	t := &ChatPromptTemplate{parts: make([]promptPart, len(parts))}
	for i, p := range parts {
		t.parts[i] = p()
	}
	return t
}

// Variables returns all variable names referenced by the template,
// including placeholder names.
func (t *ChatPromptTemplate) Variables() []string {
	var vars []string
	seen := make(map[string]bool)
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			vars = append(vars, name)
		}
	}
	for _, p := range t.parts {
		if p.placeholder != "" {
			add(p.placeholder)
			continue
		}
		for _, v := range p.template.Variables() {
			add(v)
		}
	}
	return vars
}

// Format substitutes values and returns the resulting message list.
// Placeholder values must be []Message; an absent placeholder value splices
// nothing.
func (t *ChatPromptTemplate) Format(values map[string]any) ([]Message, error) {
	var msgs []Message
	for _, p := range t.parts {
		if p.placeholder != "" {
			val, ok := values[p.placeholder]
			if !ok || val == nil {
				continue
			}
			history, ok := val.([]Message)
			if !ok {
				return nil, fmt.Errorf("%w: placeholder %q expects []Message, got %T", ErrPrompt, p.placeholder, val)
			}
			msgs = append(msgs, history...)
			continue
		}
		text, err := p.template.Format(values)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, Message{Role: p.role, Contents: Contents{&TextContent{Text: text}}})
	}
	return msgs, nil
}

// promptFile is the YAML layout accepted by [LoadChatPromptTemplate].
type promptFile struct {
	Messages []struct {
		Role     string `yaml:"role"`
		Template string `yaml:"template"`
		Variable string `yaml:"variable"`
	} `yaml:"messages"`
}

// LoadChatPromptTemplate reads a chat template from a YAML file:
//
//	messages:
//	  - role: system
//	    template: "You are an expert in {domain}."
//	  - role: placeholder
//	    variable: history
//	  - role: user
//	    template: "{question}"
func LoadChatPromptTemplate(path string) (*ChatPromptTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrPrompt, path, err)
	}
	var pf promptFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrPrompt, path, err)
	}
	var parts []PromptPart
	for i, m := range pf.Messages {
		switch Role(m.Role) {
		case RoleSystem:
			parts = append(parts, SystemPrompt(m.Template))
		case RoleUser:
			parts = append(parts, UserPrompt(m.Template))
		case RoleAssistant:
			parts = append(parts, AssistantPrompt(m.Template))
		case "placeholder":
			if m.Variable == "" {
				return nil, fmt.Errorf("%w: %s message %d: placeholder needs a variable", ErrPrompt, path, i)
			}
			parts = append(parts, MessagesPlaceholder(m.Variable))
		default:
			return nil, fmt.Errorf("%w: %s message %d: unknown role %q", ErrPrompt, path, i, m.Role)
		}
	}
	return NewChatPromptTemplate(parts...), nil
}
