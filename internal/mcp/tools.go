// ABOUTME: Role-driven tool set exposed over both transports.
// ABOUTME: Binds ask/clarify/acknowledge tool calls to the Human capability.

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rodrigolive/ask-on-slack-mcp/internal/human"
	"github.com/rodrigolive/ask-on-slack-mcp/internal/role"
)

// ErrToolNotFound is returned by Call for unknown tool names.
var ErrToolNotFound = errors.New("tool not found")

// ToolSet is the fixed set of three tools derived from one role profile.
// Tool registration is driven by the static profile; there is no dynamic
// dispatch beyond the name switch in Call.
type ToolSet struct {
	profile role.Profile
	human   human.Human
	logger  *slog.Logger
}

// NewToolSet builds the tool set for the given role backed by the given Human.
func NewToolSet(profile role.Profile, h human.Human, logger *slog.Logger) *ToolSet {
	if logger == nil {
		logger = slog.Default()
	}
	return &ToolSet{profile: profile, human: h, logger: logger}
}

// List returns the tool definitions for tools/list.
func (t *ToolSet) List() []MCPToolInfo {
	return []MCPToolInfo{
		{
			Name:        t.profile.AskToolName(),
			Title:       t.profile.Ask.Title,
			Description: t.profile.Ask.Description,
			InputSchema: questionSchema(t.profile.Ask.InputDescription),
		},
		{
			Name:        t.profile.ClarifyToolName(),
			Title:       t.profile.Clarify.Title,
			Description: t.profile.Clarify.Description,
			InputSchema: questionSchema(t.profile.Clarify.InputDescription),
		},
		{
			Name:        t.profile.AcknowledgeToolName(),
			Title:       t.profile.Acknowledge.Title,
			Description: t.profile.Acknowledge.Description,
			InputSchema: acknowledgementSchema(t.profile.Acknowledge.InputDescription),
		},
	}
}

// Call dispatches one tool invocation. Engine failures come back as isError
// text results prefixed "Error:"; only an unknown tool name is an error at
// the protocol level.
func (t *ToolSet) Call(ctx context.Context, name string, args json.RawMessage) (MCPCallToolResult, error) {
	switch name {
	case t.profile.AskToolName(), t.profile.ClarifyToolName():
		return t.ask(ctx, name, args), nil
	case t.profile.AcknowledgeToolName():
		return t.acknowledge(ctx, name, args), nil
	default:
		return MCPCallToolResult{}, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
}

func (t *ToolSet) ask(ctx context.Context, name string, args json.RawMessage) MCPCallToolResult {
	var in struct {
		Question string `json:"question"`
	}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &in); err != nil {
			return textResult("Error: invalid arguments: "+err.Error(), true)
		}
	}

	answer, err := t.human.Ask(ctx, in.Question)
	if err != nil {
		t.logger.Error("tool call failed", "tool", name, "error", err)
		return textResult("Error: "+err.Error(), true)
	}
	return textResult(answer, false)
}

func (t *ToolSet) acknowledge(ctx context.Context, name string, args json.RawMessage) MCPCallToolResult {
	var in struct {
		Acknowledgement string `json:"acknowledgement"`
	}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &in); err != nil {
			return textResult("Error: invalid arguments: "+err.Error(), true)
		}
	}

	confirmation, err := t.human.Acknowledge(ctx, in.Acknowledgement)
	if err != nil {
		t.logger.Error("tool call failed", "tool", name, "error", err)
		return textResult("Error: "+err.Error(), true)
	}
	return textResult(confirmation, false)
}

func questionSchema(description string) json.RawMessage {
	return inputSchema("question", description)
}

func acknowledgementSchema(description string) json.RawMessage {
	return inputSchema("acknowledgement", description)
}

// inputSchema builds the one-string-parameter JSON schema every tool uses.
func inputSchema(param, description string) json.RawMessage {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			param: map[string]any{
				"type":        "string",
				"description": description,
			},
		},
		"required": []string{param},
	}
	data, _ := json.Marshal(schema)
	return data
}
