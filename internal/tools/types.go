// Package tools provides the registry of side-effecting actions the
// orchestrator can dispatch (create a task, record a memory).
//
// Every tool satisfies one uniform contract: Execute(ctx, args) returns
// a ToolResult envelope. The registry contains faults at the dispatch
// boundary, so a handler error or panic becomes a failed ToolResult and
// never a raised fault. That uniformity lets the orchestrator run an
// arbitrary sequence of heterogeneous tools without branching on
// handler type.
package tools

import (
	"context"

	"taskchat/internal/types"
)

// ExecuteFunc is the signature every tool handler implements.
// A returned error is captured by the registry, not propagated.
type ExecuteFunc func(ctx context.Context, args map[string]any) (*types.ToolResult, error)

// Property describes a single argument for documentation and validation.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Default     any    `json:"default,omitempty"`
	Enum        []any  `json:"enum,omitempty"`
}

// Schema defines a tool's expected arguments.
type Schema struct {
	// Required lists arguments that must be present.
	Required []string `json:"required"`

	// Properties describes each argument.
	Properties map[string]Property `json:"properties"`
}

// Tool is a named, registry-invoked operation.
type Tool struct {
	// Name is the unique identifier used for dispatch.
	Name string

	// Description explains what the tool does.
	Description string

	// Execute runs the tool.
	Execute ExecuteFunc

	// Schema defines the expected arguments.
	Schema Schema
}

// Validate checks that the tool definition is usable.
func (t *Tool) Validate() error {
	if t.Name == "" {
		return ErrToolNameEmpty
	}
	if t.Execute == nil {
		return ErrToolExecuteNil
	}
	return nil
}

// ArgString extracts a string argument, with "" for missing or
// mistyped values. Model-supplied arguments are not trusted to be
// well-typed.
func ArgString(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// ArgInt extracts an integer argument. JSON decoding produces float64;
// both are accepted.
func ArgInt(args map[string]any, key string) (int, bool) {
	switch v := args[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
