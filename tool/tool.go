// Package tool defines the tool-invocation surface agents expose to a model:
// named operations with a JSON-schema parameter description and a Call method.
// Ready-made lookup tools live in the catalog subpackage, and catalogserver
// serves the same lookups over HTTP.
package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/iangithub/langchain-ai-agent/llm"
)

// Tool is a named operation a model can invoke mid-generation.
type Tool interface {
	// Name is the identifier the model uses to select the tool.
	Name() string

	// Description tells the model what the tool does and when to use it.
	Description() string

	// Parameters is the JSON-schema object describing the arguments.
	Parameters() map[string]any

	// Call runs the tool with already-decoded arguments and returns a text
	// result for the model to read.
	Call(ctx context.Context, args map[string]any) (string, error)
}

// Func is a Tool backed by a plain function.
type Func struct {
	name        string
	description string
	parameters  map[string]any
	fn          func(ctx context.Context, args map[string]any) (string, error)
}

var _ Tool = (*Func)(nil)

// NewFunc builds a Tool from a function.
func NewFunc(name, description string, parameters map[string]any, fn func(ctx context.Context, args map[string]any) (string, error)) *Func {
	return &Func{name: name, description: description, parameters: parameters, fn: fn}
}

func (f *Func) Name() string               { return f.name }
func (f *Func) Description() string        { return f.description }
func (f *Func) Parameters() map[string]any { return f.parameters }

func (f *Func) Call(ctx context.Context, args map[string]any) (string, error) {
	return f.fn(ctx, args)
}

// StringParams builds the JSON schema for a tool taking only the named
// required string arguments, with one description per name.
func StringParams(pairs ...string) map[string]any {
	props := map[string]any{}
	required := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		props[pairs[i]] = map[string]any{
			"type":        "string",
			"description": pairs[i+1],
		}
		required = append(required, pairs[i])
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

// Definition converts a Tool into the shape the llm package exposes to models.
func Definition(t Tool) llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  t.Parameters(),
	}
}

// Definitions converts a tool list for llm.WithTools.
func Definitions(tools ...Tool) []llm.ToolDefinition {
	out := make([]llm.ToolDefinition, 0, len(tools))
	for _, t := range tools {
		out = append(out, Definition(t))
	}
	return out
}

// Invoke decodes a model tool call's raw JSON arguments and dispatches it to
// the matching tool from the list.
func Invoke(ctx context.Context, tools []Tool, call llm.ToolCall) (string, error) {
	var target Tool
	for _, t := range tools {
		if t.Name() == call.Name {
			target = t
			break
		}
	}
	if target == nil {
		return "", fmt.Errorf("tool %q not found", call.Name)
	}

	args := map[string]any{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return "", fmt.Errorf("tool %q: decode arguments: %w", call.Name, err)
		}
	}
	return target.Call(ctx, args)
}
