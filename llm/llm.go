// Package llm defines the narrow interface the graphs use to talk to a
// text-generation collaborator: a blocking Generate returning a complete
// response, and a Stream yielding an ordered, finite sequence of text
// fragments whose concatenation equals the complete response. Concrete
// clients live in the openai subpackage and the adapter package.
package llm

import (
	"context"
)

// Role identifies the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry of a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`

	// ToolCalls carries the tool invocations an assistant message requested.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID links a tool-result message to the call it answers.
	ToolCallID string `json:"tool_call_id,omitempty"`
}

// System builds a system message.
func System(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// User builds a user message.
func User(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Assistant builds an assistant message.
func Assistant(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// ToolResult builds a tool-result message answering the given call.
func ToolResult(callID, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: callID}
}

// ToolCall is a model request to invoke a tool. Arguments is the raw JSON
// object produced by the model.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolDefinition describes a tool the model may invoke mid-generation:
// a name, a human description and a JSON-schema parameter object.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Response is a complete model reply. When ToolCalls is non-empty the model
// paused to have the listed tools executed; Content may be empty in that case.
type Response struct {
	Content   string
	ToolCalls []ToolCall
}

// CallOptions collects per-call settings.
type CallOptions struct {
	Model       string
	Temperature float32
	MaxTokens   int
	Tools       []ToolDefinition

	temperatureSet bool
}

// TemperatureSet reports whether WithTemperature was applied, so clients can
// distinguish "zero" from "unset".
func (o CallOptions) TemperatureSet() bool {
	return o.temperatureSet
}

// CallOption mutates CallOptions.
type CallOption func(*CallOptions)

// WithModel overrides the model identifier for this call.
func WithModel(model string) CallOption {
	return func(o *CallOptions) { o.Model = model }
}

// WithTemperature sets the sampling temperature for this call.
func WithTemperature(t float32) CallOption {
	return func(o *CallOptions) {
		o.Temperature = t
		o.temperatureSet = true
	}
}

// WithMaxTokens caps the response length for this call.
func WithMaxTokens(n int) CallOption {
	return func(o *CallOptions) { o.MaxTokens = n }
}

// WithTools exposes tool definitions to the model for this call.
func WithTools(tools ...ToolDefinition) CallOption {
	return func(o *CallOptions) { o.Tools = append(o.Tools, tools...) }
}

// ApplyOptions folds a list of options into a CallOptions value.
func ApplyOptions(opts ...CallOption) CallOptions {
	var o CallOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Model is the text-generation collaborator.
type Model interface {
	// Generate blocks until the model produces a complete response.
	Generate(ctx context.Context, messages []Message, opts ...CallOption) (*Response, error)

	// Stream starts a generation and returns a reader over its text
	// fragments. Closing the reader stops the generation.
	Stream(ctx context.Context, messages []Message, opts ...CallOption) (*StreamReader, error)
}
