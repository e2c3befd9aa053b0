// Package adapter bridges external LLM frameworks to the llm.Model interface,
// so graphs built on this module can run against any langchaingo-supported
// provider without a dedicated client.
package adapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"

	"github.com/iangithub/langchain-ai-agent/llm"
)

// ErrEmptyResponse is returned when the wrapped model produced no choices.
var ErrEmptyResponse = errors.New("adapter: empty response")

// LangChainModel adapts a langchaingo llms.Model to llm.Model.
type LangChainModel struct {
	model llms.Model
}

var _ llm.Model = (*LangChainModel)(nil)

// NewLangChainModel wraps a langchaingo model.
func NewLangChainModel(m llms.Model) *LangChainModel {
	return &LangChainModel{model: m}
}

// Generate implements llm.Model.
func (a *LangChainModel) Generate(ctx context.Context, messages []llm.Message, opts ...llm.CallOption) (*llm.Response, error) {
	resp, err := a.model.GenerateContent(ctx, toContent(messages), toCallOptions(llm.ApplyOptions(opts...))...)
	if err != nil {
		return nil, fmt.Errorf("adapter: generate content: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	choice := resp.Choices[0]
	out := &llm.Response{Content: choice.Content}
	for _, tc := range choice.ToolCalls {
		if tc.FunctionCall == nil {
			continue
		}
		out.ToolCalls = append(out.ToolCalls, llm.ToolCall{
			ID:        tc.ID,
			Name:      tc.FunctionCall.Name,
			Arguments: tc.FunctionCall.Arguments,
		})
	}
	return out, nil
}

// Stream implements llm.Model via langchaingo's streaming callback.
func (a *LangChainModel) Stream(ctx context.Context, messages []llm.Message, opts ...llm.CallOption) (*llm.StreamReader, error) {
	ctx, cancel := context.WithCancel(ctx)
	chunks := make(chan string)
	errs := make(chan error, 1)

	callOpts := toCallOptions(llm.ApplyOptions(opts...))
	callOpts = append(callOpts, llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
		select {
		case chunks <- string(chunk):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}))

	go func() {
		defer close(chunks)
		if _, err := a.model.GenerateContent(ctx, toContent(messages), callOpts...); err != nil {
			errs <- fmt.Errorf("adapter: generate content: %w", err)
		}
	}()
	return llm.NewStreamReader(chunks, errs, cancel), nil
}

func toContent(messages []llm.Message) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case llm.RoleTool:
			out = append(out, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{llms.ToolCallResponse{
					ToolCallID: m.ToolCallID,
					Content:    m.Content,
				}},
			})
		case llm.RoleAssistant:
			mc := llms.TextParts(llms.ChatMessageTypeAI, m.Content)
			for _, tc := range m.ToolCalls {
				mc.Parts = append(mc.Parts, llms.ToolCall{
					ID:   tc.ID,
					Type: "function",
					FunctionCall: &llms.FunctionCall{
						Name:      tc.Name,
						Arguments: tc.Arguments,
					},
				})
			}
			out = append(out, mc)
		case llm.RoleSystem:
			out = append(out, llms.TextParts(llms.ChatMessageTypeSystem, m.Content))
		default:
			out = append(out, llms.TextParts(llms.ChatMessageTypeHuman, m.Content))
		}
	}
	return out
}

func toCallOptions(o llm.CallOptions) []llms.CallOption {
	var opts []llms.CallOption
	if o.Model != "" {
		opts = append(opts, llms.WithModel(o.Model))
	}
	if o.TemperatureSet() {
		opts = append(opts, llms.WithTemperature(float64(o.Temperature)))
	}
	if o.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(o.MaxTokens))
	}
	if len(o.Tools) > 0 {
		tools := make([]llms.Tool, 0, len(o.Tools))
		for _, t := range o.Tools {
			tools = append(tools, llms.Tool{
				Type: "function",
				Function: &llms.FunctionDefinition{
					Name:        t.Name,
					Description: t.Description,
					Parameters:  t.Parameters,
				},
			})
		}
		opts = append(opts, llms.WithTools(tools))
	}
	return opts
}
