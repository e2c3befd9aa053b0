// Package openai implements llm.Model over the OpenAI chat completions API,
// including tool calling and token streaming. Any OpenAI-compatible endpoint
// works via WithBaseURL.
package openai

import (
	"context"
	"errors"
	"fmt"
	"io"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/iangithub/langchain-ai-agent/llm"
)

// ErrNoAPIKey is returned by New when no API key is configured.
var ErrNoAPIKey = errors.New("openai: API key not set")

// Client is an OpenAI-backed llm.Model.
type Client struct {
	client      *goopenai.Client
	model       string
	temperature float32
	tempSet     bool
}

var _ llm.Model = (*Client)(nil)

// New builds a client. The API key comes from WithAPIKey or the
// OPENAI_API_KEY environment variable.
//
// Example:
//
//	model, err := openai.New(
//		openai.WithModel("gpt-4o"),
//		openai.WithTemperature(0.2),
//	)
func New(opts ...Option) (*Client, error) {
	o := &options{
		apiKey:  getEnvOrDefault("OPENAI_API_KEY", ""),
		baseURL: getEnvOrDefault("OPENAI_BASE_URL", ""),
		model:   getEnvOrDefault("OPENAI_MODEL", defaultModel),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.apiKey == "" {
		return nil, fmt.Errorf(`%w
You can pass it with openai.New(openai.WithAPIKey("{API Key}"))
or
export OPENAI_API_KEY={API Key}`, ErrNoAPIKey)
	}

	cfg := goopenai.DefaultConfig(o.apiKey)
	if o.baseURL != "" {
		cfg.BaseURL = o.baseURL
	}
	if o.httpClient != nil {
		cfg.HTTPClient = o.httpClient
	}

	return &Client{
		client:      goopenai.NewClientWithConfig(cfg),
		model:       o.model,
		temperature: o.temperature,
		tempSet:     o.tempSet,
	}, nil
}

// Generate implements llm.Model.
func (c *Client) Generate(ctx context.Context, messages []llm.Message, opts ...llm.CallOption) (*llm.Response, error) {
	req := c.buildRequest(messages, llm.ApplyOptions(opts...))

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai: empty response")
	}

	choice := resp.Choices[0].Message
	out := &llm.Response{Content: choice.Content}
	for _, tc := range choice.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, llm.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return out, nil
}

// Stream implements llm.Model. The returned reader yields content deltas in
// arrival order; closing it cancels the underlying request.
func (c *Client) Stream(ctx context.Context, messages []llm.Message, opts ...llm.CallOption) (*llm.StreamReader, error) {
	req := c.buildRequest(messages, llm.ApplyOptions(opts...))
	req.Stream = true

	ctx, cancel := context.WithCancel(ctx)
	stream, err := c.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("openai: chat completion stream: %w", err)
	}

	chunks := make(chan string)
	errs := make(chan error, 1)
	go func() {
		defer close(chunks)
		defer stream.Close()
		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				errs <- fmt.Errorf("openai: stream recv: %w", err)
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			delta := resp.Choices[0].Delta.Content
			if delta == "" {
				continue
			}
			select {
			case chunks <- delta:
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}
		}
	}()
	return llm.NewStreamReader(chunks, errs, cancel), nil
}

func (c *Client) buildRequest(messages []llm.Message, o llm.CallOptions) goopenai.ChatCompletionRequest {
	req := goopenai.ChatCompletionRequest{
		Model:    c.model,
		Messages: toOpenAIMessages(messages),
	}
	if o.Model != "" {
		req.Model = o.Model
	}
	switch {
	case o.TemperatureSet():
		req.Temperature = o.Temperature
	case c.tempSet:
		req.Temperature = c.temperature
	}
	if o.MaxTokens > 0 {
		req.MaxTokens = o.MaxTokens
	}
	for _, t := range o.Tools {
		req.Tools = append(req.Tools, goopenai.Tool{
			Type: goopenai.ToolTypeFunction,
			Function: &goopenai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return req
}

func toOpenAIMessages(messages []llm.Message) []goopenai.ChatCompletionMessage {
	out := make([]goopenai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		om := goopenai.ChatCompletionMessage{
			Role:       string(m.Role),
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			om.ToolCalls = append(om.ToolCalls, goopenai.ToolCall{
				ID:   tc.ID,
				Type: goopenai.ToolTypeFunction,
				Function: goopenai.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		out = append(out, om)
	}
	return out
}
