package adapter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/iangithub/langchain-ai-agent/llm"
)

// fakeLLM is a scripted llms.Model that records what it was called with.
type fakeLLM struct {
	response *llms.ContentResponse
	err      error

	messages []llms.MessageContent
	options  llms.CallOptions
}

func (f *fakeLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	f.messages = messages
	for _, opt := range options {
		opt(&f.options)
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.options.StreamingFunc != nil {
		for _, chunk := range []string{"str", "eamed ", "reply"} {
			if err := f.options.StreamingFunc(ctx, []byte(chunk)); err != nil {
				return nil, err
			}
		}
	}
	return f.response, nil
}

func (f *fakeLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	resp, err := f.GenerateContent(ctx, []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)}, options...)
	if err != nil {
		return "", err
	}
	return resp.Choices[0].Content, nil
}

func textResponse(content string) *llms.ContentResponse {
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: content}},
	}
}

func TestLangChainModelGenerate(t *testing.T) {
	fake := &fakeLLM{response: textResponse("hello")}
	model := NewLangChainModel(fake)

	resp, err := model.Generate(context.Background(), []llm.Message{
		llm.System("be brief"),
		llm.User("hi"),
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Content)

	require.Len(t, fake.messages, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, fake.messages[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, fake.messages[1].Role)
}

func TestLangChainModelGenerateToolCalls(t *testing.T) {
	fake := &fakeLLM{response: &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{
			ToolCalls: []llms.ToolCall{{
				ID:   "call-1",
				Type: "function",
				FunctionCall: &llms.FunctionCall{
					Name:      "get_product_info",
					Arguments: `{"product_name":"airpure"}`,
				},
			}},
		}},
	}}
	model := NewLangChainModel(fake)

	resp, err := model.Generate(context.Background(), []llm.Message{llm.User("airpure?")})
	require.NoError(t, err)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "call-1", resp.ToolCalls[0].ID)
	assert.Equal(t, "get_product_info", resp.ToolCalls[0].Name)
}

func TestLangChainModelGenerateEmptyResponse(t *testing.T) {
	fake := &fakeLLM{response: &llms.ContentResponse{}}
	model := NewLangChainModel(fake)

	_, err := model.Generate(context.Background(), []llm.Message{llm.User("hi")})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestLangChainModelGenerateError(t *testing.T) {
	boom := errors.New("provider down")
	fake := &fakeLLM{err: boom}
	model := NewLangChainModel(fake)

	_, err := model.Generate(context.Background(), []llm.Message{llm.User("hi")})
	assert.ErrorIs(t, err, boom)
}

func TestLangChainModelForwardsCallOptions(t *testing.T) {
	fake := &fakeLLM{response: textResponse("ok")}
	model := NewLangChainModel(fake)

	_, err := model.Generate(context.Background(), []llm.Message{llm.User("hi")},
		llm.WithModel("gpt-4o"),
		llm.WithTemperature(0.4),
		llm.WithMaxTokens(128),
		llm.WithTools(llm.ToolDefinition{Name: "lookup"}),
	)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", fake.options.Model)
	assert.InDelta(t, 0.4, fake.options.Temperature, 1e-6)
	assert.Equal(t, 128, fake.options.MaxTokens)
	require.Len(t, fake.options.Tools, 1)
	assert.Equal(t, "lookup", fake.options.Tools[0].Function.Name)
}

func TestLangChainModelMessageConversion(t *testing.T) {
	fake := &fakeLLM{response: textResponse("ok")}
	model := NewLangChainModel(fake)

	_, err := model.Generate(context.Background(), []llm.Message{
		{
			Role: llm.RoleAssistant,
			ToolCalls: []llm.ToolCall{
				{ID: "call-1", Name: "get_order_status", Arguments: `{"order_id":"ORD-2024-001"}`},
			},
		},
		llm.ToolResult("call-1", "delivered"),
	})
	require.NoError(t, err)
	require.Len(t, fake.messages, 2)

	assistant := fake.messages[0]
	assert.Equal(t, llms.ChatMessageTypeAI, assistant.Role)
	var foundCall bool
	for _, part := range assistant.Parts {
		if tc, ok := part.(llms.ToolCall); ok {
			foundCall = true
			assert.Equal(t, "get_order_status", tc.FunctionCall.Name)
		}
	}
	assert.True(t, foundCall, "assistant message should carry the tool call part")

	toolMsg := fake.messages[1]
	assert.Equal(t, llms.ChatMessageTypeTool, toolMsg.Role)
	resp, ok := toolMsg.Parts[0].(llms.ToolCallResponse)
	require.True(t, ok)
	assert.Equal(t, "call-1", resp.ToolCallID)
	assert.Equal(t, "delivered", resp.Content)
}

func TestLangChainModelStream(t *testing.T) {
	fake := &fakeLLM{response: textResponse("streamed reply")}
	model := NewLangChainModel(fake)

	stream, err := model.Stream(context.Background(), []llm.Message{llm.User("hi")})
	require.NoError(t, err)

	text, err := stream.Collect()
	require.NoError(t, err)
	assert.Equal(t, "streamed reply", text)
}

func TestLangChainModelStreamError(t *testing.T) {
	boom := errors.New("provider down")
	fake := &fakeLLM{err: boom}
	model := NewLangChainModel(fake)

	stream, err := model.Stream(context.Background(), []llm.Message{llm.User("hi")})
	require.NoError(t, err)

	_, err = stream.Collect()
	assert.ErrorIs(t, err, boom)
}
