package prebuilt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iangithub/langchain-ai-agent/llm"
)

func TestChainRun(t *testing.T) {
	model := llm.NewMockModel("a catchy slogan")
	chain := NewChain(model, "為產品「{{.product}}」想一句廣告標語。", []string{"product"})

	out, err := chain.Run(context.Background(), map[string]any{"product": "AirPure Pro"})
	require.NoError(t, err)
	assert.Equal(t, "a catchy slogan", out)

	require.Len(t, model.Calls, 1)
	require.Len(t, model.Calls[0], 1)
	assert.Equal(t, llm.RoleUser, model.Calls[0][0].Role)
	assert.Equal(t, "為產品「AirPure Pro」想一句廣告標語。", model.Calls[0][0].Content)
}

func TestChainSystemPrompt(t *testing.T) {
	model := llm.NewMockModel("ok")
	chain := NewChain(model, "{{.q}}", []string{"q"},
		WithChainSystemPrompt("你是一位行銷專家。"))

	_, err := chain.Run(context.Background(), map[string]any{"q": "hello"})
	require.NoError(t, err)

	require.Len(t, model.Calls[0], 2)
	assert.Equal(t, llm.RoleSystem, model.Calls[0][0].Role)
	assert.Equal(t, "你是一位行銷專家。", model.Calls[0][0].Content)
}

func TestChainMissingVariable(t *testing.T) {
	model := llm.NewMockModel("unused")
	chain := NewChain(model, "{{.product}}", []string{"product"})

	_, err := chain.Run(context.Background(), map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "format prompt")
	assert.Zero(t, model.CallCount())
}

func TestChainStream(t *testing.T) {
	model := llm.NewMockModel("streamed chain output")
	chain := NewChain(model, "{{.q}}", []string{"q"})

	stream, err := chain.Stream(context.Background(), map[string]any{"q": "go"})
	require.NoError(t, err)

	text, err := stream.Collect()
	require.NoError(t, err)
	assert.Equal(t, "streamed chain output", text)
}
