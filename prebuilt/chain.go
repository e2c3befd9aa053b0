// Package prebuilt offers ready-made workflows assembled from the graph,
// llm and tool packages: a prompt-template chain, a tool-calling chat agent
// with session memory, a sequential review pipeline, a triage handoff
// workflow and a concurrent translation workflow.
package prebuilt

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/prompts"

	"github.com/iangithub/langchain-ai-agent/llm"
)

// Chain renders a prompt template and sends it to a model. It is the smallest
// useful composition: template in, text out.
type Chain struct {
	model    llm.Model
	prompt   prompts.PromptTemplate
	system   string
	callOpts []llm.CallOption
}

// NewChain builds a chain over the template with the given input variables.
func NewChain(model llm.Model, template string, inputVars []string, opts ...ChainOption) *Chain {
	c := &Chain{
		model:  model,
		prompt: prompts.NewPromptTemplate(template, inputVars),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ChainOption configures a Chain.
type ChainOption func(*Chain)

// WithChainSystemPrompt prepends a system message to every call.
func WithChainSystemPrompt(s string) ChainOption {
	return func(c *Chain) { c.system = s }
}

// WithChainCallOptions sets model call options used on every call.
func WithChainCallOptions(opts ...llm.CallOption) ChainOption {
	return func(c *Chain) { c.callOpts = opts }
}

// Run renders the template with inputs and returns the model's reply.
func (c *Chain) Run(ctx context.Context, inputs map[string]any) (string, error) {
	messages, err := c.buildMessages(inputs)
	if err != nil {
		return "", err
	}
	resp, err := c.model.Generate(ctx, messages, c.callOpts...)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// Stream renders the template and streams the model's reply.
func (c *Chain) Stream(ctx context.Context, inputs map[string]any) (*llm.StreamReader, error) {
	messages, err := c.buildMessages(inputs)
	if err != nil {
		return nil, err
	}
	return c.model.Stream(ctx, messages, c.callOpts...)
}

func (c *Chain) buildMessages(inputs map[string]any) ([]llm.Message, error) {
	rendered, err := c.prompt.Format(inputs)
	if err != nil {
		return nil, fmt.Errorf("chain: format prompt: %w", err)
	}
	var messages []llm.Message
	if c.system != "" {
		messages = append(messages, llm.System(c.system))
	}
	messages = append(messages, llm.User(rendered))
	return messages, nil
}
