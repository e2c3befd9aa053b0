package prebuilt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iangithub/langchain-ai-agent/graph"
	"github.com/iangithub/langchain-ai-agent/llm"
	"github.com/iangithub/langchain-ai-agent/store"
	"github.com/iangithub/langchain-ai-agent/tool"
)

// ChatAgent is a tool-calling conversational agent. Each turn the model
// either answers directly or requests tool calls; requested tools run and
// their results are fed back until the model produces a final answer.
// Conversations persist per session via a checkpoint store, so a later turn
// with the same session id continues where the previous one ended.
type ChatAgent struct {
	model     llm.Model
	tools     []tool.Tool
	defs      []llm.ToolDefinition
	system    string
	store     store.CheckpointStore
	maxRounds int
	runnable  *graph.Runnable

	mu       sync.Mutex
	sessions map[string]*sync.Mutex
}

// ChatAgentOption configures a ChatAgent.
type ChatAgentOption func(*ChatAgent)

// WithSystemPrompt sets the agent's system prompt.
func WithSystemPrompt(s string) ChatAgentOption {
	return func(a *ChatAgent) { a.system = s }
}

// WithCheckpointStore enables session persistence.
func WithCheckpointStore(s store.CheckpointStore) ChatAgentOption {
	return func(a *ChatAgent) { a.store = s }
}

// WithMaxToolRounds caps how many times the model may request tools in one
// turn before it is forced to answer. Defaults to 5.
func WithMaxToolRounds(n int) ChatAgentOption {
	return func(a *ChatAgent) { a.maxRounds = n }
}

// NewChatAgent builds the agent's graph: an agent node that calls the model,
// a tools node that executes requested calls, and a conditional edge looping
// between them until the model answers.
func NewChatAgent(model llm.Model, tools []tool.Tool, opts ...ChatAgentOption) (*ChatAgent, error) {
	a := &ChatAgent{
		model:     model,
		tools:     tools,
		defs:      tool.Definitions(tools...),
		maxRounds: 5,
		sessions:  make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(a)
	}

	schema := graph.NewSchema().
		AddReducedField("messages", nil, graph.AppendReducer).
		AddField("rounds", 0)

	sg := graph.NewStateGraph(schema)
	sg.AddNode("agent", "decide whether to answer or call tools", a.agentNode)
	sg.AddNode("tools", "execute the tool calls the model requested", a.toolsNode)
	sg.SetEntryPoint("agent")
	sg.AddConditionalEdges("agent", routeAfterAgent, map[string]string{
		"tools": "tools",
		"final": graph.END,
	}, graph.END)
	sg.AddEdge("tools", "agent")
	if a.store != nil {
		sg.SetCheckpointStore(a.store)
	}

	runnable, err := sg.Compile()
	if err != nil {
		return nil, err
	}
	a.runnable = runnable
	return a, nil
}

// Chat runs one conversational turn in the given session and returns the
// final assistant answer. An empty sessionID runs the turn without
// persistence.
func (a *ChatAgent) Chat(ctx context.Context, sessionID, text string) (string, error) {
	unlock := a.lockSession(sessionID)
	defer unlock()

	initial := graph.State{
		"messages": []llm.Message{llm.User(text)},
		"rounds":   0,
	}

	var cfg *graph.Config
	if sessionID != "" && a.store != nil {
		cfg = graph.WithSessionID(sessionID)
	}
	final, err := a.runnable.InvokeWithConfig(ctx, initial, cfg)
	if err != nil {
		return "", err
	}

	messages := MessagesFromState(final["messages"])
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == llm.RoleAssistant && len(messages[i].ToolCalls) == 0 {
			return messages[i].Content, nil
		}
	}
	return "", fmt.Errorf("chat agent: no assistant answer produced")
}

// ChatStream runs one turn like Chat, forwarding the answer's text to
// onChunk. Tool rounds resolve blocking until the model stops requesting
// tools, bounded by the same round budget as Chat; when the budget forces
// an answer, the final call uses the model's streaming API and fragments
// arrive as generated, otherwise the answer is forwarded whole.
func (a *ChatAgent) ChatStream(ctx context.Context, sessionID, text string, onChunk func(string)) (string, error) {
	unlock := a.lockSession(sessionID)
	defer unlock()

	messages, version, err := a.loadSession(ctx, sessionID)
	if err != nil {
		return "", err
	}
	messages = append(messages, llm.User(text))

	var answer string
	for round := 0; ; round++ {
		if round >= a.maxRounds {
			// Budget spent: stream the answer without offering tools again.
			stream, err := a.model.Stream(ctx, a.withSystem(messages))
			if err != nil {
				return "", err
			}
			answer, err = forward(stream, onChunk)
			if err != nil {
				return "", err
			}
			messages = append(messages, llm.Assistant(answer))
			break
		}

		resp, err := a.model.Generate(ctx, a.withSystem(messages), llm.WithTools(a.defs...))
		if err != nil {
			return "", err
		}
		if len(resp.ToolCalls) == 0 {
			answer = resp.Content
			if onChunk != nil {
				onChunk(answer)
			}
			messages = append(messages, llm.Assistant(answer))
			break
		}

		assistant := llm.Message{Role: llm.RoleAssistant, Content: resp.Content, ToolCalls: resp.ToolCalls}
		messages = append(messages, assistant)
		results, err := a.runTools(ctx, resp.ToolCalls)
		if err != nil {
			return "", err
		}
		messages = append(messages, results...)
	}

	if err := a.saveSession(ctx, sessionID, messages, version); err != nil {
		return "", err
	}
	return answer, nil
}

func (a *ChatAgent) agentNode(ctx context.Context, state graph.State) (graph.State, error) {
	messages := MessagesFromState(state["messages"])
	rounds, _ := state["rounds"].(int)

	callOpts := []llm.CallOption{}
	if rounds < a.maxRounds {
		callOpts = append(callOpts, llm.WithTools(a.defs...))
	}
	resp, err := a.model.Generate(ctx, a.withSystem(messages), callOpts...)
	if err != nil {
		return nil, err
	}

	msg := llm.Message{Role: llm.RoleAssistant, Content: resp.Content, ToolCalls: resp.ToolCalls}
	return graph.State{
		"messages": []llm.Message{msg},
		"rounds":   rounds + 1,
	}, nil
}

func (a *ChatAgent) toolsNode(ctx context.Context, state graph.State) (graph.State, error) {
	messages := MessagesFromState(state["messages"])
	if len(messages) == 0 {
		return nil, fmt.Errorf("chat agent: tools node reached with no messages")
	}
	last := messages[len(messages)-1]
	results, err := a.runTools(ctx, last.ToolCalls)
	if err != nil {
		return nil, err
	}
	return graph.State{"messages": results}, nil
}

// runTools executes each requested call. Tool failures become result text the
// model can read and recover from rather than aborting the turn.
func (a *ChatAgent) runTools(ctx context.Context, calls []llm.ToolCall) ([]llm.Message, error) {
	results := make([]llm.Message, 0, len(calls))
	for _, call := range calls {
		out, err := tool.Invoke(ctx, a.tools, call)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			out = fmt.Sprintf("tool %s failed: %v", call.Name, err)
		}
		results = append(results, llm.ToolResult(call.ID, out))
	}
	return results, nil
}

func (a *ChatAgent) withSystem(messages []llm.Message) []llm.Message {
	if a.system == "" {
		return messages
	}
	out := make([]llm.Message, 0, len(messages)+1)
	out = append(out, llm.System(a.system))
	return append(out, messages...)
}

// lockSession serializes persisted turns per session id so overlapping
// requests cannot both load the same version and lose one save. Unpersisted
// turns need no serialization.
func (a *ChatAgent) lockSession(sessionID string) func() {
	if sessionID == "" || a.store == nil {
		return func() {}
	}
	a.mu.Lock()
	m, ok := a.sessions[sessionID]
	if !ok {
		m = &sync.Mutex{}
		a.sessions[sessionID] = m
	}
	a.mu.Unlock()

	m.Lock()
	return m.Unlock
}

func (a *ChatAgent) loadSession(ctx context.Context, sessionID string) ([]llm.Message, int, error) {
	if sessionID == "" || a.store == nil {
		return nil, 0, nil
	}
	cp, err := a.store.LoadLatest(ctx, sessionID)
	if err != nil || cp == nil {
		return nil, 0, err
	}
	return MessagesFromState(cp.State["messages"]), cp.Version, nil
}

func (a *ChatAgent) saveSession(ctx context.Context, sessionID string, messages []llm.Message, version int) error {
	if sessionID == "" || a.store == nil {
		return nil
	}
	return a.store.Save(ctx, &store.Checkpoint{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		NodeName:  graph.END,
		State:     map[string]any{"messages": messages, "rounds": 0},
		Timestamp: time.Now().UTC(),
		Version:   version + 1,
	})
}

func routeAfterAgent(ctx context.Context, state graph.State) string {
	messages := MessagesFromState(state["messages"])
	if len(messages) == 0 {
		return "final"
	}
	last := messages[len(messages)-1]
	if last.Role == llm.RoleAssistant && len(last.ToolCalls) > 0 {
		return "tools"
	}
	return "final"
}

func forward(stream *llm.StreamReader, onChunk func(string)) (string, error) {
	defer stream.Close()
	var full string
	for {
		chunk, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return full, nil
			}
			return full, err
		}
		if onChunk != nil {
			onChunk(chunk)
		}
		full += chunk
	}
}

// MessagesFromState revives a message list from graph state. In-memory
// sessions keep the []llm.Message type; serializing stores hand back
// []any of generic maps, which round-trip through JSON here.
func MessagesFromState(v any) []llm.Message {
	switch msgs := v.(type) {
	case nil:
		return nil
	case []llm.Message:
		return msgs
	default:
		raw, err := json.Marshal(msgs)
		if err != nil {
			return nil
		}
		var out []llm.Message
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil
		}
		return out
	}
}
