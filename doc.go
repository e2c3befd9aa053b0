// Package langchainaiagent builds stateful LLM agent workflows as graphs.
//
// A workflow is a directed graph of named nodes. Each node reads the shared
// state and returns a partial update; a schema with per-field reducers merges
// updates back into the state. Edges may be unconditional, conditional with a
// mandatory fallback, or fan out to several nodes that run concurrently and
// join downstream. Runs can persist per-session checkpoints so a later
// invocation continues where the previous one ended.
//
// Package layout:
//
//   - graph: schema, state graph construction, compilation and execution
//   - llm: the model interface, call options, streaming and a scripted mock
//   - llm/openai: an OpenAI-backed client
//   - adapter: bridges langchaingo models to the llm interface
//   - tool: the tool-invocation surface plus catalog lookup tools and an
//     HTTP tool server/client
//   - prebuilt: ready-made workflows such as a tool-calling chat agent, a
//     sequential review pipeline, a triage handoff and a concurrent
//     translation workflow
//   - store: checkpoint persistence over memory, files, SQLite, Redis and
//     PostgreSQL
//   - webhook: a LINE webhook server that answers messages through a workflow
//
// A minimal graph:
//
//	schema := graph.NewSchema().AddField("answer", "")
//
//	sg := graph.NewStateGraph(schema)
//	sg.AddNode("answer", "produce the answer", func(ctx context.Context, state graph.State) (graph.State, error) {
//		return graph.State{"answer": "42"}, nil
//	})
//	sg.SetEntryPoint("answer")
//	sg.AddEdge("answer", graph.END)
//
//	runnable, err := sg.Compile()
//	if err != nil {
//		log.Fatal(err)
//	}
//	final, err := runnable.Invoke(ctx, nil)
//
// See the examples directory for complete programs.
package langchainaiagent // import "github.com/iangithub/langchain-ai-agent"
