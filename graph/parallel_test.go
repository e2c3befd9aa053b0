package graph

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func translationGraph(t *testing.T) *Runnable {
	t.Helper()

	schema := NewSchema().
		AddField("source", "").
		AddField("zh", "").
		AddField("ja", "").
		AddField("fr", "").
		AddField("report", "")

	sg := NewStateGraph(schema)
	sg.AddNode("zh", "", func(ctx context.Context, state State) (State, error) {
		return State{"zh": "zh:" + state["source"].(string)}, nil
	})
	sg.AddNode("ja", "", func(ctx context.Context, state State) (State, error) {
		return State{"ja": "ja:" + state["source"].(string)}, nil
	})
	sg.AddNode("fr", "", func(ctx context.Context, state State) (State, error) {
		return State{"fr": "fr:" + state["source"].(string)}, nil
	})
	sg.AddNode("aggregate", "", func(ctx context.Context, state State) (State, error) {
		report := state["zh"].(string) + "|" + state["ja"].(string) + "|" + state["fr"].(string)
		return State{"report": report}, nil
	})
	sg.DeclareWrites("zh", "zh")
	sg.DeclareWrites("ja", "ja")
	sg.DeclareWrites("fr", "fr")
	sg.DeclareWrites("aggregate", "report")

	sg.AddEdge(START, "zh")
	sg.AddEdge(START, "ja")
	sg.AddEdge(START, "fr")
	sg.AddEdge("zh", "aggregate")
	sg.AddEdge("ja", "aggregate")
	sg.AddEdge("fr", "aggregate")
	sg.AddEdge("aggregate", END)

	runnable, err := sg.Compile()
	require.NoError(t, err)
	return runnable
}

func TestFanOutFanIn(t *testing.T) {
	runnable := translationGraph(t)

	final, err := runnable.Invoke(context.Background(), State{"source": "hello"})
	require.NoError(t, err)
	assert.Equal(t, "zh:hello|ja:hello|fr:hello", final["report"])
}

func TestFanOutIsDeterministic(t *testing.T) {
	runnable := translationGraph(t)

	first, err := runnable.Invoke(context.Background(), State{"source": "doc"})
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := runnable.Invoke(context.Background(), State{"source": "doc"})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

// A join must wait for a longer sibling branch even when the shorter branch
// reaches it first.
func TestJoinWaitsForLongerBranch(t *testing.T) {
	schema := NewSchema().
		AddField("short", "").
		AddField("long", "").
		AddReducedField("order", nil, AppendReducer)

	sg := NewStateGraph(schema)
	sg.AddNode("short", "", func(ctx context.Context, state State) (State, error) {
		return State{"short": "done", "order": []string{"short"}}, nil
	})
	sg.AddNode("long1", "", appendTo("order", "long1"))
	sg.AddNode("long2", "", func(ctx context.Context, state State) (State, error) {
		return State{"long": "done", "order": []string{"long2"}}, nil
	})
	sg.AddNode("join", "", func(ctx context.Context, state State) (State, error) {
		// Both branches must be visible here.
		require.Equal(t, "done", state["short"])
		require.Equal(t, "done", state["long"])
		return State{"order": []string{"join"}}, nil
	})
	sg.AddEdge(START, "short")
	sg.AddEdge(START, "long1")
	sg.AddEdge("long1", "long2")
	sg.AddEdge("short", "join")
	sg.AddEdge("long2", "join")
	sg.AddEdge("join", END)

	runnable, err := sg.Compile()
	require.NoError(t, err)

	final, err := runnable.Invoke(context.Background(), nil)
	require.NoError(t, err)
	order := final["order"].([]string)
	assert.Equal(t, "join", order[len(order)-1])
	assert.Len(t, order, 4)
}

func TestJoinRunsOnce(t *testing.T) {
	var joins atomic.Int32

	schema := NewSchema().AddField("a", "").AddField("b", "")
	sg := NewStateGraph(schema)
	sg.AddNode("a", "", setField("a", "a"))
	sg.AddNode("b", "", setField("b", "b"))
	sg.AddNode("join", "", func(ctx context.Context, state State) (State, error) {
		joins.Add(1)
		return nil, nil
	})
	sg.AddEdge(START, "a")
	sg.AddEdge(START, "b")
	sg.AddEdge("a", "join")
	sg.AddEdge("b", "join")
	sg.AddEdge("join", END)

	runnable, err := sg.Compile()
	require.NoError(t, err)

	_, err = runnable.Invoke(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, int32(1), joins.Load())
}

// When a conditional edge activates only one branch into a join, the join
// must not wait for the branch that was never taken.
func TestJoinIgnoresUntakenBranch(t *testing.T) {
	schema := NewSchema().AddField("path", "").AddField("seen", "")

	sg := NewStateGraph(schema)
	sg.AddNode("pick", "", func(ctx context.Context, state State) (State, error) {
		return nil, nil
	})
	sg.AddNode("left", "", setField("seen", "left"))
	sg.AddNode("right", "", setField("seen", "right"))
	sg.AddNode("join", "", func(ctx context.Context, state State) (State, error) {
		return nil, nil
	})
	sg.SetEntryPoint("pick")
	sg.AddConditionalEdges("pick", func(ctx context.Context, state State) string {
		return state["path"].(string)
	}, map[string]string{"left": "left", "right": "right"}, "left")
	sg.AddEdge("left", "join")
	sg.AddEdge("right", "join")
	sg.AddEdge("join", END)

	runnable, err := sg.Compile()
	require.NoError(t, err)

	final, err := runnable.Invoke(context.Background(), State{"path": "right"})
	require.NoError(t, err)
	assert.Equal(t, "right", final["seen"])
}

func TestCompileRejectsConflictingWrites(t *testing.T) {
	schema := NewSchema().AddField("out", "")

	sg := NewStateGraph(schema)
	sg.AddNode("a", "", setField("out", "a"))
	sg.AddNode("b", "", setField("out", "b"))
	sg.AddNode("join", "", func(ctx context.Context, state State) (State, error) {
		return nil, nil
	})
	sg.DeclareWrites("a", "out")
	sg.DeclareWrites("b", "out")
	sg.AddEdge(START, "a")
	sg.AddEdge(START, "b")
	sg.AddEdge("a", "join")
	sg.AddEdge("b", "join")
	sg.AddEdge("join", END)

	_, err := sg.Compile()
	assert.ErrorIs(t, err, ErrConflictingWrites)
}

func TestReducedFieldWritesDoNotConflict(t *testing.T) {
	schema := NewSchema().AddReducedField("out", nil, AppendReducer)

	sg := NewStateGraph(schema)
	sg.AddNode("a", "", appendTo("out", "a"))
	sg.AddNode("b", "", appendTo("out", "b"))
	sg.AddNode("join", "", func(ctx context.Context, state State) (State, error) {
		return nil, nil
	})
	sg.DeclareWrites("a", "out")
	sg.DeclareWrites("b", "out")
	sg.AddEdge(START, "a")
	sg.AddEdge(START, "b")
	sg.AddEdge("a", "join")
	sg.AddEdge("b", "join")
	sg.AddEdge("join", END)

	runnable, err := sg.Compile()
	require.NoError(t, err)

	final, err := runnable.Invoke(context.Background(), nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, final["out"])
}

// When a loop schedules a join and one of its predecessors in the same step,
// the join must wait for the predecessor's fresh run instead of firing on its
// completion from the previous iteration.
func TestLoopedJoinWaitsForReactivatedPredecessor(t *testing.T) {
	schema := NewSchema().
		AddField("visits", 0).
		AddField("score", "")

	var mergeRuns atomic.Int32
	var mergeSaw atomic.Int32

	sg := NewStateGraph(schema)
	sg.AddNode("fetch", "", func(ctx context.Context, state State) (State, error) {
		return State{"visits": state["visits"].(int) + 1}, nil
	})
	sg.AddNode("expand", "", func(ctx context.Context, state State) (State, error) {
		return nil, nil
	})
	sg.AddNode("score", "", setField("score", "scored"))
	sg.AddNode("redo", "", func(ctx context.Context, state State) (State, error) {
		return nil, nil
	})
	sg.AddNode("merge", "", func(ctx context.Context, state State) (State, error) {
		mergeRuns.Add(1)
		mergeSaw.Store(int32(state["visits"].(int)))
		return nil, nil
	})

	sg.SetEntryPoint("fetch")
	sg.AddConditionalEdges("fetch", func(ctx context.Context, state State) string {
		if state["visits"].(int) < 2 {
			return "expand"
		}
		return "merge"
	}, map[string]string{"expand": "expand", "merge": "merge"}, "merge")
	// expand fans out: one branch reaches the join directly, the other loops
	// back through fetch, which is itself a predecessor of the join.
	sg.AddEdge("expand", "score")
	sg.AddEdge("expand", "redo")
	sg.AddEdge("score", "merge")
	sg.AddEdge("redo", "fetch")
	sg.AddEdge("merge", END)

	runnable, err := sg.Compile()
	require.NoError(t, err)

	final, err := runnable.Invoke(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, int32(1), mergeRuns.Load())
	assert.Equal(t, int32(2), mergeSaw.Load())
	assert.Equal(t, 2, final["visits"])
	assert.Equal(t, "scored", final["score"])
}
