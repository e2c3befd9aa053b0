package graph

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iangithub/langchain-ai-agent/store/file"
	"github.com/iangithub/langchain-ai-agent/store/memory"
)

func counterGraph(t *testing.T, cs *memory.MemoryCheckpointStore) *Runnable {
	t.Helper()

	schema := NewSchema().
		AddField("count", 0).
		AddReducedField("inputs", nil, AppendReducer)

	sg := NewStateGraph(schema)
	sg.AddNode("bump", "", func(ctx context.Context, state State) (State, error) {
		return State{"count": state["count"].(int) + 1}, nil
	})
	sg.SetEntryPoint("bump")
	sg.AddEdge("bump", END)
	sg.SetCheckpointStore(cs)

	runnable, err := sg.Compile()
	require.NoError(t, err)
	return runnable
}

func TestSessionContinuesFromCheckpoint(t *testing.T) {
	cs := memory.NewMemoryCheckpointStore()
	runnable := counterGraph(t, cs)
	ctx := context.Background()
	session := NewSessionID()

	first, err := runnable.InvokeWithConfig(ctx, State{"inputs": []string{"one"}}, WithSessionID(session))
	require.NoError(t, err)
	assert.Equal(t, 1, first["count"])

	// The second run starts from the first run's saved state.
	second, err := runnable.InvokeWithConfig(ctx, State{"inputs": []string{"two"}}, WithSessionID(session))
	require.NoError(t, err)
	assert.Equal(t, 2, second["count"])
	assert.Equal(t, []string{"one", "two"}, second["inputs"])

	cp, err := cs.LoadLatest(ctx, session)
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.Equal(t, 2, cp.Version)
	assert.Equal(t, 2, cp.State["count"])
}

func TestSessionRestoreRevivesSerializedState(t *testing.T) {
	// A store that round-trips through JSON hands numbers back as float64
	// and typed slices as []any; the restore path must coerce them back to
	// the schema's declared types before nodes see them.
	cs, err := file.NewFileCheckpointStore(t.TempDir())
	require.NoError(t, err)

	var observed []any
	schema := NewSchema().
		AddField("count", 0).
		AddReducedField("inputs", nil, AppendReducer)

	sg := NewStateGraph(schema)
	sg.AddNode("bump", "", func(ctx context.Context, state State) (State, error) {
		observed = append(observed, state["count"])
		count, ok := state["count"].(int)
		if !ok {
			return nil, fmt.Errorf("count restored as %T", state["count"])
		}
		return State{"count": count + 1}, nil
	})
	sg.SetEntryPoint("bump")
	sg.AddEdge("bump", END)
	sg.SetCheckpointStore(cs)

	runnable, err := sg.Compile()
	require.NoError(t, err)

	ctx := context.Background()
	session := NewSessionID()

	first, err := runnable.InvokeWithConfig(ctx, State{"inputs": []string{"one"}}, WithSessionID(session))
	require.NoError(t, err)
	assert.Equal(t, 1, first["count"])

	second, err := runnable.InvokeWithConfig(ctx, State{"inputs": []string{"two"}}, WithSessionID(session))
	require.NoError(t, err)
	assert.Equal(t, 2, second["count"])
	assert.Equal(t, []any{0, 1}, observed)
	assert.ElementsMatch(t, []any{"one", "two"}, second["inputs"])
}

func TestSessionsAreIsolated(t *testing.T) {
	cs := memory.NewMemoryCheckpointStore()
	runnable := counterGraph(t, cs)
	ctx := context.Background()

	a := NewSessionID()
	b := NewSessionID()

	_, err := runnable.InvokeWithConfig(ctx, nil, WithSessionID(a))
	require.NoError(t, err)
	_, err = runnable.InvokeWithConfig(ctx, nil, WithSessionID(a))
	require.NoError(t, err)

	final, err := runnable.InvokeWithConfig(ctx, nil, WithSessionID(b))
	require.NoError(t, err)
	assert.Equal(t, 1, final["count"])
}

func TestNoSessionMeansNoPersistence(t *testing.T) {
	cs := memory.NewMemoryCheckpointStore()
	runnable := counterGraph(t, cs)
	ctx := context.Background()

	_, err := runnable.Invoke(ctx, nil)
	require.NoError(t, err)

	sessions, err := cs.Sessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestFailedRunWritesNoCheckpoint(t *testing.T) {
	cs := memory.NewMemoryCheckpointStore()

	schema := NewSchema().AddField("count", 0)
	sg := NewStateGraph(schema)
	sg.AddNode("bump", "", func(ctx context.Context, state State) (State, error) {
		return State{"count": state["count"].(int) + 1}, nil
	})
	sg.AddNode("explode", "", func(ctx context.Context, state State) (State, error) {
		return nil, errors.New("boom")
	})
	sg.SetEntryPoint("bump")
	sg.AddEdge("bump", "explode")
	sg.AddEdge("explode", END)
	sg.SetCheckpointStore(cs)

	runnable, err := sg.Compile()
	require.NoError(t, err)

	ctx := context.Background()
	session := NewSessionID()

	_, err = runnable.InvokeWithConfig(ctx, nil, WithSessionID(session))
	require.Error(t, err)

	cp, err := cs.LoadLatest(ctx, session)
	require.NoError(t, err)
	assert.Nil(t, cp)
}

func TestConcurrentSessionRunsSerialize(t *testing.T) {
	cs := memory.NewMemoryCheckpointStore()
	runnable := counterGraph(t, cs)
	ctx := context.Background()
	session := NewSessionID()

	const runs = 20
	var wg sync.WaitGroup
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := runnable.InvokeWithConfig(ctx, nil, WithSessionID(session))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	cp, err := cs.LoadLatest(ctx, session)
	require.NoError(t, err)
	require.NotNil(t, cp)
	// Serialized runs cannot lose increments.
	assert.Equal(t, runs, cp.State["count"])
	assert.Equal(t, runs, cp.Version)
}
