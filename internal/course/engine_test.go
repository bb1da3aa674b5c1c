package course

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(steps []Step, tr *fakeTransport, store *fakeStore) *Engine {
	return NewEngine(steps, NewRenderer(tr, store, nil, 0), store)
}

func TestEngineStartUngatedRunsToCompletion(t *testing.T) {
	steps := []Step{{Text: "one"}, {Text: "two"}, {Text: "three"}}
	tr := &fakeTransport{}
	store := newFakeStore()
	e := newTestEngine(steps, tr, store)

	require.NoError(t, e.Start(context.Background(), chat))

	// Three step texts plus the completion notice.
	require.Len(t, tr.ops, 4)
	assert.Equal(t, "notice", tr.ops[3].kind)
	assert.Equal(t, 3, store.progress[chat])
	assert.True(t, store.completed[chat])
}

func TestEngineStopsAtFirstGate(t *testing.T) {
	steps := []Step{
		{Text: "gate", Button: "Next"},
		{Text: "free one"},
		{Text: "free two"},
	}
	tr := &fakeTransport{}
	store := newFakeStore()
	e := newTestEngine(steps, tr, store)

	require.NoError(t, e.Start(context.Background(), chat))
	assert.Len(t, tr.ops, 1)
	assert.Equal(t, 0, store.progress[chat])
	assert.False(t, store.completed[chat])

	require.NoError(t, e.Confirm(context.Background(), chat, "Next"))
	// Steps 1 and 2 render, then completion.
	assert.Len(t, tr.ops, 4)
	assert.Equal(t, 3, store.progress[chat])
	assert.True(t, store.completed[chat])
}

func TestEngineConfirmExactMatchOnly(t *testing.T) {
	steps := []Step{{Text: "gate", Button: "Next"}, {Text: "after"}}
	tr := &fakeTransport{}
	store := newFakeStore()
	e := newTestEngine(steps, tr, store)
	require.NoError(t, e.Start(context.Background(), chat))
	rendered := len(tr.ops)

	t.Run("wrong text ignored", func(t *testing.T) {
		require.NoError(t, e.Confirm(context.Background(), chat, "wrong text"))
		assert.Len(t, tr.ops, rendered, "no render on mismatch")
		assert.Equal(t, 0, store.progress[chat])
	})

	t.Run("case sensitive", func(t *testing.T) {
		require.NoError(t, e.Confirm(context.Background(), chat, "next"))
		assert.Equal(t, 0, store.progress[chat])
	})

	t.Run("surrounding whitespace trimmed", func(t *testing.T) {
		require.NoError(t, e.Confirm(context.Background(), chat, "  Next \n"))
		assert.Equal(t, 2, store.progress[chat])
		assert.True(t, store.completed[chat])
	})
}

func TestEngineConfirmIgnoredOnUngatedCursor(t *testing.T) {
	steps := []Step{{Text: "gate", Button: "Go"}, {Text: "after"}}
	tr := &fakeTransport{}
	store := newFakeStore()
	e := newTestEngine(steps, tr, store)

	// Completed user: cursor == len(steps), confirmations are no-ops.
	store.progress[chat] = len(steps)
	require.NoError(t, e.Confirm(context.Background(), chat, "Go"))
	assert.Empty(t, tr.ops)
}

func TestEngineResume(t *testing.T) {
	steps := []Step{
		{Text: "a", Button: "One"},
		{Text: "b", Button: "Two"},
		{Text: "c"},
	}

	t.Run("valid payload advances past the index", func(t *testing.T) {
		tr := &fakeTransport{}
		store := newFakeStore()
		e := newTestEngine(steps, tr, store)
		require.NoError(t, e.Resume(context.Background(), chat, "0"))
		assert.Len(t, tr.ops, 1)
		assert.Equal(t, 1, store.progress[chat])
	})

	t.Run("malformed payload silently dropped", func(t *testing.T) {
		tr := &fakeTransport{}
		store := newFakeStore()
		e := newTestEngine(steps, tr, store)
		require.NoError(t, e.Resume(context.Background(), chat, "not-a-number"))
		assert.Empty(t, tr.ops)
		assert.NotContains(t, store.progress, chat)
	})

	t.Run("negative payload restarts from the top", func(t *testing.T) {
		tr := &fakeTransport{}
		store := newFakeStore()
		e := newTestEngine(steps, tr, store)
		require.NoError(t, e.Resume(context.Background(), chat, "-2"))
		assert.Len(t, tr.ops, 1)
		assert.Equal(t, 0, store.progress[chat])
	})

	t.Run("stale callback re-runs the walk", func(t *testing.T) {
		// No rewind guard: a replayed tap from an already-passed gate
		// advances from its own index again.
		tr := &fakeTransport{}
		store := newFakeStore()
		e := newTestEngine(steps, tr, store)
		require.NoError(t, e.Resume(context.Background(), chat, "1"))
		assert.Equal(t, 3, store.progress[chat])
		require.NoError(t, e.Resume(context.Background(), chat, "1"))
		assert.Equal(t, 3, store.progress[chat])
		// Step c and the completion notice were delivered twice.
		assert.Len(t, tr.ops, 4)
	})
}

func TestEngineMonotonicExceptReset(t *testing.T) {
	steps := []Step{
		{Text: "a", Button: "One"},
		{Text: "b", Button: "Two"},
	}
	tr := &fakeTransport{}
	store := newFakeStore()
	e := newTestEngine(steps, tr, store)
	ctx := context.Background()

	require.NoError(t, e.Start(ctx, chat))
	assert.Equal(t, 0, store.progress[chat])
	require.NoError(t, e.Confirm(ctx, chat, "One"))
	assert.Equal(t, 1, store.progress[chat])
	require.NoError(t, e.Confirm(ctx, chat, "One"))
	assert.Equal(t, 1, store.progress[chat], "stale confirmation never rewinds")

	require.NoError(t, e.Start(ctx, chat))
	assert.Equal(t, 0, store.progress[chat], "explicit restart resets the cursor")
}

func TestEngineCursorRebuiltFromStore(t *testing.T) {
	steps := []Step{
		{Text: "a", Button: "One"},
		{Text: "b"},
	}
	store := newFakeStore()
	store.progress[chat] = 0 // gated on step 0 before the restart

	tr := &fakeTransport{}
	e := newTestEngine(steps, tr, store)
	require.NoError(t, e.Confirm(context.Background(), chat, "One"))
	assert.Equal(t, 2, store.progress[chat])
	assert.True(t, store.completed[chat])
}

func TestEngineCursorStoreError(t *testing.T) {
	steps := []Step{{Text: "a", Button: "One"}}
	store := newFakeStore()
	store.progressErr = fmt.Errorf("db is down")
	e := newTestEngine(steps, &fakeTransport{}, store)

	err := e.Confirm(context.Background(), chat, "One")
	require.Error(t, err)
}

func TestEngineUnreachableStopsWalk(t *testing.T) {
	steps := []Step{{Text: "a"}, {Text: "b"}}
	store := newFakeStore()
	tr := &fakeTransport{fail: map[int]error{0: ErrUnreachable}}
	e := newTestEngine(steps, tr, store)
	e.cursors.Set(chat, 1)

	err := e.Start(context.Background(), chat)
	require.ErrorIs(t, err, ErrUnreachable)
	assert.Len(t, tr.ops, 1)
	assert.True(t, store.inactive[chat])
	assert.NotContains(t, store.progress, chat, "no progress written for an aborted walk")

	_, cached := e.cursors.Get(chat)
	assert.False(t, cached, "cursor cache dropped for an unreachable chat")
}
