package state_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoongWonSeo/ws-sync/core/state"
)

func TestClose_RemovesAllHandlers(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	before := h.sess.HandlerCount()
	initBefore := h.sess.InitCount()

	s, err := state.New(h.ctx, &counter{}, "X")
	require.NoError(t, err)

	assert.Equal(t, before+6, h.sess.HandlerCount(), "a sync owns six event handlers")
	assert.Equal(t, initBefore+1, h.sess.InitCount(), "send-on-init registers one init handler")

	s.Close()
	assert.Equal(t, before, h.sess.HandlerCount())
	assert.Equal(t, initBefore, h.sess.InitCount())
}

func TestClose_Idempotent(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	s, err := state.New(h.ctx, &counter{}, "X")
	require.NoError(t, err)

	s.Close()
	s.Close() // second close is a no-op

	assert.Equal(t, 0, h.sess.HandlerCount())
}

func TestClose_WithoutInitHandler(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	s, err := state.New(h.ctx, &counter{}, "X", state.SendOnInit(false))
	require.NoError(t, err)

	assert.Equal(t, 0, h.sess.InitCount())
	s.Close()
	assert.Equal(t, 0, h.sess.HandlerCount())
}

func TestClose_SyncBecomesNoop(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	c := &counter{}
	s, err := state.New(h.ctx, c, "X")
	require.NoError(t, err)

	s.Close()
	c.Value = 5
	require.NoError(t, s.Sync(h.ctx))

	assert.Empty(t, h.sock.SentOf(state.PatchEvent("X")))
}

func TestClose_CancelsRunningTasks(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	w := newWorker()
	s, err := state.New(h.ctx, w, "WORKER", state.Exclude("Progress"))
	require.NoError(t, err)

	h.run(t)
	h.send(state.TaskStartEvent("WORKER"), map[string]any{"type": "GROW"})
	<-w.started

	s.Close()

	require.Eventually(t, func() bool {
		return w.cancelCount() == 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestClose_SameKeyReplacement(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	// A second sync under the same key replaces the first's handlers; the
	// handler count stays at six.
	first, err := state.New(h.ctx, &counter{}, "DUP")
	require.NoError(t, err)
	second, err := state.New(h.ctx, &counter{}, "DUP")
	require.NoError(t, err)

	assert.Equal(t, 6, h.sess.HandlerCount())

	second.Close()
	assert.Equal(t, 0, h.sess.HandlerCount())
	first.Close()
}

func TestKeyScope_TwoInstancesSameClass(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	left := &counter{}
	right := &counter{}

	ls, err := state.New(h.ctxScoped("left"), left, "COUNTER")
	require.NoError(t, err)
	defer ls.Close()

	rs, err := state.New(h.ctxScoped("right"), right, "COUNTER")
	require.NoError(t, err)
	defer rs.Close()

	assert.Equal(t, "left/COUNTER", ls.Key())
	assert.Equal(t, "right/COUNTER", rs.Key())
	assert.Equal(t, 12, h.sess.HandlerCount())

	h.run(t)
	h.send(state.PatchEvent("left/COUNTER"), []map[string]any{
		{"op": "replace", "path": "/value", "value": 7},
	})

	require.Eventually(t, func() bool {
		return left.Value == 7
	}, 2*time.Second, 5*time.Millisecond)
	assert.Zero(t, right.Value, "scoped instances do not observe each other")
}
