package state_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoongWonSeo/ws-sync/core/keyscope"
	"github.com/JoongWonSeo/ws-sync/core/session"
	"github.com/JoongWonSeo/ws-sync/core/state"
)

type counter struct {
	Value int
}

type person struct {
	FirstName string
	LastName  string
}

type taggedUser struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func TestNew_RequiresSessionInContext(t *testing.T) {
	t.Parallel()

	_, err := state.New(context.Background(), &counter{}, "COUNTER")
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestNew_RequiresStructPointer(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	_, err := state.New(h.ctx, 42, "X")
	assert.ErrorIs(t, err, state.ErrNotPointer)
}

func TestNew_DefaultKeyIsTypeName(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	s, err := state.New(h.ctx, &counter{}, "")
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, "counter", s.Key())
}

func TestNew_KeyScopePrefixing(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := keyscope.With(h.ctx, "a")
	ctx = keyscope.With(ctx, "b")

	s, err := state.New(ctx, &counter{}, "K")
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, "a/b/K", s.Key())
}

func TestNew_ModelRejectsAliasConfig(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	_, err := state.New(h.ctx, &taggedUser{}, "USER", state.ToCamelCase())
	assert.ErrorIs(t, err, state.ErrModelAlias)

	_, err = state.New(h.ctx, &taggedUser{}, "USER", state.IncludeAs("FirstName", "fn"))
	assert.ErrorIs(t, err, state.ErrModelAlias)
}

func TestNew_IncludeExcludeOverlap(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	_, err := state.New(h.ctx, &person{}, "P",
		state.Include("FirstName"), state.Exclude("FirstName"))
	assert.ErrorIs(t, err, state.ErrIncludeExcludeOverlap)
}

func TestNew_UnknownIncludeFails(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	_, err := state.New(h.ctx, &person{}, "P", state.Include("Nope"))
	assert.Error(t, err)
}

func TestSync_NoChangeEmitsNothing(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	s, err := state.New(h.ctx, &counter{Value: 1}, "COUNTER")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Sync(h.ctx))
	assert.Empty(t, h.sock.SentOf(state.PatchEvent("COUNTER")))
}

func TestSync_SimpleReplacePatch(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	c := &counter{Value: 0}
	s, err := state.New(h.ctx, c, "COUNTER")
	require.NoError(t, err)
	defer s.Close()

	c.Value = 2
	require.NoError(t, s.Sync(h.ctx))

	patches := h.sock.SentOf(state.PatchEvent("COUNTER"))
	require.Len(t, patches, 1)

	ops := patches[0].Data.([]any)
	require.Len(t, ops, 1)
	op := ops[0].(map[string]any)
	assert.Equal(t, "replace", op["op"])
	assert.Equal(t, "/value", op["path"])
	assert.Equal(t, float64(2), op["value"])
}

func TestSync_CamelCaseAliasing(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	p := &person{FirstName: "John", LastName: "Doe"}
	s, err := state.New(h.ctx, p, "PERSON", state.ToCamelCase())
	require.NoError(t, err)
	defer s.Close()

	p.FirstName = "Jane"
	require.NoError(t, s.Sync(h.ctx))

	patches := h.sock.SentOf(state.PatchEvent("PERSON"))
	require.Len(t, patches, 1)

	ops := patches[0].Data.([]any)
	require.Len(t, ops, 1)
	op := ops[0].(map[string]any)
	assert.Equal(t, "replace", op["op"])
	assert.Equal(t, "/firstName", op["path"])
	assert.Equal(t, "Jane", op["value"])
}

func TestSync_ModelTagsAuthoritative(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	u := &taggedUser{FirstName: "John", LastName: "Doe"}
	s, err := state.New(h.ctx, u, "USER")
	require.NoError(t, err)
	defer s.Close()

	u.LastName = "Smith"
	require.NoError(t, s.Sync(h.ctx))

	patches := h.sock.SentOf(state.PatchEvent("USER"))
	require.Len(t, patches, 1)
	op := patches[0].Data.([]any)[0].(map[string]any)
	assert.Equal(t, "/lastName", op["path"])
}

func TestSync_IfSinceLastThrottles(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	c := &counter{}
	s, err := state.New(h.ctx, c, "COUNTER")
	require.NoError(t, err)
	defer s.Close()

	c.Value = 1
	require.NoError(t, s.Sync(h.ctx))

	// Within the window: suppressed.
	c.Value = 2
	require.NoError(t, s.Sync(h.ctx, state.IfSinceLast(time.Hour)))
	assert.Len(t, h.sock.SentOf(state.PatchEvent("COUNTER")), 1)

	// Without throttle the change goes out.
	require.NoError(t, s.Sync(h.ctx))
	assert.Len(t, h.sock.SentOf(state.PatchEvent("COUNTER")), 2)
}

func TestSync_WithToast(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	c := &counter{}
	s, err := state.New(h.ctx, c, "COUNTER")
	require.NoError(t, err)
	defer s.Close()

	c.Value = 7
	require.NoError(t, s.Sync(h.ctx, state.WithToast("saved!", state.ToastSuccess)))

	toasts := h.sock.SentOf(state.EventToast)
	require.Len(t, toasts, 1)
	data := toasts[0].Data.(map[string]any)
	assert.Equal(t, "success", data["type"])
	assert.Equal(t, "saved!", data["message"])

	// The patch precedes the toast.
	sent := h.sock.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, state.PatchEvent("COUNTER"), sent[0].Type)
	assert.Equal(t, state.EventToast, sent[1].Type)
}

func TestSync_NotConnectedIsNoop(t *testing.T) {
	t.Parallel()

	sess := session.New()
	ctx := session.WithContext(context.Background(), sess)

	c := &counter{}
	s, err := state.New(ctx, c, "COUNTER")
	require.NoError(t, err)
	defer s.Close()

	c.Value = 5
	assert.NoError(t, s.Sync(ctx))
}

func TestSendOnInit_PushesStateOnConnection(t *testing.T) {
	t.Parallel()

	sess := session.New()
	ctx := session.WithContext(context.Background(), sess)

	s, err := state.New(ctx, &counter{Value: 3}, "COUNTER")
	require.NoError(t, err)
	defer s.Close()

	sock := newConnectedSocket(t, sess)

	sets := sock.SentOf(state.SetEvent("COUNTER"))
	require.Len(t, sets, 1)
	assert.Equal(t, map[string]any{"value": float64(3)}, sets[0].Data)
}

func TestSendOnInit_Disabled(t *testing.T) {
	t.Parallel()

	sess := session.New()
	ctx := session.WithContext(context.Background(), sess)

	s, err := state.New(ctx, &counter{Value: 3}, "COUNTER", state.SendOnInit(false))
	require.NoError(t, err)
	defer s.Close()

	sock := newConnectedSocket(t, sess)
	assert.Empty(t, sock.SentOf(state.SetEvent("COUNTER")))
}

func TestDownload_LegacyBase64(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	s, err := state.New(h.ctx, &counter{}, "COUNTER")
	require.NoError(t, err)
	defer s.Close()

	s.Download(h.ctx, "file.txt", []byte("hi"))

	downloads := h.sock.SentOf(state.EventDownload)
	require.Len(t, downloads, 1)
	data := downloads[0].Data.(map[string]any)
	assert.Equal(t, "file.txt", data["filename"])
	assert.Equal(t, "aGk=", data["data"])
}
