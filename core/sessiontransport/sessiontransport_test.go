package sessiontransport_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoongWonSeo/ws-sync/core/session/sessiontest"
	"github.com/JoongWonSeo/ws-sync/core/sessiontransport"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := sessiontransport.DefaultConfig()
	assert.Equal(t, 1024, cfg.ReadBufferSize)
	assert.Equal(t, 1024, cfg.WriteBufferSize)
	assert.Equal(t, 10, cfg.HandshakeTimeout)
	assert.False(t, cfg.AllowAnyOrigin)
}

func TestNewUpgrader(t *testing.T) {
	t.Parallel()

	cfg := sessiontransport.DefaultConfig()
	cfg.AllowAnyOrigin = true

	up := sessiontransport.NewUpgrader(cfg)
	assert.Equal(t, 1024, up.ReadBufferSize)
	require.NotNil(t, up.CheckOrigin)
	assert.True(t, up.CheckOrigin(nil))
}

func TestRequestUserSession_EchoesClientIdentity(t *testing.T) {
	t.Parallel()

	sock := sessiontest.New()
	sock.QueueJSON(map[string]any{
		"type": sessiontransport.EventUserSession,
		"data": map[string]any{"user": "u1", "session": "s1"},
	})

	ids, err := sessiontransport.RequestUserSession(context.Background(), sock)
	require.NoError(t, err)
	assert.Equal(t, "u1", ids.User)
	assert.Equal(t, "s1", ids.Session)

	requests := sock.SentOf(sessiontransport.EventRequestUserSession)
	assert.Len(t, requests, 1)
}

func TestRequestUserSession_GeneratesMissingIDs(t *testing.T) {
	t.Parallel()

	sock := sessiontest.New()
	sock.QueueJSON(map[string]any{
		"type": sessiontransport.EventUserSession,
		"data": map[string]any{"user": "", "session": ""},
	})

	ids, err := sessiontransport.RequestUserSession(context.Background(), sock)
	require.NoError(t, err)
	assert.NotEmpty(t, ids.User)
	assert.NotEmpty(t, ids.Session)
}

func TestRequestUserSession_WrongReplyType(t *testing.T) {
	t.Parallel()

	sock := sessiontest.New()
	sock.QueueJSON(map[string]any{"type": "_SOMETHING_ELSE"})

	_, err := sessiontransport.RequestUserSession(context.Background(), sock)
	assert.ErrorIs(t, err, sessiontransport.ErrHandshakeFailed)
}

func TestRequestUserSession_Disconnected(t *testing.T) {
	t.Parallel()

	sock := sessiontest.New()
	sock.Disconnect()

	_, err := sessiontransport.RequestUserSession(context.Background(), sock)
	assert.ErrorIs(t, err, sessiontransport.ErrHandshakeFailed)
}
