package mcp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/contentbuilder/internal/core/services"
)

func TestNewServer(t *testing.T) {
	t.Run("nil chunk service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingChunkService)
	})

	t.Run("chunks only creates server", func(t *testing.T) {
		server, err := NewServer(&Ports{Chunks: services.NewChunkStore()})
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	assert.ErrorIs(t, (&Ports{}).Validate(), ErrMissingChunkService)
	assert.NoError(t, (&Ports{Chunks: services.NewChunkStore()}).Validate())
}

func TestServer_Handler_Healthz(t *testing.T) {
	server, err := NewServer(&Ports{Chunks: services.NewChunkStore()})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestServer_RunHTTP_StopsOnCancel(t *testing.T) {
	server, err := NewServer(&Ports{Chunks: services.NewChunkStore()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.RunHTTP(ctx, "127.0.0.1:0") }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("RunHTTP did not return after cancel")
	}
}

func TestServer_RunHTTP_BadAddress(t *testing.T) {
	server, err := NewServer(&Ports{Chunks: services.NewChunkStore()})
	require.NoError(t, err)

	err = server.RunHTTP(context.Background(), "not-an-address")
	assert.Error(t, err)
}
