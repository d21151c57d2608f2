package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coastalsim/longshore/internal/cem"
)

func TestNew_DefaultsListenAddress(t *testing.T) {
	svc := newService(t)

	srv := New(svc, Config{})
	assert.Equal(t, DefaultListen, srv.cfg.Listen)
	assert.NotNil(t, srv.log)
}

func TestServer_StopsCleanlyBeforeAnyRequest(t *testing.T) {
	svc, err := NewService(cem.New())
	require.NoError(t, err)

	srv := New(svc, Config{Listen: "127.0.0.1:0"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	// Give the listener a moment to bind, then signal shutdown without
	// ever sending a request.
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancellation")
	}
}

func TestServer_ServesMetricsListener(t *testing.T) {
	svc, err := NewService(cem.New(), WithMetrics(NewMetrics()))
	require.NoError(t, err)

	srv := New(svc, Config{
		Listen:        "127.0.0.1:0",
		MetricsListen: "127.0.0.1:0",
		Metrics:       NewMetrics(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancellation")
	}
}
