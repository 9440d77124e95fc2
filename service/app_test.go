package service

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"chirp/app/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, badgerPath string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Store.BadgerPath = badgerPath
	cfg.Session.Secret = "test-secret"
	require.NoError(t, cfg.Validate())
	return cfg
}

func freeAddr(t *testing.T) string {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())
	return fmt.Sprintf("127.0.0.1:%d", port)
}

func TestServeGracefulShutdown(t *testing.T) {
	cfg := testConfig(t, filepath.Join(t.TempDir(), "badger"))
	cfg.Server.Addr = freeAddr(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, cfg)
	}()

	url := "http://" + cfg.Server.Addr + "/healthz"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode == http.StatusOK && string(body) == "ok"
	}, 5*time.Second, 50*time.Millisecond)

	resp, err := http.Get("http://" + cfg.Server.Addr + "/api/trpc/post.getAll")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"result":{"data":[]}}`, string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestNewAppRejectsUnreachableBackends(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	t.Run("redis", func(t *testing.T) {
		cfg := testConfig(t, filepath.Join(t.TempDir(), "badger"))
		cfg.RateLimit.Backend = "redis"
		cfg.RateLimit.RedisURL = "redis://" + freeAddr(t)

		_, err := NewApp(ctx, cfg)
		assert.ErrorContains(t, err, "redis")
	})

	t.Run("nats", func(t *testing.T) {
		cfg := testConfig(t, filepath.Join(t.TempDir(), "badger"))
		cfg.Events.NatsURL = "nats://" + freeAddr(t)

		_, err := NewApp(ctx, cfg)
		assert.ErrorContains(t, err, "nats")
	})
}

func TestRunServerBadFlags(t *testing.T) {
	var code int
	output := captureOutput(func() {
		code = RunServer([]string{"--no-such-flag"})
	})
	assert.Equal(t, 1, code)
	assert.Contains(t, output, "Error:")
}
