package logging

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteSink(t *testing.T) {
	t.Run("entries reach the endpoint", func(t *testing.T) {
		var (
			mu       sync.Mutex
			received []Entry
		)

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var e Entry
			require.NoError(t, json.NewDecoder(r.Body).Decode(&e))

			mu.Lock()
			received = append(received, e)
			mu.Unlock()
		}))
		t.Cleanup(server.Close)

		sink := NewRemoteSink(server.URL, "backend", time.Second, 16)
		sink.Emit(Entry{Level: "INFO", Package: "handler", Message: "short url created"})

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		require.NoError(t, sink.Close(ctx))

		mu.Lock()
		defer mu.Unlock()
		require.Len(t, received, 1)
		assert.Equal(t, "INFO", received[0].Level)
		assert.Equal(t, "backend", received[0].Stack)
		assert.Equal(t, "handler", received[0].Package)
		assert.Equal(t, "short url created", received[0].Message)
		assert.False(t, received[0].Timestamp.IsZero())
	})

	t.Run("emit after close is dropped", func(t *testing.T) {
		var (
			mu       sync.Mutex
			received int
		)

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			received++
			mu.Unlock()
		}))
		t.Cleanup(server.Close)

		sink := NewRemoteSink(server.URL, "backend", time.Second, 16)
		sink.Emit(Entry{Level: "INFO", Message: "before close"})

		// An already-expired deadline makes Close return before the
		// drain finishes; later emits must still be a safe no-op.
		expired, cancel := context.WithDeadline(context.Background(), time.Now())
		defer cancel()
		_ = sink.Close(expired)

		sink.Emit(Entry{Level: "WARN", Message: "after close"})
		sink.Emit(Entry{Level: "WARN", Message: "after close again"})

		ctx, cancelWait := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancelWait()
		require.NoError(t, sink.Close(ctx))

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 1, received)
	})

	t.Run("unreachable endpoint never blocks the caller", func(t *testing.T) {
		sink := NewRemoteSink("http://127.0.0.1:1/logs", "backend", 100*time.Millisecond, 2)

		for i := 0; i < 20; i++ {
			sink.Emit(Entry{Level: "INFO", Message: "dropped or delivered, never blocking"})
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		require.NoError(t, sink.Close(ctx))
	})
}

func TestTeeHandler(t *testing.T) {
	var (
		mu       sync.Mutex
		received []Entry
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var e Entry
		require.NoError(t, json.NewDecoder(r.Body).Decode(&e))

		mu.Lock()
		received = append(received, e)
		mu.Unlock()
	}))
	t.Cleanup(server.Close)

	sink := NewRemoteSink(server.URL, "backend", time.Second, 16)

	logger := slog.New(NewTeeHandler(slog.NewTextHandler(io.Discard, nil), sink))
	logger.With(slog.String("package", "usecase")).Warn("failed to record click")
	logger.Info("plain record")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, sink.Close(ctx))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 2)
	assert.Equal(t, "WARN", received[0].Level)
	assert.Equal(t, "usecase", received[0].Package)
	assert.Equal(t, "failed to record click", received[0].Message)
	assert.Equal(t, "INFO", received[1].Level)
	assert.Empty(t, received[1].Package)
}
