package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"nexora-campus-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func nopHandler(context.Context, string, []byte, func(interface{})) {}

func runHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub(logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	t.Cleanup(func() {
		cancel()
		<-stopped
	})
	return hub, cancel
}

func TestHubReplacesClientWithSameID(t *testing.T) {
	hub, _ := runHub(t)

	first := newClient(hub, nil, "student-1", nopHandler)
	require.True(t, hub.join(first))
	assert.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 5*time.Millisecond)

	require.True(t, hub.Send("student-1", map[string]string{"type": "pong"}))
	frame := <-first.Send
	assert.JSONEq(t, `{"type":"pong"}`, string(frame))

	second := newClient(hub, nil, "student-1", nopHandler)
	require.True(t, hub.join(second))
	_, open := <-first.Send
	assert.False(t, open)
	assert.ErrorIs(t, first.ctx.Err(), context.Canceled)
	assert.Equal(t, 1, hub.Count())

	// A stale leave must not drop the replacement.
	hub.leave(first)
	assert.Equal(t, 1, hub.Count())
	assert.True(t, hub.Send("student-1", map[string]string{"type": "pong"}))

	hub.leave(second)
	assert.Eventually(t, func() bool { return hub.Count() == 0 }, time.Second, 5*time.Millisecond)
	assert.False(t, hub.Send("student-1", map[string]string{"type": "pong"}))
}

func TestHubShutdownClosesClients(t *testing.T) {
	hub, cancel := runHub(t)

	c := newClient(hub, nil, "student-2", nopHandler)
	require.True(t, hub.join(c))
	cancel()

	_, open := <-c.Send
	assert.False(t, open)
	assert.False(t, hub.join(newClient(hub, nil, "late", nopHandler)))
	assert.False(t, c.emit(map[string]string{"type": "pong"}))
}

func TestProcessLoopKeepsArrivalOrder(t *testing.T) {
	hub := NewHub(logger.NewNopLogger())
	c := newClient(hub, nil, "student-3", func(_ context.Context, _ string, raw []byte, emit func(interface{})) {
		emit(map[string]string{"echo": string(raw)})
	})

	done := make(chan struct{})
	go func() {
		c.processLoop()
		close(done)
	}()
	for _, msg := range []string{"one", "two", "three"} {
		c.inbound <- []byte(msg)
	}
	close(c.inbound)
	<-done

	var got []string
	for i := 0; i < 3; i++ {
		var frame map[string]string
		require.NoError(t, json.Unmarshal(<-c.Send, &frame))
		got = append(got, frame["echo"])
	}
	assert.Equal(t, []string{"one", "two", "three"}, got)
	c.close()
}
