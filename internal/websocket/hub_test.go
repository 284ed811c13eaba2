package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func (h *Hub) clientCount(sessionKey string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionKey])
}

func TestHubDropsSlowClientWithoutKillingRun(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	go hub.Run()

	// No buffer and no reader, so every delivery attempt hits the full-buffer
	// branch immediately.
	slow := &Client{Hub: hub, SessionKey: "s1", Send: make(chan []byte)}
	hub.register <- slow
	require.Eventually(t, func() bool { return hub.clientCount("s1") == 1 }, time.Second, 5*time.Millisecond)

	// Two sends: the first drops the client, the second must not find a
	// closed channel or a dead hub goroutine.
	hub.SendChunk("s1", "a")
	hub.SendChunk("s1", "b")
	require.Eventually(t, func() bool { return hub.clientCount("s1") == 0 }, time.Second, 5*time.Millisecond)

	// The hub goroutine is still serving registrations and deliveries.
	healthy := &Client{Hub: hub, SessionKey: "s1", Send: make(chan []byte, 4)}
	hub.register <- healthy
	require.Eventually(t, func() bool { return hub.clientCount("s1") == 1 }, time.Second, 5*time.Millisecond)

	hub.SendChunk("s1", "still alive")
	select {
	case data := <-healthy.Send:
		var msg StreamMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, "chunk", msg.Type)
		assert.Equal(t, "still alive", msg.Chunk)
	case <-time.After(time.Second):
		t.Fatal("delivery to healthy client timed out")
	}
}

func TestHubUnregisterTwiceClosesSendOnce(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	go hub.Run()

	client := &Client{Hub: hub, SessionKey: "s1", Send: make(chan []byte)}
	hub.register <- client
	require.Eventually(t, func() bool { return hub.clientCount("s1") == 1 }, time.Second, 5*time.Millisecond)

	// A slow-client drop and a connection teardown can both queue the same
	// client; the second one must be a no-op.
	hub.unregister <- client
	hub.unregister <- client
	require.Eventually(t, func() bool { return hub.clientCount("s1") == 0 }, time.Second, 5*time.Millisecond)

	_, open := <-client.Send
	assert.False(t, open)
}
