package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"rag-assistant-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const clusterChannel = "chat_stream_events"

// StreamMessage is the wire shape of everything the hub pushes to a session:
// answer chunks, completion notices and user-facing error signals.
type StreamMessage struct {
	Type    string   `json:"type"` // "chunk" | "done" | "error"
	Chunk   string   `json:"chunk,omitempty"`
	Answer  string   `json:"answer,omitempty"`
	Sources []string `json:"sources,omitempty"`
	Message string   `json:"message,omitempty"`
}

// Hub fans streamed turn output out to the websocket connections of a
// session. Multiple tabs of the same session all receive the stream. With
// Redis configured, messages also reach sessions connected to other
// instances.
type Hub struct {
	// SessionKey -> connected clients (multi-tab)
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis connection for cross-instance fan-out, nil when not configured
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionKey] = append(h.clients[client.SessionKey], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"session_key": client.SessionKey})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.SessionKey]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.SessionKey] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.SessionKey]) == 0 {
					delete(h.clients, client.SessionKey)
					h.logger.Info("Hub", "Session fully disconnected", map[string]interface{}{"session_key": client.SessionKey})
				}
			}
			h.mu.Unlock()
		}
	}
}

// SendChunk delivers one incremental answer fragment.
func (h *Hub) SendChunk(sessionKey, chunk string) {
	h.send(sessionKey, StreamMessage{Type: "chunk", Chunk: chunk})
}

// SendDone signals the end of a streamed answer, carrying the full text and
// the provenance labels.
func (h *Hub) SendDone(sessionKey, answer string, sources []string) {
	h.send(sessionKey, StreamMessage{Type: "done", Answer: answer, Sources: sources})
}

// SendError delivers a user-facing error signal for the session.
func (h *Hub) SendError(sessionKey, message string) {
	h.send(sessionKey, StreamMessage{Type: "error", Message: message})
}

func (h *Hub) send(sessionKey string, msg StreamMessage) {
	data, _ := json.Marshal(msg)

	for _, client := range h.deliver(sessionKey, data) {
		h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{"session_key": sessionKey})
		h.unregister <- client
	}

	// Other instances may hold connections for the same session.
	if h.rdb != nil {
		payload, _ := json.Marshal(clusterPayload{
			TargetSession: sessionKey,
			Message:       data,
		})
		h.rdb.Publish(context.Background(), clusterChannel, payload)
	}
}

// deliver pushes data to every connection of the session and returns the
// clients whose buffers were full. Send attempts stay under the read lock so
// they can never interleave with Run closing a Send channel under the write
// lock; only Run closes Send, when it takes the client out of the map.
func (h *Hub) deliver(sessionKey string, data []byte) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var dropped []*Client
	for _, client := range h.clients[sessionKey] {
		select {
		case client.Send <- data:
		default:
			dropped = append(dropped, client)
		}
	}
	return dropped
}

type clusterPayload struct {
	TargetSession string          `json:"target_session"`
	Message       json.RawMessage `json:"message"`
}

func (h *Hub) subscribeToRedis() {
	// Every instance subscribes to the shared channel and filters on the
	// sessions it holds locally.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload clusterPayload
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		for _, client := range h.deliver(payload.TargetSession, payload.Message) {
			h.unregister <- client
		}
	}
}
