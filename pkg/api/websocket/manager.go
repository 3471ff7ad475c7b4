package websocket

import (
	"encoding/json"
	"sync"

	"github.com/facebridge/facebridge/pkg/relay"
	"go.uber.org/zap"
)

// Manager tracks open connections and fans broadcast events out to all of
// them. It is the only state shared between event handlers.
type Manager struct {
	mu      sync.RWMutex
	clients map[string]*Client
	logger  *zap.Logger
}

// NewManager creates an empty connection manager
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		clients: make(map[string]*Client),
		logger:  logger,
	}
}

// Register adds a connection to the broadcast set
func (m *Manager) Register(c *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.clients[c.ID] = c
}

// Unregister removes a connection from the broadcast set
func (m *Manager) Unregister(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.clients, id)
}

// ConnectionCount returns the number of open connections
func (m *Manager) ConnectionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.clients)
}

// Broadcast sends an event to every open connection, including the sender of
// whatever triggered it. A connection mid-teardown is skipped silently.
// Returns the number of connections the event was enqueued for.
func (m *Manager) Broadcast(event string, payload interface{}) int {
	data, err := json.Marshal(payload)
	if err != nil {
		m.logger.Error("failed to marshal broadcast payload",
			zap.String("event", event),
			zap.Error(err))
		return 0
	}
	env := relay.Envelope{Event: event, Data: data}

	m.mu.RLock()
	targets := make([]*Client, 0, len(m.clients))
	for _, c := range m.clients {
		targets = append(targets, c)
	}
	m.mu.RUnlock()

	for _, c := range targets {
		c.Send(env)
	}

	return len(targets)
}

// Close tears down every open connection. Used during shutdown.
func (m *Manager) Close() {
	m.mu.Lock()
	clients := make([]*Client, 0, len(m.clients))
	for _, c := range m.clients {
		clients = append(clients, c)
	}
	m.clients = make(map[string]*Client)
	m.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}
