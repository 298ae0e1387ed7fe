package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"quickroom/pkg/logger"
)

// PresenceState is one user's ephemeral state on a conversation topic. It
// lives only in Manager memory and is never persisted.
type PresenceState struct {
	UserID string `json:"user_id"`
	Typing bool   `json:"typing"`
}

// Event is the wire envelope for everything published on a topic.
type Event struct {
	Type      string      `json:"type"`
	Topic     string      `json:"topic,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// Manager is the channel bus: it owns all live WebSocket clients, the
// per-conversation rooms they join and the ephemeral presence state of each
// room.
type Manager struct {
	clients    map[string]*Client
	rooms      map[string]map[string]*Client
	presence   map[string]map[string]PresenceState
	Register   chan *Client
	Unregister chan *Client
	typing     func(conversationID, userID string, isTyping bool)
	mutex      sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]*Client),
		presence:   make(map[string]map[string]PresenceState),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// SetTypingHandler wires typing client events to the presence tracker. Set
// once during startup, before Start.
func (m *Manager) SetTypingHandler(handler func(conversationID, userID string, isTyping bool)) {
	m.typing = handler
}

// Start runs the manager's registration loop in a goroutine.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				m.clients[client.UserID] = client
				m.mutex.Unlock()
				logger.Info("Client registered: %s", client.UserID)

			case client := <-m.Unregister:
				m.removeClient(client)
				logger.Info("Client unregistered: %s", client.UserID)

			case <-ctx.Done():
				return
			}
		}
	}()
}

func (m *Manager) removeClient(client *Client) {
	m.mutex.Lock()
	topics := make([]string, 0)
	if _, ok := m.clients[client.UserID]; ok {
		delete(m.clients, client.UserID)
		close(client.Send)
	}
	for topic, members := range m.rooms {
		if _, ok := members[client.UserID]; ok {
			delete(members, client.UserID)
			topics = append(topics, topic)
		}
	}
	m.mutex.Unlock()

	// A dropped connection never says "stopped typing" itself; clear its
	// presence so subscribers are not left with a stale indicator.
	for _, topic := range topics {
		m.TrackPresence(topic, PresenceState{UserID: client.UserID, Typing: false})
	}
}

// JoinRoom subscribes a connected client to a conversation topic and sends
// it the current presence state of the room.
func (m *Manager) JoinRoom(topic, userID string) {
	m.mutex.Lock()
	client, ok := m.clients[userID]
	if !ok {
		m.mutex.Unlock()
		return
	}
	if m.rooms[topic] == nil {
		m.rooms[topic] = make(map[string]*Client)
	}
	m.rooms[topic][userID] = client
	m.mutex.Unlock()

	m.sendToUser(userID, Event{
		Type:      "presence_sync",
		Topic:     topic,
		Data:      m.PresenceSnapshot(topic),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (m *Manager) LeaveRoom(topic, userID string) {
	m.mutex.Lock()
	if members, ok := m.rooms[topic]; ok {
		delete(members, userID)
	}
	m.mutex.Unlock()

	m.TrackPresence(topic, PresenceState{UserID: userID, Typing: false})
}

// Publish broadcasts a durable event (new message, appointment change) to
// every subscriber of the topic.
func (m *Manager) Publish(topic, eventType string, data interface{}) {
	m.broadcast(topic, "", Event{
		Type:      eventType,
		Topic:     topic,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// PublishExcept is Publish minus one user, used so senders do not echo
// their own events back.
func (m *Manager) PublishExcept(topic, excludeUserID, eventType string, data interface{}) {
	m.broadcast(topic, excludeUserID, Event{
		Type:      eventType,
		Topic:     topic,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// TrackPresence merges one user's state into the topic's presence layer and
// broadcasts the full state to subscribers. State is dropped, not stored,
// when it returns to the zero value.
func (m *Manager) TrackPresence(topic string, state PresenceState) {
	m.mutex.Lock()
	if m.presence[topic] == nil {
		m.presence[topic] = make(map[string]PresenceState)
	}
	if state.Typing {
		m.presence[topic][state.UserID] = state
	} else {
		delete(m.presence[topic], state.UserID)
		if len(m.presence[topic]) == 0 {
			delete(m.presence, topic)
		}
	}
	m.mutex.Unlock()

	m.broadcast(topic, "", Event{
		Type:      "presence_sync",
		Topic:     topic,
		Data:      m.PresenceSnapshot(topic),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// PresenceSnapshot returns the current presence tuples for a topic.
func (m *Manager) PresenceSnapshot(topic string) []PresenceState {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	states := make([]PresenceState, 0, len(m.presence[topic]))
	for _, state := range m.presence[topic] {
		states = append(states, state)
	}
	return states
}

// SendToUser delivers an event to one user regardless of room membership,
// used for notification-style pushes.
func (m *Manager) SendToUser(userID, eventType string, data interface{}) {
	m.sendToUser(userID, Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (m *Manager) sendToUser(userID string, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal event for user %s: %v", userID, err)
		return
	}

	m.mutex.RLock()
	client, ok := m.clients[userID]
	m.mutex.RUnlock()

	if ok {
		select {
		case client.Send <- payload:
		default:
			logger.Warn("Dropping event for slow client %s", userID)
		}
	}
}

func (m *Manager) broadcast(topic, excludeUserID string, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal event for topic %s: %v", topic, err)
		return
	}

	m.mutex.RLock()
	members := make([]*Client, 0, len(m.rooms[topic]))
	for userID, client := range m.rooms[topic] {
		if userID == excludeUserID {
			continue
		}
		members = append(members, client)
	}
	m.mutex.RUnlock()

	for _, client := range members {
		select {
		case client.Send <- payload:
		default:
			logger.Warn("Dropping event for slow client %s", client.UserID)
		}
	}
}
