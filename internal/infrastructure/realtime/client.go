package realtime

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"quickroom/pkg/logger"
)

// Client message types accepted from the browser.
const (
	ClientMessagePing        = "ping"
	ClientMessageJoin        = "join_conversation"
	ClientMessageLeave       = "leave_conversation"
	ClientMessageTypingStart = "typing_start"
	ClientMessageTypingStop  = "typing_stop"
)

type ClientMessage struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// Client represents one WebSocket connection.
type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte
}

// ReadPump reads client messages until the connection drops.
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		m.Unregister <- c
		c.Conn.Close()
	}()

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("WebSocket read error for %s: %v", c.UserID, err)
			}
			break
		}

		m.handleClientMessage(c, message)
	}
}

// WritePump drains the send channel onto the connection.
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for {
		message, ok := <-c.Send
		if !ok {
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			logger.Error("WebSocket write error for %s: %v", c.UserID, err)
			return
		}
	}
}

func (m *Manager) handleClientMessage(client *Client, payload []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		logger.Warn("Invalid client message from %s: %v", client.UserID, err)
		return
	}

	switch msg.Type {
	case ClientMessagePing:
		m.sendToUser(client.UserID, Event{
			Type:      "pong",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})

	case ClientMessageJoin:
		if msg.ConversationID != "" {
			m.JoinRoom(msg.ConversationID, client.UserID)
		}

	case ClientMessageLeave:
		if msg.ConversationID != "" {
			m.LeaveRoom(msg.ConversationID, client.UserID)
		}

	case ClientMessageTypingStart:
		if m.typing != nil && msg.ConversationID != "" {
			m.typing(msg.ConversationID, client.UserID, true)
		}

	case ClientMessageTypingStop:
		if m.typing != nil && msg.ConversationID != "" {
			m.typing(msg.ConversationID, client.UserID, false)
		}

	default:
		logger.Debug("Unknown client message type '%s' from %s", msg.Type, client.UserID)
	}
}
