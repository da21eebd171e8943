// internal/realtime/client.go

package realtime

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Default time allowed to write a message to the peer, used when the
	// configured write timeout is absent
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 64 * 1024 // 64KB
)

// Client binds a websocket to a registry connection and runs the two
// pumps. Protocol pongs and application heartbeat frames both count as
// liveness proof.
type Client struct {
	registry     *Registry
	conn         *Conn
	ws           *websocket.Conn
	presence     *Presence
	writeTimeout time.Duration
}

func NewClient(registry *Registry, conn *Conn, ws *websocket.Conn, presence *Presence, writeTimeout time.Duration) *Client {
	if writeTimeout <= 0 {
		writeTimeout = writeWait
	}
	return &Client{
		registry:     registry,
		conn:         conn,
		ws:           ws,
		presence:     presence,
		writeTimeout: writeTimeout,
	}
}

func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.registry.Unregister(c.conn)
		c.ws.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.beat()
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		c.handleFrame(message)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message, ok := <-c.conn.Send():
			c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.conn.Done():
			c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			c.ws.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

func (c *Client) handleFrame(data []byte) {
	var frame InboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		log.Printf("Unreadable frame from user %s: %v", c.conn.UserID(), err)
		return
	}

	switch frame.Type {
	case FrameHeartbeat:
		c.beat()
	case FrameJoinRoom:
		c.registry.JoinRoom(c.conn, frame.Room)
	case FrameLeaveRoom:
		c.registry.LeaveRoom(c.conn, frame.Room)
	default:
		log.Printf("Unknown frame type %q from user %s", frame.Type, c.conn.UserID())
	}
}

func (c *Client) beat() {
	c.conn.Touch()
	c.presence.Refresh(c.conn.UserID())
}
