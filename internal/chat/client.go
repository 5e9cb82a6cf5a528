package chat

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 32
)

// Identity is the authenticated user behind a connection.
type Identity struct {
	UserID   string
	Username string
	Role     string
}

// Client is one websocket connection. The hub closes send when it drops the client.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	user Identity
}

func newClient(hub *Hub, conn *websocket.Conn, user Identity, buffer int) *Client {
	return &Client{hub: hub, conn: conn, send: make(chan []byte, buffer), user: user}
}

// writePump drains send to the socket and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
