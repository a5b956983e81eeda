package realtime

import (
	"sync"
	"time"

	"github.com/google/uuid"
	gws "github.com/gorilla/websocket"
)

const (
	writeDeadline = 5 * time.Second
	pongWait      = 60 * time.Second
	pingInterval  = 30 * time.Second
	maxReadBytes  = 4096
)

type Client struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Channels map[string]bool
	Outbound chan Message

	done      chan struct{}
	closeOnce sync.Once
}

func (hub *Hub) NewClient(userID uuid.UUID) *Client {
	return &Client{
		ID:       uuid.New(),
		UserID:   userID,
		Channels: make(map[string]bool),
		Outbound: make(chan Message, 32),
		done:     make(chan struct{}),
	}
}

// Serve runs the read and write pumps for an upgraded connection and blocks
// until the connection drops or the client is removed. The caller owns
// registration; Serve unregisters on exit.
func (hub *Hub) Serve(conn *gws.Conn, client *Client) {
	go hub.writePump(conn, client)
	hub.readPump(conn, client)
}

func (hub *Hub) readPump(conn *gws.Conn, client *Client) {
	defer func() {
		hub.RemoveClient(client)
		_ = conn.Close()
	}()

	conn.SetReadLimit(maxReadBytes)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Inbound frames are ignored; the socket is push-only. The read loop
	// exists to surface disconnects and service pong frames.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if gws.IsUnexpectedCloseError(err, gws.CloseGoingAway, gws.CloseAbnormalClosure, gws.CloseNormalClosure) {
				hub.logger.Debug("Live client read error", "clientID", client.ID, "error", err.Error())
			}
			return
		}
	}
}

func (hub *Hub) writePump(conn *gws.Conn, client *Client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case msg := <-client.Outbound:
			_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := conn.WriteMessage(gws.PingMessage, nil); err != nil {
				return
			}
		case <-client.done:
			_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			_ = conn.WriteMessage(gws.CloseMessage, []byte{})
			return
		}
	}
}
