package realtime

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 64 * 1024

	// Outbound buffer per connection; frames beyond it are dropped and the
	// client reconciles via the history endpoint.
	sendBufferSize = 64
)

// Client is the middleman between one websocket connection and the hub. It
// starts unregistered; identity is bound when the register event arrives.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	id       string
	userID   uuid.UUID
	userName string

	// guarded by hub.mu
	registered bool
	rooms      map[uuid.UUID]struct{}
}

// NewClient wraps an accepted connection for the authenticated principal.
func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID, userName string) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		id:       uuid.NewString(),
		userID:   userID,
		userName: userName,
		rooms:    make(map[uuid.UUID]struct{}),
	}
}

// Run attaches the client to the hub and pumps until the transport closes.
func (c *Client) Run() {
	c.hub.Attach(c)
	go c.writePump()
	c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Detach(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket read error: %v", err)
			}
			break
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			log.Printf("dropping malformed frame from %s: %v", c.userID, err)
			continue
		}
		c.hub.HandleEvent(c, env)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// enqueue hands a frame to the write pump. A full buffer means a slow or
// dead client; the frame is dropped, the store stays canonical.
func (c *Client) enqueue(frame []byte) {
	select {
	case c.send <- frame:
	default:
		log.Printf("send buffer full, dropping frame for %s", c.userID)
	}
}
