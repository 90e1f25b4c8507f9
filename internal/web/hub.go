package web

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 20 * time.Second

	// clientSendBuf is the per-client outbound queue. A client that can't
	// drain it is disconnected rather than allowed to stall the loop.
	clientSendBuf = 32
)

// Hub fans display frames out to connected WebSocket clients. Broadcast
// never blocks the control loop: slow clients are dropped.
type Hub struct {
	mu      sync.Mutex
	clients map[*wsClient]struct{}
	closed  bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*wsClient]struct{})}
}

// Broadcast sends one frame to every connected client.
func (h *Hub) Broadcast(msg []byte) {
	var slow []*wsClient

	h.mu.Lock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.Unlock()

	for _, c := range slow {
		h.remove(c, "slow client")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects all clients. Send queues are closed under the hub lock,
// which serializes against every send (Broadcast and trySend hold the lock).
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
		close(c.send)
	}
	h.clients = make(map[*wsClient]struct{})
	h.mu.Unlock()

	for _, c := range clients {
		c.conn.Close()
	}
}

type wsClient struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	remoteAddr string
}

// add registers a connection and starts its pumps. It returns nil on a
// closed hub; the connection is closed and no pumps start.
func (h *Hub) add(conn *websocket.Conn, remoteAddr string) *wsClient {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return nil
	}
	c := &wsClient{
		hub:        h,
		conn:       conn,
		send:       make(chan []byte, clientSendBuf),
		remoteAddr: remoteAddr,
	}
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	log.Printf("web: ws client connected: %s (%d connected)", remoteAddr, n)

	go c.writePump()
	go c.readPump()
	return c
}

func (h *Hub) remove(c *wsClient, reason string) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()

	if ok {
		c.conn.Close()
		log.Printf("web: ws client disconnected: %s (%s, %d connected)", c.remoteAddr, reason, n)
	}
}

// trySend enqueues one frame for this client without blocking; on a full
// queue the client is dropped. Membership is checked under the hub lock so
// the send cannot race a close of the queue (remove and Close only close it
// while holding the lock).
func (c *wsClient) trySend(msg []byte) {
	c.hub.mu.Lock()
	if _, ok := c.hub.clients[c]; !ok {
		c.hub.mu.Unlock()
		return
	}
	select {
	case c.send <- msg:
		c.hub.mu.Unlock()
	default:
		c.hub.mu.Unlock()
		c.hub.remove(c, "slow client")
	}
}

// writePump writes queued frames and periodic pings. It exits on write
// error or when the send queue is closed.
func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.hub.remove(c, "write error")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.hub.remove(c, "ping error")
				return
			}
		}
	}
}

// readPump discards incoming messages to detect disconnects and handle
// control frames.
func (c *wsClient) readPump() {
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			c.hub.remove(c, "closed")
			return
		}
	}
}
