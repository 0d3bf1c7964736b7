package server

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/greyhaven/greyhavenmud/server/internal/protocol"
)

// Client wraps a WebSocket connection with a buffered outbound queue.
// A dedicated writer goroutine drains the queue so game handlers never
// block on a slow socket; when the queue fills, frames for that client
// are dropped (delivery is best-effort per connection).
type Client struct {
	conn     *websocket.Conn
	outbound chan protocol.ServerFrame

	closeOnce sync.Once
	closed    chan struct{}
}

const outboundBufferSize = 64

// NewClient starts the writer goroutine for a fresh connection.
func NewClient(conn *websocket.Conn) *Client {
	c := &Client{
		conn:     conn,
		outbound: make(chan protocol.ServerFrame, outboundBufferSize),
		closed:   make(chan struct{}),
	}
	go c.writeLoop()
	return c
}

func (c *Client) writeLoop() {
	for {
		select {
		case frame := <-c.outbound:
			if err := c.conn.WriteJSON(frame); err != nil {
				c.Close()
				return
			}
		case <-c.closed:
			return
		}
	}
}

// ReadFrame blocks until a complete client frame arrives.
func (c *Client) ReadFrame() (*protocol.ClientFrame, error) {
	var frame protocol.ClientFrame
	if err := c.conn.ReadJSON(&frame); err != nil {
		return nil, err
	}
	if frame.Type == "" {
		return nil, errors.New("frame missing type")
	}
	return &frame, nil
}

// SendFrame queues a frame for delivery. Never blocks.
func (c *Client) SendFrame(frame protocol.ServerFrame) {
	select {
	case <-c.closed:
	case c.outbound <- frame:
	default:
		// Queue full: drop the frame rather than stall the game loop.
	}
}

// SendMessage queues a typed game message.
func (c *Client) SendMessage(t protocol.MessageType, text string) {
	c.SendFrame(protocol.ServerFrame{Type: protocol.FrameMessage, Data: protocol.NewMessage(t, text)})
}

// Close shuts the connection down once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.conn.Close()
	})
}

// Closed reports whether the connection has been shut down.
func (c *Client) Closed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// RemoteAddr returns the client's address for logging.
func (c *Client) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
