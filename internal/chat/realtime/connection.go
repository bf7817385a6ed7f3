package realtime

import (
	"errors"
	"sync"
	"time"

	"marketplace_chat_service/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const writeWait = 10 * time.Second

var (
	// ErrConnectionClosed send after close
	ErrConnectionClosed = errors.New("connection closed")
	// ErrSendBufferFull slow consumer dropped
	ErrSendBufferFull = errors.New("connection buffer exceeded")
)

// Socket the write side of a websocket used by Connection
type Socket interface {
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Connection one websocket with a single writer goroutine; safe for concurrent Send
type Connection struct {
	ID       string
	MemberID string

	ws           Socket
	send         chan []byte
	done         chan struct{}
	stopped      chan struct{}
	once         sync.Once
	pingInterval time.Duration
}

// NewConnection build a Connection; call Start before Send
func NewConnection(memberID string, ws Socket, buffer int, pingInterval time.Duration) *Connection {
	if buffer <= 0 {
		buffer = 64
	}
	return &Connection{
		ID:           uuid.NewString(),
		MemberID:     memberID,
		ws:           ws,
		send:         make(chan []byte, buffer),
		done:         make(chan struct{}),
		stopped:      make(chan struct{}),
		pingInterval: pingInterval,
	}
}

// Start launch the write loop
func (c *Connection) Start() {
	go c.writeLoop()
}

// Send enqueue frame; a full buffer closes the connection
func (c *Connection) Send(frame []byte) error {
	select {
	case <-c.done:
		return ErrConnectionClosed
	default:
	}

	select {
	case <-c.done:
		return ErrConnectionClosed
	case c.send <- frame:
		return nil
	default:
		logger.Log.Warn("websocket send buffer full, closing", zap.String("conn", c.ID), zap.String("member", c.MemberID))
		c.Close()
		return ErrSendBufferFull
	}
}

// Done closed once the connection is closed
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

// Stopped closed once the write loop has returned and no longer touches the socket
func (c *Connection) Stopped() <-chan struct{} {
	return c.stopped
}

// Close stop the write loop and close the socket, safe to call many times
func (c *Connection) Close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		_ = c.ws.Close()
	})
}

func (c *Connection) writeLoop() {
	defer close(c.stopped)

	var tick <-chan time.Time
	if c.pingInterval > 0 {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				logger.Log.Debug("websocket write failed", zap.String("conn", c.ID), zap.Error(err))
				c.Close()
				return
			}
		case <-tick:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		}
	}
}

func (c *Connection) write(messageType int, payload []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(messageType, payload)
}
