package realtime

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/spec-kit/code-arena/internal/presence"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxFrame   = 1 << 20
)

var (
	errClientClosed = errors.New("client closed")
	errSendBufFull  = errors.New("send buffer full")
)

// client adapts a websocket connection to presence.Conn. Sends are queued on a bounded
// buffer drained by writePump; a full buffer drops the message.
type client struct {
	id     string
	conn   *websocket.Conn
	send   chan presence.Message
	done   chan struct{}
	once   sync.Once
	logger *zap.Logger
}

func newClient(id string, conn *websocket.Conn, buffer int, logger *zap.Logger) *client {
	return &client{
		id:     id,
		conn:   conn,
		send:   make(chan presence.Message, buffer),
		done:   make(chan struct{}),
		logger: logger,
	}
}

func (c *client) ID() string { return c.id }

func (c *client) Send(msg presence.Message) error {
	select {
	case <-c.done:
		return errClientClosed
	default:
	}
	select {
	case c.send <- msg:
		return nil
	case <-c.done:
		return errClientClosed
	default:
		return errSendBufFull
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Debug("websocket write failed", zap.String("conn_id", c.id), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
