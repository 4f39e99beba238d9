package ws

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/hilthontt/chatroom/internal/infrastructure/logging"
)

// Client is one websocket connection. Its id is unique per connection, not
// per user.
type Client struct {
	id       string
	UserID   string
	Username string

	conn   *connWrapper
	send   chan *Message
	done   chan struct{}
	once   sync.Once
	logger logging.Logger
}

func newClient(conn *websocket.Conn, userID, username string, opts Options, logger logging.Logger) *Client {
	return &Client{
		id:       uuid.NewString(),
		UserID:   userID,
		Username: username,
		conn:     newConnWrapper(conn, opts.WriteWait),
		send:     make(chan *Message, opts.SendBuffer),
		done:     make(chan struct{}),
		logger:   logger,
	}
}

func (c *Client) ID() string {
	return c.id
}

// Send queues msg for the write pump. It reports false when the buffer is
// full or the client is closed.
func (c *Client) Send(msg *Message) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// readPump decodes frames in arrival order and hands them to dispatch. It
// returns when the connection fails or closes.
func (c *Client) readPump(maxMessageSize int64, pongWait time.Duration, dispatch func(*Client, Envelope)) {
	ws := c.conn.conn
	ws.SetReadLimit(maxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			c.logReadError(err)
			return
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil || env.Event == "" {
			c.logger.Debug(logging.Realtime, logging.Broadcast, "ignoring malformed frame", map[logging.ExtraKey]any{
				logging.ConnectionID: c.id,
			})
			continue
		}

		dispatch(c, env)
	}
}

func (c *Client) logReadError(err error) {
	extra := map[logging.ExtraKey]any{
		logging.ConnectionID: c.id,
		logging.ErrorMessage: err.Error(),
	}

	switch {
	case errors.Is(err, websocket.ErrReadLimit):
		c.logger.Warn(logging.Realtime, logging.Disconnect, "frame exceeded read limit", extra)
	case websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived):
		c.logger.Warn(logging.Realtime, logging.Disconnect, "unexpected close", extra)
	default:
		c.logger.Debug(logging.Realtime, logging.Disconnect, "connection closed", extra)
	}
}

// writePump is the only writer of data frames on the connection.
func (c *Client) writePump(pingPeriod time.Duration) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case msg := <-c.send:
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Debug(logging.Realtime, logging.Broadcast, "write failed", map[logging.ExtraKey]any{
					logging.ConnectionID: c.id,
					logging.ErrorMessage: err.Error(),
				})
				return
			}
		case <-ticker.C:
			if err := c.conn.WritePing(); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.WriteClose()
			return
		}
	}
}
