package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// connWrapper serializes writes and close on a websocket connection.
type connWrapper struct {
	conn      *websocket.Conn
	mutex     sync.Mutex
	writeWait time.Duration
}

func newConnWrapper(c *websocket.Conn, writeWait time.Duration) *connWrapper {
	return &connWrapper{conn: c, writeWait: writeWait}
}

func (w *connWrapper) WriteJSON(v any) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if err := w.conn.SetWriteDeadline(time.Now().Add(w.writeWait)); err != nil {
		return err
	}
	return w.conn.WriteJSON(v)
}

func (w *connWrapper) WritePing() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	return w.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(w.writeWait))
}

func (w *connWrapper) WriteClose() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	return w.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(w.writeWait))
}

func (w *connWrapper) Close() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	return w.conn.Close()
}
