package ws

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hilthontt/chatroom/internal/infrastructure/logging"
)

const roomLookupTimeout = 5 * time.Second

// RoomChecker reports whether a room is known to the room store.
type RoomChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type Options struct {
	ValidateRooms  bool
	SendBuffer     int
	MaxMessageSize int64
	PongWait       time.Duration
	WriteWait      time.Duration
	// CheckOrigin restricts upgrades to AllowedOrigins and the request host.
	CheckOrigin    bool
	AllowedOrigins []string
}

func (o Options) withDefaults() Options {
	if o.SendBuffer <= 0 {
		o.SendBuffer = 64
	}
	if o.MaxMessageSize <= 0 {
		o.MaxMessageSize = 4096
	}
	if o.PongWait <= 0 {
		o.PongWait = 60 * time.Second
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 10 * time.Second
	}
	return o
}

func (o Options) pingPeriod() time.Duration {
	return o.PongWait * 9 / 10
}

// Handler upgrades authenticated requests and routes their events to the relay.
type Handler struct {
	relay    *Relay
	rooms    RoomChecker
	logger   logging.Logger
	opts     Options
	upgrader websocket.Upgrader
	observer ConnectionObserver
}

// ConnectionObserver is told about sockets opening and closing.
type ConnectionObserver interface {
	ConnectionOpened()
	ConnectionClosed()
}

type nopConnectionObserver struct{}

func (nopConnectionObserver) ConnectionOpened() {}
func (nopConnectionObserver) ConnectionClosed() {}

func NewHandler(relay *Relay, rooms RoomChecker, logger logging.Logger, opts Options, observer ConnectionObserver) *Handler {
	if observer == nil {
		observer = nopConnectionObserver{}
	}

	h := &Handler{
		relay:    relay,
		rooms:    rooms,
		logger:   logger,
		opts:     opts.withDefaults(),
		observer: observer,
	}

	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}

	return h
}

// Serve upgrades the request and blocks until the connection ends. The
// caller has already authenticated the user.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request, userID, username string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn(logging.Realtime, logging.Connect, "websocket upgrade failed", map[logging.ExtraKey]any{
			logging.UserID:       userID,
			logging.ErrorMessage: err.Error(),
		})
		return
	}

	client := newClient(conn, userID, username, h.opts, h.logger)
	h.observer.ConnectionOpened()
	h.logger.Info(logging.Realtime, logging.Connect, "client connected", map[logging.ExtraKey]any{
		logging.ConnectionID: client.ID(),
		logging.UserID:       userID,
	})

	go client.writePump(h.opts.pingPeriod())

	// the request context may carry a deadline from router middleware
	ctx := context.WithoutCancel(r.Context())
	client.readPump(h.opts.MaxMessageSize, h.opts.PongWait, func(c *Client, env Envelope) {
		h.dispatch(ctx, c, env)
	})

	h.relay.Disconnect(client.ID())
	client.close()
	h.observer.ConnectionClosed()
	h.logger.Info(logging.Realtime, logging.Disconnect, "client disconnected", map[logging.ExtraKey]any{
		logging.ConnectionID: client.ID(),
		logging.UserID:       userID,
	})
}

func (h *Handler) dispatch(ctx context.Context, c *Client, env Envelope) {
	switch env.Event {
	case JoinChatRoom:
		h.join(ctx, c, parseRoomID(env.Data))
	case LeaveChatRoom:
		roomID := parseRoomID(env.Data)
		if roomID == "" {
			return
		}
		h.relay.Leave(c.ID(), roomID)
		h.logger.Debug(logging.Realtime, logging.Leave, "left room", map[logging.ExtraKey]any{
			logging.ConnectionID: c.ID(),
			logging.RoomID:       roomID,
		})
	case ChatMessage:
		roomID, message, ok := parseChatMessage(env.Data)
		if !ok {
			h.logger.Debug(logging.Realtime, logging.Broadcast, "ignoring chat message without room or body", map[logging.ExtraKey]any{
				logging.ConnectionID: c.ID(),
			})
			return
		}
		delivered := h.relay.Broadcast(roomID, NewChatMessage(message))
		h.logger.Debug(logging.Realtime, logging.Broadcast, "message relayed", map[logging.ExtraKey]any{
			logging.ConnectionID: c.ID(),
			logging.RoomID:       roomID,
			"delivered":          delivered,
		})
	default:
		h.logger.Debug(logging.Realtime, logging.Broadcast, "ignoring unknown event", map[logging.ExtraKey]any{
			logging.ConnectionID: c.ID(),
			"event":              env.Event,
		})
	}
}

func (h *Handler) join(ctx context.Context, c *Client, roomID string) {
	if roomID == "" {
		return
	}

	if h.opts.ValidateRooms && h.rooms != nil {
		lookupCtx, cancel := context.WithTimeout(ctx, roomLookupTimeout)
		exists, err := h.rooms.Exists(lookupCtx, roomID)
		cancel()

		if err != nil {
			h.logger.Error(logging.Realtime, logging.Join, "room lookup failed", map[logging.ExtraKey]any{
				logging.ConnectionID: c.ID(),
				logging.RoomID:       roomID,
				logging.ErrorMessage: err.Error(),
			})
			c.Send(NewJoinFailed("room lookup failed, try again"))
			return
		}
		if !exists {
			c.Send(NewJoinFailed("room not found"))
			return
		}
	}

	h.relay.Join(c, roomID)
	h.logger.Debug(logging.Realtime, logging.Join, "joined room", map[logging.ExtraKey]any{
		logging.ConnectionID: c.ID(),
		logging.RoomID:       roomID,
		logging.UserID:       c.UserID,
	})
}

// checkOrigin allows same-host requests, configured origins and, when the
// check is disabled, everything.
func (h *Handler) checkOrigin(r *http.Request) bool {
	if !h.opts.CheckOrigin {
		return true
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}

	normalized := strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host)
	for _, allowed := range h.opts.AllowedOrigins {
		allowed = strings.TrimSpace(allowed)
		if allowed == "*" || strings.EqualFold(strings.TrimRight(allowed, "/"), normalized) {
			return true
		}
	}
	return false
}
