package realtime

import (
	"net/http"

	"github.com/hilthontt/chatroom/internal/infrastructure/ws"
	"github.com/hilthontt/chatroom/internal/presentation/utils"
)

type Handler struct {
	socket *ws.Handler
}

func NewHandler(socket *ws.Handler) *Handler {
	return &Handler{socket: socket}
}

// ConnectHandler upgrades the signed in user's request to a websocket.
func (h *Handler) ConnectHandler(w http.ResponseWriter, r *http.Request) {
	user := utils.CurrentUser(r.Context())
	if user == nil {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	h.socket.Serve(w, r, user.ID, user.Username)
}
