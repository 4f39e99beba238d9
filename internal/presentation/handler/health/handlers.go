package health

import (
	"net/http"
	"time"

	"github.com/hilthontt/chatroom/internal/infrastructure/json"
)

type Handler struct {
	startedAt time.Time
}

func NewHandler() *Handler {
	return &Handler{startedAt: time.Now()}
}

func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	data := healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
	}
	json.Write(w, http.StatusOK, data)
}
