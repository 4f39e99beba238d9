package rooms

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hilthontt/chatroom/internal/domain"
	"github.com/hilthontt/chatroom/internal/infrastructure/json"
	"github.com/hilthontt/chatroom/internal/infrastructure/logging"
	"github.com/hilthontt/chatroom/internal/presentation/utils"
	"github.com/hilthontt/chatroom/internal/presentation/web"
)

const auditLimit = 50

type Service interface {
	Create(ctx context.Context, name, description string) (*domain.Room, error)
	Get(ctx context.Context, id string) (*domain.Room, error)
	List(ctx context.Context) ([]domain.Room, error)
	Update(ctx context.Context, id, name, description string) (*domain.Room, error)
	Delete(ctx context.Context, id string) (*domain.Room, error)
}

type Handler struct {
	service  Service
	audit    domain.RoomAuditRepository
	renderer *web.Renderer
	logger   logging.Logger
}

func NewHandler(
	service Service,
	audit domain.RoomAuditRepository,
	renderer *web.Renderer,
	logger logging.Logger,
) *Handler {
	return &Handler{
		service:  service,
		audit:    audit,
		renderer: renderer,
		logger:   logger,
	}
}

func (h *Handler) HomeHandler(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.service.List(r.Context())
	if err != nil {
		h.fail(w, r, "", err)
		return
	}

	h.render(w, r, http.StatusOK, "home", "Home", rooms)
}

func (h *Handler) ListRoomsHandler(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.service.List(r.Context())
	if err != nil {
		h.fail(w, r, "", err)
		return
	}

	if json.IsJSONRequest(r) {
		json.Write(w, http.StatusOK, roomListResponse{Rooms: rooms})
		return
	}

	h.render(w, r, http.StatusOK, "rooms", "Chat rooms", rooms)
}

func (h *Handler) NewRoomHandler(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "room_form", "New room", &domain.Room{})
}

func (h *Handler) CreateRoomHandler(w http.ResponseWriter, r *http.Request) {
	var req roomRequest
	if err := utils.DecodeRequest(r, &req); err != nil {
		h.invalid(w, r, "/chatrooms/new", err)
		return
	}

	room, err := h.service.Create(r.Context(), req.Name, req.Description)
	if err != nil {
		h.fail(w, r, "/chatrooms/new", err)
		return
	}

	if json.IsJSONRequest(r) {
		json.Write(w, http.StatusCreated, roomResponse{Room: room})
		return
	}

	http.Redirect(w, r, "/chatrooms/"+room.ID, http.StatusSeeOther)
}

func (h *Handler) GetRoomHandler(w http.ResponseWriter, r *http.Request) {
	room, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "", err)
		return
	}

	if json.IsJSONRequest(r) {
		json.Write(w, http.StatusOK, roomResponse{Room: room})
		return
	}

	h.render(w, r, http.StatusOK, "room", room.Name, room)
}

func (h *Handler) EditRoomHandler(w http.ResponseWriter, r *http.Request) {
	room, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "", err)
		return
	}

	h.render(w, r, http.StatusOK, "room_form", "Edit "+room.Name, room)
}

func (h *Handler) UpdateRoomHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	back := "/chatrooms/" + id + "/edit"

	var req roomRequest
	if err := utils.DecodeRequest(r, &req); err != nil {
		h.invalid(w, r, back, err)
		return
	}

	room, err := h.service.Update(r.Context(), id, req.Name, req.Description)
	if err != nil {
		h.fail(w, r, back, err)
		return
	}

	if json.IsJSONRequest(r) {
		json.Write(w, http.StatusOK, roomResponse{Room: room})
		return
	}

	http.Redirect(w, r, "/chatrooms/"+room.ID, http.StatusSeeOther)
}

func (h *Handler) DeleteRoomHandler(w http.ResponseWriter, r *http.Request) {
	room, err := h.service.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "", err)
		return
	}

	if json.IsJSONRequest(r) {
		json.Write(w, http.StatusOK, roomResponse{Room: room})
		return
	}

	http.Redirect(w, r, "/chatrooms", http.StatusSeeOther)
}

func (h *Handler) RoomAuditHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.service.Get(r.Context(), id); err != nil {
		json.WriteDomainError(w, err)
		return
	}

	events, err := h.audit.GetByRoomID(r.Context(), id, auditLimit)
	if err != nil {
		h.logger.Error(logging.Mongo, logging.Select, "failed to load room audit log", map[logging.ExtraKey]any{
			logging.RoomID:       id,
			logging.ErrorMessage: err.Error(),
		})
		json.WriteDomainError(w, err)
		return
	}
	if events == nil {
		events = []domain.RoomAuditLog{}
	}

	json.Write(w, http.StatusOK, auditResponse{Events: events})
}

func (h *Handler) invalid(w http.ResponseWriter, r *http.Request, back string, err error) {
	if json.IsJSONRequest(r) {
		json.WriteValidationError(w, err)
		return
	}
	utils.RedirectWithError(w, r, back, "A room needs a name of at most 100 characters.")
}

// fail answers err. HTML clients go back to the form when there is one and
// get an error page otherwise.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, back string, err error) {
	status := json.StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(logging.Mongo, logging.Select, "room request failed", map[logging.ExtraKey]any{
			logging.Path:         r.URL.Path,
			logging.ErrorMessage: err.Error(),
		})
	}

	if json.IsJSONRequest(r) {
		json.WriteDomainError(w, err)
		return
	}

	if back != "" && status == http.StatusBadRequest {
		utils.RedirectWithError(w, r, back, err.Error())
		return
	}

	h.render(w, r, status, "error", http.StatusText(status), nil)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page, title string, data any) {
	err := h.renderer.Render(w, status, page, web.Page{
		Title: title,
		User:  utils.CurrentUser(r.Context()),
		Error: r.URL.Query().Get("error"),
		Data:  data,
	})
	if err != nil {
		h.logger.Error(logging.RequestResponse, logging.Render, "failed to render page", map[logging.ExtraKey]any{
			logging.Path:         r.URL.Path,
			logging.ErrorMessage: err.Error(),
		})
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
