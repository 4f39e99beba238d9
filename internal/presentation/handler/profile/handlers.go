package profile

import (
	"context"
	"net/http"

	"github.com/hilthontt/chatroom/internal/domain"
	"github.com/hilthontt/chatroom/internal/infrastructure/json"
	"github.com/hilthontt/chatroom/internal/infrastructure/logging"
	"github.com/hilthontt/chatroom/internal/presentation/utils"
	"github.com/hilthontt/chatroom/internal/presentation/web"
)

type Service interface {
	UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.User, error)
}

type Handler struct {
	service  Service
	renderer *web.Renderer
	logger   logging.Logger
}

func NewHandler(service Service, renderer *web.Renderer, logger logging.Logger) *Handler {
	return &Handler{
		service:  service,
		renderer: renderer,
		logger:   logger,
	}
}

func (h *Handler) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	user := utils.CurrentUser(r.Context())

	if json.IsJSONRequest(r) {
		json.Write(w, http.StatusOK, profileResponse{User: user})
		return
	}

	h.render(w, r, "profile", "Profile", user)
}

func (h *Handler) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	user := utils.CurrentUser(r.Context())

	var req updateProfileRequest
	if err := utils.DecodeRequest(r, &req); err != nil {
		if json.IsJSONRequest(r) {
			json.WriteValidationError(w, err)
			return
		}
		utils.RedirectWithError(w, r, "/profile", "Please check the highlighted fields.")
		return
	}

	updated, err := h.service.UpdateProfile(r.Context(), user.ID, req.toDomain())
	if err != nil {
		if json.StatusFor(err) >= http.StatusInternalServerError {
			h.logger.Error(logging.Auth, logging.ProfileUpdate, "failed to update profile", map[logging.ExtraKey]any{
				logging.UserID:       user.ID,
				logging.ErrorMessage: err.Error(),
			})
		}
		if json.IsJSONRequest(r) {
			json.WriteDomainError(w, err)
			return
		}
		utils.RedirectWithError(w, r, "/profile", err.Error())
		return
	}

	if json.IsJSONRequest(r) {
		json.Write(w, http.StatusOK, profileResponse{User: updated})
		return
	}

	http.Redirect(w, r, "/profile/success", http.StatusSeeOther)
}

func (h *Handler) GetProfileSuccessHandler(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "profile_success", "Profile updated", utils.CurrentUser(r.Context()))
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, page, title string, user *domain.User) {
	err := h.renderer.Render(w, http.StatusOK, page, web.Page{
		Title: title,
		User:  user,
		Error: r.URL.Query().Get("error"),
	})
	if err != nil {
		h.logger.Error(logging.RequestResponse, logging.Render, "failed to render page", map[logging.ExtraKey]any{
			logging.Path:         r.URL.Path,
			logging.ErrorMessage: err.Error(),
		})
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
