package auth

import (
	"context"
	"errors"
	"net/http"

	authService "github.com/hilthontt/chatroom/internal/application/auth"
	"github.com/hilthontt/chatroom/internal/domain"
	"github.com/hilthontt/chatroom/internal/infrastructure/json"
	"github.com/hilthontt/chatroom/internal/infrastructure/logging"
	"github.com/hilthontt/chatroom/internal/presentation/utils"
	"github.com/hilthontt/chatroom/internal/presentation/web"
)

type Service interface {
	Register(ctx context.Context, in authService.RegisterInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*domain.Session, error)
	Logout(ctx context.Context, token string) error
}

type Handler struct {
	service  Service
	renderer *web.Renderer
	cookies  utils.CookieConfig
	logger   logging.Logger
}

func NewHandler(service Service, renderer *web.Renderer, cookies utils.CookieConfig, logger logging.Logger) *Handler {
	return &Handler{
		service:  service,
		renderer: renderer,
		cookies:  cookies,
		logger:   logger,
	}
}

func (h *Handler) IndexHandler(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *Handler) GetRegistrationHandler(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "registration", "Register")
}

func (h *Handler) RegistrationHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := utils.DecodeRequest(r, &req); err != nil {
		if json.IsJSONRequest(r) {
			json.WriteValidationError(w, err)
			return
		}
		utils.RedirectWithError(w, r, "/registration", "Please fill in your name, a username of 2-32 characters and a password.")
		return
	}

	user, err := h.service.Register(r.Context(), authService.RegisterInput{
		Name:     req.Name,
		Address:  req.Address,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.fail(w, r, "/registration", err)
		return
	}

	if json.IsJSONRequest(r) {
		json.Write(w, http.StatusCreated, registerResponse{User: user})
		return
	}

	http.Redirect(w, r, "/login?registered=1", http.StatusSeeOther)
}

func (h *Handler) GetLoginHandler(w http.ResponseWriter, r *http.Request) {
	if utils.CurrentUser(r.Context()) != nil {
		http.Redirect(w, r, "/home", http.StatusFound)
		return
	}

	h.render(w, r, "login", "Log in")
}

func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := utils.DecodeRequest(r, &req); err != nil {
		if json.IsJSONRequest(r) {
			json.WriteValidationError(w, err)
			return
		}
		utils.RedirectWithError(w, r, "/login", "Username and password are required.")
		return
	}

	session, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(w, r, "/login", err)
		return
	}

	utils.SetSessionCookie(w, h.cookies, session.Token, session.ExpiresAt)

	if json.IsJSONRequest(r) {
		json.Write(w, http.StatusOK, loginResponse{ExpiresAt: session.ExpiresAt})
		return
	}

	http.Redirect(w, r, "/home", http.StatusSeeOther)
}

func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	token := utils.GetSessionToken(r, h.cookies)
	if err := h.service.Logout(r.Context(), token); err != nil {
		h.logger.Error(logging.Auth, logging.Logout, "failed to destroy session", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
		h.fail(w, r, "/home", err)
		return
	}

	utils.ClearSessionCookie(w, h.cookies)

	if json.IsJSONRequest(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, page, title string) {
	data := web.Page{
		Title: title,
		User:  utils.CurrentUser(r.Context()),
		Error: r.URL.Query().Get("error"),
	}
	if r.URL.Query().Get("registered") != "" {
		data.Flash = "Account created, you can log in now."
	}

	if err := h.renderer.Render(w, http.StatusOK, page, data); err != nil {
		h.logger.Error(logging.RequestResponse, logging.Render, "failed to render page", map[logging.ExtraKey]any{
			logging.Path:         r.URL.Path,
			logging.ErrorMessage: err.Error(),
		})
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, back string, err error) {
	status := json.StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(logging.Auth, logging.Session, "auth request failed", map[logging.ExtraKey]any{
			logging.Path:         r.URL.Path,
			logging.ErrorMessage: err.Error(),
		})
	}

	if json.IsJSONRequest(r) {
		json.WriteDomainError(w, err)
		return
	}

	utils.RedirectWithError(w, r, back, flashFor(err))
}

func flashFor(err error) string {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, domain.ErrDuplicateUsername):
		return "That username is already taken."
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "Invalid username or password."
	case errors.Is(err, domain.ErrStoreUnavailable):
		return "The service is temporarily unavailable, please try again."
	default:
		return "Something went wrong, please try again."
	}
}
