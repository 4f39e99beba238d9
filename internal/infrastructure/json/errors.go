package json

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/hilthontt/chatroom/internal/domain"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func WriteError(w http.ResponseWriter, status int, msg string) {
	resp := ErrorResponse{
		Error:   http.StatusText(status),
		Message: msg,
	}
	_ = Write(w, status, resp)
}

func WriteValidationError(w http.ResponseWriter, err error) {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		WriteError(w, http.StatusBadRequest, fe.Field()+" failed on the '"+fe.Tag()+"' rule")
		return
	}
	WriteError(w, http.StatusBadRequest, err.Error())
}

func WriteUnauthorizedError(w http.ResponseWriter) {
	WriteError(w, http.StatusUnauthorized, "Missing or invalid session")
}

func WriteInternalError(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, "An unexpected error occurred")
}

// StatusFor maps the domain error taxonomy onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateUsername):
		return http.StatusConflict
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteDomainError answers with the status for err. Internal errors never
// leak their text.
func WriteDomainError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	switch status {
	case http.StatusInternalServerError:
		WriteInternalError(w)
	case http.StatusServiceUnavailable:
		WriteError(w, status, "Service temporarily unavailable")
	case http.StatusBadRequest:
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			WriteError(w, status, verr.Error())
			return
		}
		WriteError(w, status, err.Error())
	default:
		WriteError(w, status, err.Error())
	}
}
