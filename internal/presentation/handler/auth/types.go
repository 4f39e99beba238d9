package auth

import (
	"net/url"
	"time"

	"github.com/hilthontt/chatroom/internal/domain"
)

// registerRequest represents a new account submission
type registerRequest struct {
	Name     string `json:"name" validate:"required,max=100" example:"Alice"`          // Display name
	Address  string `json:"address" validate:"max=200" example:"1 Main St"`            // Postal address
	Username string `json:"username" validate:"required,min=2,max=32" example:"alice"` // Unique login name
	Password string `json:"password" validate:"required,max=72"`                       // Plaintext password, hashed before storage
}

func (r *registerRequest) BindForm(values url.Values) {
	r.Name = values.Get("name")
	r.Address = values.Get("address")
	r.Username = values.Get("username")
	r.Password = values.Get("password")
}

// loginRequest represents a credentials submission
type loginRequest struct {
	Username string `json:"username" validate:"required" example:"alice"`
	Password string `json:"password" validate:"required"`
}

func (r *loginRequest) BindForm(values url.Values) {
	r.Username = values.Get("username")
	r.Password = values.Get("password")
}

// registerResponse represents the account created by a registration
type registerResponse struct {
	User *domain.User `json:"user"`
}

// loginResponse represents an established session. The token itself travels
// in the session cookie only.
type loginResponse struct {
	ExpiresAt time.Time `json:"expiresAt" example:"2024-01-01T12:00:00Z"`
}
