package domain

import (
	"context"
	"strings"
	"time"

	"github.com/hilthontt/chatroom/internal/infrastructure/validate"
)

const maxPasswordBytes = 72

var (
	validateUsername = validate.Compose(
		validate.Required(),
		validate.LengthBetween(2, 32),
		validate.NoSpaces(),
		// Allow letters, numbers, underscore, hyphen
		validate.Matches(`^[a-zA-Z0-9][a-zA-Z0-9_-]*[a-zA-Z0-9]$|^[a-zA-Z0-9]$`,
			"username can only contain letters, numbers, underscores, and hyphens (cannot start/end with _ or -)"),
	)
	validateName    = validate.Compose(validate.Required(), validate.MaxLength(100))
	validateAddress = validate.MaxLength(200)
	validateEmail   = validate.Optional(validate.Email(), validate.MaxLength(254))
	validatePhone   = validate.Optional(validate.Matches(`^\+?[0-9 ()-]{4,24}$`, "must be a valid phone number"))
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ProfileUpdate holds the mutable profile fields. Nil fields are left as-is.
type ProfileUpdate struct {
	Name    *string
	Address *string
	Email   *string
	Phone   *string
}

type UserRepository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*User, error)
}

// NormalizeUsername is applied on registration and on login so lookups are
// case-insensitive.
func NormalizeUsername(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func NewUser(name, address, rawUsername, passwordHash string) (*User, error) {
	username := NormalizeUsername(rawUsername)
	if err := validateUsername(username); err != nil {
		return nil, newValidationError("username", err)
	}

	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, newValidationError("name", err)
	}

	address = strings.TrimSpace(address)
	if err := validateAddress(address); err != nil {
		return nil, newValidationError("address", err)
	}

	if passwordHash == "" {
		return nil, newValidationError("password", ErrInvalidInput)
	}

	now := time.Now().UTC()

	return &User{
		Name:         name,
		Address:      address,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ValidatePassword checks a plaintext password before it is hashed.
func ValidatePassword(password string) error {
	if password == "" {
		return newValidationError("password", validate.Required()(password))
	}
	if len(password) > maxPasswordBytes {
		return newValidationError("password", validate.MaxLength(maxPasswordBytes)(password))
	}
	return nil
}

// Normalize trims every set field and validates it.
func (u ProfileUpdate) Normalize() (ProfileUpdate, error) {
	checks := []struct {
		field string
		value *string
		check validate.Validator
	}{
		{"name", u.Name, validateName},
		{"address", u.Address, validateAddress},
		{"email", u.Email, validateEmail},
		{"phone", u.Phone, validatePhone},
	}

	out := ProfileUpdate{}
	targets := []**string{&out.Name, &out.Address, &out.Email, &out.Phone}

	for i, c := range checks {
		if c.value == nil {
			continue
		}
		v := strings.TrimSpace(*c.value)
		if err := c.check(v); err != nil {
			return ProfileUpdate{}, newValidationError(c.field, err)
		}
		*targets[i] = &v
	}

	return out, nil
}

func (u ProfileUpdate) IsEmpty() bool {
	return u.Name == nil && u.Address == nil && u.Email == nil && u.Phone == nil
}

// Apply copies the set fields onto user.
func (u ProfileUpdate) Apply(user *User) {
	if u.Name != nil {
		user.Name = *u.Name
	}
	if u.Address != nil {
		user.Address = *u.Address
	}
	if u.Email != nil {
		user.Email = *u.Email
	}
	if u.Phone != nil {
		user.Phone = *u.Phone
	}
}
