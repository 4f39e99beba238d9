package profile

import (
	"net/url"

	"github.com/hilthontt/chatroom/internal/domain"
	"github.com/hilthontt/chatroom/internal/presentation/utils"
)

// updateProfileRequest represents a partial profile update. Omitted fields keep their value.
type updateProfileRequest struct {
	Name    *string `json:"name" validate:"omitempty,max=100"`
	Address *string `json:"address" validate:"omitempty,max=200"`
	Email   *string `json:"email" validate:"omitempty,max=254"`
	Phone   *string `json:"phone" validate:"omitempty,max=24"`
}

func (r *updateProfileRequest) BindForm(values url.Values) {
	r.Name = utils.FormString(values, "name")
	r.Address = utils.FormString(values, "address")
	r.Email = utils.FormString(values, "email")
	r.Phone = utils.FormString(values, "phone")
}

func (r *updateProfileRequest) toDomain() domain.ProfileUpdate {
	return domain.ProfileUpdate{
		Name:    r.Name,
		Address: r.Address,
		Email:   r.Email,
		Phone:   r.Phone,
	}
}

// profileResponse represents the signed in user
type profileResponse struct {
	User *domain.User `json:"user"`
}
