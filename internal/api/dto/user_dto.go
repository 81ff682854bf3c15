package dto

import (
	"time"

	"github.com/civicdesk/complaint-service/internal/domain"
)

// RegisterUserRequest payload for new users.
type RegisterUserRequest struct {
	PhoneNumber        string  `json:"phone_number"`
	FullName           string  `json:"full_name"`
	Email              string  `json:"email"`
	ResidentialAddress string  `json:"residential_address"`
	Role               string  `json:"role"`
	Department         *string `json:"department"`
}

// UpdateProfileRequest carries optional profile fields.
type UpdateProfileRequest struct {
	PhoneNumber        *string `json:"phone_number"`
	FullName           *string `json:"full_name"`
	Email              *string `json:"email"`
	ResidentialAddress *string `json:"residential_address"`
}

// UpdateRoleRequest payload.
type UpdateRoleRequest struct {
	Role       string  `json:"role"`
	Department *string `json:"department"`
}

// UserResponse representation.
type UserResponse struct {
	ID                 int64       `json:"id"`
	PhoneNumber        string      `json:"phone_number"`
	FullName           string      `json:"full_name"`
	Email              string      `json:"email"`
	ResidentialAddress string      `json:"residential_address"`
	Role               domain.Role `json:"role"`
	Department         *string     `json:"department"`
	IsVerified         bool        `json:"is_verified"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}
